package share

import (
	"bytes"
	"io"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/markdown"
	"git.home.luguber.info/inful/sociallike/internal/registry"
)

// Meta tag attribute names.
const (
	AttrProperty = "property"
	AttrName     = "name"
)

// SummaryLength is the rune limit for descriptions derived from the body.
const SummaryLength = 200

// Tag is a single <meta> element.
type Tag struct {
	Attr    string `json:"attr"`
	Key     string `json:"key"`
	Content string `json:"content"`
}

// Metadata is the sharing metadata of one item.
type Metadata struct {
	CanonicalURL string   `json:"canonical_url,omitempty"`
	Tags         []Tag    `json:"tags"`
	Buttons      []Button `json:"buttons,omitempty"`
}

// Get returns the content of the first tag with key.
func (m *Metadata) Get(key string) (string, bool) {
	for _, t := range m.Tags {
		if t.Key == key {
			return t.Content, true
		}
	}
	return "", false
}

// Summary returns the description used for item: its Description when set,
// otherwise the start of its Markdown body.
func Summary(item *content.Item) string {
	if d := strings.TrimSpace(item.Description); d != "" {
		return d
	}
	return markdown.Summary([]byte(item.Text), SummaryLength)
}

// BuildMetadata returns the Open Graph and Twitter card tags plus share
// buttons for item. canonicalURL may be empty when the item has none. The
// second result is false when the item's portal type is not enabled.
func BuildMetadata(item *content.Item, settings *registry.Settings, canonicalURL, summary string) (*Metadata, bool) {
	if settings == nil || !settings.TypeEnabled(item.Type) {
		return nil, false
	}

	image := markdown.FirstImage([]byte(item.Text))
	if image == "" {
		image = settings.FallbackImage
	}
	facebook := slices.Contains(settings.PluginsEnabled, PluginFacebook)
	twitter := slices.Contains(settings.PluginsEnabled, PluginTwitter)

	m := &Metadata{CanonicalURL: canonicalURL}
	add := func(attr, key, value string) {
		if value != "" {
			m.Tags = append(m.Tags, Tag{Attr: attr, Key: key, Content: value})
		}
	}

	add(AttrProperty, "og:type", "article")
	add(AttrProperty, "og:title", item.Title)
	add(AttrProperty, "og:description", summary)
	add(AttrProperty, "og:url", canonicalURL)
	add(AttrProperty, "og:image", image)
	if !item.EffectiveDate.IsZero() {
		add(AttrProperty, "article:published_time", item.EffectiveDate.UTC().Format(time.RFC3339))
	}
	if !item.Modified.IsZero() {
		add(AttrProperty, "article:modified_time", item.Modified.UTC().Format(time.RFC3339))
	}

	if facebook {
		add(AttrProperty, "fb:app_id", settings.FacebookAppID)
		if settings.FacebookUsername != "" {
			add(AttrProperty, "article:publisher", "https://www.facebook.com/"+settings.FacebookUsername)
		}
	}

	if twitter {
		card := "summary"
		if image != "" {
			card = "summary_large_image"
		}
		add(AttrName, "twitter:card", card)
		add(AttrName, "twitter:title", item.Title)
		add(AttrName, "twitter:description", summary)
		add(AttrName, "twitter:image", image)
		if settings.TwitterUsername != "" {
			add(AttrName, "twitter:site", "@"+settings.TwitterUsername)
		}
	}

	if canonicalURL != "" {
		m.Buttons = Buttons(settings.PluginsEnabled, Target{
			URL:         canonicalURL,
			Title:       item.Title,
			Description: summary,
			Image:       image,
			Via:         settings.TwitterUsername,
		})
	}
	return m, true
}

// Nodes returns the HTML head elements for m: a canonical link followed by
// one meta element per tag.
func (m *Metadata) Nodes() []*html.Node {
	var nodes []*html.Node
	if m.CanonicalURL != "" {
		nodes = append(nodes, &html.Node{
			Type:     html.ElementNode,
			Data:     "link",
			DataAtom: atom.Link,
			Attr:     []html.Attribute{{Key: "rel", Val: "canonical"}, {Key: "href", Val: m.CanonicalURL}},
		})
	}
	for _, t := range m.Tags {
		nodes = append(nodes, &html.Node{
			Type:     html.ElementNode,
			Data:     "meta",
			DataAtom: atom.Meta,
			Attr:     []html.Attribute{{Key: t.Attr, Val: t.Key}, {Key: "content", Val: t.Content}},
		})
	}
	return nodes
}

// RenderHTML writes the head elements of m, one per line.
func (m *Metadata) RenderHTML(w io.Writer) error {
	for _, n := range m.Nodes() {
		if err := html.Render(w, n); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// HTML returns RenderHTML as a string.
func (m *Metadata) HTML() (string, error) {
	var buf bytes.Buffer
	if err := m.RenderHTML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExtractTags parses an HTML document and returns its property/name meta
// tags and canonical link.
func ExtractTags(r io.Reader) (*Metadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "parse html").Build()
	}

	m := &Metadata{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Meta:
				for _, attr := range []string{AttrProperty, AttrName} {
					if key := getAttr(n, attr); key != "" {
						m.Tags = append(m.Tags, Tag{Attr: attr, Key: key, Content: getAttr(n, "content")})
						break
					}
				}
			case atom.Link:
				if getAttr(n, "rel") == "canonical" && m.CanonicalURL == "" {
					m.CanonicalURL = getAttr(n, "href")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return m, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// SetSiteName adds an og:site_name tag.
func (m *Metadata) SetSiteName(name string) {
	if name != "" {
		m.Tags = append(m.Tags, Tag{Attr: AttrProperty, Key: "og:site_name", Content: name})
	}
}
