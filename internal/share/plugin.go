// Package share builds social sharing metadata (Open Graph and Twitter card
// tags) and share buttons for content items.
package share

import (
	"net/url"
	"slices"
	"strings"
)

// Target is what a share button points at.
type Target struct {
	URL         string
	Title       string
	Description string
	Image       string
	// Via is the Twitter handle credited on tweets, without "@".
	Via string
}

// Button is a rendered share link.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Plugin builds the share URL for one social network.
type Plugin struct {
	ID    string
	Title string
	build func(Target) string
}

// ShareURL returns the share link for t.
func (p Plugin) ShareURL(t Target) string { return p.build(t) }

const (
	PluginFacebook  = "facebook"
	PluginTwitter   = "twitter"
	PluginLinkedIn  = "linkedin"
	PluginPinterest = "pinterest"
	PluginWhatsApp  = "whatsapp"
	PluginTelegram  = "telegram"
	PluginEmail     = "email"
)

var plugins = map[string]Plugin{
	PluginFacebook: {ID: PluginFacebook, Title: "Facebook", build: func(t Target) string {
		return withQuery("https://www.facebook.com/sharer/sharer.php", "u", t.URL)
	}},
	PluginTwitter: {ID: PluginTwitter, Title: "X (Twitter)", build: func(t Target) string {
		return withQuery("https://twitter.com/intent/tweet", "url", t.URL, "text", t.Title, "via", t.Via)
	}},
	PluginLinkedIn: {ID: PluginLinkedIn, Title: "LinkedIn", build: func(t Target) string {
		return withQuery("https://www.linkedin.com/sharing/share-offsite/", "url", t.URL)
	}},
	PluginPinterest: {ID: PluginPinterest, Title: "Pinterest", build: func(t Target) string {
		return withQuery("https://pinterest.com/pin/create/button/", "url", t.URL, "media", t.Image, "description", t.Title)
	}},
	PluginWhatsApp: {ID: PluginWhatsApp, Title: "WhatsApp", build: func(t Target) string {
		return withQuery("https://api.whatsapp.com/send", "text", strings.TrimSpace(t.Title+" "+t.URL))
	}},
	PluginTelegram: {ID: PluginTelegram, Title: "Telegram", build: func(t Target) string {
		return withQuery("https://t.me/share/url", "url", t.URL, "text", t.Title)
	}},
	PluginEmail: {ID: PluginEmail, Title: "Email", build: func(t Target) string {
		body := t.URL
		if t.Description != "" {
			body = t.Description + "\n\n" + t.URL
		}
		// mail clients do not decode "+" as a space
		q := withQuery("", "subject", t.Title, "body", body)
		return "mailto:" + strings.ReplaceAll(q, "+", "%20")
	}},
}

// Lookup returns the plugin registered under id.
func Lookup(id string) (Plugin, bool) {
	p, ok := plugins[id]
	return p, ok
}

// IDs returns all plugin ids in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(plugins))
	for id := range plugins {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Buttons builds share buttons for the given plugin ids in order. Unknown
// ids and duplicates are ignored.
func Buttons(ids []string, t Target) []Button {
	var out []Button
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		p, ok := plugins[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, Button{ID: p.ID, Title: p.Title, URL: p.ShareURL(t)})
	}
	return out
}

// withQuery appends the non-empty key/value pairs in kv to base.
func withQuery(base string, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}
