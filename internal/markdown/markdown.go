// Package markdown extracts plain-text summaries and images from Markdown
// bodies and renders them to HTML.
package markdown

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// Parse parses a Markdown body (front matter already removed).
func Parse(body []byte) gmast.Node {
	return md.Parser().Parse(text.NewReader(body))
}

// PlainText returns the text content of the first paragraph of body, with
// markup removed and whitespace collapsed.
func PlainText(body []byte) string {
	root := Parse(body)
	var buf strings.Builder
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			if n.Kind() == gmast.KindParagraph && buf.Len() > 0 {
				return gmast.WalkStop, nil
			}
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading, *gmast.FencedCodeBlock, *gmast.CodeBlock, *gmast.HTMLBlock:
			return gmast.WalkSkipChildren, nil
		case *gmast.Text:
			buf.Write(node.Segment.Value(body))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		}
		return gmast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}

// Summary returns PlainText(body) cut at a word boundary so that it is at
// most maxRunes runes long, with an ellipsis when cut. maxRunes <= 0 means
// no limit.
func Summary(body []byte, maxRunes int) string {
	s := PlainText(body)
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:maxRunes-1])
	// Keep the last word when the next rune starts a new one.
	if !unicode.IsSpace(runes[maxRunes-1]) {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// FirstImage returns the destination of the first image in body, or "".
func FirstImage(body []byte) string {
	var dest string
	_ = gmast.Walk(Parse(body), func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if img, ok := n.(*gmast.Image); ok && entering {
			dest = string(img.Destination)
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return dest
}

// Render converts body to HTML. Raw HTML in the source is omitted.
func Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
