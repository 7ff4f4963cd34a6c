// Package frontmatter reads and writes Markdown documents with YAML front
// matter and computes their content fingerprints.
package frontmatter

import (
	"bytes"
	"time"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

const delimiter = "---"

// ErrMissingClosingDelimiter indicates the document opened a front matter
// block that is never closed.
var ErrMissingClosingDelimiter = errors.ValidationError("front matter closing delimiter is missing").Build()

// Document is a parsed Markdown file.
type Document struct {
	Fields map[string]any
	Body   []byte
	// Newline is "\n" or "\r\n", detected on parse and reused on render.
	Newline string
}

// Parse splits content into front matter fields and body. Content without a
// front matter block yields empty fields and the whole input as body.
func Parse(content []byte) (*Document, error) {
	nl := detectNewline(content)
	doc := &Document{Fields: map[string]any{}, Newline: nl}

	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		doc.Body = content
		return doc, nil
	}
	rest := content[len(open):]

	var raw []byte
	if bytes.HasPrefix(rest, open) {
		doc.Body = rest[len(open):]
	} else {
		closing := []byte(nl + delimiter + nl)
		idx := bytes.Index(rest, closing)
		if idx < 0 {
			return nil, ErrMissingClosingDelimiter
		}
		raw = rest[:idx+len(nl)]
		doc.Body = rest[idx+len(closing):]
	}

	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &doc.Fields); err != nil {
			return nil, errors.WrapError(err, errors.CategoryValidation, "invalid front matter").Build()
		}
		if doc.Fields == nil {
			doc.Fields = map[string]any{}
		}
	}
	return doc, nil
}

// Render serializes the document. Keys are emitted sorted so output is stable.
func (d *Document) Render() ([]byte, error) {
	nl := d.Newline
	if nl == "" {
		nl = "\n"
	}
	raw, err := Serialize(d.Fields, nl)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(delimiter + nl)
	buf.Write(raw)
	buf.WriteString(delimiter + nl)
	buf.Write(d.Body)
	return buf.Bytes(), nil
}

// FingerprintExcluded lists fields ignored by Fingerprint. They change on
// every save without the content changing.
var FingerprintExcluded = []string{mdfp.FingerprintField, "modified"}

// Fingerprint returns the mdfp fingerprint of the fields (minus
// FingerprintExcluded) and body.
func (d *Document) Fingerprint() (string, error) {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	for _, k := range FingerprintExcluded {
		delete(fields, k)
	}

	fm := ""
	if len(fields) > 0 {
		raw, err := Serialize(fields, "\n")
		if err != nil {
			return "", err
		}
		fm = string(bytes.TrimSuffix(raw, []byte("\n")))
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(d.Body)), nil
}

// StoredFingerprint returns the fingerprint recorded in the fields, if any.
func (d *Document) StoredFingerprint() string {
	return d.String(mdfp.FingerprintField)
}

// UpdateFingerprint stores the current fingerprint in the fields and
// reports whether it changed.
func (d *Document) UpdateFingerprint() (bool, error) {
	fp, err := d.Fingerprint()
	if err != nil {
		return false, err
	}
	changed := d.StoredFingerprint() != fp
	d.Fields[mdfp.FingerprintField] = fp
	return changed, nil
}

// String returns a string field or "".
func (d *Document) String(key string) string {
	s, _ := d.Fields[key].(string)
	return s
}

// Time returns a time field, accepting native YAML timestamps and RFC 3339
// strings. Missing or malformed values yield the zero time.
func (d *Document) Time(key string) time.Time {
	switch v := d.Fields[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

// SetTime stores t in RFC 3339 form, or removes the field for the zero time.
func (d *Document) SetTime(key string, t time.Time) {
	if t.IsZero() {
		delete(d.Fields, key)
		return
	}
	d.Fields[key] = t.UTC().Format(time.RFC3339Nano)
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
