// Package mdstore persists content items as Markdown files with YAML front
// matter. The item at /plone/news/foo lives in <root>/plone/news/foo.md.
package mdstore

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/frontmatter"
)

const ext = ".md"

// Front matter keys.
const (
	fieldUID          = "uid"
	fieldType         = "type"
	fieldTitle        = "title"
	fieldDescription  = "description"
	fieldState        = "state"
	fieldEffective    = "effective"
	fieldCanonicalURL = "canonical_url"
	fieldCreated      = "created"
	fieldModified     = "modified"
)

// Store implements content.Store on a directory tree.
type Store struct {
	root string
	mu   sync.RWMutex

	// writes counts files actually written, for observing skipped saves.
	writes int
}

// Open uses dir as the content root, creating it when missing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "create content directory").
			WithContext("path", dir).
			Build()
	}
	return &Store{root: dir}, nil
}

func (s *Store) file(path string) string {
	segs := content.SplitPath(path)
	return filepath.Join(s.root, filepath.Join(segs...)+ext)
}

func (s *Store) Get(_ context.Context, path string) (*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(content.JoinPath(path))
}

func (s *Store) read(path string) (*content.Item, error) {
	data, err := os.ReadFile(s.file(path))
	if os.IsNotExist(err) {
		return nil, content.ErrNotFound.WithContext("path", path)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "read content file").
			WithContext("path", path).
			Build()
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "parse content file").
			WithContext("path", path).
			Build()
	}
	return fromDocument(path, doc), nil
}

// Put writes the item unless the file already holds identical content, as
// judged by the front matter fingerprint.
func (s *Store) Put(_ context.Context, item *content.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := toDocument(item)
	target := s.file(item.Path)
	if existing, err := os.ReadFile(target); err == nil {
		if old, err := frontmatter.Parse(existing); err == nil {
			doc.Newline = old.Newline
			fp, err := doc.Fingerprint()
			if err == nil && fp == old.StoredFingerprint() {
				return nil
			}
		}
	}
	if _, err := doc.UpdateFingerprint(); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "fingerprint content item").Build()
	}
	data, err := doc.Render()
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "render content file").Build()
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "create content directory").Build()
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "write content file").
			WithContext("path", item.Path).
			Build()
	}
	if err := os.Rename(tmp, target); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "replace content file").
			WithContext("path", item.Path).
			Build()
	}
	s.writes++
	return nil
}

func (s *Store) Find(_ context.Context, q content.Query) ([]*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []*content.Item
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ext) {
			return nil
		}
		rel, err := filepath.Rel(s.root, strings.TrimSuffix(p, ext))
		if err != nil {
			return err
		}
		item, err := s.read(content.JoinPath(filepath.ToSlash(rel)))
		if err != nil {
			return err
		}
		if q.Matches(item) {
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "walk content directory").Build()
	}
	return items, nil
}

// Reindex refreshes the stored fingerprint when the file was edited by hand.
func (s *Store) Reindex(_ context.Context, item *content.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.file(item.Path)
	data, err := os.ReadFile(target)
	if os.IsNotExist(err) {
		return content.ErrNotFound.WithContext("path", item.Path)
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "read content file").Build()
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "parse content file").Build()
	}
	changed, err := doc.UpdateFingerprint()
	if err != nil || !changed {
		return err
	}
	out, err := doc.Render()
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "render content file").Build()
	}
	if bytes.Equal(out, data) {
		return nil
	}
	if err := os.WriteFile(target, out, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "write content file").Build()
	}
	s.writes++
	return nil
}

// Writes returns the number of files written so far.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *Store) Close() error { return nil }

func toDocument(item *content.Item) *frontmatter.Document {
	doc := &frontmatter.Document{
		Fields: map[string]any{
			fieldUID:   item.UID,
			fieldType:  item.Type,
			fieldTitle: item.Title,
			fieldState: string(item.State),
		},
		Body: []byte(item.Text),
	}
	if item.Description != "" {
		doc.Fields[fieldDescription] = item.Description
	}
	if item.CanonicalURL != nil {
		doc.Fields[fieldCanonicalURL] = *item.CanonicalURL
	}
	doc.SetTime(fieldEffective, item.EffectiveDate)
	doc.SetTime(fieldCreated, item.Created)
	doc.SetTime(fieldModified, item.Modified)
	return doc
}

func fromDocument(path string, doc *frontmatter.Document) *content.Item {
	segs := content.SplitPath(path)
	item := &content.Item{
		UID:           doc.String(fieldUID),
		ID:            segs[len(segs)-1],
		Type:          doc.String(fieldType),
		Title:         doc.String(fieldTitle),
		Description:   doc.String(fieldDescription),
		Text:          string(doc.Body),
		Path:          path,
		State:         content.State(doc.String(fieldState)),
		EffectiveDate: doc.Time(fieldEffective),
		Created:       doc.Time(fieldCreated),
		Modified:      doc.Time(fieldModified),
	}
	if v, ok := doc.Fields[fieldCanonicalURL].(string); ok {
		item.CanonicalURL = content.StringPtr(v)
	}
	if item.State == "" {
		item.State = content.StatePrivate
	}
	return item
}
