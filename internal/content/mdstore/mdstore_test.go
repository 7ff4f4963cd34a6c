package mdstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/content/contenttest"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestStoreSuite(t *testing.T) {
	contenttest.RunStoreSuite(t, func(t *testing.T) content.Store { return newStore(t) })
}

func TestFileLayout(t *testing.T) {
	s := newStore(t)
	item := &content.Item{
		UID: "u1", ID: "foo", Type: "News Item", Title: "Foo", Path: "/plone/news/foo",
		State: content.StatePublished, Text: "Hello\n",
		EffectiveDate: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		CanonicalURL:  content.StringPtr("http://example.org/plone/news/foo"),
	}
	require.NoError(t, s.Put(t.Context(), item))

	data, err := os.ReadFile(filepath.Join(s.root, "plone", "news", "foo.md"))
	require.NoError(t, err)
	require.Contains(t, string(data), "canonical_url: http://example.org/plone/news/foo\n")
	require.Contains(t, string(data), "fingerprint: ")
	require.Contains(t, string(data), "---\nHello\n")
}

func TestPutSkipsUnchangedContent(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()
	item := &content.Item{UID: "u1", ID: "foo", Type: "Document", Title: "Foo", Path: "/plone/foo", State: content.StatePrivate}
	require.NoError(t, s.Put(ctx, item))
	require.Equal(t, 1, s.Writes())

	item.Modified = time.Now()
	require.NoError(t, s.Put(ctx, item))
	require.Equal(t, 1, s.Writes(), "only the modification stamp changed")

	item.CanonicalURL = content.StringPtr("http://example.org/plone/foo")
	require.NoError(t, s.Put(ctx, item))
	require.Equal(t, 2, s.Writes())
}

func TestReindexRepairsHandEditedFile(t *testing.T) {
	s := newStore(t)
	ctx := t.Context()
	item := &content.Item{UID: "u1", ID: "foo", Type: "Document", Title: "Foo", Path: "/plone/foo", State: content.StatePrivate, Text: "One\n"}
	require.NoError(t, s.Put(ctx, item))
	require.NoError(t, s.Reindex(ctx, item))
	require.Equal(t, 1, s.Writes())

	file := filepath.Join(s.root, "plone", "foo.md")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, append(data, []byte("Two\n")...), 0o600))

	require.NoError(t, s.Reindex(ctx, item))
	require.Equal(t, 2, s.Writes())

	got, err := s.Get(ctx, "/plone/foo")
	require.NoError(t, err)
	require.Equal(t, "One\nTwo\n", got.Text)
}
