// Package contenttest holds a behavioral test suite shared by content.Store backends.
package contenttest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

// RunStoreSuite exercises the content.Store contract against the backend built by newStore.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) content.Store) {
	t.Helper()

	t.Run("get missing item", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(t.Context(), "/plone/missing")
		require.Error(t, err)
		require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	})

	t.Run("put and get round trip", func(t *testing.T) {
		store := newStore(t)
		item := sampleItem("foo", content.StatePublished, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC))
		item.CanonicalURL = content.StringPtr("http://example.org/plone/foo")
		require.NoError(t, store.Put(t.Context(), item))

		got, err := store.Get(t.Context(), "/plone/foo")
		require.NoError(t, err)
		require.Equal(t, item.UID, got.UID)
		require.Equal(t, item.Title, got.Title)
		require.Equal(t, item.Text, got.Text)
		require.Equal(t, content.StatePublished, got.State)
		require.True(t, item.EffectiveDate.Equal(got.EffectiveDate))
		require.NotNil(t, got.CanonicalURL)
		require.Equal(t, "http://example.org/plone/foo", *got.CanonicalURL)
	})

	t.Run("put replaces and clears canonical url", func(t *testing.T) {
		store := newStore(t)
		item := sampleItem("foo", content.StatePublished, time.Time{})
		item.CanonicalURL = content.StringPtr("http://example.org/plone/foo")
		require.NoError(t, store.Put(t.Context(), item))

		item.CanonicalURL = nil
		item.Title = "Renamed"
		require.NoError(t, store.Put(t.Context(), item))

		got, err := store.Get(t.Context(), "/plone/foo")
		require.NoError(t, err)
		require.Nil(t, got.CanonicalURL)
		require.Equal(t, "Renamed", got.Title)
		require.True(t, got.EffectiveDate.IsZero())
	})

	t.Run("find filters", func(t *testing.T) {
		store := newStore(t)
		cutoff := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.Put(t.Context(), sampleItem("foo", content.StatePublished, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC))))
		require.NoError(t, store.Put(t.Context(), sampleItem("bar", content.StatePublished, cutoff)))
		require.NoError(t, store.Put(t.Context(), sampleItem("baz", content.StatePrivate, time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC))))
		doc := sampleItem("doc", content.StatePublished, time.Time{})
		doc.Type = "Document"
		require.NoError(t, store.Put(t.Context(), doc))

		published, err := store.Find(t.Context(), content.Query{State: content.StatePublished})
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"foo", "bar", "doc"}, ids(published))

		before, err := store.Find(t.Context(), content.Query{State: content.StatePublished, EffectiveBefore: cutoff})
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"foo", "doc"}, ids(before))

		news, err := store.Find(t.Context(), content.Query{Types: []string{"News Item"}})
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"foo", "bar", "baz"}, ids(news))

		all, err := store.Find(t.Context(), content.Query{PathPrefix: "/plone"})
		require.NoError(t, err)
		require.Len(t, all, 4)

		none, err := store.Find(t.Context(), content.Query{PathPrefix: "/plone/foo"})
		require.NoError(t, err)
		require.Equal(t, []string{"foo"}, ids(none))
	})

	t.Run("effective dates far in the past", func(t *testing.T) {
		store := newStore(t)
		floor := time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.Put(t.Context(), sampleItem("old", content.StatePublished, floor)))
		require.NoError(t, store.Put(t.Context(), sampleItem("late", content.StatePublished, time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC))))

		got, err := store.Get(t.Context(), "/plone/old")
		require.NoError(t, err)
		require.True(t, floor.Equal(got.EffectiveDate), "got %s", got.EffectiveDate)

		cutoff := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
		before, err := store.Find(t.Context(), content.Query{State: content.StatePublished, EffectiveBefore: cutoff})
		require.NoError(t, err)
		require.Equal(t, []string{"old"}, ids(before))
	})

	t.Run("reindex is idempotent", func(t *testing.T) {
		store := newStore(t)
		item := sampleItem("foo", content.StatePublished, time.Time{})
		require.NoError(t, store.Put(t.Context(), item))
		require.NoError(t, store.Reindex(t.Context(), item))
		require.NoError(t, store.Reindex(t.Context(), item))

		got, err := store.Get(t.Context(), "/plone/foo")
		require.NoError(t, err)
		require.Equal(t, item.UID, got.UID)
	})
}

func sampleItem(id string, state content.State, effective time.Time) *content.Item {
	created := time.Date(2014, 6, 1, 12, 0, 0, 0, time.UTC)
	return &content.Item{
		UID:           "uid-" + id,
		ID:            id,
		Type:          "News Item",
		Title:         "Title " + id,
		Description:   "Description " + id,
		Text:          "Some *markdown* for " + id + ".\n",
		Path:          "/plone/" + id,
		State:         state,
		EffectiveDate: effective,
		Created:       created,
		Modified:      created,
	}
}

func ids(items []*content.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
