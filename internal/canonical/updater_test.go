package canonical

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/vhost"
)

var cutoff = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	repo  *content.Repository
	store *content.MemoryStore
	items map[string]*content.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := content.NewMemoryStore()
	f := &fixture{
		repo:  content.NewRepository(store, "plone"),
		store: store,
		items: map[string]*content.Item{},
	}
	f.add(t, "foo", time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), true)
	f.add(t, "bar", time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC), true)
	f.add(t, "baz", time.Now(), true)
	return f
}

func (f *fixture) add(t *testing.T, id string, effective time.Time, publish bool) *content.Item {
	t.Helper()
	ctx := t.Context()
	item, err := f.repo.Create(ctx, "/plone", "News Item", id, id)
	require.NoError(t, err)
	if publish {
		require.NoError(t, f.repo.Transition(ctx, item, content.TransitionPublish))
	}
	if !effective.IsZero() {
		require.NoError(t, f.repo.SetEffective(ctx, item, effective))
	}
	f.items[id] = item
	return item
}

func (f *fixture) canonical(t *testing.T, id, liveDomain string) *string {
	t.Helper()
	item, err := f.repo.Get(t.Context(), "/plone/"+id)
	require.NoError(t, err)
	return Resolve(vhost.Identity(), item, liveDomain)
}

func TestUpdateCanonicalURL_DomainMove(t *testing.T) {
	f := newFixture(t)
	const live = "https://example.org"

	res, err := NewUpdater(f.repo).UpdateCanonicalURL(t.Context(), vhost.Identity(), live, UpdateRequest{
		OldCanonicalDomain: "http://example.org",
		PublishedBefore:    cutoff,
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Updated)
	require.Equal(t, 1, res.AfterCutoff)
	require.Len(t, res.Changes, 2)

	require.Equal(t, "http://example.org/plone/foo", *f.canonical(t, "foo", live))
	require.Equal(t, "http://example.org/plone/bar", *f.canonical(t, "bar", live))
	require.Equal(t, "https://example.org/plone/baz", *f.canonical(t, "baz", live))

	baz, err := f.repo.Get(t.Context(), "/plone/baz")
	require.NoError(t, err)
	require.Nil(t, baz.CanonicalURL)
}

func TestUpdateCanonicalURL_Idempotent(t *testing.T) {
	f := newFixture(t)
	u := NewUpdater(f.repo)
	req := UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: cutoff}

	_, err := u.UpdateCanonicalURL(t.Context(), vhost.Identity(), "https://example.org", req)
	require.NoError(t, err)
	reindexed := f.store.ReindexCount("/plone/foo")

	res, err := u.UpdateCanonicalURL(t.Context(), vhost.Identity(), "https://example.org", req)
	require.NoError(t, err)
	require.Zero(t, res.Updated)
	require.Equal(t, 2, res.Unchanged)
	require.Empty(t, res.Changes)
	require.Equal(t, reindexed, f.store.ReindexCount("/plone/foo"))
	require.Equal(t, "http://example.org/plone/foo", *f.canonical(t, "foo", "https://example.org"))
}

func TestUpdateCanonicalURL_CutoffIsExclusive(t *testing.T) {
	f := newFixture(t)
	f.add(t, "edge", cutoff, true)

	res, err := NewUpdater(f.repo).UpdateCanonicalURL(t.Context(), vhost.Identity(), "https://example.org",
		UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: cutoff})
	require.NoError(t, err)
	require.Equal(t, 2, res.AfterCutoff)

	edge, err := f.repo.Get(t.Context(), "/plone/edge")
	require.NoError(t, err)
	require.Nil(t, edge.CanonicalURL)
}

func TestUpdateCanonicalURL_SkipsWithoutCanonicalURL(t *testing.T) {
	f := newFixture(t)

	res, err := NewUpdater(f.repo).UpdateCanonicalURL(t.Context(), vhost.Identity(), "",
		UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: cutoff})
	require.NoError(t, err)
	require.Equal(t, 2, res.Skipped)
	require.Zero(t, res.Updated)
	require.Nil(t, f.canonical(t, "foo", ""))
}

func TestUpdateCanonicalURL_PinnedValueIsRepinned(t *testing.T) {
	f := newFixture(t)
	foo := f.items["foo"]
	foo.CanonicalURL = content.StringPtr("https://elsewhere.test/foo")
	require.NoError(t, f.repo.Save(t.Context(), foo))

	res, err := NewUpdater(f.repo).UpdateCanonicalURL(t.Context(), vhost.Identity(), "",
		UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: cutoff})
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)
	require.Equal(t, 1, res.Skipped)
	require.Equal(t, "https://elsewhere.test/foo", *res.Changes[0].Previous)
	require.Equal(t, "http://example.org/plone/foo", *f.canonical(t, "foo", ""))
}

func TestUpdateCanonicalURL_IgnoresUnpublished(t *testing.T) {
	f := newFixture(t)
	f.add(t, "draft", time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), false)
	f.add(t, "undated", time.Time{}, true)

	res, err := NewUpdater(f.repo).UpdateCanonicalURL(t.Context(), vhost.Identity(), "https://example.org",
		UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: cutoff})
	require.NoError(t, err)
	require.Equal(t, 3, res.Updated)

	draft, err := f.repo.Get(t.Context(), "/plone/draft")
	require.NoError(t, err)
	require.Nil(t, draft.CanonicalURL)
	require.Equal(t, "http://example.org/plone/undated", *f.canonical(t, "undated", ""))
}

func TestUpdateCanonicalURL_VirtualHost(t *testing.T) {
	f := newFixture(t)
	rc, err := vhost.Traverse("/VirtualHostBase/http/bar.com/plone/VirtualHostRoot/")
	require.NoError(t, err)

	_, err = NewUpdater(f.repo).UpdateCanonicalURL(t.Context(), rc, "https://bar.com",
		UpdateRequest{OldCanonicalDomain: "http://old.bar.com", PublishedBefore: cutoff})
	require.NoError(t, err)
	require.Equal(t, "http://old.bar.com/foo", *f.canonical(t, "foo", ""))
}

func TestUpdateCanonicalURL_ObserverFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t)
	var seen []Change
	failing := ObserverFunc("failing", func(context.Context, Change) error {
		return stderrors.New("unreachable")
	})
	recording := ObserverFunc("recording", func(_ context.Context, c Change) error {
		seen = append(seen, c)
		return nil
	})

	res, err := NewUpdater(f.repo, WithObservers(failing, recording)).UpdateCanonicalURL(
		t.Context(), vhost.Identity(), "https://example.org",
		UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: cutoff})
	require.NoError(t, err)
	require.Equal(t, 2, res.Updated)
	require.Len(t, seen, 2)
	require.NotNil(t, seen[0].Previous)
	require.Contains(t, *seen[0].Previous, "https://example.org/plone/")
}

type failingStore struct {
	*content.Repository
}

func (failingStore) Save(context.Context, *content.Item) error {
	return errors.StorageError("disk full").Build()
}

func TestUpdateCanonicalURL_StoreErrorPropagates(t *testing.T) {
	f := newFixture(t)

	_, err := NewUpdater(failingStore{f.repo}).UpdateCanonicalURL(t.Context(), vhost.Identity(), "https://example.org",
		UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: cutoff})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryStorage))

	foo, err := f.repo.Get(t.Context(), "/plone/foo")
	require.NoError(t, err)
	require.Nil(t, foo.CanonicalURL)
}

func TestUpdateCanonicalURL_Canceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewUpdater(f.repo).UpdateCanonicalURL(ctx, vhost.Identity(), "https://example.org",
		UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: cutoff})
	require.Error(t, err)
}

type failingReindex struct {
	*content.Repository
}

func (failingReindex) Reindex(context.Context, *content.Item) error {
	return errors.StorageError("catalog unavailable").Build()
}

func TestUpdateCanonicalURL_ReindexErrorReportsSavedPin(t *testing.T) {
	f := newFixture(t)
	var seen []Change
	recording := ObserverFunc("recording", func(_ context.Context, c Change) error {
		seen = append(seen, c)
		return nil
	})

	res, err := NewUpdater(failingReindex{f.repo}, WithObservers(recording)).UpdateCanonicalURL(
		t.Context(), vhost.Identity(), "https://example.org",
		UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: cutoff})
	require.True(t, errors.HasCategory(err, errors.CategoryStorage))
	require.NotNil(t, res)
	require.Equal(t, 1, res.Updated)
	require.Len(t, res.Changes, 1)
	require.Equal(t, res.Changes, seen)

	item, err := f.repo.Get(t.Context(), res.Changes[0].Path)
	require.NoError(t, err)
	require.Equal(t, res.Changes[0].Current, *item.CanonicalURL)
}

func TestUpdateCanonicalURL_PortalTypes(t *testing.T) {
	f := newFixture(t)
	doc, err := f.repo.Create(t.Context(), "/plone", "Document", "about", "About")
	require.NoError(t, err)
	require.NoError(t, f.repo.Transition(t.Context(), doc, content.TransitionPublish))
	req := UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: cutoff}

	newsOnly := WithPortalTypes(func(context.Context) ([]string, error) { return []string{"News Item"}, nil })
	res, err := NewUpdater(f.repo, newsOnly).UpdateCanonicalURL(t.Context(), vhost.Identity(), "https://example.org", req)
	require.NoError(t, err)
	require.Equal(t, 2, res.Updated)
	require.Equal(t, "https://example.org/plone/about", *f.canonical(t, "about", "https://example.org"))

	allTypes := WithPortalTypes(func(context.Context) ([]string, error) { return nil, nil })
	res, err = NewUpdater(f.repo, allTypes).UpdateCanonicalURL(t.Context(), vhost.Identity(), "https://example.org", req)
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)
	require.Equal(t, "http://example.org/plone/about", *f.canonical(t, "about", "https://example.org"))

	broken := WithPortalTypes(func(context.Context) ([]string, error) {
		return nil, errors.RegistryError("registry offline").Build()
	})
	_, err = NewUpdater(f.repo, broken).UpdateCanonicalURL(t.Context(), vhost.Identity(), "https://example.org", req)
	require.True(t, errors.HasCategory(err, errors.CategoryRegistry))
}
