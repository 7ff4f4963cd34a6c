package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/config"
	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/history"
	"git.home.luguber.info/inful/sociallike/internal/metrics"
	"git.home.luguber.info/inful/sociallike/internal/registry"
	"git.home.luguber.info/inful/sociallike/internal/server/responses"
)

type harness struct {
	server     *Server
	handler    http.Handler
	repo       *content.Repository
	registry   *registry.Store
	projection *history.Projection
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := t.Context()

	repo := content.NewRepository(content.NewMemoryStore(), "plone")
	for id, effective := range map[string]time.Time{
		"foo": time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC),
		"bar": time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC),
		"baz": time.Now().UTC(),
	} {
		item, err := repo.Create(ctx, "/plone", "News Item", id, strings.ToUpper(id))
		require.NoError(t, err)
		item.Text = "Body of *" + id + "*.\n"
		require.NoError(t, repo.Transition(ctx, item, content.TransitionPublish))
		require.NoError(t, repo.SetEffective(ctx, item, effective))
	}

	reg := registry.NewMemoryRegistry()
	require.NoError(t, reg.Set(ctx, registry.InterfaceSocialLike, registry.RecordCanonicalDomain, "https://example.org"))

	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	projection := history.NewProjection(store, 10)
	recorder := history.NewRecorder(store, projection)

	promReg := prom.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	updater := canonical.NewUpdater(repo, canonical.WithObservers(recorder), canonical.WithLogger(logger))

	s := New(config.ServerConfig{Addr: "127.0.0.1:0"}, Deps{
		Content:        repo,
		Registry:       reg,
		Updater:        updater,
		History:        recorder,
		Projection:     projection,
		Metrics:        metrics.NewPrometheusRecorder(promReg),
		MetricsHandler: metrics.HTTPHandler(promReg),
	}, Options{SiteTitle: "Example", MetricsPath: "/metrics"}, logger)

	return &harness{server: s, handler: s.Handler(), repo: repo, registry: reg, projection: projection}
}

func (h *harness) do(t *testing.T, method, target string, body io.Reader, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func (h *harness) socialMetadata(t *testing.T, target string) responses.SocialMetadataResponse {
	t.Helper()
	w := h.do(t, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out responses.SocialMetadataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSplitView(t *testing.T) {
	tests := []struct{ in, path, view string }{
		{"/plone/foo", "/plone/foo", ""},
		{"/plone/foo/@@social-metadata", "/plone/foo/", "social-metadata"},
		{"/@@registry", "/", "registry"},
		{"/plone/@@canonical-url-updater/", "/plone/", "canonical-url-updater"},
	}
	for _, tt := range tests {
		path, view := splitView(tt.in)
		require.Equal(t, tt.path, path, tt.in)
		require.Equal(t, tt.view, view, tt.in)
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestItemView(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/plone/foo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `<link rel="canonical" href="https://example.org/plone/foo"/>`)
	require.Contains(t, body, `<meta property="og:title" content="FOO"/>`)
	require.Contains(t, body, `<meta property="og:site_name" content="Example"/>`)
	require.Contains(t, body, "<em>foo</em>")
	require.Contains(t, body, "share-facebook")
}

func TestSocialMetadataView(t *testing.T) {
	h := newHarness(t)

	out := h.socialMetadata(t, "/plone/foo/@@social-metadata")
	require.True(t, out.Enabled)
	require.Equal(t, "https://example.org/plone/foo", *out.CanonicalURL)
	require.Equal(t, "http://example.com/plone/foo", out.AbsoluteURL)

	out = h.socialMetadata(t, "/VirtualHostBase/http/bar.com:80/plone/VirtualHostRoot/foo/@@social-metadata")
	require.Equal(t, "https://example.org/foo", *out.CanonicalURL)
	require.Equal(t, "http://bar.com/foo", out.AbsoluteURL)
}

func TestSocialMetadataView_NoDomain(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.registry.Set(t.Context(), registry.InterfaceSocialLike, registry.RecordCanonicalDomain, ""))

	out := h.socialMetadata(t, "/plone/foo/@@social-metadata")
	require.Nil(t, out.CanonicalURL)
	require.Empty(t, out.Metadata.Buttons)
}

func TestUpdaterView_Form(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/plone/@@canonical-url-updater", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `name="old_canonical_domain"`)
	require.Contains(t, w.Body.String(), "<code>https://example.org</code>")

	form := url.Values{"old_canonical_domain": {"http://example.org"}, "published_before": {"2017-01-01"}}
	w = h.do(t, http.MethodPost, "/plone/@@canonical-url-updater", strings.NewReader(form.Encode()),
		"Content-Type", "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "Canonical URL updated for 2 items")

	require.Equal(t, "http://example.org/plone/foo", *h.socialMetadata(t, "/plone/foo/@@social-metadata").CanonicalURL)
	require.Equal(t, "http://example.org/plone/bar", *h.socialMetadata(t, "/plone/bar/@@social-metadata").CanonicalURL)
	require.Equal(t, "https://example.org/plone/baz", *h.socialMetadata(t, "/plone/baz/@@social-metadata").CanonicalURL)

	batches := h.projection.Batches()
	require.Len(t, batches, 1)
	require.Equal(t, TriggerWeb, batches[0].Trigger)
	require.Equal(t, 2, batches[0].Updated)
}

func TestUpdaterView_JSON(t *testing.T) {
	h := newHarness(t)

	body := `{"old_canonical_domain":"http://example.org/","published_before":"2017-01-01"}`
	w := h.do(t, http.MethodPost, "/plone/@@canonical-url-updater", strings.NewReader(body), "Content-Type", "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out responses.UpdateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, "http://example.org", out.OldCanonicalDomain)
	require.Equal(t, 2, out.Result.Updated)
	require.Equal(t, 1, out.Result.AfterCutoff)

	// repeat is a no-op
	w = h.do(t, http.MethodPost, "/plone/@@canonical-url-updater", strings.NewReader(body), "Content-Type", "application/json")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, 0, out.Result.Updated)
	require.Equal(t, 2, out.Result.Unchanged)

	foo, err := h.repo.Get(t.Context(), "/plone/foo")
	require.NoError(t, err)
	w = h.do(t, http.MethodGet, "/plone/foo/@@canonical-url-history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist responses.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.Len(t, hist.Entries, 1)
	require.Equal(t, "http://example.org/plone/foo", hist.Entries[0].Current)
	require.Equal(t, foo.Path, hist.Path)
}

func TestUpdaterView_Invalid(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/plone/@@canonical-url-updater",
		strings.NewReader(`{"old_canonical_domain":"example.org","published_before":"2017-01-01"}`),
		"Content-Type", "application/json")
	require.Equal(t, http.StatusBadRequest, w.Code)

	form := url.Values{"old_canonical_domain": {"http://example.org"}}
	w = h.do(t, http.MethodPost, "/plone/@@canonical-url-updater", strings.NewReader(form.Encode()),
		"Content-Type", "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "published before date is required")

	foo, err := h.repo.Get(t.Context(), "/plone/foo")
	require.NoError(t, err)
	require.Nil(t, foo.CanonicalURL)
}

func TestRegistryView(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPut, "/plone/@@registry?record=twitter_username", strings.NewReader(`{"value":"@example"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rec responses.RegistryRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	require.Equal(t, "example", rec.Value)

	w = h.do(t, http.MethodGet, "/plone/@@registry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []responses.RegistryRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	require.Len(t, all, len(registry.SocialLikeSchema.Fields))

	w = h.do(t, http.MethodPut, "/plone/@@registry?record=canonical_domain", strings.NewReader(`{"value":"ftp://x"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/plone/@@registry?record=nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTraversalErrors(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/plone/missing", nil).Code)
	require.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/other/foo", nil).Code)
	require.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/plone/foo/@@nope", nil).Code)
	require.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/plone/foo/@@canonical-url-updater", nil).Code)
	require.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/VirtualHostBase/gopher/x/plone", nil).Code)

	w := h.do(t, http.MethodDelete, "/plone/foo", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, "GET", w.Header().Get("Allow"))
}

func TestListingAndMetrics(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/plone", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Less(t, strings.Index(body, "BAZ"), strings.Index(body, "FOO"))
	require.Contains(t, body, `href="http://example.com/plone/foo"`)

	w = h.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `sociallike_http_request_duration_seconds_count{status="200",view="listing"} 1`)
}
