package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/metrics"
	"git.home.luguber.info/inful/sociallike/internal/observability"
)

type httpObservation struct {
	view   string
	status int
}

type recordingRecorder struct {
	metrics.NoopRecorder
	seen []httpObservation
}

func (r *recordingRecorder) ObserveHTTPRequest(view string, status int, _ time.Duration) {
	r.seen = append(r.seen, httpObservation{view, status})
}

func TestChain_LabelsView(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	rec := &recordingRecorder{}

	h := Chain(logger, errors.NewHTTPErrorAdapter(logger), rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetView(r, "item")
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plone/foo", nil))

	require.Equal(t, http.StatusTeapot, w.Code)
	require.Equal(t, []httpObservation{{"item", http.StatusTeapot}}, rec.seen)
	require.Contains(t, logs.String(), "view=item")
}

func TestChain_RecoversPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rec := &recordingRecorder{}
	h := Chain(logger, errors.NewHTTPErrorAdapter(logger), rec)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "internal server error")
	require.Equal(t, "unknown", rec.seen[0].view)
}

func TestChain_RequestID(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	var seen string
	h := Chain(logger, errors.NewHTTPErrorAdapter(logger), nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = observability.FromContext(r.Context()).RequestID
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "req-42", seen)
	require.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	require.Contains(t, logs.String(), "request.id=req-42")
}
