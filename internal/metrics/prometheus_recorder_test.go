package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveBatchDuration(150 * time.Millisecond)
	pr.IncBatchOutcome(BatchSuccess)
	pr.AddItemResults(ItemUpdated, 2)
	pr.AddItemResults(ItemAfterCutoff, 1)
	pr.AddItemResults(ItemSkipped, 0)
	pr.IncObserverFailure("nats")
	pr.IncRegistryWrite("canonical_domain")
	pr.IncNotification(true)
	pr.IncNotification(false)
	pr.ObserveHTTPRequest("canonical-url-updater", 200, 20*time.Millisecond)

	require.InDelta(t, 2, testutil.ToFloat64(pr.itemResults.WithLabelValues("updated")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.itemResults.WithLabelValues("after_cutoff")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.batchOutcomes.WithLabelValues("success")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.notifications.WithLabelValues("failed")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncBatchOutcome(BatchFailed)
	pr.ObserveHTTPRequest("x", 500, time.Second)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncRegistryWrite("canonical_domain")

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "sociallike_registry_writes_total"))
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
