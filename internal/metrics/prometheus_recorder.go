package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sociallike"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	batchDuration    prom.Histogram
	batchOutcomes    *prom.CounterVec
	itemResults      *prom.CounterVec
	observerFailures *prom.CounterVec
	registryWrites   *prom.CounterVec
	notifications    *prom.CounterVec
	httpDuration     *prom.HistogramVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		batchDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "canonical_batch_duration_seconds",
			Help:      "Duration of canonical URL batch updates",
			Buckets:   prom.DefBuckets,
		}),
		batchOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "canonical_batches_total",
			Help:      "Canonical URL batch updates by outcome",
		}, []string{"outcome"}),
		itemResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "canonical_items_total",
			Help:      "Items visited by canonical URL batches by result",
		}, []string{"result"}),
		observerFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "canonical_observer_failures_total",
			Help:      "Change observers that failed to handle a canonical URL change",
		}, []string{"observer"}),
		registryWrites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "registry_writes_total",
			Help:      "Registry record writes",
		}, []string{"record"}),
		notifications: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reindex_notifications_total",
			Help:      "Reindex notifications published by result",
		}, []string{"result"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by view and status",
			Buckets:   prom.DefBuckets,
		}, []string{"view", "status"}),
	}
	reg.MustRegister(pr.batchDuration, pr.batchOutcomes, pr.itemResults, pr.observerFailures,
		pr.registryWrites, pr.notifications, pr.httpDuration)
	return pr
}

func (p *PrometheusRecorder) ObserveBatchDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.batchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBatchOutcome(outcome BatchOutcome) {
	if p == nil {
		return
	}
	p.batchOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddItemResults(result ItemResult, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.itemResults.WithLabelValues(string(result)).Add(float64(n))
}

func (p *PrometheusRecorder) IncObserverFailure(observer string) {
	if p == nil {
		return
	}
	p.observerFailures.WithLabelValues(observer).Inc()
}

func (p *PrometheusRecorder) IncRegistryWrite(record string) {
	if p == nil {
		return
	}
	p.registryWrites.WithLabelValues(record).Inc()
}

func (p *PrometheusRecorder) IncNotification(success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.notifications.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(view string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpDuration.WithLabelValues(view, strconv.Itoa(status)).Observe(d.Seconds())
}
