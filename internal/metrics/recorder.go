package metrics

import "time"

// ItemResult enumerates what a batch did with a single item.
type ItemResult string

const (
	ItemUpdated     ItemResult = "updated"
	ItemUnchanged   ItemResult = "unchanged"
	ItemSkipped     ItemResult = "skipped"
	ItemAfterCutoff ItemResult = "after_cutoff"
)

// BatchOutcome enumerates final batch statuses.
type BatchOutcome string

const (
	BatchSuccess  BatchOutcome = "success"
	BatchFailed   BatchOutcome = "failed"
	BatchCanceled BatchOutcome = "canceled"
)

// Recorder defines observability hooks. Implementations may forward to
// Prometheus or anything else.
type Recorder interface {
	ObserveBatchDuration(d time.Duration)
	IncBatchOutcome(outcome BatchOutcome)
	AddItemResults(result ItemResult, n int)
	IncObserverFailure(observer string)
	IncRegistryWrite(record string)
	IncNotification(success bool)
	ObserveHTTPRequest(view string, status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBatchDuration(time.Duration)            {}
func (NoopRecorder) IncBatchOutcome(BatchOutcome)                  {}
func (NoopRecorder) AddItemResults(ItemResult, int)                {}
func (NoopRecorder) IncObserverFailure(string)                     {}
func (NoopRecorder) IncRegistryWrite(string)                       {}
func (NoopRecorder) IncNotification(bool)                          {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration) {}
