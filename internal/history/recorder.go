package history

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/observability"
)

// Recorder appends canonical URL events to a Store and keeps a Projection
// current. It implements canonical.Observer.
type Recorder struct {
	store      Store
	projection *Projection
	now        func() time.Time
}

// NewRecorder creates a recorder. projection may be nil.
func NewRecorder(store Store, projection *Projection) *Recorder {
	return &Recorder{store: store, projection: projection, now: time.Now}
}

// Name implements canonical.Observer.
func (r *Recorder) Name() string { return "history" }

// CanonicalURLChanged implements canonical.Observer.
func (r *Recorder) CanonicalURLChanged(ctx context.Context, change canonical.Change) error {
	event, err := NewCanonicalURLChanged(change)
	if err != nil {
		return err
	}
	return r.append(ctx, event)
}

// BatchCompleted records the outcome of a batch.
func (r *Recorder) BatchCompleted(ctx context.Context, req canonical.UpdateRequest, liveDomain, trigger string, res *canonical.Result) error {
	event, err := NewBatchCompleted(req, liveDomain, trigger, res, r.now())
	if err != nil {
		return err
	}
	return r.append(ctx, event)
}

func (r *Recorder) append(ctx context.Context, event *BaseEvent) error {
	event.EventMetadata = observability.MergeMetadata(ctx, event.EventMetadata)
	if err := r.store.Append(ctx, event); err != nil {
		return err
	}
	if r.projection != nil {
		r.projection.Apply(event)
	}
	return nil
}
