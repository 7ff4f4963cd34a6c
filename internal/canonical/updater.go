package canonical

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/logfields"
	"git.home.luguber.info/inful/sociallike/internal/metrics"
	"git.home.luguber.info/inful/sociallike/internal/observability"
	"git.home.luguber.info/inful/sociallike/internal/vhost"
)

// ContentStore is the subset of content.Repository the updater needs.
type ContentStore interface {
	Find(ctx context.Context, q content.Query) ([]*content.Item, error)
	Save(ctx context.Context, item *content.Item) error
	Reindex(ctx context.Context, item *content.Item) error
}

// Result summarizes a batch.
type Result struct {
	BatchID     string   `json:"batch_id"`
	Updated     int      `json:"updated"`
	Unchanged   int      `json:"unchanged"`
	Skipped     int      `json:"skipped"`
	AfterCutoff int      `json:"after_cutoff"`
	Changes     []Change `json:"changes,omitempty"`
}

// Total returns the number of published items visited.
func (r *Result) Total() int {
	return r.Updated + r.Unchanged + r.Skipped + r.AfterCutoff
}

// PortalTypes returns the item types a batch may touch. An empty result
// means every type.
type PortalTypes func(ctx context.Context) ([]string, error)

// Updater runs canonical URL batch updates.
type Updater struct {
	store       ContentStore
	portalTypes PortalTypes
	observers   []Observer
	recorder    metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures an Updater.
type Option func(*Updater)

// WithObservers registers observers notified for every change.
func WithObservers(obs ...Observer) Option {
	return func(u *Updater) { u.observers = append(u.observers, obs...) }
}

// WithPortalTypes restricts every batch to the types returned by fn.
func WithPortalTypes(fn PortalTypes) Option {
	return func(u *Updater) { u.portalTypes = fn }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(u *Updater) {
		if r != nil {
			u.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(u *Updater) {
		if l != nil {
			u.logger = l
		}
	}
}

// WithClock overrides the time source used to stamp changes.
func WithClock(now func() time.Time) Option {
	return func(u *Updater) { u.now = now }
}

// NewUpdater creates an updater over store.
func NewUpdater(store ContentStore, opts ...Option) *Updater {
	u := &Updater{
		store:    store,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UpdateCanonicalURL pins the canonical URL of every published item that
// became effective before req.PublishedBefore to
// req.OldCanonicalDomain + "/" + its virtual path. Items whose canonical URL
// resolves to nil under liveDomain are skipped. Items already pinned to the
// target value are left alone, so repeating a batch is a no-op.
//
// A batch ID is generated unless ctx already carries one.
func (u *Updater) UpdateCanonicalURL(ctx context.Context, rc vhost.RequestContext, liveDomain string, req UpdateRequest) (*Result, error) {
	if observability.FromContext(ctx).BatchID == "" {
		ctx = observability.WithBatchID(ctx, uuid.NewString())
	}
	start := u.now()
	res, err := u.run(ctx, rc, liveDomain, req)

	u.recorder.ObserveBatchDuration(u.now().Sub(start))
	switch {
	case err == nil:
		u.recorder.IncBatchOutcome(metrics.BatchSuccess)
	case ctx.Err() != nil:
		u.recorder.IncBatchOutcome(metrics.BatchCanceled)
	default:
		u.recorder.IncBatchOutcome(metrics.BatchFailed)
	}
	if res != nil {
		u.recorder.AddItemResults(metrics.ItemUpdated, res.Updated)
		u.recorder.AddItemResults(metrics.ItemUnchanged, res.Unchanged)
		u.recorder.AddItemResults(metrics.ItemSkipped, res.Skipped)
		u.recorder.AddItemResults(metrics.ItemAfterCutoff, res.AfterCutoff)
	}
	return res, err
}

func (u *Updater) run(ctx context.Context, rc vhost.RequestContext, liveDomain string, req UpdateRequest) (*Result, error) {
	q := content.Query{State: content.StatePublished}
	if u.portalTypes != nil {
		var err error
		if q.Types, err = u.portalTypes(ctx); err != nil {
			return nil, err
		}
	}
	items, err := u.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	log := observability.Logger(ctx, u.logger)
	log.Info("Updating canonical URLs",
		logfields.Domain(req.OldCanonicalDomain),
		logfields.Cutoff(req.PublishedBefore),
		logfields.Count(len(items)))

	res := &Result{BatchID: observability.FromContext(ctx).BatchID}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return res, errors.WrapError(err, errors.CategoryRuntime, "canonical URL update canceled").
				WithContext("updated", res.Updated).
				Build()
		}
		if !item.EffectiveBefore(req.PublishedBefore) {
			res.AfterCutoff++
			continue
		}
		previous := Resolve(rc, item, liveDomain)
		if previous == nil {
			res.Skipped++
			continue
		}

		virtualPath := vhost.PathToVirtualPath(rc, item)
		target := Join(req.OldCanonicalDomain, virtualPath)
		if item.CanonicalURL != nil && *item.CanonicalURL == target {
			res.Unchanged++
			continue
		}

		pinned := item.CanonicalURL
		item.CanonicalURL = content.StringPtr(target)
		if err := u.store.Save(ctx, item); err != nil {
			item.CanonicalURL = pinned
			return res, err
		}
		reindexErr := u.store.Reindex(ctx, item)

		// Save succeeded: the pin is reported even if Reindex failed.
		change := Change{
			ItemUID:     item.UID,
			Path:        item.Path,
			VirtualPath: virtualPath,
			Previous:    previous,
			Current:     target,
			At:          u.now(),
		}
		res.Updated++
		res.Changes = append(res.Changes, change)
		log.Debug("Canonical URL pinned",
			logfields.Path(item.Path),
			logfields.Previous(previous),
			logfields.CanonicalURL(target))
		u.notify(ctx, log, change)
		if reindexErr != nil {
			return res, reindexErr
		}
	}

	log.Info("Canonical URL update finished",
		slog.Int("updated", res.Updated),
		slog.Int("unchanged", res.Unchanged),
		slog.Int("skipped", res.Skipped),
		slog.Int("after_cutoff", res.AfterCutoff))
	return res, nil
}

func (u *Updater) notify(ctx context.Context, log *slog.Logger, change Change) {
	for _, obs := range u.observers {
		if err := obs.CanonicalURLChanged(ctx, change); err != nil {
			u.recorder.IncObserverFailure(obs.Name())
			log.Warn("Canonical URL observer failed",
				slog.String("observer", obs.Name()),
				logfields.Path(change.Path),
				logfields.Error(err))
		}
	}
}
