package canonical

import (
	"context"
	"time"
)

// Change records one pinned canonical URL. Previous is the canonical URL the
// item resolved to before the change.
type Change struct {
	ItemUID     string    `json:"item_uid"`
	Path        string    `json:"path"`
	VirtualPath string    `json:"virtual_path"`
	Previous    *string   `json:"previous,omitempty"`
	Current     string    `json:"current"`
	At          time.Time `json:"at"`
}

// Observer is notified after an item's canonical URL was saved, including
// when reindexing it then failed. Failures are logged by the updater and do
// not stop the batch.
type Observer interface {
	Name() string
	CanonicalURLChanged(ctx context.Context, change Change) error
}

type funcObserver struct {
	name string
	fn   func(context.Context, Change) error
}

func (o funcObserver) Name() string { return o.name }

func (o funcObserver) CanonicalURLChanged(ctx context.Context, change Change) error {
	return o.fn(ctx, change)
}

// ObserverFunc adapts fn to an Observer.
func ObserverFunc(name string, fn func(context.Context, Change) error) Observer {
	return funcObserver{name: name, fn: fn}
}
