package history

import (
	"context"
	"time"
)

// Store persists and retrieves events.
type Store interface {
	// Append adds an event; ID is assigned by the store.
	Append(ctx context.Context, event Event) error
	// ByStream returns the events of one stream in append order.
	ByStream(ctx context.Context, stream string) ([]Event, error)
	// Range returns events with start <= timestamp <= end in append order.
	Range(ctx context.Context, start, end time.Time) ([]Event, error)
	Close() error
}
