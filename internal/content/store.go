package content

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Query filters items returned by Store.Find. Zero fields do not filter.
type Query struct {
	State State
	Types []string
	// PathPrefix restricts results to items at or below this physical path.
	PathPrefix string
	// EffectiveBefore keeps items whose effective date is strictly before the
	// bound; unset effective dates always match.
	EffectiveBefore time.Time
}

// Store is the persistence backend for content items.
type Store interface {
	// Get returns the item at the physical path or ErrNotFound.
	Get(ctx context.Context, path string) (*Item, error)

	// Put inserts or replaces the item stored at item.Path.
	Put(ctx context.Context, item *Item) error

	// Find returns the items matching q, in no particular order.
	Find(ctx context.Context, q Query) ([]*Item, error)

	// Reindex refreshes any secondary index kept for the item. It is idempotent.
	Reindex(ctx context.Context, item *Item) error

	// Close releases backend resources.
	Close() error
}

// Matches reports whether item satisfies q. Backends without native
// filtering use it to post-filter.
func (q Query) Matches(item *Item) bool {
	if q.State != "" && item.State != q.State {
		return false
	}
	if len(q.Types) > 0 && !slices.Contains(q.Types, item.Type) {
		return false
	}
	if q.PathPrefix != "" && q.PathPrefix != "/" {
		prefix := JoinPath(q.PathPrefix)
		if item.Path != prefix && !strings.HasPrefix(item.Path, prefix+"/") {
			return false
		}
	}
	if !q.EffectiveBefore.IsZero() && !item.EffectiveBefore(q.EffectiveBefore) {
		return false
	}
	return true
}
