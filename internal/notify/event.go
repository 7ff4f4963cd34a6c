package notify

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/observability"
)

// ReindexEvent is the JSON message published for every change.
type ReindexEvent struct {
	BatchID      string    `json:"batch_id,omitempty"`
	ItemUID      string    `json:"item_uid"`
	Path         string    `json:"path"`
	VirtualPath  string    `json:"virtual_path"`
	CanonicalURL string    `json:"canonical_url"`
	Previous     *string   `json:"previous,omitempty"`
	ChangedAt    time.Time `json:"changed_at"`
}

// NewReindexEvent converts a change made by the batch in ctx.
func NewReindexEvent(ctx context.Context, c canonical.Change) ReindexEvent {
	return ReindexEvent{
		BatchID:      observability.FromContext(ctx).BatchID,
		ItemUID:      c.ItemUID,
		Path:         c.Path,
		VirtualPath:  c.VirtualPath,
		CanonicalURL: c.Current,
		Previous:     c.Previous,
		ChangedAt:    c.At,
	}
}
