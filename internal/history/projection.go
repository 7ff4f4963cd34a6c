package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"git.home.luguber.info/inful/sociallike/internal/observability"
)

// Entry is one canonical URL change of an item.
type Entry struct {
	At       time.Time `json:"at"`
	BatchID  string    `json:"batch_id,omitempty"`
	Path     string    `json:"path"`
	Previous *string   `json:"previous,omitempty"`
	Current  string    `json:"current"`
}

// BatchSummary is one completed batch.
type BatchSummary struct {
	At time.Time `json:"at"`
	BatchCompleted
}

// Projection maintains per-item canonical URL history and the most recent
// batches, rebuilt from a Store.
type Projection struct {
	mu        sync.RWMutex
	store     Store
	items     map[string][]Entry
	batches   []BatchSummary
	maxBatch  int
	lastBuilt time.Time
}

// NewProjection creates a projection over store keeping at most maxBatches
// batch summaries (newest first).
func NewProjection(store Store, maxBatches int) *Projection {
	if maxBatches <= 0 {
		maxBatches = 50
	}
	return &Projection{
		store:    store,
		items:    map[string][]Entry{},
		maxBatch: maxBatches,
	}
}

// Rebuild replays every stored event.
func (p *Projection) Rebuild(ctx context.Context) error {
	events, err := p.store.Range(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = map[string][]Entry{}
	p.batches = nil
	for _, e := range events {
		p.applyLocked(e)
	}
	p.lastBuilt = time.Now()
	return nil
}

// Apply folds a single event into the projection.
func (p *Projection) Apply(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(e)
}

func (p *Projection) applyLocked(e Event) {
	switch e.Type() {
	case TypeCanonicalURLChanged:
		var payload CanonicalURLChanged
		if err := json.Unmarshal(e.Payload(), &payload); err != nil {
			return
		}
		p.items[e.Stream()] = append(p.items[e.Stream()], Entry{
			At:       e.Timestamp(),
			BatchID:  e.Metadata()[observability.KeyBatchID],
			Path:     payload.Path,
			Previous: payload.Previous,
			Current:  payload.Current,
		})
	case TypeBatchCompleted:
		var payload BatchCompleted
		if err := json.Unmarshal(e.Payload(), &payload); err != nil {
			return
		}
		p.batches = append([]BatchSummary{{At: e.Timestamp(), BatchCompleted: payload}}, p.batches...)
		if len(p.batches) > p.maxBatch {
			p.batches = p.batches[:p.maxBatch]
		}
	}
}

// ForItem returns the changes of the item with uid, oldest first.
func (p *Projection) ForItem(uid string) []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Entry(nil), p.items[uid]...)
}

// Batches returns recent batch summaries, newest first.
func (p *Projection) Batches() []BatchSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]BatchSummary(nil), p.batches...)
}

// LastRebuild returns when Rebuild last ran.
func (p *Projection) LastRebuild() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastBuilt
}
