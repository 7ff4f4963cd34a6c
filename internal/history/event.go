// Package history keeps an append-only log of canonical URL changes and
// batch runs, with an in-memory projection of per-item history.
package history

import "time"

// Event types.
const (
	TypeCanonicalURLChanged = "CanonicalURLChanged"
	TypeBatchCompleted      = "BatchCompleted"
)

// BatchStream is the stream id used for batch events.
const BatchStream = "batch"

// Event is a stored domain event.
type Event interface {
	ID() int64
	// Stream returns the aggregate the event belongs to: an item UID or BatchStream.
	Stream() string
	Type() string
	Timestamp() time.Time
	Payload() []byte
	Metadata() map[string]string
}

// BaseEvent is the default Event implementation.
type BaseEvent struct {
	EventID        int64
	EventStream    string
	EventType      string
	EventTimestamp time.Time
	EventPayload   []byte
	EventMetadata  map[string]string
}

func (e *BaseEvent) ID() int64                   { return e.EventID }
func (e *BaseEvent) Stream() string              { return e.EventStream }
func (e *BaseEvent) Type() string                { return e.EventType }
func (e *BaseEvent) Timestamp() time.Time        { return e.EventTimestamp }
func (e *BaseEvent) Payload() []byte             { return e.EventPayload }
func (e *BaseEvent) Metadata() map[string]string { return e.EventMetadata }
