package history

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

// CanonicalURLChanged is the payload of TypeCanonicalURLChanged.
type CanonicalURLChanged struct {
	Path     string  `json:"path"`
	Previous *string `json:"previous,omitempty"`
	Current  string  `json:"current"`
}

// BatchCompleted is the payload of TypeBatchCompleted.
type BatchCompleted struct {
	BatchID            string    `json:"batch_id,omitempty"`
	OldCanonicalDomain string    `json:"old_canonical_domain"`
	PublishedBefore    time.Time `json:"published_before"`
	LiveDomain         string    `json:"live_domain,omitempty"`
	Trigger            string    `json:"trigger,omitempty"`
	Updated            int       `json:"updated"`
	Unchanged          int       `json:"unchanged"`
	Skipped            int       `json:"skipped"`
	AfterCutoff        int       `json:"after_cutoff"`
}

// NewCanonicalURLChanged builds the event for change.
func NewCanonicalURLChanged(change canonical.Change) (*BaseEvent, error) {
	payload, err := json.Marshal(CanonicalURLChanged{
		Path:     change.Path,
		Previous: change.Previous,
		Current:  change.Current,
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryHistory, "marshal CanonicalURLChanged payload").
			WithContext("path", change.Path).
			Build()
	}
	at := change.At
	if at.IsZero() {
		at = time.Now()
	}
	return &BaseEvent{
		EventStream:    change.ItemUID,
		EventType:      TypeCanonicalURLChanged,
		EventTimestamp: at,
		EventPayload:   payload,
	}, nil
}

// NewBatchCompleted builds the event summarizing a batch run.
func NewBatchCompleted(req canonical.UpdateRequest, liveDomain, trigger string, res *canonical.Result, at time.Time) (*BaseEvent, error) {
	payload, err := json.Marshal(BatchCompleted{
		BatchID:            res.BatchID,
		OldCanonicalDomain: req.OldCanonicalDomain,
		PublishedBefore:    req.PublishedBefore,
		LiveDomain:         liveDomain,
		Trigger:            trigger,
		Updated:            res.Updated,
		Unchanged:          res.Unchanged,
		Skipped:            res.Skipped,
		AfterCutoff:        res.AfterCutoff,
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryHistory, "marshal BatchCompleted payload").Build()
	}
	return &BaseEvent{
		EventStream:    BatchStream,
		EventType:      TypeBatchCompleted,
		EventTimestamp: at,
		EventPayload:   payload,
	}, nil
}
