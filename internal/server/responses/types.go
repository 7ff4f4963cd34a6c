// Package responses defines the JSON bodies returned by the HTTP views.
package responses

import (
	"time"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/history"
	"git.home.luguber.info/inful/sociallike/internal/share"
)

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}

// UpdateRequest is the JSON body accepted by the canonical URL updater view.
type UpdateRequest struct {
	OldCanonicalDomain string `json:"old_canonical_domain"`
	PublishedBefore    string `json:"published_before"`
}

// UpdateResponse reports a finished batch.
type UpdateResponse struct {
	OldCanonicalDomain string            `json:"old_canonical_domain"`
	PublishedBefore    time.Time         `json:"published_before"`
	LiveDomain         string            `json:"live_domain,omitempty"`
	Result             *canonical.Result `json:"result"`
}

// SocialMetadataResponse is returned by the social-metadata view.
type SocialMetadataResponse struct {
	Path         string          `json:"path"`
	Type         string          `json:"type"`
	Enabled      bool            `json:"enabled"`
	CanonicalURL *string         `json:"canonical_url"`
	AbsoluteURL  string          `json:"absolute_url,omitempty"`
	Metadata     *share.Metadata `json:"metadata,omitempty"`
}

// RegistryRecord is one registry value.
type RegistryRecord struct {
	Interface string `json:"interface"`
	Record    string `json:"record"`
	Value     any    `json:"value"`
}

// RegistryWrite is the body accepted when setting a record.
type RegistryWrite struct {
	Value any `json:"value"`
}

// HistoryResponse lists canonical URL changes of an item, or recent batches
// for the site root.
type HistoryResponse struct {
	Path    string                 `json:"path"`
	Entries []history.Entry        `json:"entries,omitempty"`
	Batches []history.BatchSummary `json:"batches,omitempty"`
}
