// Package content models content items, their publication workflow and the
// stores that persist them.
package content

import (
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/sociallike/internal/foundation/normalization"
)

// State is a workflow review state.
type State string

const (
	StatePrivate   State = "private"
	StatePending   State = "pending"
	StatePublished State = "published"
)

var stateNormalizer = normalization.NewNormalizer("review state", map[string]State{
	"private":   StatePrivate,
	"pending":   StatePending,
	"published": StatePublished,
}, "")

// ParseState parses a review state name. The empty string yields "".
func ParseState(raw string) (State, error) { return stateNormalizer.Parse(raw) }

// Item is a content object living at a physical path below the site root.
type Item struct {
	UID         string
	ID          string
	Type        string
	Title       string
	Description string
	Text        string
	Path        string
	State       State

	// EffectiveDate is the publication date. The zero value means unset; it is
	// never filled in by a workflow transition.
	EffectiveDate time.Time

	// CanonicalURL is a pinned canonical URL. Nil means the item follows the
	// configured canonical domain.
	CanonicalURL *string

	Created  time.Time
	Modified time.Time
}

// PhysicalPath returns the item path split into segments.
func (i *Item) PhysicalPath() []string {
	return SplitPath(i.Path)
}

// ParentPath returns the physical path of the item's container.
func (i *Item) ParentPath() string {
	segs := i.PhysicalPath()
	if len(segs) <= 1 {
		return "/"
	}
	return JoinPath(segs[:len(segs)-1]...)
}

// IsPublished reports whether the item is in the published state.
func (i *Item) IsPublished() bool { return i.State == StatePublished }

// EffectiveBefore reports whether the item became effective strictly before t.
// Items without an effective date count as effective since the beginning of time.
func (i *Item) EffectiveBefore(t time.Time) bool {
	return i.EffectiveDate.IsZero() || i.EffectiveDate.Before(t)
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	out := *i
	if i.CanonicalURL != nil {
		v := *i.CanonicalURL
		out.CanonicalURL = &v
	}
	return &out
}

// SplitPath splits a slash separated path into its non-empty segments.
func SplitPath(path string) []string {
	return slices.DeleteFunc(strings.Split(path, "/"), func(s string) bool { return s == "" })
}

// JoinPath builds an absolute physical path from segments.
func JoinPath(segments ...string) string {
	return "/" + strings.Join(SplitPath(strings.Join(segments, "/")), "/")
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
