package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"ItemUID", KeyItemUID, "abc", ItemUID("abc")},
		{"ItemID", KeyItemID, "foo", ItemID("foo")},
		{"Path", KeyPath, "/plone/foo", Path("/plone/foo")},
		{"VirtualPath", KeyVirtualPath, "foo", VirtualPath("foo")},
		{"CanonicalURL", KeyCanonicalURL, "https://example.org/plone/foo", CanonicalURL("https://example.org/plone/foo")},
		{"Domain", KeyDomain, "https://example.org", Domain("https://example.org")},
		{"State", KeyState, "published", State("published")},
		{"Record", KeyRecord, "canonical_domain", Record("canonical_domain")},
		{"View", KeyView, "canonical-url-updater", View("canonical-url-updater")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Cutoff", KeyCutoff, "2017-01-01T00:00:00Z", Cutoff(time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC))},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, got)
		}
	}
}

func TestPreviousHelper(t *testing.T) {
	if got := Previous(nil).Value.String(); got != "" {
		t.Fatalf("expected empty previous, got %q", got)
	}
	v := "http://example.org/plone/foo"
	if got := Previous(&v).Value.String(); got != v {
		t.Fatalf("expected %q, got %q", v, got)
	}
}

func TestErrorHelper(t *testing.T) {
	if attr := Error(nil); attr.Key != KeyError || attr.Value.String() != "" {
		t.Fatalf("unexpected nil error attr: %v", attr)
	}
	if got := Error(errors.New("err-test")).Value.String(); got != "err-test" {
		t.Fatalf("expected 'err-test', got %s", got)
	}
}
