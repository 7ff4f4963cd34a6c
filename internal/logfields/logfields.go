package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyItemUID      = "item_uid"
	KeyItemID       = "item_id"
	KeyPath         = "path"
	KeyVirtualPath  = "virtual_path"
	KeyCanonicalURL = "canonical_url"
	KeyPrevious     = "previous"
	KeyDomain       = "domain"
	KeyCutoff       = "published_before"
	KeyState        = "review_state"
	KeyTransition   = "transition"
	KeyRecord       = "record"
	KeyInterface    = "interface"
	KeyView         = "view"
	KeyJob          = "job"
	KeySubject      = "subject"
	KeyMethod       = "method"
	KeyStatus       = "status"
	KeyRemoteAddr   = "remote_addr"
	KeyUserAgent    = "user_agent"
	KeyDurationMS   = "duration_ms"
	KeyCount        = "count"
	KeyError        = "error"
)

func ItemUID(uid string) slog.Attr       { return slog.String(KeyItemUID, uid) }
func ItemID(id string) slog.Attr         { return slog.String(KeyItemID, id) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func VirtualPath(p string) slog.Attr     { return slog.String(KeyVirtualPath, p) }
func CanonicalURL(u string) slog.Attr    { return slog.String(KeyCanonicalURL, u) }
func Domain(d string) slog.Attr          { return slog.String(KeyDomain, d) }
func State(s string) slog.Attr           { return slog.String(KeyState, s) }
func Transition(name string) slog.Attr   { return slog.String(KeyTransition, name) }
func Record(name string) slog.Attr       { return slog.String(KeyRecord, name) }
func Interface(name string) slog.Attr    { return slog.String(KeyInterface, name) }
func View(name string) slog.Attr         { return slog.String(KeyView, name) }
func Job(name string) slog.Attr          { return slog.String(KeyJob, name) }
func Subject(s string) slog.Attr         { return slog.String(KeySubject, s) }
func Method(m string) slog.Attr          { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr          { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr      { return slog.String(KeyRemoteAddr, a) }
func UserAgent(ua string) slog.Attr      { return slog.String(KeyUserAgent, ua) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func Cutoff(t time.Time) slog.Attr       { return slog.String(KeyCutoff, t.Format(time.RFC3339)) }
func Duration(d time.Duration) slog.Attr { return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000) }

// Previous logs the prior value of an optional string field; nil logs as empty.
func Previous(v *string) slog.Attr {
	if v == nil {
		return slog.String(KeyPrevious, "")
	}
	return slog.String(KeyPrevious, *v)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
