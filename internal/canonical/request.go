package canonical

import (
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

// UpdateRequest describes one batch update.
type UpdateRequest struct {
	// OldCanonicalDomain is the scheme and host items are pinned to,
	// e.g. "http://example.org".
	OldCanonicalDomain string
	// PublishedBefore is the exclusive upper bound on the effective date.
	PublishedBefore time.Time
}

// Validate checks that both fields are set and normalizes the domain.
func (r *UpdateRequest) Validate() error {
	if strings.TrimSpace(r.OldCanonicalDomain) == "" {
		return errors.ValidationError("old canonical domain is required").
			WithContext("field", "old_canonical_domain").
			Build()
	}
	domain, err := NormalizeDomain(r.OldCanonicalDomain)
	if err != nil {
		return err
	}
	if r.PublishedBefore.IsZero() {
		return errors.ValidationError("published before date is required").
			WithContext("field", "published_before").
			Build()
	}
	r.OldCanonicalDomain = domain
	return nil
}

// NormalizeDomain trims whitespace and trailing slashes from a domain and
// checks it is an absolute http or https URL. The empty string is returned
// unchanged.
func NormalizeDomain(domain string) (string, error) {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if domain == "" {
		return "", nil
	}
	u, err := url.Parse(domain)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		b := errors.ValidationError("canonical domain must be an absolute http(s) URL").
			WithContext("domain", domain)
		if err != nil {
			b = errors.WrapError(err, errors.CategoryValidation, "canonical domain must be an absolute http(s) URL").
				UserAction().
				WithContext("domain", domain)
		}
		return "", b.Build()
	}
	return domain, nil
}

// ParseDate accepts a date (2006-01-02) or an RFC 3339 timestamp. Plain dates
// are midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.WrapError(err, errors.CategoryValidation, "invalid date").
			UserAction().
			WithContext("value", s).
			Build()
	}
	return t, nil
}
