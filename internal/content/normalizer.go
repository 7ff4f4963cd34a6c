package content

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxIDLength bounds ids generated from titles.
const maxIDLength = 50

var (
	validID     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	reservedIDs = map[string]bool{"VirtualHostBase": true, "VirtualHostRoot": true}
)

// NormalizeID turns a title into a URL safe id: accents are folded, letters
// lower-cased and runs of other characters collapsed into single dashes.
func NormalizeID(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case r == '.' || r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	id := strings.Trim(b.String(), "-._")
	if len(id) > maxIDLength {
		id = strings.TrimRight(id[:maxIDLength], "-._")
	}
	return id
}

// ValidateID checks that id can be used as a path segment.
func ValidateID(id string) error {
	if !validID.MatchString(id) || reservedIDs[id] {
		return ErrInvalidID.WithContext("id", id)
	}
	return nil
}
