package registry

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

// Kind is the value type of a record.
type Kind int

const (
	KindString Kind = iota
	KindList
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Field describes one record of an interface.
type Field struct {
	Name    string
	Kind    Kind
	Default any
	// Check validates and normalizes a coerced value.
	Check func(any) (any, error)
}

// Schema lists the records of one interface.
type Schema struct {
	Interface string
	Fields    []Field
}

// Field returns the named record definition.
func (s Schema) Field(name string) (Field, bool) {
	i := slices.IndexFunc(s.Fields, func(f Field) bool { return f.Name == name })
	if i < 0 {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Names returns the record names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// InterfaceSocialLike is the settings interface of the social metadata feature.
const InterfaceSocialLike = "social_like"

// Record names of InterfaceSocialLike.
const (
	RecordCanonicalDomain    = "canonical_domain"
	RecordEnabledPortalTypes = "enabled_portal_types"
	RecordPluginsEnabled     = "plugins_enabled"
	RecordFacebookAppID      = "facebook_app_id"
	RecordFacebookUsername   = "facebook_username"
	RecordTwitterUsername    = "twitter_username"
	RecordFallbackImage      = "fallback_image"
)

// SocialLikeSchema is the schema of InterfaceSocialLike.
var SocialLikeSchema = Schema{
	Interface: InterfaceSocialLike,
	Fields: []Field{
		{Name: RecordCanonicalDomain, Kind: KindString, Default: "", Check: checkDomain},
		{Name: RecordEnabledPortalTypes, Kind: KindList, Default: []string{"Document", "Event", "News Item"}},
		{Name: RecordPluginsEnabled, Kind: KindList, Default: []string{"facebook", "twitter"}},
		{Name: RecordFacebookAppID, Kind: KindString, Default: ""},
		{Name: RecordFacebookUsername, Kind: KindString, Default: "", Check: trimAt},
		{Name: RecordTwitterUsername, Kind: KindString, Default: "", Check: trimAt},
		{Name: RecordFallbackImage, Kind: KindString, Default: ""},
	},
}

var schemas = map[string]Schema{
	InterfaceSocialLike: SocialLikeSchema,
}

// Lookup returns the schema of iface.
func Lookup(iface string) (Schema, error) {
	s, ok := schemas[iface]
	if !ok {
		return Schema{}, errors.NotFoundError("unknown registry interface").
			WithContext("interface", iface).
			Build()
	}
	return s, nil
}

// Interfaces lists the known interface names, sorted.
func Interfaces() []string {
	names := make([]string, 0, len(schemas))
	for k := range schemas {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func lookupField(iface, name string) (Field, error) {
	s, err := Lookup(iface)
	if err != nil {
		return Field{}, err
	}
	f, ok := s.Field(name)
	if !ok {
		return Field{}, errors.NotFoundError("unknown registry record").
			WithContext("interface", iface).
			WithContext("record", name).
			Build()
	}
	return f, nil
}

// Coerce converts raw into the field's kind and applies its check. Strings
// are accepted for every kind: comma separated for lists, strconv syntax for
// bools.
func (f Field) Coerce(raw any) (any, error) {
	v, err := f.coerce(raw)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid registry value").
			UserAction().
			WithContext("record", f.Name).
			WithContext("kind", f.Kind.String()).
			Build()
	}
	if f.Check != nil {
		return f.Check(v)
	}
	return v, nil
}

func (f Field) coerce(raw any) (any, error) {
	switch f.Kind {
	case KindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(v))
		}
	case KindList:
		switch v := raw.(type) {
		case nil:
			return []string{}, nil
		case []string:
			return cleanList(v), nil
		case []any:
			out := make([]string, 0, len(v))
			for _, e := range v {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("list element %v is not a string", e)
				}
				out = append(out, s)
			}
			return cleanList(out), nil
		case string:
			if strings.TrimSpace(v) == "" {
				return []string{}, nil
			}
			return cleanList(strings.Split(v, ",")), nil
		}
	default:
		switch v := raw.(type) {
		case nil:
			return "", nil
		case string:
			return strings.TrimSpace(v), nil
		}
	}
	return nil, fmt.Errorf("cannot use %T as %s", raw, f.Kind)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func checkDomain(v any) (any, error) {
	return canonical.NormalizeDomain(v.(string))
}

func trimAt(v any) (any, error) {
	return strings.TrimPrefix(v.(string), "@"), nil
}

func defaultValue(f Field) any {
	if l, ok := f.Default.([]string); ok {
		return slices.Clone(l)
	}
	return f.Default
}
