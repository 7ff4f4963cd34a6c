package registry

import (
	"context"
	"slices"
)

// Settings is the typed view of InterfaceSocialLike.
type Settings struct {
	CanonicalDomain    string   `json:"canonical_domain"`
	EnabledPortalTypes []string `json:"enabled_portal_types"`
	PluginsEnabled     []string `json:"plugins_enabled"`
	FacebookAppID      string   `json:"facebook_app_id"`
	FacebookUsername   string   `json:"facebook_username"`
	TwitterUsername    string   `json:"twitter_username"`
	FallbackImage      string   `json:"fallback_image"`
}

// LoadSettings reads every InterfaceSocialLike record from reg.
func LoadSettings(ctx context.Context, reg Registry) (*Settings, error) {
	s := &Settings{}
	strs := map[string]*string{
		RecordCanonicalDomain:  &s.CanonicalDomain,
		RecordFacebookAppID:    &s.FacebookAppID,
		RecordFacebookUsername: &s.FacebookUsername,
		RecordTwitterUsername:  &s.TwitterUsername,
		RecordFallbackImage:    &s.FallbackImage,
	}
	lists := map[string]*[]string{
		RecordEnabledPortalTypes: &s.EnabledPortalTypes,
		RecordPluginsEnabled:     &s.PluginsEnabled,
	}
	for name, dst := range strs {
		v, err := reg.Get(ctx, InterfaceSocialLike, name)
		if err != nil {
			return nil, err
		}
		*dst, _ = v.(string)
	}
	for name, dst := range lists {
		v, err := reg.Get(ctx, InterfaceSocialLike, name)
		if err != nil {
			return nil, err
		}
		*dst, _ = v.([]string)
	}
	return s, nil
}

// CanonicalDomain reads the canonical_domain record.
func CanonicalDomain(ctx context.Context, reg Registry) (string, error) {
	v, err := reg.Get(ctx, InterfaceSocialLike, RecordCanonicalDomain)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

// TypeEnabled reports whether portal type typ gets social metadata.
func (s *Settings) TypeEnabled(typ string) bool {
	return slices.Contains(s.EnabledPortalTypes, typ)
}
