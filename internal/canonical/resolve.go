package canonical

import (
	"strings"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/vhost"
)

// Join builds "<domain>/<virtualPath>".
func Join(domain, virtualPath string) string {
	return strings.TrimRight(domain, "/") + "/" + strings.TrimLeft(virtualPath, "/")
}

// Resolve returns the effective canonical URL of item: the pinned value when
// set, otherwise liveDomain joined with the virtual path. Nil when neither
// exists.
func Resolve(rc vhost.RequestContext, item *content.Item, liveDomain string) *string {
	if item.CanonicalURL != nil {
		v := *item.CanonicalURL
		return &v
	}
	if liveDomain == "" {
		return nil
	}
	v := Join(liveDomain, vhost.PathToVirtualPath(rc, item))
	return &v
}
