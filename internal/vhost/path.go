package vhost

import (
	"slices"
	"strings"
)

// Located is anything with a physical path (content items, the site root).
type Located interface {
	PhysicalPath() []string
}

// PathToVirtualPath returns the physical path of item relative to the effective
// root of rc, without a leading separator.
//
// Without a virtual root the result is the full physical path ("plone/foo").
// With a virtual root at /plone the same item resolves to "foo". Items outside
// the virtual root keep their full physical path.
func PathToVirtualPath(rc RequestContext, item Located) string {
	path := item.PhysicalPath()
	var root []string
	if rc != nil {
		root = rc.VirtualRootPhysicalPath()
	}
	if len(root) > 0 && len(path) >= len(root) && slices.Equal(path[:len(root)], root) {
		path = path[len(root):]
	}
	return strings.Join(path, "/")
}

// PhysicalPath is a Located value built from a slash separated path.
type PhysicalPath string

// PhysicalPath implements Located.
func (p PhysicalPath) PhysicalPath() []string { return splitPath(string(p)) }
