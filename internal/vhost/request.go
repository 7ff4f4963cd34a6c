package vhost

import (
	"net"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

const (
	// MarkerBase starts a virtual hosting rewrite: /VirtualHostBase/<proto>/<host>/...
	MarkerBase = "VirtualHostBase"
	// MarkerRoot marks the preceding physical path as the virtual site root.
	MarkerRoot = "VirtualHostRoot"
	// virtualSegmentPrefix marks a public path segment that has no physical counterpart.
	virtualSegmentPrefix = "_vh_"
)

// RequestContext exposes the virtual root of a traversed request.
type RequestContext interface {
	// VirtualRootPhysicalPath returns the physical path of the virtual root,
	// or nil when the request is not virtually hosted.
	VirtualRootPhysicalPath() []string
}

// Request is the result of traversing a request path.
type Request struct {
	traversal      string
	serverURL      string
	hasVirtualRoot bool
	virtualRoot    []string
	virtualPrefix  []string
	physicalPath   []string
}

// Identity returns a request without virtual hosting.
func Identity() *Request {
	return &Request{traversal: "/"}
}

// Traverse parses a traversal path and applies any virtual hosting markers it carries.
func Traverse(path string) (*Request, error) {
	segments := splitPath(path)
	req := &Request{traversal: path}

	i := 0
	if len(segments) > 0 && segments[0] == MarkerBase {
		if len(segments) < 3 {
			return nil, errors.ValidationError("virtual host base requires protocol and host").
				WithContext("path", path).
				Build()
		}
		serverURL, err := buildServerURL(segments[1], segments[2])
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryValidation, "invalid virtual host base").
				WithContext("path", path).
				Build()
		}
		req.serverURL = serverURL
		i = 3
	}

	rest := segments[i:]
	if slices.Contains(rest, MarkerBase) {
		return nil, errors.ValidationError("virtual host base must be the first path segment").
			WithContext("path", path).
			Build()
	}

	rootIdx := slices.Index(rest, MarkerRoot)
	if rootIdx < 0 {
		req.physicalPath = rest
		return req, nil
	}
	if slices.Contains(rest[rootIdx+1:], MarkerRoot) {
		return nil, errors.ValidationError("virtual host root may only appear once").
			WithContext("path", path).
			Build()
	}

	req.hasVirtualRoot = true
	req.virtualRoot = slices.Clone(rest[:rootIdx])

	after := rest[rootIdx+1:]
	for len(after) > 0 && strings.HasPrefix(after[0], virtualSegmentPrefix) {
		if name := strings.TrimPrefix(after[0], virtualSegmentPrefix); name != "" {
			req.virtualPrefix = append(req.virtualPrefix, name)
		}
		after = after[1:]
	}
	req.physicalPath = append(slices.Clone(req.virtualRoot), after...)
	return req, nil
}

// VirtualRootPhysicalPath implements RequestContext.
func (r *Request) VirtualRootPhysicalPath() []string {
	if r == nil || !r.hasVirtualRoot {
		return nil
	}
	return slices.Clone(r.virtualRoot)
}

// IsVirtualHosted reports whether the request carried a VirtualHostRoot marker.
func (r *Request) IsVirtualHosted() bool { return r != nil && r.hasVirtualRoot }

// PhysicalPath returns the physical path the request traverses to.
func (r *Request) PhysicalPath() []string { return slices.Clone(r.physicalPath) }

// ServerURL returns the public server URL set by the rewrite, if any.
func (r *Request) ServerURL() string { return r.serverURL }

// Traversal returns the raw path the request was built from.
func (r *Request) Traversal() string { return r.traversal }

// WithServerURL returns a copy of r using serverURL unless the rewrite already fixed one.
func (r *Request) WithServerURL(serverURL string) *Request {
	out := *r
	if out.serverURL == "" {
		out.serverURL = strings.TrimRight(serverURL, "/")
	}
	return &out
}

// AbsoluteURL returns the public URL of item as seen through this request.
func (r *Request) AbsoluteURL(item Located) string {
	parts := slices.Clone(r.virtualPrefix)
	if rel := PathToVirtualPath(r, item); rel != "" {
		parts = append(parts, rel)
	}
	if len(parts) == 0 {
		return r.serverURL
	}
	return r.serverURL + "/" + strings.Join(parts, "/")
}

func buildServerURL(protocol, host string) (string, error) {
	protocol = strings.ToLower(protocol)
	if protocol != "http" && protocol != "https" {
		return "", errors.ValidationError("unsupported protocol").WithContext("protocol", protocol).Build()
	}
	if host == "" {
		return "", errors.ValidationError("host is empty").Build()
	}
	if h, port, err := net.SplitHostPort(host); err == nil {
		if (protocol == "http" && port == "80") || (protocol == "https" && port == "443") {
			host = h
		}
	}
	return protocol + "://" + host, nil
}

func splitPath(path string) []string {
	var out []string
	for seg := range strings.SplitSeq(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
