package httpserver

import (
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/registry"
	smw "git.home.luguber.info/inful/sociallike/internal/server/middleware"
	"git.home.luguber.info/inful/sociallike/internal/server/responses"
	"git.home.luguber.info/inful/sociallike/internal/vhost"
)

const viewPrefix = "@@"

// Target kinds a view may be registered for.
const (
	onSite = 1 << iota
	onItem
)

// viewContext is a traversed request.
type viewContext struct {
	Request *vhost.Request
	// Item is nil when the request traversed to the site root.
	Item *content.Item
}

func (vc *viewContext) isSite() bool { return vc.Item == nil }

type view struct {
	name    string
	targets int
	methods []string
	serve   func(w http.ResponseWriter, r *http.Request, vc *viewContext) error
}

// splitView separates a trailing "@@name" segment from path.
func splitView(path string) (string, string) {
	trimmed := strings.TrimRight(path, "/")
	i := strings.LastIndex(trimmed, "/")
	last := trimmed[i+1:]
	if !strings.HasPrefix(last, viewPrefix) {
		return path, ""
	}
	return trimmed[:i+1], strings.TrimPrefix(last, viewPrefix)
}

func (s *Server) handleTraversal(w http.ResponseWriter, r *http.Request) {
	if err := s.traverse(w, r); err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
	}
}

func (s *Server) traverse(w http.ResponseWriter, r *http.Request) error {
	path, name := splitView(r.URL.Path)

	req, err := vhost.Traverse(path)
	if err != nil {
		return err
	}
	req = req.WithServerURL(s.serverURL(r))

	vc := &viewContext{Request: req}
	physical := content.JoinPath(req.PhysicalPath()...)
	switch {
	case physical == "/":
		// Requests without a site segment address the site root.
	case physical == s.deps.Content.Root():
	case !strings.HasPrefix(physical, s.deps.Content.Root()+"/"):
		return errors.NotFoundError("not found").WithContext("path", physical).Build()
	default:
		item, err := s.deps.Content.Get(r.Context(), physical)
		if err != nil {
			return err
		}
		vc.Item = item
	}

	if name == "" {
		name = viewItem
		if vc.isSite() {
			name = viewListing
		}
	}
	v, ok := s.views[name]
	if !ok || (vc.isSite() && v.targets&onSite == 0) || (!vc.isSite() && v.targets&onItem == 0) {
		return errors.NotFoundError("view not found").WithContext("view", name).Build()
	}
	smw.SetView(r, v.name)

	if !allowed(v.methods, r.Method) {
		w.Header().Set("Allow", strings.Join(v.methods, ", "))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return nil
	}
	return v.serve(w, r, vc)
}

func allowed(methods []string, method string) bool {
	for _, m := range methods {
		if m == method || (m == http.MethodGet && method == http.MethodHead) {
			return true
		}
	}
	return false
}

// serverURL is the public URL of this server for non-rewritten requests.
func (s *Server) serverURL(r *http.Request) string {
	if s.opts.PublicURL != "" {
		return s.opts.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// liveDomain reads the configured canonical domain.
func (s *Server) liveDomain(r *http.Request) (string, error) {
	return registry.CanonicalDomain(r.Context(), s.deps.Registry)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	smw.SetView(r, "healthz")
	_ = s.writeJSON(w, r, http.StatusOK, responses.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.started).Seconds(),
	})
}
