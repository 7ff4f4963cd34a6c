package httpserver

import (
	"html/template"
	"net/http"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/logfields"
	"git.home.luguber.info/inful/sociallike/internal/markdown"
	"git.home.luguber.info/inful/sociallike/internal/observability"
	"git.home.luguber.info/inful/sociallike/internal/registry"
	"git.home.luguber.info/inful/sociallike/internal/server/responses"
	"git.home.luguber.info/inful/sociallike/internal/share"
)

// View names.
const (
	viewItem           = "view"
	viewListing        = "listing"
	viewSocialMetadata = "social-metadata"
	viewUpdater        = "canonical-url-updater"
	viewRegistry       = "registry"
	viewHistory        = "canonical-url-history"
)

func (s *Server) registerViews() map[string]view {
	views := []view{
		{name: viewItem, targets: onItem, methods: []string{http.MethodGet}, serve: s.serveItem},
		{name: viewListing, targets: onSite, methods: []string{http.MethodGet}, serve: s.serveListing},
		{name: viewSocialMetadata, targets: onItem, methods: []string{http.MethodGet}, serve: s.serveSocialMetadata},
		{name: viewUpdater, targets: onSite, methods: []string{http.MethodGet, http.MethodPost}, serve: s.serveUpdater},
		{name: viewRegistry, targets: onSite, methods: []string{http.MethodGet, http.MethodPut}, serve: s.serveRegistry},
		{name: viewHistory, targets: onSite | onItem, methods: []string{http.MethodGet}, serve: s.serveHistory},
	}
	out := make(map[string]view, len(views))
	for _, v := range views {
		out[v.name] = v
	}
	return out
}

func (s *Server) basePage(vc *viewContext, title string) page {
	return page{
		Title:     title,
		SiteTitle: s.opts.SiteTitle,
		SiteURL:   vc.Request.AbsoluteURL(s.deps.Content.SiteRoot()),
	}
}

// metadataFor resolves the canonical URL of the item and builds its share
// metadata. The metadata is nil when the item type is not enabled.
func (s *Server) metadataFor(r *http.Request, vc *viewContext) (*share.Metadata, *string, error) {
	settings, err := registry.LoadSettings(r.Context(), s.deps.Registry)
	if err != nil {
		return nil, nil, err
	}
	canon := canonical.Resolve(vc.Request, vc.Item, settings.CanonicalDomain)
	var canonURL string
	if canon != nil {
		canonURL = *canon
	}
	m, ok := share.BuildMetadata(vc.Item, settings, canonURL, share.Summary(vc.Item))
	if !ok {
		return nil, canon, nil
	}
	m.SetSiteName(s.opts.SiteTitle)
	return m, canon, nil
}

func (s *Server) serveItem(w http.ResponseWriter, r *http.Request, vc *viewContext) error {
	m, canon, err := s.metadataFor(r, vc)
	if err != nil {
		return err
	}
	if m == nil {
		m = &share.Metadata{}
		if canon != nil {
			m.CanonicalURL = *canon
		}
	}
	head, err := m.HTML()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "render metadata").Build()
	}
	body, err := markdown.Render([]byte(vc.Item.Text))
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "render body").Build()
	}

	p := itemPage{
		page:        s.basePage(vc, vc.Item.Title),
		Description: vc.Item.Description,
		Body:        template.HTML(body), // #nosec G203 -- goldmark drops raw HTML
		Buttons:     m.Buttons,
	}
	p.Head = template.HTML(head) // #nosec G203 -- attribute values escaped by html.Render
	return s.render(w, s.pages.item, http.StatusOK, p)
}

func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, vc *viewContext) error {
	items, err := s.deps.Content.Find(r.Context(), content.Query{State: content.StatePublished})
	if err != nil {
		return err
	}
	slices.SortFunc(items, func(a, b *content.Item) int {
		if c := b.EffectiveDate.Compare(a.EffectiveDate); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})

	p := listingPage{page: s.basePage(vc, s.opts.SiteTitle)}
	for _, item := range items {
		p.Entries = append(p.Entries, listingEntry{
			Title:     item.Title,
			URL:       vc.Request.AbsoluteURL(item),
			Effective: item.EffectiveDate,
		})
	}
	return s.render(w, s.pages.listing, http.StatusOK, p)
}

func (s *Server) serveSocialMetadata(w http.ResponseWriter, r *http.Request, vc *viewContext) error {
	m, canon, err := s.metadataFor(r, vc)
	if err != nil {
		return err
	}
	return s.writeJSON(w, r, http.StatusOK, responses.SocialMetadataResponse{
		Path:         vc.Item.Path,
		Type:         vc.Item.Type,
		Enabled:      m != nil,
		CanonicalURL: canon,
		AbsoluteURL:  vc.Request.AbsoluteURL(vc.Item),
		Metadata:     m,
	})
}

func (s *Server) serveUpdater(w http.ResponseWriter, r *http.Request, vc *viewContext) error {
	live, err := s.liveDomain(r)
	if err != nil {
		return err
	}
	p := updaterPage{page: s.basePage(vc, "Update canonical URLs"), LiveDomain: live}
	if s.deps.Projection != nil {
		p.Batches = s.deps.Projection.Batches()
	}
	if r.Method != http.MethodPost {
		return s.render(w, s.pages.updater, http.StatusOK, p)
	}

	var in responses.UpdateRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &in); err != nil {
			return err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid form").Build()
		}
		in.OldCanonicalDomain = r.PostForm.Get("old_canonical_domain")
		in.PublishedBefore = r.PostForm.Get("published_before")
	}
	p.OldCanonicalDomain, p.PublishedBefore = in.OldCanonicalDomain, in.PublishedBefore

	req, err := parseUpdateRequest(in)
	if err != nil {
		if wantsJSON(r) {
			return err
		}
		p.Error = errorMessage(err)
		return s.render(w, s.pages.updater, s.errorAdapter.StatusCodeFor(err), p)
	}

	ctx := observability.WithTrigger(r.Context(), TriggerWeb)
	res, err := s.deps.Updater.UpdateCanonicalURL(ctx, vc.Request, live, req)
	if err != nil {
		return err
	}
	if s.deps.History != nil {
		if herr := s.deps.History.BatchCompleted(observability.WithBatchID(ctx, res.BatchID), req, live, TriggerWeb, res); herr != nil {
			s.logger.Warn("Failed to record batch", logfields.Error(herr))
		}
	}

	if wantsJSON(r) {
		return s.writeJSON(w, r, http.StatusOK, responses.UpdateResponse{
			OldCanonicalDomain: req.OldCanonicalDomain,
			PublishedBefore:    req.PublishedBefore,
			LiveDomain:         live,
			Result:             res,
		})
	}
	p.Result = res
	if s.deps.Projection != nil {
		p.Batches = s.deps.Projection.Batches()
	}
	return s.render(w, s.pages.updater, http.StatusOK, p)
}

func parseUpdateRequest(in responses.UpdateRequest) (canonical.UpdateRequest, error) {
	req := canonical.UpdateRequest{OldCanonicalDomain: in.OldCanonicalDomain}
	if strings.TrimSpace(in.PublishedBefore) != "" {
		t, err := canonical.ParseDate(in.PublishedBefore)
		if err != nil {
			return req, err
		}
		req.PublishedBefore = t
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func errorMessage(err error) string {
	if c, ok := errors.AsClassified(err); ok {
		return c.Message()
	}
	return err.Error()
}

func (s *Server) serveRegistry(w http.ResponseWriter, r *http.Request, _ *viewContext) error {
	iface := r.URL.Query().Get("interface")
	if iface == "" {
		iface = registry.InterfaceSocialLike
	}
	schema, err := registry.Lookup(iface)
	if err != nil {
		return err
	}
	record := r.URL.Query().Get("record")

	if r.Method == http.MethodPut {
		if record == "" {
			return errors.ValidationError("record is required").WithContext("field", "record").Build()
		}
		var in responses.RegistryWrite
		if err := decodeJSON(r, &in); err != nil {
			return err
		}
		if err := s.deps.Registry.Set(r.Context(), iface, record, in.Value); err != nil {
			return err
		}
		s.logger.Info("Registry record updated", logfields.Interface(iface), logfields.Record(record))
	}

	if record != "" {
		v, err := s.deps.Registry.Get(r.Context(), iface, record)
		if err != nil {
			return err
		}
		return s.writeJSON(w, r, http.StatusOK, responses.RegistryRecord{Interface: iface, Record: record, Value: v})
	}

	out := make([]responses.RegistryRecord, 0, len(schema.Fields))
	for _, name := range schema.Names() {
		v, err := s.deps.Registry.Get(r.Context(), iface, name)
		if err != nil {
			return err
		}
		out = append(out, responses.RegistryRecord{Interface: iface, Record: name, Value: v})
	}
	return s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) serveHistory(w http.ResponseWriter, r *http.Request, vc *viewContext) error {
	if s.deps.Projection == nil {
		return errors.NotFoundError("change history is disabled").Build()
	}
	if vc.isSite() {
		return s.writeJSON(w, r, http.StatusOK, responses.HistoryResponse{
			Path:    s.deps.Content.Root(),
			Batches: s.deps.Projection.Batches(),
		})
	}
	return s.writeJSON(w, r, http.StatusOK, responses.HistoryResponse{
		Path:    vc.Item.Path,
		Entries: s.deps.Projection.ForItem(vc.Item.UID),
	})
}
