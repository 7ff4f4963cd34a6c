package httpserver

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/history"
	"git.home.luguber.info/inful/sociallike/internal/share"
)

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}{{if .SiteTitle}} | {{.SiteTitle}}{{end}}</title>
{{.Head}}</head>
<body>
<header><a href="{{.SiteURL}}">{{.SiteTitle}}</a></header>
<main>
{{template "content" .}}
</main>
</body>
</html>
{{end}}`

const itemHTML = `{{define "content"}}<article>
<h1>{{.Title}}</h1>
{{if .Description}}<p class="description">{{.Description}}</p>{{end}}
{{.Body}}
{{if .Buttons}}<ul class="share">
{{range .Buttons}}<li><a class="share-{{.ID}}" href="{{.URL}}" rel="noopener" target="_blank">{{.Title}}</a></li>
{{end}}</ul>{{end}}
</article>{{end}}`

const listingHTML = `{{define "content"}}<h1>{{.SiteTitle}}</h1>
<ul class="listing">
{{range .Entries}}<li><a href="{{.URL}}">{{.Title}}</a>{{if not .Effective.IsZero}} <time>{{.Effective.Format "2006-01-02"}}</time>{{end}}</li>
{{end}}</ul>{{end}}`

const updaterHTML = `{{define "content"}}<h1>Update canonical URLs</h1>
<p>Pin the canonical URL of every item published before a date to an old domain.
The live canonical domain is {{if .LiveDomain}}<code>{{.LiveDomain}}</code>{{else}}not set{{end}}.</p>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{with .Result}}<p class="status">Canonical URL updated for {{.Updated}} items ({{.Unchanged}} unchanged, {{.Skipped}} without canonical URL).</p>{{end}}
<form method="post">
<label>Old canonical domain <input type="url" name="old_canonical_domain" value="{{.OldCanonicalDomain}}" required></label>
<label>Published before <input type="date" name="published_before" value="{{.PublishedBefore}}" required></label>
<button type="submit">Update</button>
</form>
{{if .Batches}}<h2>Recent batches</h2>
<table>
<tr><th>At</th><th>Old domain</th><th>Published before</th><th>Updated</th><th>Trigger</th></tr>
{{range .Batches}}<tr><td>{{.At.Format "2006-01-02 15:04"}}</td><td>{{.OldCanonicalDomain}}</td><td>{{.PublishedBefore.Format "2006-01-02"}}</td><td>{{.Updated}}</td><td>{{.Trigger}}</td></tr>
{{end}}</table>{{end}}{{end}}`

type pages struct {
	item    *template.Template
	listing *template.Template
	updater *template.Template
}

func mustParsePages() *pages {
	parse := func(name, body string) *template.Template {
		t := template.Must(template.New(name).Parse(layoutHTML))
		return template.Must(t.Parse(body))
	}
	return &pages{
		item:    parse("item", itemHTML),
		listing: parse("listing", listingHTML),
		updater: parse("updater", updaterHTML),
	}
}

type page struct {
	Title     string
	SiteTitle string
	SiteURL   string
	Head      template.HTML
}

type itemPage struct {
	page
	Description string
	Body        template.HTML
	Buttons     []share.Button
}

type listingEntry struct {
	Title     string
	URL       string
	Effective time.Time
}

type listingPage struct {
	page
	Entries []listingEntry
}

type updaterPage struct {
	page
	LiveDomain         string
	OldCanonicalDomain string
	PublishedBefore    string
	Error              string
	Result             *canonical.Result
	Batches            []history.BatchSummary
}

func (s *Server) render(w http.ResponseWriter, t *template.Template, status int, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "render page").Build()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return nil
}
