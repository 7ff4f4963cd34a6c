package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/logfields"
	"git.home.luguber.info/inful/sociallike/internal/observability"
	"git.home.luguber.info/inful/sociallike/internal/registry"
	"git.home.luguber.info/inful/sociallike/internal/vhost"
)

// TriggerCLI identifies batches started from the command line.
const TriggerCLI = "cli"

// UpdateCanonicalURLCmd implements the 'update-canonical-url' command.
type UpdateCanonicalURLCmd struct {
	OldCanonicalDomain string `name:"old-domain" required:"" help:"Domain items are pinned to, e.g. http://example.org"`
	PublishedBefore    string `name:"published-before" required:"" help:"Exclusive cutoff date (YYYY-MM-DD or RFC 3339)"`
	LiveDomain         string `name:"live-domain" help:"Live canonical domain (defaults to the registry canonical_domain)"`
	Path               string `default:"/" help:"Traversal path the batch runs under, e.g. /VirtualHostBase/https/example.org/plone/VirtualHostRoot/"`
	JSON               bool   `help:"Print the result as JSON"`
}

func (u *UpdateCanonicalURLCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()

	cutoff, err := canonical.ParseDate(u.PublishedBefore)
	if err != nil {
		return err
	}
	req := canonical.UpdateRequest{OldCanonicalDomain: u.OldCanonicalDomain, PublishedBefore: cutoff}
	if err := req.Validate(); err != nil {
		return err
	}
	rc, err := vhost.Traverse(u.Path)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	live, err := canonical.NormalizeDomain(u.LiveDomain)
	if err != nil {
		return err
	}
	if live == "" {
		if live, err = registry.CanonicalDomain(ctx, a.Registry); err != nil {
			return err
		}
	}

	ctx = observability.WithTrigger(ctx, TriggerCLI)
	res, err := a.Updater.UpdateCanonicalURL(ctx, rc, live, req)
	if err != nil {
		return err
	}
	ctx = observability.WithBatchID(ctx, res.BatchID)
	if a.History != nil {
		if err := a.History.BatchCompleted(ctx, req, live, TriggerCLI, res); err != nil {
			g.Logger.Warn("Failed to record batch", logfields.Error(err))
		}
	}

	if u.JSON {
		return printJSON(g.Out, res)
	}
	for _, c := range res.Changes {
		_, _ = fmt.Fprintf(g.Out, "%s -> %s\n", c.Path, c.Current)
	}
	_, _ = fmt.Fprintf(g.Out, "updated=%d unchanged=%d skipped=%d after_cutoff=%d\n",
		res.Updated, res.Unchanged, res.Skipped, res.AfterCutoff)
	return nil
}
