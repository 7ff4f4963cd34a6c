package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/vhost"
)

// ResolvePathCmd implements the 'resolve-path' command. It needs no
// configuration or storage.
type ResolvePathCmd struct {
	Traversal  string `arg:"" help:"Request traversal path, e.g. /VirtualHostBase/http/bar.com/plone/VirtualHostRoot/"`
	Item       string `arg:"" help:"Physical path of the item, e.g. /plone/foo"`
	LiveDomain string `name:"live-domain" help:"Also print the canonical URL under this domain"`
}

func (r *ResolvePathCmd) Run(g *Global) error {
	req, err := vhost.Traverse(r.Traversal)
	if err != nil {
		return err
	}
	item := vhost.PhysicalPath(content.JoinPath(r.Item))
	_, _ = fmt.Fprintln(g.Out, vhost.PathToVirtualPath(req, item))

	if r.LiveDomain != "" {
		live, err := canonical.NormalizeDomain(r.LiveDomain)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(g.Out, canonical.Join(live, vhost.PathToVirtualPath(req, item)))
	}
	return nil
}
