package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/content"
)

// ContentCmd groups the content subcommands.
type ContentCmd struct {
	Create  ContentCreateCmd  `cmd:"" help:"Create a private content item"`
	Publish ContentPublishCmd `cmd:"" help:"Fire a workflow transition and optionally set the effective date"`
	List    ContentListCmd    `cmd:"" help:"List content items"`
}

// ContentCreateCmd implements 'content create'.
type ContentCreateCmd struct {
	Title       string `arg:"" help:"Item title"`
	Parent      string `help:"Parent path (defaults to the site root)"`
	Type        string `default:"Document" help:"Portal type"`
	ID          string `name:"id" help:"Path segment (derived from the title when empty)"`
	Description string `help:"Description"`
	Text        string `help:"Markdown body"`
}

func (c *ContentCreateCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	parent := c.Parent
	if parent == "" {
		parent = a.Content.Root()
	}
	item, err := a.Content.Create(ctx, parent, c.Type, c.ID, c.Title)
	if err != nil {
		return err
	}
	if c.Description != "" || c.Text != "" {
		item.Description, item.Text = c.Description, c.Text
		if err := a.Content.Save(ctx, item); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(g.Out, "%s %s\n", item.Path, item.UID)
	return nil
}

// ContentPublishCmd implements 'content publish'.
type ContentPublishCmd struct {
	Path      string `arg:"" help:"Physical path of the item"`
	Action    string `default:"publish" enum:"submit,publish,retract,reject,none" help:"Workflow transition (none only sets the effective date)"`
	Effective string `help:"Effective date (YYYY-MM-DD or RFC 3339)"`
}

func (c *ContentPublishCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	var effective time.Time
	if c.Effective != "" {
		var err error
		if effective, err = canonical.ParseDate(c.Effective); err != nil {
			return err
		}
	}

	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	item, err := a.Content.Get(ctx, content.JoinPath(c.Path))
	if err != nil {
		return err
	}
	if c.Action != "none" {
		if err := a.Content.Transition(ctx, item, c.Action); err != nil {
			return err
		}
	}
	if !effective.IsZero() {
		if err := a.Content.SetEffective(ctx, item, effective); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(g.Out, "%s %s\n", item.Path, item.State)
	return nil
}

// ContentListCmd implements 'content list'.
type ContentListCmd struct {
	State  string   `help:"Only list items in this state (private, pending, published)"`
	Type   []string `help:"Only list items of these portal types (repeatable)"`
	Before string   `help:"Only list items effective before this date (YYYY-MM-DD or RFC 3339); unset effective dates count as earliest"`
	JSON   bool     `help:"Print items as JSON"`
}

func (c *ContentListCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	state, err := content.ParseState(c.State)
	if err != nil {
		return err
	}
	q := content.Query{State: state, Types: c.Type}
	if c.Before != "" {
		if q.EffectiveBefore, err = canonical.ParseDate(c.Before); err != nil {
			return err
		}
	}

	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	items, err := a.Content.Find(ctx, q)
	if err != nil {
		return err
	}
	slices.SortFunc(items, func(x, y *content.Item) int { return strings.Compare(x.Path, y.Path) })

	if c.JSON {
		return printJSON(g.Out, items)
	}
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PATH\tTYPE\tSTATE\tEFFECTIVE\tCANONICAL URL")
	for _, item := range items {
		effective, pinned := "-", "-"
		if !item.EffectiveDate.IsZero() {
			effective = item.EffectiveDate.Format(time.DateOnly)
		}
		if item.CanonicalURL != nil {
			pinned = *item.CanonicalURL
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", item.Path, item.Type, item.State, effective, pinned)
	}
	return tw.Flush()
}
