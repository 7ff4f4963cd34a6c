package commands

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sociallike/internal/registry"
)

// RegistryCmd groups the registry subcommands.
type RegistryCmd struct {
	Get RegistryGetCmd `cmd:"" help:"Print registry records"`
	Set RegistrySetCmd `cmd:"" help:"Set a registry record"`
}

// RegistryGetCmd implements 'registry get'.
type RegistryGetCmd struct {
	Record    string `arg:"" optional:"" help:"Record name; all records when omitted"`
	Interface string `default:"social_like" help:"Settings interface"`
}

func (r *RegistryGetCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	names := []string{r.Record}
	if r.Record == "" {
		schema, err := registry.Lookup(r.Interface)
		if err != nil {
			return err
		}
		names = schema.Names()
	}
	for _, name := range names {
		v, err := a.Registry.Get(ctx, r.Interface, name)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(g.Out, "%s = %s\n", name, formatValue(v))
	}
	return nil
}

// RegistrySetCmd implements 'registry set'. List records take a comma
// separated value.
type RegistrySetCmd struct {
	Record    string `arg:"" help:"Record name"`
	Value     string `arg:"" help:"New value"`
	Interface string `default:"social_like" help:"Settings interface"`
}

func (r *RegistrySetCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Registry.Set(ctx, r.Interface, r.Record, r.Value); err != nil {
		return err
	}
	v, err := a.Registry.Get(ctx, r.Interface, r.Record)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "%s = %s\n", r.Record, formatValue(v))
	return nil
}

func formatValue(v any) string {
	if l, ok := v.([]string); ok {
		return strings.Join(l, ",")
	}
	return fmt.Sprint(v)
}
