// Package commands implements the sociallike command line.
package commands

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sociallike/internal/app"
	"git.home.luguber.info/inful/sociallike/internal/config"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

// Global is shared state bound into every command's Run.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sociallike.yaml" env:"SOCIALLIKE_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve              ServeCmd              `cmd:"" help:"Serve content, social metadata and the canonical URL updater over HTTP"`
	UpdateCanonicalURL UpdateCanonicalURLCmd `cmd:"" name:"update-canonical-url" help:"Pin canonical URLs of items published before a date to an old domain"`
	ResolvePath        ResolvePathCmd        `cmd:"" name:"resolve-path" help:"Resolve the virtual path of an item for a traversal path"`
	Registry           RegistryCmd           `cmd:"" help:"Read and write registry settings"`
	Content            ContentCmd            `cmd:"" help:"Manage content items"`
	Init               InitCmd               `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; set up the bootstrap logger once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig reads the configuration file. A missing file yields the
// defaults. The logger is rebuilt from the logging section.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(root.Config); os.IsNotExist(err) {
		if err := config.LoadEnvFiles(); err != nil {
			return nil, err
		}
		cfg = config.Default()
		g.Logger.Debug("Configuration file not found, using defaults", slog.String("path", root.Config))
	} else {
		if cfg, err = config.Load(root.Config); err != nil {
			return nil, err
		}
	}
	g.Logger = app.NewLogger(cfg.Logging, os.Stderr, root.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// openApp loads the configuration and opens its services.
func openApp(ctx context.Context, g *Global, root *CLI) (*app.App, error) {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg, g.Logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode output").Build()
	}
	return nil
}
