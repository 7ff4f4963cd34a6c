package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sociallike/cmd/sociallike/commands"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout}
	parser := kong.Parse(cli,
		kong.Name("sociallike"),
		kong.Description("Social sharing metadata and canonical URL maintenance for content sites."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	if err := parser.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
