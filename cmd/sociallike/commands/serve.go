package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/sociallike/internal/logfields"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr        string `help:"Listen address (overrides server.addr)"`
	NoScheduler bool   `name:"no-scheduler" help:"Do not run scheduled canonical URL updates"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	if s.Addr != "" {
		a.Config.Server.Addr = s.Addr
	}

	go func() {
		if err := a.WatchRegistry(ctx); err != nil {
			g.Logger.Error("Registry watcher stopped", logfields.Error(err))
		}
	}()

	if !s.NoScheduler && len(a.Config.Schedule.Jobs) > 0 {
		sched, err := a.Scheduler()
		if err != nil {
			return err
		}
		sched.Start(ctx)
		defer func() { _ = sched.Stop() }()
	}

	srv := a.Server()
	if err := srv.Start(ctx); err != nil {
		return err
	}
	g.Logger.Info("Serving", slog.String("addr", a.Config.Server.Addr), slog.String("site", a.Content.Root()))

	<-ctx.Done()
	g.Logger.Info("Shutdown signal received, stopping server...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer stopCancel()
	return srv.Stop(stopCtx)
}
