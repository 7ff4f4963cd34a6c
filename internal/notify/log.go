package notify

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/logfields"
	"git.home.luguber.info/inful/sociallike/internal/observability"
)

// LogNotifier logs every change at info level.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier; nil uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) CanonicalURLChanged(ctx context.Context, c canonical.Change) error {
	observability.Logger(ctx, n.logger).Info("Canonical URL changed",
		logfields.ItemUID(c.ItemUID),
		logfields.Path(c.Path),
		logfields.Previous(c.Previous),
		logfields.CanonicalURL(c.Current))
	return nil
}
