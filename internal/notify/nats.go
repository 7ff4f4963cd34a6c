package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/config"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/logfields"
	"git.home.luguber.info/inful/sociallike/internal/metrics"
	"git.home.luguber.info/inful/sociallike/internal/retry"
)

// Publisher is the subset of *nats.Conn used by NATSNotifier.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes a ReindexEvent per change. Publishing is throttled
// by a token bucket and failed publishes are retried per policy.
type NATSNotifier struct {
	pub      Publisher
	conn     *nats.Conn
	subject  string
	limiter  *rate.Limiter
	policy   retry.Policy
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NATSOption configures a NATSNotifier.
type NATSOption func(*NATSNotifier)

// WithRate limits publishing to r events per second with the given burst.
func WithRate(r float64, burst int) NATSOption {
	return func(n *NATSNotifier) {
		if r > 0 && burst > 0 {
			n.limiter = rate.NewLimiter(rate.Limit(r), burst)
		}
	}
}

// WithRetryPolicy sets the retry policy for failed publishes.
func WithRetryPolicy(p retry.Policy) NATSOption {
	return func(n *NATSNotifier) { n.policy = p }
}

// WithNotifyRecorder sets the metrics recorder.
func WithNotifyRecorder(r metrics.Recorder) NATSOption {
	return func(n *NATSNotifier) {
		if r != nil {
			n.recorder = r
		}
	}
}

// WithNotifyLogger sets the logger.
func WithNotifyLogger(l *slog.Logger) NATSOption {
	return func(n *NATSNotifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNATSNotifier publishes to subject through pub.
func NewNATSNotifier(pub Publisher, subject string, opts ...NATSOption) *NATSNotifier {
	n := &NATSNotifier{
		pub:      pub,
		subject:  subject,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		policy:   retry.DefaultPolicy(),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ConnectNATS dials the server in cfg and returns a notifier owning the connection.
func ConnectNATS(cfg config.NATSConfig, opts ...NATSOption) (*NATSNotifier, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("sociallike"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").
			Retryable().
			WithContext("url", cfg.URL).
			Build()
	}
	base := []NATSOption{
		WithRate(cfg.Rate, cfg.Burst),
		WithRetryPolicy(retry.FromConfig(cfg.Retry)),
	}
	n := NewNATSNotifier(conn, cfg.Subject, append(base, opts...)...)
	n.conn = conn
	n.logger.Info("NATS notifier connected", slog.String("url", cfg.URL), logfields.Subject(cfg.Subject))
	return n, nil
}

func (n *NATSNotifier) Name() string { return "nats" }

// CanonicalURLChanged implements canonical.Observer.
func (n *NATSNotifier) CanonicalURLChanged(ctx context.Context, c canonical.Change) error {
	data, err := json.Marshal(NewReindexEvent(ctx, c))
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal reindex event").Build()
	}
	if err := n.limiter.Wait(ctx); err != nil {
		n.recorder.IncNotification(false)
		return errors.WrapError(err, errors.CategoryRuntime, "reindex notification throttled").Build()
	}

	err = n.policy.Do(ctx, func(context.Context) error {
		if err := n.pub.Publish(n.subject, data); err != nil {
			return errors.WrapError(err, errors.CategoryNetwork, "publish reindex event").
				Retryable().
				WithContext("subject", n.subject).
				Build()
		}
		return nil
	})
	n.recorder.IncNotification(err == nil)
	if err != nil {
		return err
	}
	n.logger.Debug("Published reindex event", logfields.Subject(n.subject), logfields.Path(c.Path))
	return nil
}

// Close flushes and closes the connection when the notifier owns one.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	if err := n.conn.FlushTimeout(2 * time.Second); err != nil {
		n.logger.Warn("NATS flush failed", logfields.Error(err))
	}
	n.conn.Close()
	return nil
}
