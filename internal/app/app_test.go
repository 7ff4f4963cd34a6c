package app

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/config"
	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/registry"
	"git.home.luguber.info/inful/sociallike/internal/vhost"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage = config.StorageConfig{Backend: config.StorageSQLite, Path: filepath.Join(dir, "data", "content.db")}
	cfg.Registry = config.RegistryConfig{Backend: config.RegistryFile, Path: filepath.Join(dir, "registry.yaml")}
	cfg.History = config.HistoryConfig{Enabled: true, Path: filepath.Join(dir, "data", "history.db")}
	cfg.Notify.Log = true
	cfg.Metrics.Enabled = true
	cfg.Schedule.Jobs = []config.JobConfig{{
		Name:               "legacy",
		Cron:               "0 3 * * *",
		OldCanonicalDomain: "http://example.org",
		PublishedBefore:    "2017-01-01",
	}}
	return cfg
}

func TestOpen_EndToEnd(t *testing.T) {
	ctx := t.Context()
	var logs bytes.Buffer
	a, err := Open(ctx, testConfig(t), NewLogger(config.LoggingConfig{Level: config.LogLevelInfo}, &logs, false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Registry.Set(ctx, registry.InterfaceSocialLike, registry.RecordCanonicalDomain, "https://example.org"))

	item, err := a.Content.Create(ctx, "/plone", "News Item", "", "Old news")
	require.NoError(t, err)
	require.Equal(t, "old-news", item.ID)
	require.NoError(t, a.Content.Transition(ctx, item, content.TransitionPublish))
	require.NoError(t, a.Content.SetEffective(ctx, item, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)))

	res, err := a.Updater.UpdateCanonicalURL(ctx, vhost.Identity(), "https://example.org", canonical.UpdateRequest{
		OldCanonicalDomain: "http://example.org",
		PublishedBefore:    time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)

	entries := a.Projection.ForItem(item.UID)
	require.Len(t, entries, 1)
	require.Equal(t, "http://example.org/plone/old-news", entries[0].Current)
	require.Contains(t, logs.String(), "http://example.org/plone/old-news")

	count, err := testutil.GatherAndCount(a.Prometheus, "sociallike_registry_writes_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	s, err := a.Scheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	require.Equal(t, []string{"legacy"}, s.Jobs())
}

func TestOpen_UpdaterFollowsEnabledPortalTypes(t *testing.T) {
	ctx := t.Context()
	a, err := Open(ctx, testConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Registry.Set(ctx, registry.InterfaceSocialLike, registry.RecordEnabledPortalTypes, []string{"Document"}))
	for _, typ := range []string{"News Item", "Document"} {
		item, err := a.Content.Create(ctx, "/plone", typ, "", typ)
		require.NoError(t, err)
		require.NoError(t, a.Content.Transition(ctx, item, content.TransitionPublish))
	}

	res, err := a.Updater.UpdateCanonicalURL(ctx, vhost.Identity(), "https://example.org", canonical.UpdateRequest{
		OldCanonicalDomain: "http://example.org",
		PublishedBefore:    time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)
	require.Equal(t, "/plone/document", res.Changes[0].Path)
}

func TestOpen_ReopenKeepsState(t *testing.T) {
	ctx := t.Context()
	cfg := testConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := Open(ctx, cfg, logger)
	require.NoError(t, err)
	require.NoError(t, a.Registry.Set(ctx, registry.InterfaceSocialLike, registry.RecordTwitterUsername, "@example"))
	_, err = a.Content.Create(ctx, "/plone", "Document", "about", "About")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := Open(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	v, err := b.Registry.Get(ctx, registry.InterfaceSocialLike, registry.RecordTwitterUsername)
	require.NoError(t, err)
	require.Equal(t, "example", v)
	_, err = b.Content.Get(ctx, "/plone/about")
	require.NoError(t, err)
}

func TestOpen_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schedule.Jobs[0].Cron = "never"
	a, err := Open(t.Context(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.Scheduler()
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(config.LoggingConfig{Level: config.LogLevelWarn, Format: config.LogFormatJSON}, &buf, false).Info("hidden")
	require.Empty(t, buf.String())

	NewLogger(config.LoggingConfig{Level: config.LogLevelWarn, Format: config.LogFormatJSON}, &buf, true).Debug("shown")
	require.Contains(t, buf.String(), `"msg":"shown"`)
}
