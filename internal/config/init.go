package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

// Example returns the configuration written by Init.
func Example() *Config {
	cfg := &Config{
		Version: CurrentVersion,
		Site:    SiteConfig{ID: "plone", Title: "My Site"},
		Server:  ServerConfig{Addr: ":8080", PublicURL: "https://example.org"},
		Storage: StorageConfig{Backend: StorageSQLite, Path: "./data/content.db"},
		Registry: RegistryConfig{
			Backend: RegistryFile,
			Path:    "./registry.yaml",
			Watch:   true,
		},
		History: HistoryConfig{Enabled: true, Path: "./data/history.db"},
		Notify: NotifyConfig{
			Log: true,
			NATS: NATSConfig{
				URL:     "${NATS_URL}",
				Subject: "sociallike.reindex",
				Retry:   RetryConfig{Backoff: RetryBackoffExponential, MaxRetries: 3},
			},
		},
		Schedule: ScheduleConfig{Jobs: []JobConfig{{
			Name:               "pin-legacy-domain",
			Cron:               "0 3 * * *",
			OldCanonicalDomain: "http://example.org",
			PublishedBefore:    "2017-01-01",
		}}},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatJSON},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	cfg.applyDefaults()
	return cfg
}

// Init writes an example configuration file to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.AlreadyExistsError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}
	data, err := yaml.Marshal(Example())
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode example configuration").Build()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "create configuration directory").Build()
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "write configuration file").
			WithContext("path", path).
			Build()
	}
	return nil
}
