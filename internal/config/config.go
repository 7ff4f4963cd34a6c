// Package config loads the YAML configuration of the sociallike service.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

// CurrentVersion is the configuration format version written by Init.
const CurrentVersion = "1.0"

// Config is the root configuration document.
type Config struct {
	Version  string         `yaml:"version"`
	Site     SiteConfig     `yaml:"site"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Registry RegistryConfig `yaml:"registry"`
	History  HistoryConfig  `yaml:"history"`
	Notify   NotifyConfig   `yaml:"notify"`
	Schedule ScheduleConfig `yaml:"schedule,omitempty"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SiteConfig describes the content site.
type SiteConfig struct {
	ID    string `yaml:"id"`    // physical root segment, e.g. "plone"
	Title string `yaml:"title"` // used as og:site_name
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	PublicURL       string        `yaml:"public_url,omitempty"` // server URL when not virtual hosted
	ReadTimeout     time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// StorageConfig selects the content store.
type StorageConfig struct {
	Backend StorageBackend `yaml:"backend"`
	Path    string         `yaml:"path,omitempty"` // sqlite file or markdown directory
}

// RegistryConfig selects the settings registry backend.
type RegistryConfig struct {
	Backend RegistryBackend `yaml:"backend"`
	Path    string          `yaml:"path,omitempty"` // file backend
	Watch   bool            `yaml:"watch,omitempty"`
	Redis   RedisConfig     `yaml:"redis,omitempty"`
}

// RedisConfig configures the Redis registry backend.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// HistoryConfig configures the canonical URL change log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// NotifyConfig configures reindex notifications.
type NotifyConfig struct {
	Log  bool       `yaml:"log"`
	NATS NATSConfig `yaml:"nats,omitempty"`
}

// NATSConfig configures the NATS notifier. An empty URL disables it.
type NATSConfig struct {
	URL     string      `yaml:"url,omitempty"`
	Subject string      `yaml:"subject,omitempty"`
	Rate    float64     `yaml:"rate,omitempty"` // events per second
	Burst   int         `yaml:"burst,omitempty"`
	Retry   RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig configures a retry policy.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff,omitempty"`
	Initial    time.Duration    `yaml:"initial,omitempty"`
	Max        time.Duration    `yaml:"max,omitempty"`
	MaxRetries int              `yaml:"max_retries,omitempty"`
}

// ScheduleConfig lists scheduled canonical URL updates.
type ScheduleConfig struct {
	Jobs []JobConfig `yaml:"jobs,omitempty"`
}

// JobConfig is one cron-driven canonical URL update.
type JobConfig struct {
	Name               string `yaml:"name"`
	Cron               string `yaml:"cron"`
	OldCanonicalDomain string `yaml:"old_canonical_domain"`
	PublishedBefore    string `yaml:"published_before"`
	// LiveDomain overrides the registry canonical_domain for this job.
	LiveDomain string `yaml:"live_domain,omitempty"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// Load reads the configuration file at path. Variables from .env files are
// loaded first and ${VAR} references in the file are expanded.
func Load(path string) (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "read configuration file").
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// Parse decodes, normalizes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "decode configuration").Fatal().Build()
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) normalize() error {
	var err error
	if c.Logging.Level, err = logLevelNormalizer.Parse(string(c.Logging.Level)); err != nil {
		return err
	}
	if c.Logging.Format, err = logFormatNormalizer.Parse(string(c.Logging.Format)); err != nil {
		return err
	}
	if c.Storage.Backend, err = storageBackendNormalizer.Parse(string(c.Storage.Backend)); err != nil {
		return err
	}
	if c.Registry.Backend, err = registryBackendNormalizer.Parse(string(c.Registry.Backend)); err != nil {
		return err
	}
	if c.Notify.NATS.Retry.Backoff, err = retryBackoffNormalizer.Parse(string(c.Notify.NATS.Retry.Backoff)); err != nil {
		return err
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	if c.Site.ID == "" {
		c.Site.ID = "plone"
	}
	if c.Site.Title == "" {
		c.Site.Title = "Site"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageMemory
	}
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case StorageSQLite:
			c.Storage.Path = "./data/content.db"
		case StorageMarkdown:
			c.Storage.Path = "./content"
		}
	}
	if c.Registry.Backend == "" {
		c.Registry.Backend = RegistryMemory
	}
	if c.Registry.Backend == RegistryFile && c.Registry.Path == "" {
		c.Registry.Path = "./registry.yaml"
	}
	if c.Registry.Redis.KeyPrefix == "" {
		c.Registry.Redis.KeyPrefix = "sociallike:registry:"
	}
	if c.History.Enabled && c.History.Path == "" {
		c.History.Path = "./data/history.db"
	}
	if c.Notify.NATS.Subject == "" {
		c.Notify.NATS.Subject = "sociallike.reindex"
	}
	if c.Notify.NATS.Rate == 0 {
		c.Notify.NATS.Rate = 50
	}
	if c.Notify.NATS.Burst == 0 {
		c.Notify.NATS.Burst = 10
	}
	if c.Notify.NATS.Retry.Backoff == "" {
		c.Notify.NATS.Retry.Backoff = RetryBackoffLinear
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}
