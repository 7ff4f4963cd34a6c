package config

import (
	"log/slog"

	"git.home.luguber.info/inful/sociallike/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps raw input to a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel { return logLevelNormalizer.Normalize(raw) }

// SlogLevel converts the level for slog handlers.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat maps raw input to a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat { return logFormatNormalizer.Normalize(raw) }

// StorageBackend selects the content store implementation.
type StorageBackend string

const (
	StorageMemory   StorageBackend = "memory"
	StorageSQLite   StorageBackend = "sqlite"
	StorageMarkdown StorageBackend = "markdown"
)

var storageBackendNormalizer = normalization.NewNormalizer("storage backend", map[string]StorageBackend{
	"memory":   StorageMemory,
	"sqlite":   StorageSQLite,
	"markdown": StorageMarkdown,
	"md":       StorageMarkdown,
}, StorageMemory)

// ParseStorageBackend validates a storage backend name.
func ParseStorageBackend(raw string) (StorageBackend, error) {
	return storageBackendNormalizer.Parse(raw)
}

// RegistryBackend selects the registry implementation.
type RegistryBackend string

const (
	RegistryMemory RegistryBackend = "memory"
	RegistryFile   RegistryBackend = "file"
	RegistryRedis  RegistryBackend = "redis"
)

var registryBackendNormalizer = normalization.NewNormalizer("registry backend", map[string]RegistryBackend{
	"memory": RegistryMemory,
	"file":   RegistryFile,
	"redis":  RegistryRedis,
}, RegistryMemory)

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer("retry backoff", map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
}, RetryBackoffLinear)

// NormalizeRetryBackoff maps raw input to a backoff mode; unknown input yields "".
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	mode, err := retryBackoffNormalizer.Parse(raw)
	if err != nil {
		return ""
	}
	return mode
}
