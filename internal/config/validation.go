package config

import (
	"strings"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

// Validate checks cross-field constraints. Defaults must already be applied.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return errors.ConfigError("unsupported configuration version").
			WithContext("version", c.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}
	if err := content.ValidateID(c.Site.ID); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid site id").
			WithContext("site_id", c.Site.ID).
			Build()
	}
	if c.Storage.Backend != StorageMemory && c.Storage.Path == "" {
		return fieldError("storage.path", "required for the "+string(c.Storage.Backend)+" backend")
	}
	if c.Registry.Backend == RegistryRedis && c.Registry.Redis.Addr == "" {
		return fieldError("registry.redis.addr", "required for the redis backend")
	}
	if c.Notify.NATS.Rate < 0 || c.Notify.NATS.Burst < 0 {
		return fieldError("notify.nats", "rate and burst cannot be negative")
	}
	if c.Notify.NATS.Retry.MaxRetries < 0 {
		return fieldError("notify.nats.retry.max_retries", "cannot be negative")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fieldError("metrics.path", "must start with /")
	}

	seen := map[string]bool{}
	for i, job := range c.Schedule.Jobs {
		switch {
		case job.Name == "":
			return fieldError("schedule.jobs", "job name is required").WithContext("index", i)
		case seen[job.Name]:
			return fieldError("schedule.jobs", "duplicate job name").WithContext("job", job.Name)
		case strings.TrimSpace(job.Cron) == "":
			return fieldError("schedule.jobs.cron", "required").WithContext("job", job.Name)
		case job.OldCanonicalDomain == "" || job.PublishedBefore == "":
			return fieldError("schedule.jobs", "old_canonical_domain and published_before are required").
				WithContext("job", job.Name)
		}
		seen[job.Name] = true
	}
	return nil
}

func fieldError(field, msg string) *errors.ClassifiedError {
	return errors.ConfigError(field + ": " + msg).WithContext("field", field).Build()
}
