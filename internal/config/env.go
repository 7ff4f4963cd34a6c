package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

// EnvFiles are tried in order by LoadEnvFiles.
var EnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads variables from the first existing env file. Variables
// already present in the process environment are not overridden. A file that
// exists but cannot be parsed is a configuration error.
func LoadEnvFiles() error {
	for _, path := range EnvFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "load env file").
				WithContext("path", path).
				Build()
		}
		slog.Debug("Loaded environment variables", slog.String("path", path))
		return nil
	}
	return nil
}
