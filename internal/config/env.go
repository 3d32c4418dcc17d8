package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvSource resolves environment variables.
type EnvSource interface {
	Lookup(key string) (string, bool)
}

// EnvMap is an EnvSource backed by a map. Handy in tests.
type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

// FromEnviron snapshots the process environment.
func FromEnviron() EnvSource {
	env := make(EnvMap)
	for _, entry := range os.Environ() {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}

// LoadDotEnv loads path into the process environment if it exists.
// Variables that are already set are not overridden.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// LoadFromEnv loads the config file and overlays the .env file and the
// process environment.
func LoadFromEnv(configPath string, explicit bool) (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return Load(configPath, explicit, FromEnviron())
}
