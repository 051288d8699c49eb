package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel = "LOG_LEVEL"
	EnvRoot     = "IJCNAM_ROOT"
	EnvProxy    = "IJCNAM_PROXY"
	EnvSeedURL  = "IJCNAM_SEED_URL"
)

// LoadDotEnv loads dir/.env into the process environment. Variables already
// set are left untouched. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides c with the process environment.
func (c *Config) ApplyEnv() {
	c.ApplyEnvFrom(os.LookupEnv)
}

// ApplyEnvFrom overrides c with the variables returned by lookup.
// Empty values are ignored.
func (c *Config) ApplyEnvFrom(lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	setString(&c.LogLevel, get(EnvLogLevel))
	setString(&c.ProjectRoot, get(EnvRoot))
	setString(&c.ProxyAddress, get(EnvProxy))
	setString(&c.SeedURL, get(EnvSeedURL))
}
