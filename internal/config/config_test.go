package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/ijcnam/internal/crawler"
	"github.com/nao1215/ijcnam/internal/database"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default seed URL is the CNAM IJ page", func(t *testing.T) {
		t.Parallel()
		if cfg.SeedURL != DefaultSeedURL {
			t.Errorf("expected SeedURL to be %q, got %q", DefaultSeedURL, cfg.SeedURL)
		}
	})

	t.Run("default link filters", func(t *testing.T) {
		t.Parallel()
		if cfg.LinkPrefix != "/etudes-et-donnees/" || cfg.TopicSubstring != "ij" || cfg.SpreadsheetExt != ".xlsx" {
			t.Errorf("unexpected filters: %q %q %q", cfg.LinkPrefix, cfg.TopicSubstring, cfg.SpreadsheetExt)
		}
	})

	t.Run("crawler and catalog defaults come from their packages", func(t *testing.T) {
		t.Parallel()
		if cfg.UserAgent != crawler.DefaultUserAgent || cfg.MaxBodySize != crawler.DefaultMaxBodySize {
			t.Errorf("unexpected client defaults: %q %d", cfg.UserAgent, cfg.MaxBodySize)
		}
		if cfg.LinkPrefix != crawler.DefaultLinkPrefix || cfg.SpreadsheetExt != crawler.DefaultSpreadsheetExtension {
			t.Errorf("unexpected filters: %q %q", cfg.LinkPrefix, cfg.SpreadsheetExt)
		}
		if filepath.Base(cfg.DBPath()) != database.FileName {
			t.Errorf("DBPath() = %q, want file %q", cfg.DBPath(), database.FileName)
		}
	})

	t.Run("default timeout is none", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 0 {
			t.Errorf("expected Timeout to be 0, got %v", cfg.Timeout)
		}
	})

	t.Run("default log level is info", func(t *testing.T) {
		t.Parallel()
		if cfg.LogLevel != "info" {
			t.Errorf("expected LogLevel to be 'info', got %q", cfg.LogLevel)
		}
	})

	t.Run("catalog is enabled by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to validate, got %v", err)
		}
	})
}

// TestConfigDirectories tests the derived data directories.
func TestConfigDirectories(t *testing.T) {
	t.Parallel()

	t.Run("relative to project root", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ProjectRoot = filepath.Join("srv", "ij")

		if got, want := cfg.RawDir(), filepath.Join("srv", "ij", "data", "ij_cnam", "raw"); got != want {
			t.Errorf("RawDir() = %q, expected %q", got, want)
		}
		if got, want := cfg.CleanDir(), filepath.Join("srv", "ij", "data", "ij_cnam", "clean"); got != want {
			t.Errorf("CleanDir() = %q, expected %q", got, want)
		}
		if got, want := cfg.DBPath(), filepath.Join("srv", "ij", "data", "ij_cnam", "ijcnam.db"); got != want {
			t.Errorf("DBPath() = %q, expected %q", got, want)
		}
	})

	t.Run("empty root is the current directory", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if got, want := cfg.RawDir(), filepath.Join("data", "ij_cnam", "raw"); got != want {
			t.Errorf("RawDir() = %q, expected %q", got, want)
		}
	})
}

// TestEffectiveLogLevel tests the verbose override.
func TestEffectiveLogLevel(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.LogLevel = "warn"
	if got := cfg.EffectiveLogLevel(); got != "warn" {
		t.Errorf("got %q", got)
	}
	cfg.Verbose = true
	if got := cfg.EffectiveLogLevel(); got != "debug" {
		t.Errorf("got %q", got)
	}
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid defaults", modify: func(*Config) {}},
		{name: "seed URL without scheme", modify: func(c *Config) { c.SeedURL = "www.ameli.fr" }, wantErr: ErrInvalidSeedURL},
		{name: "empty prefix", modify: func(c *Config) { c.LinkPrefix = "" }, wantErr: ErrEmptyLinkFilter},
		{name: "empty spreadsheet extension", modify: func(c *Config) { c.SpreadsheetExt = "" }, wantErr: ErrEmptyLinkFilter},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{name: "unknown log level", modify: func(c *Config) { c.LogLevel = "trace" }, wantErr: ErrInvalidLogLevel},
		{name: "upper-case log level", modify: func(c *Config) { c.LogLevel = "DEBUG" }},
		{name: "proxy host:port", modify: func(c *Config) { c.ProxyAddress = "127.0.0.1:1080" }},
		{name: "proxy with credentials", modify: func(c *Config) { c.ProxyAddress = "socks5://u:p@proxy:1080" }},
		{name: "proxy without port", modify: func(c *Config) { c.ProxyAddress = "proxy" }, wantErr: ErrInvalidProxyAddress},
		{name: "both report formats", modify: func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, wantErr: ErrConflictingReportFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile tests yaml loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("root: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("applies every field", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `root: /srv/ij
seed_url: https://example.com/index
topic: indemnites
timeout: 45s
max_body_size: 1024
proxy: 127.0.0.1:9050
log_level: debug
log_format: json
save_to_db: false
datasets:
  - age
  - region
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		if err := cfg.ApplyFile(cf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ProjectRoot != "/srv/ij" || cfg.SeedURL != "https://example.com/index" {
			t.Errorf("got root %q seed %q", cfg.ProjectRoot, cfg.SeedURL)
		}
		if cfg.TopicSubstring != "indemnites" || cfg.LinkPrefix != DefaultLinkPrefix {
			t.Errorf("got topic %q prefix %q", cfg.TopicSubstring, cfg.LinkPrefix)
		}
		if cfg.Timeout != 45*time.Second || cfg.MaxBodySize != 1024 {
			t.Errorf("got timeout %v body size %d", cfg.Timeout, cfg.MaxBodySize)
		}
		if !cfg.JSONLogs || cfg.SaveToDB || cfg.LogLevel != "debug" {
			t.Errorf("got json %v db %v level %q", cfg.JSONLogs, cfg.SaveToDB, cfg.LogLevel)
		}
		if len(cfg.Datasets) != 2 || cfg.Datasets[1] != "region" {
			t.Errorf("got datasets %v", cfg.Datasets)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := cfg.ApplyFile(&File{Timeout: "soon"}); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("invalid log format", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := cfg.ApplyFile(&File{LogFormat: "xml"}); err == nil {
			t.Error("expected error")
		}
	})
}

// TestConfigLoad tests explicit configuration paths.
func TestConfigLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit missing path fails", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		err := cfg.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("explicit path is applied", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("user_agent: test-agent\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg := NewConfig()
		if err := cfg.Load(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.UserAgent != "test-agent" || cfg.ConfigFilePath != path {
			t.Errorf("got user agent %q path %q", cfg.UserAgent, cfg.ConfigFilePath)
		}
	})
}

// TestApplyEnvFrom tests environment overrides.
func TestApplyEnvFrom(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvLogLevel: "error",
		EnvRoot:     "/data/project",
		EnvProxy:    "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := NewConfig()
	cfg.ProxyAddress = "127.0.0.1:1080"
	cfg.ApplyEnvFrom(lookup)

	if cfg.LogLevel != "error" {
		t.Errorf("got log level %q", cfg.LogLevel)
	}
	if cfg.ProjectRoot != "/data/project" {
		t.Errorf("got root %q", cfg.ProjectRoot)
	}
	if cfg.ProxyAddress != "127.0.0.1:1080" {
		t.Errorf("empty variable should not override, got %q", cfg.ProxyAddress)
	}
	if cfg.SeedURL != DefaultSeedURL {
		t.Errorf("unset variable should not override, got %q", cfg.SeedURL)
	}
}

// TestLoadDotEnv tests .env loading. It mutates the process environment
// and therefore does not run in parallel.
func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadDotEnv(t.TempDir()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("does not override existing variables", func(t *testing.T) {
		dir := t.TempDir()
		content := "IJCNAM_TEST_PRESET=from-file\nIJCNAM_TEST_NEW=from-file\n"
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		t.Setenv("IJCNAM_TEST_PRESET", "from-process")
		t.Setenv("IJCNAM_TEST_NEW", "")
		if err := os.Unsetenv("IJCNAM_TEST_NEW"); err != nil {
			t.Fatal(err)
		}

		if err := LoadDotEnv(dir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := os.Getenv("IJCNAM_TEST_PRESET"); got != "from-process" {
			t.Errorf("got %q", got)
		}
		if got := os.Getenv("IJCNAM_TEST_NEW"); got != "from-file" {
			t.Errorf("got %q", got)
		}
	})
}
