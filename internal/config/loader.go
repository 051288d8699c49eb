package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".ijcnam"

// xdgConfigFile is the configuration file name inside the XDG config directory.
const xdgConfigFile = "config.yaml"

// File represents the structure of the .ijcnam configuration file.
// Zero values leave the corresponding Config field untouched.
type File struct {
	// Root is the project root.
	Root string `yaml:"root,omitempty"`

	// SeedURL overrides the index page.
	SeedURL string `yaml:"seed_url,omitempty"`

	// LinkPrefix overrides the topic href prefix.
	LinkPrefix string `yaml:"link_prefix,omitempty"`

	// Topic overrides the topic substring.
	Topic string `yaml:"topic,omitempty"`

	// SpreadsheetExtension overrides the spreadsheet link marker.
	SpreadsheetExtension string `yaml:"spreadsheet_extension,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Timeout is a Go duration string such as "30s" or "2m".
	Timeout string `yaml:"timeout,omitempty"`

	// MaxBodySize is in bytes.
	MaxBodySize int64 `yaml:"max_body_size,omitempty"`

	// Proxy is a SOCKS5 proxy address.
	Proxy string `yaml:"proxy,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// LogFormat is "text" (default) or "json".
	LogFormat string `yaml:"log_format,omitempty"`

	// SaveToDB enables or disables the SQLite catalog.
	SaveToDB *bool `yaml:"save_to_db,omitempty"`

	// Datasets restricts the transform to these dataset names.
	Datasets []string `yaml:"datasets,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// ApplyFile copies the values set in cf onto c.
func (c *Config) ApplyFile(cf *File) error {
	if cf == nil {
		return nil
	}

	setString(&c.ProjectRoot, cf.Root)
	setString(&c.SeedURL, cf.SeedURL)
	setString(&c.LinkPrefix, cf.LinkPrefix)
	setString(&c.TopicSubstring, cf.Topic)
	setString(&c.SpreadsheetExt, cf.SpreadsheetExtension)
	setString(&c.UserAgent, cf.UserAgent)
	setString(&c.ProxyAddress, cf.Proxy)
	setString(&c.LogLevel, cf.LogLevel)

	if cf.Timeout != "" {
		d, err := time.ParseDuration(cf.Timeout)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, cf.Timeout)
		}
		c.Timeout = d
	}
	if cf.MaxBodySize != 0 {
		c.MaxBodySize = cf.MaxBodySize
	}
	switch cf.LogFormat {
	case "":
	case "json":
		c.JSONLogs = true
	case "text":
		c.JSONLogs = false
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", cf.LogFormat)
	}
	if cf.SaveToDB != nil {
		c.SaveToDB = *cf.SaveToDB
	}
	if len(cf.Datasets) > 0 {
		c.Datasets = append([]string(nil), cf.Datasets...)
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .ijcnam in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .ijcnam in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load finds and applies the configuration file. A missing file is not an
// error unless configPath was given explicitly.
func (c *Config) Load(configPath string) error {
	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) && configPath == "" {
			return nil
		}
		return err
	}
	c.ConfigFilePath = path
	return c.ApplyFile(cf)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
