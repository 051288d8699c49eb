package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be checked with
// errors.Is().
var (
	// ErrInvalidSeedURL is returned when the seed URL is not an http(s) URL.
	ErrInvalidSeedURL = errors.New("invalid seed URL: must start with http:// or https://")

	// ErrEmptyLinkFilter is returned when the link prefix or spreadsheet extension is empty.
	// An empty filter would make the crawler follow every link on the page.
	ErrEmptyLinkFilter = errors.New("invalid link filter: prefix and spreadsheet extension must not be empty")

	// ErrInvalidTimeout is returned when the timeout is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidLogLevel is returned when the log level is unknown.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn or error")

	// ErrInvalidProxyAddress is returned when the proxy address is malformed.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: use host:port or socks5://[user:pass@]host:port")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
