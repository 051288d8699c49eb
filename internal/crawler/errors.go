package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrBodyTooLarge is returned when a response body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("response body exceeds maximum size")

	// ErrInvalidFileName is returned when no usable file name can be derived from a URL.
	ErrInvalidFileName = errors.New("cannot derive file name from URL")

	// ErrInvalidProxyAddress is returned when the proxy address is not "host:port"
	// or "socks5://[user:pass@]host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address")
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code received.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d for %s", e.StatusCode, e.URL)
}
