package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultUserAgent identifies the crawler to the publisher.
const DefaultUserAgent = "ijcnam/1.0 (+https://github.com/nao1215/ijcnam)"

// DefaultMaxBodySize is the default limit for page and spreadsheet bodies (100MB).
const DefaultMaxBodySize int64 = 100 * 1024 * 1024

// Client performs GET requests against the open-data site.
//
// Design decision: We require an external *http.Client because:
//  1. Proxy and timeout configuration is done once in NewHTTPClient
//  2. Tests can pass the client of an httptest.Server
type Client struct {
	// httpClient performs the requests.
	httpClient *http.Client

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	// Zero or a negative value disables the limit.
	maxBodySize int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// NewClient creates a new Client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  http.DefaultClient,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get fetches rawURL and returns its body.
// It fails with *StatusError on a non-2xx answer and with ErrBodyTooLarge
// when the body exceeds the configured limit.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.Download(ctx, rawURL, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Download fetches rawURL and copies its body to w.
// It returns the number of bytes written.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	if c.maxBodySize <= 0 {
		n, err := io.Copy(w, resp.Body)
		if err != nil {
			return n, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
		}
		return n, nil
	}

	// Read one byte past the limit so an oversized body is detected
	// instead of being silently truncated.
	n, err := io.Copy(w, io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return n, fmt.Errorf("failed to read body of %s: %w", rawURL, err)
	}
	if n > c.maxBodySize {
		return n, fmt.Errorf("%s: %w (limit %d bytes)", rawURL, ErrBodyTooLarge, c.maxBodySize)
	}
	return n, nil
}

// NewHTTPClient creates an HTTP client with the given timeout and optional
// SOCKS5 proxy. A zero timeout means no timeout. An empty proxyAddress means
// a direct connection.
//
// proxyAddress is either "host:port" or "socks5://[user:pass@]host:port".
func NewHTTPClient(timeout time.Duration, proxyAddress string) (*http.Client, error) {
	if proxyAddress == "" {
		return &http.Client{Timeout: timeout}, nil
	}

	address, auth, err := parseProxyAddress(proxyAddress)
	if err != nil {
		return nil, err
	}

	dialer, err := proxy.SOCKS5("tcp", address, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
		TLSHandshakeTimeout:   30 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// parseProxyAddress splits a proxy address into the dial address and the
// optional SOCKS5 credentials.
func parseProxyAddress(raw string) (string, *proxy.Auth, error) {
	if !strings.Contains(raw, "://") {
		if !isValidProxyAddress(raw) {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, raw)
		}
		return raw, nil, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "socks5" || !isValidProxyAddress(u.Host) {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, redactUserInfo(raw))
	}

	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}
	return u.Host, auth, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// redactUserInfo hides credentials so that they never reach error messages.
func redactUserInfo(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://[REDACTED]@" + rest[at+1:]
	}
	return raw
}
