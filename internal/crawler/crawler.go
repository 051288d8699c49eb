package crawler

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/ijcnam/internal/model"
)

// Default link filters for the CNAM open-data site.
const (
	// DefaultLinkPrefix is the path prefix of topic pages on the seed page.
	DefaultLinkPrefix = "/etudes-et-donnees/"

	// DefaultTopicSubstring selects IJ topic pages.
	DefaultTopicSubstring = "ij"

	// DefaultSpreadsheetExtension identifies spreadsheet links on a topic page.
	DefaultSpreadsheetExtension = ".xlsx"
)

// DownloadRecorder is notified after each successful download.
// The SQLite catalog implements it.
type DownloadRecorder interface {
	RecordDownload(ctx context.Context, d model.Download) error
}

// Crawler walks the seed page, its topic pages and their spreadsheets.
type Crawler struct {
	client *Client

	linkPrefix     string
	topicSubstring string
	spreadsheetExt string

	// progress receives the human-readable progress lines.
	progress io.Writer

	// recorder is optional.
	recorder DownloadRecorder

	logger *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLinkPrefix sets the href prefix of topic pages.
func WithLinkPrefix(prefix string) Option {
	return func(c *Crawler) {
		c.linkPrefix = prefix
	}
}

// WithTopicSubstring sets the substring a topic href must contain.
func WithTopicSubstring(topic string) Option {
	return func(c *Crawler) {
		c.topicSubstring = topic
	}
}

// WithSpreadsheetExtension sets the substring identifying spreadsheet links.
func WithSpreadsheetExtension(ext string) Option {
	return func(c *Crawler) {
		c.spreadsheetExt = ext
	}
}

// WithProgressWriter sets where progress lines are printed.
func WithProgressWriter(w io.Writer) Option {
	return func(c *Crawler) {
		if w != nil {
			c.progress = w
		}
	}
}

// WithRecorder sets the download recorder.
func WithRecorder(r DownloadRecorder) Option {
	return func(c *Crawler) {
		c.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Crawler) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Crawler using client for every request.
func New(client *Client, opts ...Option) *Crawler {
	c := &Crawler{
		client:         client,
		linkPrefix:     DefaultLinkPrefix,
		topicSubstring: DefaultTopicSubstring,
		spreadsheetExt: DefaultSpreadsheetExtension,
		progress:       io.Discard,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// DiscoverTopicLinks fetches the seed page and returns the topic page URLs
// it links to. Only one hop is followed.
func (c *Crawler) DiscoverTopicLinks(ctx context.Context, seedURL string) (model.LinkSet, error) {
	p, result, err := c.fetchAndParse(ctx, seedURL)
	if err != nil {
		return nil, err
	}
	return p.TopicLinks(result, c.linkPrefix, c.topicSubstring), nil
}

// FindSpreadsheetLink fetches a topic page and returns the first spreadsheet
// link in document order. found is false when the page has none.
func (c *Crawler) FindSpreadsheetLink(ctx context.Context, pageURL string) (string, bool, error) {
	p, result, err := c.fetchAndParse(ctx, pageURL)
	if err != nil {
		return "", false, err
	}
	link, found := p.FirstLinkContaining(result, c.spreadsheetExt)
	return link, found, nil
}

// FetchAndStore downloads fileURL into destDir under the last segment of its
// path. If a file of that name already exists nothing is fetched and the
// returned Download has AlreadyPresent set.
//
// The body is written to a temporary file that is renamed into place once
// complete, so an interrupted download never leaves a partial file behind.
func (c *Crawler) FetchAndStore(ctx context.Context, fileURL, destDir string) (model.Download, error) {
	name, err := FileNameFromURL(fileURL)
	if err != nil {
		return model.Download{}, err
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return model.Download{}, fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	dest := filepath.Join(destDir, name)
	d := model.Download{URL: fileURL, FileName: name, Path: dest}

	info, err := os.Stat(dest)
	switch {
	case err == nil:
		d.Size = info.Size()
		d.AlreadyPresent = true
		return d, nil
	case !errors.Is(err, fs.ErrNotExist):
		return model.Download{}, fmt.Errorf("failed to stat %s: %w", dest, err)
	}

	tmp, err := os.CreateTemp(destDir, "."+name+".*.part")
	if err != nil {
		return model.Download{}, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	hasher := sha3.New256()
	size, err := c.client.Download(ctx, fileURL, io.MultiWriter(tmp, hasher))
	if err != nil {
		return model.Download{}, err
	}
	if err := tmp.Close(); err != nil {
		return model.Download{}, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return model.Download{}, fmt.Errorf("failed to move download into place: %w", err)
	}
	committed = true

	d.Size = size
	d.SHA3 = hex.EncodeToString(hasher.Sum(nil))
	return d, nil
}

// Crawl runs the whole two-hop walk: it discovers topic pages from seedURL,
// visits them in sorted order and stores each page's spreadsheet in destDir.
// Pages without a spreadsheet are reported and skipped; any other failure
// aborts the crawl.
func (c *Crawler) Crawl(ctx context.Context, seedURL, destDir string) (*model.CrawlSummary, error) {
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	summary := &model.CrawlSummary{
		SeedURL:        seedURL,
		Downloaded:     make([]model.Download, 0),
		AlreadyPresent: make([]model.Download, 0),
		NoSpreadsheet:  make([]string, 0),
	}

	links, err := c.DiscoverTopicLinks(ctx, seedURL)
	if err != nil {
		return summary, fmt.Errorf("failed to discover topic pages: %w", err)
	}
	c.printf("%d links found\n", links.Len())
	c.logger.Debug("topic pages discovered", "seed", seedURL, "count", links.Len())

	for _, page := range links.Sorted() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.TopicPages++
		c.printf("Analysing: %s\n", page)

		fileURL, found, err := c.FindSpreadsheetLink(ctx, page)
		if err != nil {
			return summary, fmt.Errorf("failed to analyse %s: %w", page, err)
		}
		if !found {
			c.printf("No spreadsheet found on this page.\n")
			c.logger.Info("no spreadsheet on topic page", "page", page)
			summary.NoSpreadsheet = append(summary.NoSpreadsheet, page)
			continue
		}
		c.printf("Spreadsheet found: %s\n", fileURL)

		d, err := c.FetchAndStore(ctx, fileURL, destDir)
		if err != nil {
			return summary, fmt.Errorf("failed to download %s: %w", fileURL, err)
		}
		d.Page = page

		if d.AlreadyPresent {
			c.printf("Already downloaded: %s\n", d.FileName)
			summary.AlreadyPresent = append(summary.AlreadyPresent, d)
			continue
		}

		c.printf("Downloaded: %s\n", d.FileName)
		c.logger.Info("spreadsheet downloaded", "file", d.FileName, "size", d.Size, "sha3_256", d.SHA3)
		summary.Downloaded = append(summary.Downloaded, d)

		if c.recorder != nil {
			if err := c.recorder.RecordDownload(ctx, d); err != nil {
				return summary, fmt.Errorf("failed to record download %s: %w", d.FileName, err)
			}
		}
	}

	return summary, nil
}

// fetchAndParse fetches pageURL and parses it as HTML.
func (c *Crawler) fetchAndParse(ctx context.Context, pageURL string) (*Parser, *ParseResult, error) {
	p, err := NewParser(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	body, err := c.client.Get(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}

	result, err := p.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return p, result, nil
}

func (c *Crawler) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.progress, format, args...)
}

// FileNameFromURL returns the final path segment of rawURL, without query
// string or fragment. The segment is percent-decoded, so a link to
// "ann%C3%A9e.xlsx" is stored as "année.xlsx". A segment that decodes to a
// NUL or a backslash is rejected.
func FileNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFileName, err)
	}

	name := path.Base(u.Path)
	switch {
	case name == "", name == ".", name == "..", name == "/":
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, rawURL)
	case strings.ContainsAny(name, "\x00\\"):
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, rawURL)
	}
	return name, nil
}
