// Package crawler discovers and downloads the IJ spreadsheets published on
// the Assurance Maladie open-data pages.
//
// # Architecture
//
// The crawl is a fixed two-hop walk:
//
//  1. The seed (index) page is fetched and its anchors are filtered down to
//     topic pages: relative hrefs under the open-data prefix that mention
//     the IJ topic.
//  2. Each topic page is fetched and the first anchor pointing at a
//     spreadsheet is resolved.
//  3. The spreadsheet is stored in the raw data directory under the last
//     segment of its URL, unless a file of that name is already there.
//
// Design decision: The walk is strictly sequential and any HTTP failure
// aborts it. The file-exists check makes a re-run resume where the previous
// one stopped, which is the only retry mechanism.
//
// # Components
//
//   - Client: HTTP client with User-Agent, body size limit and optional SOCKS5 proxy
//   - Parser: HTML parser that extracts anchors in document order
//   - Crawler: the two-hop walk and the idempotent download
//
// # Usage
//
//	httpClient, err := crawler.NewHTTPClient(30*time.Second, "")
//	c := crawler.New(crawler.NewClient(crawler.WithHTTPClient(httpClient)),
//		crawler.WithProgressWriter(os.Stdout))
//	summary, err := c.Crawl(ctx, config.DefaultSeedURL, cfg.RawDir())
package crawler
