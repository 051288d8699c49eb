package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/ijcnam/internal/model"
)

// Parser extracts anchors from HTML content.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles the malformed markup CMS pages often contain
//  2. Anchors are returned in document order, which decides "first spreadsheet"
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// ParseResult contains the information extracted from an HTML page.
type ParseResult struct {
	// Title is the page title from <title> tag.
	Title string

	// Hrefs contains the raw href attribute of every anchor, in document order.
	Hrefs []string
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and collects the page title and anchor hrefs.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Hrefs: make([]string, 0),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if href, ok := getAttr(n, "href"); ok {
					result.Hrefs = append(result.Hrefs, href)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return result, nil
}

// TopicLinks returns the hrefs whose resolved path starts with prefix and
// contains topic, as absolute URLs without their fragment. The raw href
// must also start with prefix, so absolute links to other hosts are never
// kept, and a query string or fragment mentioning the topic does not
// qualify a page.
func (p *Parser) TopicLinks(result *ParseResult, prefix, topic string) model.LinkSet {
	links := model.NewLinkSet()
	for _, href := range result.Hrefs {
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, prefix) {
			continue
		}
		resolved := p.resolveURL(href)
		if resolved == "" {
			continue
		}
		u, err := url.Parse(resolved)
		if err != nil {
			continue
		}
		u.Fragment = ""
		u.RawFragment = ""
		if !strings.HasPrefix(u.Path, prefix) || !strings.Contains(u.Path, topic) {
			continue
		}
		links.Add(u.String())
	}
	return links
}

// FirstLinkContaining returns the first href in document order containing
// substr, resolved to an absolute URL.
func (p *Parser) FirstLinkContaining(result *ParseResult, substr string) (string, bool) {
	for _, href := range result.Hrefs {
		if !strings.Contains(href, substr) {
			continue
		}
		if resolved := p.resolveURL(href); resolved != "" {
			return resolved, true
		}
	}
	return "", false
}

// resolveURL resolves a relative URL against the base URL.
// It returns an empty string for links that cannot be fetched.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		href == "#" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return p.baseURL.ResolveReference(u).String()
}

// getAttr retrieves an attribute value from an HTML node.
// The boolean distinguishes an empty attribute from an absent one.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
