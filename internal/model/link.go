package model

import "sort"

// LinkSet is a deduplicated collection of absolute URLs.
// It has set semantics: insertion order is not preserved.
type LinkSet map[string]struct{}

// NewLinkSet creates a LinkSet holding the given URLs.
func NewLinkSet(links ...string) LinkSet {
	s := make(LinkSet, len(links))
	for _, l := range links {
		s.Add(l)
	}
	return s
}

// Add inserts link into the set. Adding an existing link is a no-op.
func (s LinkSet) Add(link string) {
	s[link] = struct{}{}
}

// Has reports whether link is in the set.
func (s LinkSet) Has(link string) bool {
	_, ok := s[link]
	return ok
}

// Len returns the number of distinct links.
func (s LinkSet) Len() int {
	return len(s)
}

// Sorted returns the links in lexical order.
// The crawler iterates in this order so that runs are reproducible.
func (s LinkSet) Sorted() []string {
	links := make([]string, 0, len(s))
	for l := range s {
		links = append(links, l)
	}
	sort.Strings(links)
	return links
}
