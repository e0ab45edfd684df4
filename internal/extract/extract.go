// Package extract holds the locate-or-default helpers every adapter uses to
// read fields out of a goquery tree. No helper returns nil or panics on a
// missing node; a miss always maps to the caller's default.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text returns the trimmed text of s, or def when s is empty or has no text.
func Text(s *goquery.Selection, def string) string {
	if s == nil || s.Length() == 0 {
		return def
	}
	text := strings.TrimSpace(s.Text())
	if text == "" {
		return def
	}
	return text
}

// FirstText returns the trimmed text of the first node under s matching
// selector, or def.
func FirstText(s *goquery.Selection, selector, def string) string {
	if s == nil {
		return def
	}
	return Text(s.Find(selector).First(), def)
}

// FirstAttr returns attribute attr of the first node under s matching
// selector, or def when the node or attribute is missing or blank.
func FirstAttr(s *goquery.Selection, selector, attr, def string) string {
	if s == nil {
		return def
	}
	v, ok := s.Find(selector).First().Attr(attr)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// AllAttr collects attribute attr of every node under s matching selector in
// document order. Nodes without the attribute are skipped. The result is never
// nil.
func AllAttr(s *goquery.Selection, selector, attr string) []string {
	out := make([]string, 0)
	if s == nil {
		return out
	}
	s.Find(selector).Each(func(_ int, n *goquery.Selection) {
		if v, ok := n.Attr(attr); ok && v != "" {
			out = append(out, v)
		}
	})
	return out
}

// AllText collects the trimmed text of every node under s matching selector.
// The result is never nil.
func AllText(s *goquery.Selection, selector string) []string {
	out := make([]string, 0)
	if s == nil {
		return out
	}
	s.Find(selector).Each(func(_ int, n *goquery.Selection) {
		out = append(out, strings.TrimSpace(n.Text()))
	})
	return out
}

// FirstWhere returns the first node under s matching selector for which keep
// reports true. The result is an empty selection, never nil, when nothing
// matches.
func FirstWhere(s *goquery.Selection, selector string, keep func(*goquery.Selection) bool) *goquery.Selection {
	if s == nil {
		return &goquery.Selection{}
	}
	return s.Find(selector).FilterFunction(func(_ int, n *goquery.Selection) bool {
		return keep(n)
	}).First()
}
