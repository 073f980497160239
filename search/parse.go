// Package search finds and ranks lyrics page candidates in search engine results.
package search

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultPathMarker identifies Musixmatch lyrics pages among search results.
const DefaultPathMarker = "musixmatch.com/lyrics/"

type Candidate struct {
	URL   string
	Title string // lowercased
	Score int
}

var redirectExpr = regexp.MustCompile(`^/url\?q=([^&]*)`)

// ParseResults extracts candidate lyrics pages from a search results page. Only URLs
// containing marker are kept. Result blocks with a direct link and a heading are preferred,
// falling back to redirector links. No candidates is not an error.
func ParseResults(r io.Reader, marker string) ([]Candidate, error) {
	if marker == "" {
		marker = DefaultPathMarker
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	if cands := parseResultBlocks(doc, marker); len(cands) > 0 {
		return cands, nil
	}
	return parseRedirectLinks(doc, marker), nil
}

func parseResultBlocks(doc *goquery.Document, marker string) []Candidate {
	var cands []Candidate
	doc.Find("div.g").Each(func(_ int, block *goquery.Selection) {
		link := block.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
			href := a.AttrOr("href", "")
			return strings.Contains(href, "http://") || strings.Contains(href, "https://")
		}).First()
		heading := block.Find("h3").First()
		if link.Length() == 0 || heading.Length() == 0 {
			return
		}
		href := link.AttrOr("href", "")
		if !strings.Contains(href, marker) {
			return
		}
		cands = append(cands, Candidate{URL: href, Title: normTitle(heading.Text())})
	})
	return cands
}

func parseRedirectLinks(doc *goquery.Document, marker string) []Candidate {
	var cands []Candidate
	doc.Find(`a[href^="/url?q="]`).Each(func(_ int, a *goquery.Selection) {
		m := redirectExpr.FindStringSubmatch(a.AttrOr("href", ""))
		if m == nil {
			return
		}
		target, err := url.PathUnescape(m[1])
		if err != nil {
			target = m[1]
		}
		if !strings.Contains(target, marker) {
			return
		}
		title := a.Find("h3").First().Text()
		if title == "" {
			title = a.Text()
		}
		cands = append(cands, Candidate{URL: target, Title: normTitle(title)})
	})
	return cands
}

func normTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
