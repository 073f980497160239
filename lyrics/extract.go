package lyrics

import (
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Extractor pulls lyric text out of a parsed lyrics page. It returns ErrLyricsNotFound
// when the page doesn't have the markup it knows about.
type Extractor interface {
	Extract(doc *html.Node) (string, error)
}

type ExtractorFunc func(doc *html.Node) (string, error)

func (f ExtractorFunc) Extract(doc *html.Node) (string, error) {
	return f(doc)
}

var musixmatchSelectContent = cascadia.MustCompile(`span[class*="lyrics__content"]`)
// musixmatchPlaceholders are shown in place of lyrics for songs without any.
var musixmatchPlaceholders = []string{"Still no lyrics here"}

// MusixmatchExtractor reads the lyrics__content spans of a Musixmatch page, one line per span.
type MusixmatchExtractor struct{}

func (MusixmatchExtractor) Extract(doc *html.Node) (string, error) {
	nodes := cascadia.QueryAll(doc, musixmatchSelectContent)
	if len(nodes) == 0 {
		return "", ErrLyricsNotFound
	}

	var lines []string
	for _, n := range nodes {
		text := strings.TrimSpace(nodeText(n, false))
		if text == "" {
			continue
		}
		lines = append(lines, text)
	}

	text := Clean(strings.Join(lines, "\n"))
	if text == "" || slices.Contains(musixmatchPlaceholders, text) {
		return "", ErrLyricsNotFound
	}
	return text, nil
}

func (MusixmatchExtractor) String() string { return "musixmatch" }

var geniusSelectContent = cascadia.MustCompile(`div[class^="Lyrics__Container"]`)

// GeniusExtractor reads the Lyrics__Container blocks of a Genius page.
type GeniusExtractor struct{}

func (GeniusExtractor) Extract(doc *html.Node) (string, error) {
	nodes := cascadia.QueryAll(doc, geniusSelectContent)
	if len(nodes) == 0 {
		return "", ErrLyricsNotFound
	}

	var blocks []string
	for _, n := range nodes {
		text := strings.TrimSpace(nodeText(n, true))
		if text == "" {
			continue
		}
		blocks = append(blocks, text)
	}

	text := Clean(strings.Join(blocks, "\n\n"))
	if text == "" {
		return "", ErrLyricsNotFound
	}
	return text, nil
}

func (GeniusExtractor) String() string { return "genius" }
