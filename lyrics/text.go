package lyrics

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var newlinesExpr = regexp.MustCompile(`\n{3,}`)
var annotationExpr = regexp.MustCompile(`\[.*?\]`)

// CollapseNewlines reduces every run of three or more newlines to a single blank line.
func CollapseNewlines(s string) string {
	return newlinesExpr.ReplaceAllString(s, "\n\n")
}

// StripAnnotations removes bracketed section markers such as [Chorus].
func StripAnnotations(s string) string {
	return annotationExpr.ReplaceAllString(s, "")
}

// Clean is the post processing applied to scraped lyric text.
func Clean(s string) string {
	s = CollapseNewlines(s)
	s = StripAnnotations(s)
	return strings.TrimSpace(s)
}

// nodeText concatenates the text below n. With brNewline, <br> elements become newlines.
func nodeText(n *html.Node, brNewline bool) string {
	var out strings.Builder
	iterText(n, brNewline, func(s string) {
		out.WriteString(s)
	})
	return out.String()
}

func iterText(n *html.Node, brNewline bool, f func(string)) {
	if n == nil {
		return
	}
	switch n.Type {
	case html.TextNode:
		f(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style:
			return
		case atom.Br:
			if brNewline {
				f("\n")
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		iterText(c, brNewline, f)
	}
}
