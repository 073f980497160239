// Package discover guesses which artist and song a free text query refers to.
package discover

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
)

// MaxMatches caps the number of matches returned by a guess.
const MaxMatches = 10

// CommonArtists are tried with the query as song title when no artist is known.
var CommonArtists = []string{
	"Taylor Swift", "Ed Sheeran", "Drake", "Adele", "Post Malone",
	"Billie Eilish", "Ariana Grande", "The Weeknd", "Justin Bieber",
	"Harry Styles", "Dua Lipa", "Olivia Rodrigo", "Bad Bunny",
}

// commonArtistProbes is how many of CommonArtists are probed per query.
const commonArtistProbes = 5

type Confidence int

const (
	ConfidenceMedium Confidence = iota
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	}
	return "unknown"
}

type Match struct {
	Artist     string
	Song       string
	Confidence Confidence
}

// Prober cheaply checks whether lyrics exist for an artist and song.
type Prober interface {
	Probe(ctx context.Context, artist, song string) bool
}

type ProberFunc func(ctx context.Context, artist, song string) bool

func (f ProberFunc) Probe(ctx context.Context, artist, song string) bool {
	return f(ctx, artist, song)
}

type Guesser struct {
	Prober        Prober
	CommonArtists bool
}

// Guess returns the artist and song combinations for query that the prober confirms,
// in the order they were tried. An empty result is not an error.
func (g *Guesser) Guess(ctx context.Context, query, artist string) ([]Match, error) {
	query, artist = strings.TrimSpace(query), strings.TrimSpace(artist)

	var matches []Match
	for _, c := range Combinations(query, artist) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.Prober.Probe(ctx, c.Artist, c.Song) {
			matches = append(matches, Match{Artist: c.Artist, Song: c.Song, Confidence: ConfidenceHigh})
		}
	}

	if artist == "" && g.CommonArtists {
		for _, common := range CommonArtists[:commonArtistProbes] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if g.Prober.Probe(ctx, common, query) {
				matches = append(matches, Match{Artist: common, Song: query, Confidence: ConfidenceMedium})
			}
		}
	}

	matches = Dedupe(matches)
	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}
	slog.DebugContext(ctx, "guessed matches", "query", query, "artist", artist, "matches", len(matches))
	return matches, nil
}

// Combinations lists the artist and song pairs worth probing for a query.
// With an artist both orders are tried, in case they were mixed up. Without one
// the query is split on " - " or " by ".
func Combinations(query, artist string) []Match {
	if artist != "" {
		return []Match{
			{Artist: artist, Song: query},
			{Artist: query, Song: artist},
		}
	}
	if left, right, ok := strings.Cut(query, " - "); ok {
		left, right = strings.TrimSpace(left), strings.TrimSpace(right)
		return []Match{
			{Artist: left, Song: right},
			{Artist: right, Song: left},
		}
	}
	if song, by, ok := strings.Cut(strings.ToLower(query), " by "); ok {
		return []Match{
			{Artist: strings.TrimSpace(by), Song: strings.TrimSpace(song)},
		}
	}
	return nil
}

// Dedupe drops matches whose artist and song equal an earlier one, ignoring case.
func Dedupe(matches []Match) []Match {
	type key struct{ artist, song string }
	seen := map[key]struct{}{}
	fold := cases.Fold()

	var out []Match
	for _, m := range matches {
		k := key{fold.String(m.Artist), fold.String(m.Song)}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}
