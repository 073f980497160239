package search

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"go.senan.xyz/lyricsmd/lyrics"
)

var ErrNoCandidates = fmt.Errorf("%w: no candidates", lyrics.ErrLyricsNotFound)

const (
	scoreSong   = 5
	scoreArtist = 3
	scoreLyrics = 1
)

// Score rates how well a candidate matches a song and optional artist.
func Score(c Candidate, song, artist string) int {
	song = strings.ToLower(strings.TrimSpace(song))
	artist = strings.ToLower(strings.TrimSpace(artist))
	title := strings.ToLower(c.Title)
	url := strings.ToLower(c.URL)

	var score int
	if song != "" && (strings.Contains(title, song) || strings.Contains(url, hyphenate(song))) {
		score += scoreSong
	}
	if artist != "" && (strings.Contains(title, artist) || strings.Contains(url, hyphenate(artist))) {
		score += scoreArtist
	}
	if strings.Contains(title, "lyrics") || strings.Contains(url, "lyrics") {
		score += scoreLyrics
	}
	return score
}

// Rank returns a scored copy of cands, best first. Equal scores keep their original order.
func Rank(cands []Candidate, song, artist string) []Candidate {
	ranked := slices.Clone(cands)
	for i := range ranked {
		ranked[i].Score = Score(ranked[i], song, artist)
	}
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked
}

// Best returns the highest scoring candidate, the earliest one on a tie.
func Best(cands []Candidate, song, artist string) (Candidate, error) {
	if len(cands) == 0 {
		return Candidate{}, ErrNoCandidates
	}
	return Rank(cands, song, artist)[0], nil
}

func hyphenate(s string) string {
	return strings.ReplaceAll(s, " ", "-")
}
