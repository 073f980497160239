package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.senan.xyz/lyricsmd/clientutil"
	"go.senan.xyz/lyricsmd/lyrics"
)

const (
	DefaultGoogleBaseURL = `https://www.google.com/search`
	DefaultSite          = "musixmatch.com"

	googleReferer = "https://www.google.com/"
)

// Google searches a single site for lyrics pages.
type Google struct {
	BaseURL    string
	Site       string
	PathMarker string
	Timeout    time.Duration
	RateLimit  time.Duration

	initOnce   sync.Once
	HTTPClient *http.Client
}

// Candidates returns the lyrics pages found for the song, ranked best first.
func (g *Google) Candidates(ctx context.Context, song, artist string) ([]Candidate, error) {
	g.initOnce.Do(func() {
		g.HTTPClient = clientutil.Wrap(g.HTTPClient, clientutil.Chain(
			clientutil.WithRateLimit(g.RateLimit),
			clientutil.WithHeaders(clientutil.BrowserHeaders(googleReferer)),
		))
	})

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	base := g.BaseURL
	if base == "" {
		base = DefaultGoogleBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("q", g.Query(song, artist))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("make request: %w", err)
	}
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: req search: %w", lyrics.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, lyrics.StatusError(resp.StatusCode)
	}

	cands, err := ParseResults(resp.Body, g.PathMarker)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lyrics.ErrParse, err)
	}
	slog.DebugContext(ctx, "parsed search results", "site", g.site(), "song", song, "artist", artist, "candidates", len(cands))

	return Rank(cands, song, artist), nil
}

// FindURL returns the URL of the best lyrics page for the song.
func (g *Google) FindURL(ctx context.Context, song, artist string) (string, error) {
	cands, err := g.Candidates(ctx, song, artist)
	if err != nil {
		return "", err
	}
	best, err := Best(cands, song, artist)
	if err != nil {
		return "", err
	}
	slog.DebugContext(ctx, "picked search result", "url", best.URL, "title", best.Title, "score", best.Score)
	return best.URL, nil
}

// Query is the search restricted to the configured site.
func (g *Google) Query(song, artist string) string {
	parts := []string{"site:" + g.site(), strings.TrimSpace(song)}
	if artist = strings.TrimSpace(artist); artist != "" {
		parts = append(parts, artist)
	}
	return strings.Join(parts, " ")
}

func (g *Google) site() string {
	if g.Site == "" {
		return DefaultSite
	}
	return g.Site
}

func (g *Google) String() string {
	return fmt.Sprintf("google (%s)", g.site())
}
