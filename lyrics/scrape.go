package lyrics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rainycape/unidecode"
	"go.senan.xyz/lyricsmd/clientutil"
	"golang.org/x/net/html"
)

// CandidateFinder finds the URL of the lyrics page that best matches a song.
type CandidateFinder interface {
	FindURL(ctx context.Context, song, artist string) (string, error)
}

// Scraper looks a song up with a CandidateFinder, then extracts the lyrics from the page it found.
type Scraper struct {
	Name      string
	Finder    CandidateFinder
	Extractor Extractor
	Timeout   time.Duration
	RateLimit time.Duration
	// Headers are set on page requests, such as [clientutil.BrowserHeaders] for sites that
	// only serve browsers.
	Headers http.Header
	// Delay is a courtesy pause between the search and the page request.
	Delay time.Duration

	initOnce   sync.Once
	HTTPClient *http.Client
}

func (s *Scraper) Search(ctx context.Context, artist, song string) (Result, error) {
	s.initOnce.Do(func() {
		s.HTTPClient = clientutil.Wrap(s.HTTPClient, clientutil.Chain(
			clientutil.WithRateLimit(s.RateLimit),
			clientutil.WithHeaders(s.Headers),
		))
	})

	pageURL, err := s.Finder.FindURL(ctx, song, artist)
	if err != nil {
		return Result{}, fmt.Errorf("find page: %w", err)
	}
	if err := clientutil.Sleep(ctx, s.Delay); err != nil {
		return Result{}, err
	}
	text, err := fetchPage(ctx, s.HTTPClient, pageURL, s.Timeout, s.Extractor)
	if err != nil {
		return Result{}, fmt.Errorf("scrape %s: %w", pageURL, err)
	}
	return Result{Text: text, Kind: KindScrapedPage, Source: s.String(), URL: pageURL}, nil
}

func (s *Scraper) String() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("scraper (%v)", s.Extractor)
}

const DefaultMusixmatchBaseURL = `https://www.musixmatch.com/lyrics`

// MusixmatchReferer is sent with Musixmatch page requests, which are refused without browser headers.
const MusixmatchReferer = `https://www.musixmatch.com/`

var slugEsc = strings.NewReplacer(
	" ", "-",
	"(", "",
	")", "",
	"[", "",
	"]", "",
	"'", "",
	"?", "",
	"/", "-",
)

func slug(s string) string {
	return slugEsc.Replace(unidecode.Unidecode(strings.TrimSpace(s)))
}

// Musixmatch guesses the Musixmatch page URL from the artist and song without searching first.
type Musixmatch struct {
	BaseURL   string
	RateLimit time.Duration
	Timeout   time.Duration

	initOnce   sync.Once
	HTTPClient *http.Client
}

func (mm *Musixmatch) Search(ctx context.Context, artist, song string) (Result, error) {
	mm.initOnce.Do(func() {
		mm.HTTPClient = clientutil.Wrap(mm.HTTPClient, clientutil.Chain(
			clientutil.WithRateLimit(mm.RateLimit),
			clientutil.WithHeaders(clientutil.BrowserHeaders(MusixmatchReferer)),
		))
	})

	base := mm.BaseURL
	if base == "" {
		base = DefaultMusixmatchBaseURL
	}
	url, err := url.Parse(base)
	if err != nil {
		return Result{}, fmt.Errorf("parse base url: %w", err)
	}
	url = url.JoinPath(slug(artist), slug(song))

	text, err := fetchPage(ctx, mm.HTTPClient, url.String(), mm.Timeout, MusixmatchExtractor{})
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Kind: KindScrapedPage, Source: mm.String(), URL: url.String()}, nil
}

func (mm *Musixmatch) String() string { return "musixmatch" }

const DefaultGeniusBaseURL = `https://genius.com`

// Genius guesses the Genius page URL from the artist and song without searching first.
type Genius struct {
	BaseURL   string
	RateLimit time.Duration
	Timeout   time.Duration

	initOnce   sync.Once
	HTTPClient *http.Client
}

func (g *Genius) Search(ctx context.Context, artist, song string) (Result, error) {
	g.initOnce.Do(func() {
		g.HTTPClient = clientutil.Wrap(g.HTTPClient, clientutil.WithRateLimit(g.RateLimit))
	})

	// genius pages are "Artist-song-lyrics", only the first letter upper cased
	page := slug(fmt.Sprintf("%s %s lyrics", artist, song))
	if page == "" {
		return Result{}, ErrLyricsNotFound
	}
	page = strings.ToUpper(page[:1]) + strings.ToLower(page[1:])

	base := g.BaseURL
	if base == "" {
		base = DefaultGeniusBaseURL
	}
	url, err := url.Parse(base)
	if err != nil {
		return Result{}, fmt.Errorf("parse base url: %w", err)
	}
	url = url.JoinPath(page)

	text, err := fetchPage(ctx, g.HTTPClient, url.String(), g.Timeout, GeniusExtractor{})
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Kind: KindScrapedPage, Source: g.String(), URL: url.String()}, nil
}

func (g *Genius) String() string { return "genius" }

func fetchPage(ctx context.Context, client *http.Client, pageURL string, timeout time.Duration, ex Extractor) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("make request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: req page: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", StatusError(resp.StatusCode)
	}

	node, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: parse page: %w", ErrParse, err)
	}
	return ex.Extract(node)
}
