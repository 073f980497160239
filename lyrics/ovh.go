package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const DefaultOVHBaseURL = `https://api.lyrics.ovh/v1`

// minProbeLength is how many characters a probe response needs to count as real lyrics.
const minProbeLength = 10

// LyricsOVH is a client for the lyrics.ovh JSON API.
type LyricsOVH struct {
	BaseURL      string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	HTTPClient   *http.Client
}

type ovhResponse struct {
	Lyrics *string `json:"lyrics"`
	Error  *string `json:"error"`
}

func (o *LyricsOVH) Search(ctx context.Context, artist, song string) (Result, error) {
	body, err := o.request(ctx, o.Timeout, artist, song)
	if err != nil {
		return Result{}, err
	}

	switch {
	case body.Lyrics != nil:
		text := strings.TrimSpace(*body.Lyrics)
		if text == "" {
			return Result{}, ErrEmptyLyrics
		}
		return Result{Text: CollapseNewlines(text), Kind: KindAPI, Source: o.String()}, nil
	case body.Error != nil:
		return Result{}, &APIError{Message: *body.Error}
	default:
		return Result{}, fmt.Errorf("%w: no lyrics in body", ErrParse)
	}
}

// Probe reports whether the API has non trivial lyrics for the combination.
func (o *LyricsOVH) Probe(ctx context.Context, artist, song string) bool {
	body, err := o.request(ctx, o.ProbeTimeout, artist, song)
	if err != nil || body.Lyrics == nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(*body.Lyrics)) > minProbeLength
}

func (o *LyricsOVH) request(ctx context.Context, timeout time.Duration, artist, song string) (ovhResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint(artist, song), nil)
	if err != nil {
		return ovhResponse{}, fmt.Errorf("make request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return ovhResponse{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return ovhResponse{}, StatusError(resp.StatusCode)
	}

	var body ovhResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ovhResponse{}, fmt.Errorf("%w: decode response: %w", ErrParse, err)
	}
	return body, nil
}

func (o *LyricsOVH) endpoint(artist, song string) string {
	base := o.BaseURL
	if base == "" {
		base = DefaultOVHBaseURL
	}
	return strings.TrimRight(base, "/") +
		"/" + url.PathEscape(strings.TrimSpace(artist)) +
		"/" + url.PathEscape(strings.TrimSpace(song))
}

func (o *LyricsOVH) String() string {
	return "lyrics.ovh"
}
