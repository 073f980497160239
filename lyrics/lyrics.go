package lyrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

var (
	ErrLyricsNotFound = errors.New("lyrics not found")
	ErrEmptyLyrics    = fmt.Errorf("%w: empty lyrics", ErrLyricsNotFound)
	ErrNetwork        = errors.New("network error")
	ErrParse          = errors.New("unexpected response")
)

// StatusError is a non 2xx response from a lyrics provider or search engine.
type StatusError int

func (se StatusError) Error() string {
	return "status " + strconv.Itoa(int(se))
}

func (se StatusError) Is(target error) bool {
	return target == ErrLyricsNotFound && se == 404
}

// APIError is an error message reported by a lyrics API in place of lyrics.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrLyricsNotFound
}

type Kind int

const (
	KindAPI Kind = iota
	KindScrapedPage
)

func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindScrapedPage:
		return "scraped page"
	}
	return "unknown"
}

type Result struct {
	Text   string
	Kind   Kind
	Source string
	URL    string
}

type Source interface {
	Search(ctx context.Context, artist, song string) (Result, error)
}

// ChainSource tries each source in order and returns the first success. Any error moves
// on to the next source; when all fail the errors are joined.
type ChainSource []Source

func (cs ChainSource) Search(ctx context.Context, artist, song string) (Result, error) {
	var errs []error
	for _, src := range cs {
		res, err := src.Search(ctx, artist, song)
		if err == nil {
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		slog.DebugContext(ctx, "lyrics source failed", "source", src, "artist", artist, "song", song, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", src, err))
	}
	if len(errs) == 0 {
		return Result{}, ErrLyricsNotFound
	}
	return Result{}, errors.Join(errs...)
}

func (cs ChainSource) String() string {
	var names []string
	for _, src := range cs {
		names = append(names, fmt.Sprint(src))
	}
	return strings.Join(names, ", ")
}
