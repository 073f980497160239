// Package lyricsmd looks up song lyrics and delivers them to the console or to Markdown files.
//
// Every mode of the command line tool is a [Processor] reading requests from an [Input]
// and handing found lyrics to a [Sink].
package lyricsmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.senan.xyz/lyricsmd/clientutil"
	"go.senan.xyz/lyricsmd/lyrics"
)

// ErrInput is a malformed request, such as a bad batch line or an invalid menu choice.
var ErrInput = errors.New("invalid input")

type Request struct {
	Title  string
	Artist string
}

func (r Request) String() string {
	if r.Artist == "" {
		return fmt.Sprintf("%q", r.Title)
	}
	return fmt.Sprintf("%q by %q", r.Title, r.Artist)
}

type Stats struct {
	Succeeded int
	Failed    int
	Skipped   int
}

func (s Stats) Attempted() int { return s.Succeeded + s.Failed }

// Reporter is told about the progress of a run.
type Reporter interface {
	Lookup(req Request)
	Delivered(req Request, res lyrics.Result, d Delivery)
	Failed(req Request, err error)
	Skipped(err error)
}

type Processor struct {
	Source lyrics.Source
	Sink   Sink
	// Delay is a courtesy pause before every lookup but the first. It's meant for batch runs,
	// interactive runs leave it zero.
	Delay    time.Duration
	Reporter Reporter
}

// Run looks up every request from in until it is exhausted. A failed lookup or delivery is counted
// and the run continues. Run only returns an error if in fails or ctx is done.
func (p *Processor) Run(ctx context.Context, in Input) (Stats, error) {
	reporter := p.Reporter
	if reporter == nil {
		reporter = LogReporter{Logger: slog.Default()}
	}

	var stats Stats
	for {
		req, err := in.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return stats, nil
		case errors.Is(err, ErrInput):
			stats.Skipped++
			reporter.Skipped(err)
			continue
		case err != nil:
			return stats, err
		}

		if stats.Attempted() > 0 {
			if err := clientutil.Sleep(ctx, p.Delay); err != nil {
				return stats, err
			}
		}

		reporter.Lookup(req)
		d, res, err := p.process(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Failed++
			reporter.Failed(req, err)
			continue
		}
		stats.Succeeded++
		reporter.Delivered(req, res, d)
	}
}

func (p *Processor) process(ctx context.Context, req Request) (Delivery, lyrics.Result, error) {
	res, err := p.Source.Search(ctx, req.Artist, req.Title)
	if err != nil {
		return Delivery{}, lyrics.Result{}, fmt.Errorf("search: %w", err)
	}
	d, err := p.Sink.Deliver(ctx, req, res)
	if err != nil {
		return Delivery{}, lyrics.Result{}, fmt.Errorf("deliver: %w", err)
	}
	return d, res, nil
}

// LogReporter reports progress with structured logs.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) Lookup(req Request) {
	r.Logger.Info("looking up lyrics", "title", req.Title, "artist", req.Artist)
}

func (r LogReporter) Delivered(req Request, res lyrics.Result, d Delivery) {
	r.Logger.Info("found lyrics", "title", req.Title, "artist", req.Artist, "source", res.Source, "path", d.Path, "replaced", d.Replaced)
}

func (r LogReporter) Failed(req Request, err error) {
	if errors.Is(err, lyrics.ErrLyricsNotFound) {
		r.Logger.Warn("lyrics not found", "title", req.Title, "artist", req.Artist, "err", err)
		return
	}
	r.Logger.Error("looking up lyrics", "title", req.Title, "artist", req.Artist, "err", err)
}

func (r LogReporter) Skipped(err error) {
	r.Logger.Warn("skipping", "err", err)
}
