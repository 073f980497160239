package lyricsmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.senan.xyz/lyricsmd/lyricfile"
	"go.senan.xyz/lyricsmd/lyrics"
	"go.senan.xyz/lyricsmd/notifications"
)

// Delivery describes where a sink put the lyrics. Console deliveries have no path.
type Delivery struct {
	Path     string
	Replaced bool
	Distance int
}

type Sink interface {
	Deliver(ctx context.Context, req Request, res lyrics.Result) (Delivery, error)
}

type SinkFunc func(ctx context.Context, req Request, res lyrics.Result) (Delivery, error)

func (f SinkFunc) Deliver(ctx context.Context, req Request, res lyrics.Result) (Delivery, error) {
	return f(ctx, req, res)
}

// ConsoleSink prints lyrics between markers.
type ConsoleSink struct {
	Out io.Writer
}

func (c ConsoleSink) Deliver(_ context.Context, _ Request, res lyrics.Result) (Delivery, error) {
	if _, err := fmt.Fprintf(c.Out, "\n--- Lyrics ---\n%s\n--------------\n", res.Text); err != nil {
		return Delivery{}, fmt.Errorf("print lyrics: %w", err)
	}
	return Delivery{}, nil
}

// FileSink writes lyrics to Markdown files in Dir.
type FileSink struct {
	Dir string
	// Name picks the file name. The default is [lyricfile.FileName].
	Name          func(req Request) string
	FrontMatter   bool
	Notifications *notifications.Notifications

	Now func() time.Time
}

func (f FileSink) Deliver(ctx context.Context, req Request, res lyrics.Result) (Delivery, error) {
	name := lyricfile.FileName(req.Title, req.Artist)
	if f.Name != nil {
		name = f.Name(req)
	}

	doc := lyricfile.Document{
		Title:  req.Title,
		Artist: req.Artist,
		Body:   res.Text,
	}
	if f.FrontMatter {
		now := time.Now
		if f.Now != nil {
			now = f.Now
		}
		doc.Meta = &lyricfile.Meta{
			Source:  res.Source,
			Kind:    res.Kind.String(),
			URL:     res.URL,
			Fetched: now().UTC().Truncate(time.Second),
		}
	}

	wr, err := lyricfile.Write(f.Dir, name, doc)
	if err != nil {
		return Delivery{}, err
	}
	if f.Notifications != nil {
		f.Notifications.Sendf(ctx, notifications.Saved, "saved lyrics for %s to %s", req, wr.Path)
	}
	return Delivery{Path: wr.Path, Replaced: wr.Replaced, Distance: wr.Distance}, nil
}
