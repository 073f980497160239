// Package output prints user facing messages, in colour when the terminal allows it.
package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"go.senan.xyz/lyricsmd"
	"go.senan.xyz/lyricsmd/lyrics"
)

type Output struct {
	w io.Writer

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
	gray   *color.Color
	bold   *color.Color
}

// New writes to w. Colour is also off when NO_COLOR is set or stdout isn't a terminal.
func New(w io.Writer, noColor bool) *Output {
	if noColor {
		color.NoColor = true
	}
	return &Output{
		w:      w,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		cyan:   color.New(color.FgCyan),
		gray:   color.New(color.FgHiBlack),
		bold:   color.New(color.Bold),
	}
}

func (o *Output) Writer() io.Writer { return o.w }

func (o *Output) Green(s string) string  { return o.green.Sprint(s) }
func (o *Output) Yellow(s string) string { return o.yellow.Sprint(s) }
func (o *Output) Red(s string) string    { return o.red.Sprint(s) }
func (o *Output) Cyan(s string) string   { return o.cyan.Sprint(s) }
func (o *Output) Gray(s string) string   { return o.gray.Sprint(s) }
func (o *Output) Bold(s string) string   { return o.bold.Sprint(s) }

func (o *Output) Info(f string, a ...any) {
	fmt.Fprintf(o.w, f+"\n", a...)
}

func (o *Output) Success(f string, a ...any) {
	fmt.Fprintln(o.w, o.Green(fmt.Sprintf(f, a...)))
}

func (o *Output) Warn(f string, a ...any) {
	fmt.Fprintln(o.w, o.Yellow(fmt.Sprintf(f, a...)))
}

func (o *Output) Error(f string, a ...any) {
	fmt.Fprintln(o.w, o.Red(fmt.Sprintf(f, a...)))
}

func (o *Output) Heading(f string, a ...any) {
	fmt.Fprintln(o.w, o.Bold(fmt.Sprintf(f, a...)))
}

// Reporter tells the user about the progress of a [lyricsmd.Processor] run.
type Reporter struct {
	*Output
}

var _ lyricsmd.Reporter = Reporter{}

func (r Reporter) Lookup(req lyricsmd.Request) {
	r.Info("%s %s", r.Cyan("Fetching lyrics for"), req)
}

func (r Reporter) Delivered(req lyricsmd.Request, res lyrics.Result, d lyricsmd.Delivery) {
	if d.Path == "" {
		r.Info("%s", r.Gray(fmt.Sprintf("Found lyrics for %s with %s (%s)", req, res.Source, res.Kind)))
		return
	}
	r.Success("Lyrics saved to %s", d.Path)
	if d.Replaced {
		r.Info("%s", r.Gray(fmt.Sprintf("Replaced the existing file, %d characters changed", d.Distance)))
	}
}

func (r Reporter) Failed(req lyricsmd.Request, err error) {
	if errors.Is(err, lyrics.ErrLyricsNotFound) {
		r.Warn("Lyrics not found for %s", req)
		return
	}
	r.Error("Error fetching lyrics for %s: %v", req, err)
}

func (r Reporter) Skipped(err error) {
	r.Warn("Skipping: %v", err)
}
