package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/araddon/dateparse"
	"go.senan.xyz/table/table"
	"golang.org/x/term"

	"go.senan.xyz/lyricsmd"
	"go.senan.xyz/lyricsmd/cmd/internal/lyricsflag"
	"go.senan.xyz/lyricsmd/cmd/internal/mainlib"
	"go.senan.xyz/lyricsmd/cmd/internal/output"
	"go.senan.xyz/lyricsmd/discover"
	"go.senan.xyz/lyricsmd/lyricfile"
	"go.senan.xyz/lyricsmd/lyrics"
	"go.senan.xyz/lyricsmd/notifications"
)

var cfg = lyricsflag.Config()
var notifs = lyricsflag.Notifications()

func main() {
	exit := mainlib.Logging()
	flag.Usage = usage
	lyricsflag.Parse()
	mainlib.WrapClient(cfg.UserAgent)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &app{
		out:      output.New(os.Stdout, cfg.NoColor),
		prompter: lyricsmd.NewPrompter(os.Stdin, os.Stdout),
		exit:     exit,
	}
	code := app.run(ctx, flag.Args())
	cancel()
	exit(code)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage:
  %[1]s [flags]                                  search and print lyrics interactively
  %[1]s [flags] search <query> [-a artist] [-o dir]  guess the artist, pick a match, save it
  %[1]s [flags] get <artist> <song> [-o dir]         save lyrics for a song
  %[1]s [flags] batch <file> [-o dir]                save lyrics for every "Artist - Song" line
  %[1]s [flags] list [-o dir] [-since date]          list saved lyrics

Flags:
`, lyricsmd.Name)
	flag.PrintDefaults()
}

type usageError struct{ error }

type app struct {
	out      *output.Output
	prompter *lyricsmd.Prompter
	exit     func(code int)
}

func (a *app) run(ctx context.Context, args []string) int {
	var err error
	if len(args) == 0 {
		err = a.interactive(ctx)
	} else {
		command, args := args[0], args[1:]
		switch command {
		case "search":
			err = a.search(ctx, args)
		case "get":
			err = a.get(ctx, args)
		case "batch":
			err = a.batch(ctx, args)
		case "list":
			err = a.list(args)
		case "help":
			flag.Usage()
			return 0
		default:
			err = usageError{fmt.Errorf("unknown command %q", command)}
		}
	}

	var ue usageError
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.As(err, &ue):
		fmt.Fprintf(os.Stderr, "%v\nrun \"%s -help\" for usage\n", ue.error, lyricsmd.Name)
		return 2
	case errors.Is(err, context.Canceled):
		a.out.Info("\nOperation cancelled")
		return 0
	default:
		a.out.Error("Error: %v", err)
		return 1
	}
}

// exitOnCancel exits as soon as ctx is done. Reading from the terminal can't be interrupted
// otherwise.
func (a *app) exitOnCancel(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, func() {
		a.out.Info("\nGoodbye!")
		a.exit(0)
	})
}

// processor builds a processor for sink. Only batch runs pass a delay, prompted lookups are
// already spaced out by the user.
func (a *app) processor(sink lyricsmd.Sink, delay time.Duration) (*lyricsmd.Processor, error) {
	src, err := cfg.Source()
	if err != nil {
		return nil, err
	}
	return &lyricsmd.Processor{
		Source:   src,
		Sink:     sink,
		Delay:    delay,
		Reporter: output.Reporter{Output: a.out},
	}, nil
}

func fileSink(dir string) lyricsmd.FileSink {
	return lyricsmd.FileSink{
		Dir:           dir,
		FrontMatter:   cfg.FrontMatter,
		Notifications: notifs,
	}
}

func (a *app) get(ctx context.Context, args []string) error {
	fs := newFlagSet("get", "get <artist> <song> [-o dir]")
	dir := outputDirFlag(fs)
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return usageError{errors.New("get needs an artist and a song")}
	}

	return a.download(ctx, *dir, lyricsmd.Request{Artist: pos[0], Title: pos[1]})
}

// download saves lyrics for one song, then offers to open the file.
func (a *app) download(ctx context.Context, dir string, req lyricsmd.Request) error {
	a.out.Info("Output directory: %s", dir)

	var saved string
	sink := fileSink(dir)
	proc, err := a.processor(lyricsmd.SinkFunc(func(ctx context.Context, req lyricsmd.Request, res lyrics.Result) (lyricsmd.Delivery, error) {
		d, err := sink.Deliver(ctx, req, res)
		saved = d.Path
		return d, err
	}), 0)
	if err != nil {
		return err
	}
	if _, err := proc.Run(ctx, lyricsmd.Single(req)); err != nil {
		return err
	}
	if saved != "" {
		a.offerOpen(ctx, saved)
	}
	return nil
}

func (a *app) offerOpen(ctx context.Context, path string) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}

	stop := a.exitOnCancel(ctx)
	defer stop()

	open, err := a.prompter.Confirm(ctx, "Open the file?")
	if err != nil || !open {
		return
	}
	cmd, err := cfg.OpenFileCommand(ctx, path)
	if err != nil {
		slog.WarnContext(ctx, "open file", "path", path, "err", err)
		return
	}
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		slog.WarnContext(ctx, "open file", "path", path, "command", cmd.Args, "err", err)
	}
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := newFlagSet("search", "search <query> [-a artist] [-o dir]")
	artist := fs.String("artist", "", "Artist name hint")
	fs.StringVar(artist, "a", "", "Shorthand for -artist")
	dir := outputDirFlag(fs)
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(pos, " "))
	if query == "" {
		return usageError{errors.New("search needs a query")}
	}

	stop := a.exitOnCancel(ctx)
	defer stop()

	a.out.Info("Searching for: %q", query)
	if *artist != "" {
		a.out.Info("   Artist hint: %q", *artist)
	}

	matches, err := cfg.Guesser().Guess(ctx, query, *artist)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		a.out.Warn("No songs found! Try different search terms.")
		return nil
	}

	a.out.Heading("\nFound %d matches:", len(matches))
	t := table.NewStringWriter()
	for i, m := range matches {
		fmt.Fprintf(t, "%2d.\t%s\t%s - %s\n", i+1, a.confidence(m.Confidence), m.Artist, m.Song)
	}
	fmt.Fprintf(t, "%2d.\t%s\t%s\n", len(matches)+1, a.out.Red("none"), "None of these (exit)")
	fmt.Fprint(a.out.Writer(), t.String())

	choice, err := a.prompter.Ask(ctx, fmt.Sprintf("\nSelect song (1-%d): ", len(matches)+1))
	if errors.Is(err, io.EOF) {
		a.out.Info("Goodbye!")
		return nil
	}
	if err != nil {
		return err
	}

	n, err := strconv.Atoi(choice)
	switch {
	case err != nil, n == len(matches)+1:
		a.out.Info("Goodbye!")
		return nil
	case n < 1 || n > len(matches):
		a.out.Warn("Invalid selection!")
		return nil
	}

	selected := matches[n-1]
	return a.download(ctx, *dir, lyricsmd.Request{Artist: selected.Artist, Title: selected.Song})
}

func (a *app) confidence(c discover.Confidence) string {
	switch c {
	case discover.ConfidenceHigh:
		return a.out.Green(c.String())
	default:
		return a.out.Yellow(c.String())
	}
}

func (a *app) batch(ctx context.Context, args []string) error {
	fs := newFlagSet("batch", "batch <file> [-o dir]")
	dir := outputDirFlag(fs)
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return usageError{errors.New("batch needs one file")}
	}

	f, err := os.Open(pos[0])
	if err != nil {
		return fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	a.out.Info("Output directory: %s", *dir)
	a.out.Info("Processing batch file...")

	proc, err := a.processor(fileSink(*dir), cfg.CourtesyDelay)
	if err != nil {
		return err
	}
	stats, err := proc.Run(ctx, lyricsmd.NewBatchInput(f))

	a.out.Heading("\nBatch results:")
	a.out.Success("Successful: %d", stats.Succeeded)
	a.out.Error("Failed: %d", stats.Failed)
	if stats.Skipped > 0 {
		a.out.Warn("Skipped: %d", stats.Skipped)
	}
	a.out.Info("Output directory: %s", *dir)

	if err != nil {
		return err
	}
	notifs.Sendf(ctx, notifications.BatchComplete, "batch %s complete: %d saved, %d failed, %d skipped",
		pos[0], stats.Succeeded, stats.Failed, stats.Skipped)
	return nil
}

func (a *app) list(args []string) error {
	fs := newFlagSet("list", "list [-o dir] [-since date]")
	dir := outputDirFlag(fs)
	sinceRaw := fs.String("since", "", "Only list files saved after this date, in any common format")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) > 0 {
		return usageError{fmt.Errorf("unexpected arguments %q", pos)}
	}

	var since time.Time
	if *sinceRaw != "" {
		since, err = dateparse.ParseAny(*sinceRaw)
		if err != nil {
			return usageError{fmt.Errorf("parse since: %w", err)}
		}
	}

	entries, err := lyricfile.List(*dir, since)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.out.Info("No lyrics in %s", *dir)
		return nil
	}

	t := table.NewStringWriter()
	for _, e := range entries {
		artist := e.Artist
		if artist == "" {
			artist = "-"
		}
		fmt.Fprintf(t, "%s\t%s\t%s\n", e.Title, artist, e.ModTime.Format(time.DateOnly))
	}
	fmt.Fprint(a.out.Writer(), t.String())
	return nil
}

func (a *app) interactive(ctx context.Context) error {
	stop := a.exitOnCancel(ctx)
	defer stop()

	a.out.Heading("%s %s", lyricsmd.Name, lyricsmd.Version)
	a.out.Info("Output directory: %s", cfg.OutputDir)

	proc, err := a.processor(&promptSink{
		console:  lyricsmd.ConsoleSink{Out: a.out.Writer()},
		file:     fileSink(cfg.OutputDir),
		prompter: a.prompter,
	}, 0)
	if err != nil {
		return err
	}
	if _, err := proc.Run(ctx, lyricsmd.PromptInput{Prompter: a.prompter}); err != nil {
		return err
	}
	a.out.Info("Goodbye!")
	return nil
}

// promptSink prints lyrics, then asks whether and where to save them.
type promptSink struct {
	console  lyricsmd.ConsoleSink
	file     lyricsmd.FileSink
	prompter *lyricsmd.Prompter
}

func (s *promptSink) Deliver(ctx context.Context, req lyricsmd.Request, res lyrics.Result) (lyricsmd.Delivery, error) {
	if _, err := s.console.Deliver(ctx, req, res); err != nil {
		return lyricsmd.Delivery{}, err
	}

	save, err := s.prompter.Confirm(ctx, "Save to file?")
	if err != nil && !errors.Is(err, io.EOF) {
		return lyricsmd.Delivery{}, err
	}
	if !save {
		return lyricsmd.Delivery{}, nil
	}

	name, err := s.prompter.AskDefault(ctx, "Filename", lyricfile.FileName(req.Title, req.Artist))
	if err != nil {
		return lyricsmd.Delivery{}, err
	}
	file := s.file
	file.Name = func(lyricsmd.Request) string { return name }
	return file.Deliver(ctx, req, res)
}

func newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags] %s\n\nFlags:\n", lyricsmd.Name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

func outputDirFlag(fs *flag.FlagSet) *string {
	dir := fs.String("output", cfg.OutputDir, "Output directory")
	fs.StringVar(dir, "o", cfg.OutputDir, "Shorthand for -output")
	return dir
}

// parseInterspersed parses flags mixed in with positional args.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, usageError{err}
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
