package lyricsflag

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/joho/godotenv"
	"go.senan.xyz/flagconf"

	"go.senan.xyz/lyricsmd"
	"go.senan.xyz/lyricsmd/clientutil"
	"go.senan.xyz/lyricsmd/discover"
	"go.senan.xyz/lyricsmd/lyrics"
	"go.senan.xyz/lyricsmd/notifications"
	"go.senan.xyz/lyricsmd/search"
)

// Parse loads a .env file from the working directory, then parses flags from the command line,
// the environment, and the config file, in that order of precedence.
func Parse() {
	_ = godotenv.Load()

	userConfig, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}

	defaultConfigPath := filepath.Join(userConfig, lyricsmd.Name, "config")
	configPath := flag.String("config-path", defaultConfigPath, "Path to config file")

	printVersion := flag.Bool("version", false, "Print the version and exit")
	printConfig := flag.Bool("config", false, "Print the parsed config and exit")

	flag.Parse()
	flagconf.ReadEnvPrefix = func(_ *flag.FlagSet) string { return lyricsmd.Name }
	flagconf.ParseEnv()
	flagconf.ParseConfig(*configPath)

	if *printVersion {
		fmt.Printf("%s %s\n", lyricsmd.Name, lyricsmd.Version)
		os.Exit(0)
	}
	if *printConfig {
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("%-20s %s\n", f.Name, f.Value)
		})
		os.Exit(0)
	}
}

type Options struct {
	OutputDir string
	Sources   []string

	OVH    lyrics.LyricsOVH
	Google search.Google

	MusixmatchBaseURL string
	GeniusBaseURL     string
	PageTimeout       time.Duration
	ScrapeRateLimit   time.Duration
	CourtesyDelay     time.Duration

	GuessCommonArtists bool
	FrontMatter        bool
	OpenCommand        []string
	UserAgent          string
	NoColor            bool
}

func Config() *Options {
	var cfg Options

	flag.StringVar(&cfg.OutputDir, "output-dir", defaultOutputDir(), "Directory lyrics files are saved to")

	cfg.Sources = []string{"ovh", "google-musixmatch"}
	flag.Var(&sourcesParser{&cfg.Sources}, "lyrics-source", fmt.Sprintf("Lyrics sources to try in order, separated by spaces (any of %s)", strings.Join(SourceNames, ", ")))

	flag.StringVar(&cfg.OVH.BaseURL, "ovh-base-url", lyrics.DefaultOVHBaseURL, "lyrics.ovh API base URL")
	flag.DurationVar(&cfg.OVH.Timeout, "api-timeout", 15*time.Second, "Timeout for lyrics API lookups")
	flag.DurationVar(&cfg.OVH.ProbeTimeout, "probe-timeout", 5*time.Second, "Timeout for each probe when guessing the artist")

	flag.StringVar(&cfg.Google.BaseURL, "google-base-url", search.DefaultGoogleBaseURL, "Search engine base URL")
	flag.StringVar(&cfg.Google.Site, "search-site", search.DefaultSite, "Site the search engine is restricted to")
	flag.DurationVar(&cfg.Google.Timeout, "search-timeout", 15*time.Second, "Timeout for search result pages")

	flag.StringVar(&cfg.MusixmatchBaseURL, "musixmatch-base-url", lyrics.DefaultMusixmatchBaseURL, "Musixmatch lyrics pages base URL")
	flag.StringVar(&cfg.GeniusBaseURL, "genius-base-url", lyrics.DefaultGeniusBaseURL, "Genius base URL")
	flag.DurationVar(&cfg.PageTimeout, "page-timeout", 10*time.Second, "Timeout for scraped lyrics pages")
	flag.DurationVar(&cfg.ScrapeRateLimit, "scrape-rate-limit", 500*time.Millisecond, "Minimum time between requests to a scraped site")
	flag.DurationVar(&cfg.CourtesyDelay, "courtesy-delay", 1*time.Second, "Pause between consecutive lookups and between a search and its page request")

	flag.BoolVar(&cfg.GuessCommonArtists, "guess-common-artists", true, "Also try popular artists when searching without an artist")
	flag.BoolVar(&cfg.FrontMatter, "front-matter", false, "Write source and fetch time as YAML front matter in saved files")

	cfg.OpenCommand = defaultOpenCommand()
	flag.Var(&commandParser{&cfg.OpenCommand}, "open-command", "Command used to open a saved file. <path> is replaced with the file path, or the path is appended")

	flag.StringVar(&cfg.UserAgent, "user-agent", lyricsmd.UserAgent(), "User-Agent sent to the lyrics API")
	flag.BoolVar(&cfg.NoColor, "no-color", false, "Disable coloured output")

	return &cfg
}

func Notifications() *notifications.Notifications {
	n := notifications.Notifications{Title: lyricsmd.Name}
	flag.Var(&notificationsParser{&n}, "notification-uri", "Add a shoutrrr notification URI for an event, eg \"saved,batch-complete generic://...\" (stackable)")
	return &n
}

var ErrUnknownSource = errors.New("unknown lyrics source")

// SourceNames are the lyrics sources that can be configured.
var SourceNames = []string{"ovh", "google-musixmatch", "musixmatch", "genius"}

// Source chains the configured sources in order.
func (c *Options) Source() (lyrics.Source, error) {
	var chain lyrics.ChainSource
	for _, name := range c.Sources {
		src, err := c.sourceByName(name)
		if err != nil {
			return nil, err
		}
		chain = append(chain, src)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", ErrUnknownSource)
	}
	return chain, nil
}

func (c *Options) sourceByName(name string) (lyrics.Source, error) {
	switch name {
	case "ovh":
		return &c.OVH, nil
	case "google-musixmatch":
		c.Google.RateLimit = c.ScrapeRateLimit
		return &lyrics.Scraper{
			Name:      name,
			Finder:    &c.Google,
			Extractor: lyrics.MusixmatchExtractor{},
			Timeout:   c.PageTimeout,
			RateLimit: c.ScrapeRateLimit,
			Headers:   clientutil.BrowserHeaders(lyrics.MusixmatchReferer),
			Delay:     c.CourtesyDelay,
		}, nil
	case "musixmatch":
		return &lyrics.Musixmatch{BaseURL: c.MusixmatchBaseURL, RateLimit: c.ScrapeRateLimit, Timeout: c.PageTimeout}, nil
	case "genius":
		return &lyrics.Genius{BaseURL: c.GeniusBaseURL, RateLimit: c.ScrapeRateLimit, Timeout: c.PageTimeout}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}

// Guesser guesses artists by probing the lyrics API.
func (c *Options) Guesser() *discover.Guesser {
	return &discover.Guesser{Prober: &c.OVH, CommonArtists: c.GuessCommonArtists}
}

// OpenFileCommand builds the command that opens path.
func (c *Options) OpenFileCommand(ctx context.Context, path string) (*exec.Cmd, error) {
	if len(c.OpenCommand) == 0 {
		return nil, fmt.Errorf("no open command configured")
	}
	args := slices.Clone(c.OpenCommand)
	var replaced bool
	for i := range args {
		if strings.Contains(args[i], "<path>") {
			args[i] = strings.ReplaceAll(args[i], "<path>", path)
			replaced = true
		}
	}
	if !replaced {
		args = append(args, path)
	}
	return exec.CommandContext(ctx, args[0], args[1:]...), nil
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Lyrics"
	}
	return filepath.Join(home, "Lyrics")
}

func defaultOpenCommand() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"explorer"}
	default:
		return []string{"xdg-open"}
	}
}

var _ flag.Value = (*sourcesParser)(nil)
var _ flag.Value = (*commandParser)(nil)
var _ flag.Value = (*notificationsParser)(nil)

type sourcesParser struct{ names *[]string }

func (s *sourcesParser) Set(value string) error {
	names := strings.FieldsFunc(value, func(r rune) bool { return r == ' ' || r == ',' })
	for _, name := range names {
		if !slices.Contains(SourceNames, name) {
			return fmt.Errorf("%w: %q", ErrUnknownSource, name)
		}
	}
	*s.names = names
	return nil
}
func (s sourcesParser) String() string {
	if s.names == nil {
		return ""
	}
	return strings.Join(*s.names, " ")
}

type commandParser struct{ args *[]string }

func (c *commandParser) Set(value string) error {
	args, err := shlex.Split(value)
	if err != nil {
		return fmt.Errorf("split command: %w", err)
	}
	*c.args = args
	return nil
}
func (c commandParser) String() string {
	if c.args == nil {
		return ""
	}
	return strings.Join(*c.args, " ")
}

type notificationsParser struct{ *notifications.Notifications }

func (n *notificationsParser) Set(value string) error {
	eventsRaw, uri, ok := strings.Cut(value, " ")
	if !ok {
		return fmt.Errorf("invalid notification uri format. expected eg \"ev1,ev2 uri\"")
	}
	var lineErrs []error
	for _, ev := range strings.Split(eventsRaw, ",") {
		ev, uri = strings.TrimSpace(ev), strings.TrimSpace(uri)
		err := n.AddURI(notifications.Event(ev), uri)
		lineErrs = append(lineErrs, err)
	}
	return errors.Join(lineErrs...)
}
func (n notificationsParser) String() string {
	if n.Notifications == nil {
		return ""
	}
	var parts []string
	n.Notifications.IterMappings(func(e notifications.Event, uri string) {
		url, _ := url.Parse(uri)
		parts = append(parts, fmt.Sprintf("%s: %s://%s/...", e, url.Scheme, url.Host))
	})
	return strings.Join(parts, ", ")
}
