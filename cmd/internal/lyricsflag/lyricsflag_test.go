package lyricsflag

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.senan.xyz/lyricsmd/lyrics"
	"go.senan.xyz/lyricsmd/notifications"
)

func TestSourcesParser(t *testing.T) {
	t.Parallel()

	var names []string
	p := &sourcesParser{&names}

	require.NoError(t, p.Set("genius ovh"))
	assert.Equal(t, []string{"genius", "ovh"}, names)

	require.NoError(t, p.Set("ovh,google-musixmatch"))
	assert.Equal(t, []string{"ovh", "google-musixmatch"}, names)
	assert.Equal(t, "ovh google-musixmatch", p.String())

	assert.ErrorIs(t, p.Set("ovh azlyrics"), ErrUnknownSource)
	assert.Equal(t, []string{"ovh", "google-musixmatch"}, names)
}

func TestSource(t *testing.T) {
	t.Parallel()

	opts := &Options{Sources: []string{"ovh", "google-musixmatch", "musixmatch", "genius"}}
	src, err := opts.Source()
	require.NoError(t, err)

	chain, ok := src.(lyrics.ChainSource)
	require.True(t, ok)
	require.Len(t, chain, 4)
	assert.Equal(t, "lyrics.ovh, google-musixmatch, musixmatch, genius", chain.String())

	opts = &Options{}
	_, err = opts.Source()
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestGoogleMusixmatchHeaders(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var pageHeaders http.Header
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			fmt.Fprintf(w, `<div class="g"><a href="%s/lyrics/Queen/Bohemian-Rhapsody"><h3>Bohemian Rhapsody Lyrics</h3></a></div>`, srv.URL)
		case "/lyrics/Queen/Bohemian-Rhapsody":
			mu.Lock()
			pageHeaders = r.Header.Clone()
			mu.Unlock()
			fmt.Fprint(w, `<span class="lyrics__content__ok">Is this the real life?</span>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	opts := &Options{}
	opts.Google.BaseURL = srv.URL + "/search"
	opts.Google.PathMarker = "/lyrics/"

	src, err := opts.sourceByName("google-musixmatch")
	require.NoError(t, err)
	res, err := src.Search(context.Background(), "Queen", "Bohemian Rhapsody")
	require.NoError(t, err)
	assert.Equal(t, "Is this the real life?", res.Text)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, pageHeaders.Get("User-Agent"), "Mozilla/5.0")
	assert.Equal(t, lyrics.MusixmatchReferer, pageHeaders.Get("Referer"))
	assert.Equal(t, "en-US,en;q=0.9", pageHeaders.Get("Accept-Language"))
}

func TestOpenFileCommand(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var opts Options
	p := &commandParser{&opts.OpenCommand}

	require.NoError(t, p.Set(`code --reuse-window`))
	cmd, err := opts.OpenFileCommand(ctx, "/tmp/a b.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "--reuse-window", "/tmp/a b.md"}, cmd.Args)

	require.NoError(t, p.Set(`sh -c "less '<path>'"`))
	cmd, err = opts.OpenFileCommand(ctx, "/tmp/x.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"sh", "-c", "less '/tmp/x.md'"}, cmd.Args)

	opts.OpenCommand = nil
	_, err = opts.OpenFileCommand(ctx, "/tmp/x.md")
	assert.Error(t, err)
}

func TestNotificationsParser(t *testing.T) {
	t.Parallel()

	var n notifications.Notifications
	p := &notificationsParser{&n}

	require.NoError(t, p.Set("saved,batch-complete logger://"))
	assert.Error(t, p.Set("logger://"))
	assert.ErrorIs(t, p.Set("played logger://"), notifications.ErrUnknownEvent)

	var events []notifications.Event
	n.IterMappings(func(e notifications.Event, _ string) { events = append(events, e) })
	assert.ElementsMatch(t, []notifications.Event{notifications.Saved, notifications.BatchComplete}, events)
}
