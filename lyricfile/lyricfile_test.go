package lyricfile_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/lyricsmd/lyricfile"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, lyricfile.Format(&buf, lyricfile.Document{
		Title:  "Imagine",
		Artist: "John Lennon",
		Body:   "Imagine there's no heaven\n\nIt's easy if you try",
	}))
	assert.Equal(t, "# Lyrics for Imagine by John Lennon\n\nImagine there's no heaven\n\nIt's easy if you try\n", buf.String())

	buf.Reset()
	require.NoError(t, lyricfile.Format(&buf, lyricfile.Document{Title: "Imagine", Body: "la"}))
	assert.Equal(t, "# Lyrics for Imagine\n\nla\n", buf.String())
}

func TestFormatFrontMatter(t *testing.T) {
	t.Parallel()

	fetched := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	doc := lyricfile.Document{
		Title:  "Imagine",
		Artist: "John Lennon",
		Body:   "Imagine there's no heaven",
		Meta:   &lyricfile.Meta{Source: "lyrics.ovh", Kind: "api", Fetched: fetched},
	}

	var buf bytes.Buffer
	require.NoError(t, lyricfile.Format(&buf, doc))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "---\ntitle: Imagine\nartist: John Lennon\nsource: lyrics.ovh\nkind: api\nfetched: "), out)
	assert.Contains(t, out, "2024-03-01T12:30:00Z")
	assert.True(t, strings.HasSuffix(out, "\n---\n\n# Lyrics for Imagine by John Lennon\n\nImagine there's no heaven\n"), out)

	got, err := lyricfile.Parse(&buf)
	require.NoError(t, err)
	require.NotNil(t, got.Meta)
	assert.True(t, fetched.Equal(got.Meta.Fetched))
	got.Meta.Fetched = fetched
	assert.Equal(t, doc, got)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	bodies := []string{
		"",
		"one line",
		"Imagine there's no heaven\n\nIt's easy if you try",
		"trailing newlines\n\n",
		"\nleading newline",
		"# a heading inside\n\n---\nand a rule",
		"unicode: Rähinä ♪",
	}
	for _, body := range bodies {
		for _, meta := range []*lyricfile.Meta{nil, {Source: "genius", URL: "https://genius.com/x"}} {
			doc := lyricfile.Document{Title: "Song: Part 1", Artist: "Someone", Body: body, Meta: meta}

			var buf bytes.Buffer
			require.NoError(t, lyricfile.Format(&buf, doc))
			got, err := lyricfile.Parse(&buf)
			require.NoError(t, err)
			assert.Equal(t, body, got.Body)
			assert.Equal(t, "Song: Part 1", got.Title)
			assert.Equal(t, "Someone", got.Artist)
		}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	doc, err := lyricfile.Parse(strings.NewReader("# Lyrics for Stand by Me\n\nWhen the night\n"))
	require.NoError(t, err)
	assert.Equal(t, "Stand", doc.Title)
	assert.Equal(t, "Me", doc.Artist)
	assert.Nil(t, doc.Meta)

	_, err = lyricfile.Parse(strings.NewReader("just some notes\n"))
	assert.ErrorIs(t, err, lyricfile.ErrNotLyricsFile)

	_, err = lyricfile.Parse(strings.NewReader("---\ntitle: x\n# Lyrics for x\n\nbody\n"))
	assert.ErrorIs(t, err, lyricfile.ErrNotLyricsFile)

	doc, err = lyricfile.Parse(strings.NewReader("---\ntitle: X\nfetched: March 1, 2024\n---\n\n# Lyrics for X\n\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, 2024, doc.Meta.Fetched.Year())
	assert.Equal(t, time.March, doc.Meta.Fetched.Month())
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ACDC", lyricfile.SanitizeFilename("AC/DC"))
	assert.Equal(t, "What is love", lyricfile.SanitizeFilename(`What <is> "love"?`))

	long := strings.Repeat("na", 80) + " batman"
	once := lyricfile.SanitizeFilename(long)
	assert.Len(t, []rune(once), 100)
	assert.Equal(t, once, lyricfile.SanitizeFilename(once))
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Imagine - John Lennon.md", lyricfile.FileName("Imagine", "John Lennon"))
	assert.Equal(t, "Imagine.md", lyricfile.FileName("Imagine", ""))
	assert.Equal(t, "Back In Black - ACDC.md", lyricfile.FileName("Back In Black", "AC/DC"))
	assert.Equal(t, "untitled.md", lyricfile.FileName("???", ""))
}

func TestWrite(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "lyrics")
	doc := lyricfile.Document{Title: "Imagine", Artist: "John Lennon", Body: "Imagine there's no heaven\n\nIt's easy if you try"}

	res, err := lyricfile.Write(dir, "Imagine - John Lennon", doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Imagine - John Lennon.md"), res.Path)
	assert.True(t, filepath.IsAbs(res.Path))
	assert.False(t, res.Replaced)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "# Lyrics for Imagine by John Lennon\n\nImagine there's no heaven\n\nIt's easy if you try\n", string(data))

	// extension check is case insensitive
	res, err = lyricfile.Write(dir, "Shout.MD", doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Shout.MD"), res.Path)

	doc.Body = "Imagine there's no hell\n\nIt's easy if you try"
	res, err = lyricfile.Write(dir, "Imagine - John Lennon.md", doc)
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.Equal(t, 4, res.Distance)

	res, err = lyricfile.Write(dir, "Imagine - John Lennon.md", doc)
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.Equal(t, 0, res.Distance)
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := lyricfile.Write(filepath.Join(file, "sub"), "x", lyricfile.Document{Title: "x"})
	require.Error(t, err)

	_, err = lyricfile.Write(dir, "", lyricfile.Document{Title: "x"})
	require.Error(t, err)
}

func TestList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"Track 10", "Track 2", "Track 1"} {
		_, err := lyricfile.Write(dir, name, lyricfile.Document{Title: name, Body: "la"})
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("not lyrics\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("# Lyrics for x\n\ny\n"), 0o644))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "Track 1.md"), old, old))

	entries, err := lyricfile.List(dir, time.Time{})
	require.NoError(t, err)

	var titles []string
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"Track 1", "Track 2", "Track 10"}, titles)

	entries, err = lyricfile.List(dir, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Track 2", entries[0].Title)

	entries, err = lyricfile.List(filepath.Join(dir, "missing"), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
