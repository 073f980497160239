// Package lyricfile reads and writes the Markdown files lyrics are saved to.
package lyricfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/sergi/go-diff/diffmatchpatch"
	"go.senan.xyz/lyricsmd/fileutil"
	"go.senan.xyz/natcmp"
	"gopkg.in/yaml.v2"
)

const (
	Ext         = ".md"
	MaxNameLen  = 100
	headingLead = "# Lyrics for "
	fence       = "---"
)

var ErrNotLyricsFile = errors.New("not a lyrics file")

// Meta is the optional YAML front matter of a document.
type Meta struct {
	Source  string
	Kind    string
	URL     string
	Fetched time.Time
}

type Document struct {
	Title  string
	Artist string
	Body   string
	Meta   *Meta
}

func (d Document) Heading() string {
	if d.Artist == "" {
		return headingLead + d.Title
	}
	return headingLead + d.Title + " by " + d.Artist
}

type frontMatter struct {
	Title   string `yaml:"title"`
	Artist  string `yaml:"artist,omitempty"`
	Source  string `yaml:"source,omitempty"`
	Kind    string `yaml:"kind,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Fetched string `yaml:"fetched,omitempty"`
}

// Format writes doc as Markdown: optional front matter, the heading, a blank line, the body
// and a trailing newline.
func Format(w io.Writer, doc Document) error {
	var buf bytes.Buffer
	if doc.Meta != nil {
		fm := frontMatter{
			Title:  doc.Title,
			Artist: doc.Artist,
			Source: doc.Meta.Source,
			Kind:   doc.Meta.Kind,
			URL:    doc.Meta.URL,
		}
		if !doc.Meta.Fetched.IsZero() {
			fm.Fetched = doc.Meta.Fetched.Format(time.RFC3339)
		}
		data, err := yaml.Marshal(fm)
		if err != nil {
			return fmt.Errorf("marshal front matter: %w", err)
		}
		buf.WriteString(fence + "\n")
		buf.Write(data)
		buf.WriteString(fence + "\n\n")
	}
	buf.WriteString(doc.Heading())
	buf.WriteString("\n\n")
	buf.WriteString(doc.Body)
	buf.WriteString("\n")

	_, err := buf.WriteTo(w)
	return err
}

// Parse reads a document written by Format. The body is recovered exactly.
// Without front matter the artist is taken from the first " by " in the heading.
func Parse(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read: %w", err)
	}
	content := string(data)

	var doc Document
	var fm *frontMatter
	if rest, ok := strings.CutPrefix(content, fence+"\n"); ok {
		raw, after, ok := strings.Cut(rest, "\n"+fence+"\n")
		if !ok {
			return Document{}, fmt.Errorf("%w: unterminated front matter", ErrNotLyricsFile)
		}
		fm = &frontMatter{}
		if err := yaml.Unmarshal([]byte(raw), fm); err != nil {
			return Document{}, fmt.Errorf("%w: front matter: %w", ErrNotLyricsFile, err)
		}
		meta, err := fm.meta()
		if err != nil {
			return Document{}, fmt.Errorf("%w: front matter: %w", ErrNotLyricsFile, err)
		}
		doc.Meta = meta
		content = strings.TrimPrefix(after, "\n")
	}

	heading, body, ok := strings.Cut(content, "\n\n")
	if !ok || !strings.HasPrefix(heading, headingLead) || strings.Contains(heading, "\n") {
		return Document{}, fmt.Errorf("%w: missing heading", ErrNotLyricsFile)
	}
	doc.Body = strings.TrimSuffix(body, "\n")

	if fm != nil {
		doc.Title, doc.Artist = fm.Title, fm.Artist
		return doc, nil
	}
	heading = strings.TrimPrefix(heading, headingLead)
	if title, artist, ok := strings.Cut(heading, " by "); ok {
		doc.Title, doc.Artist = title, artist
	} else {
		doc.Title = heading
	}
	return doc, nil
}

func (fm *frontMatter) meta() (*Meta, error) {
	meta := &Meta{Source: fm.Source, Kind: fm.Kind, URL: fm.URL}
	if fm.Fetched != "" {
		t, err := dateparse.ParseAny(fm.Fetched)
		if err != nil {
			return nil, fmt.Errorf("parse fetched date: %w", err)
		}
		meta.Fetched = t
	}
	return meta, nil
}

// SanitizeFilename strips characters not allowed in file names and truncates to MaxNameLen runes.
func SanitizeFilename(name string) string {
	return fileutil.SafeName(name, MaxNameLen)
}

// FileName is the default file name for a song, "<song> - <artist>.md" or "<song>.md".
func FileName(song, artist string) string {
	song, artist = SanitizeFilename(song), SanitizeFilename(artist)
	if song == "" {
		song = "untitled"
	}
	if artist == "" {
		return song + Ext
	}
	return song + " - " + artist + Ext
}

type WriteResult struct {
	Path     string
	Replaced bool
	// Distance is the Levenshtein distance between the replaced body and the new one.
	Distance int
}

// Write saves doc to name in dir, appending the .md extension if missing. dir is created if needed.
// An existing file is replaced, which is reported in the result.
func Write(dir, name string, doc Document) (WriteResult, error) {
	if name == "" {
		return WriteResult{}, errors.New("empty file name")
	}
	if !strings.HasSuffix(strings.ToLower(name), Ext) {
		name += Ext
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return WriteResult{}, fmt.Errorf("create output dir: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return WriteResult{}, fmt.Errorf("resolve path: %w", err)
	}

	res := WriteResult{Path: path}
	if prev, err := os.ReadFile(path); err == nil {
		res.Replaced = true
		res.Distance = distance(previousBody(prev), doc.Body)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return WriteResult{}, fmt.Errorf("read existing: %w", err)
	}

	var buf bytes.Buffer
	if err := Format(&buf, doc); err != nil {
		return WriteResult{}, err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return WriteResult{}, fmt.Errorf("write %q: %w", path, err)
	}
	return res, nil
}

func previousBody(data []byte) string {
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return string(data)
	}
	return doc.Body
}

func distance(a, b string) int {
	dmp := diffmatchpatch.New()
	return dmp.DiffLevenshtein(dmp.DiffMain(a, b, false))
}

type Entry struct {
	Path    string
	ModTime time.Time
	Document
}

// List parses the lyrics files in dir, in natural file name order. Files modified before since
// are left out. Files that can't be parsed are skipped.
func List(dir string, since time.Time) ([]Entry, error) {
	paths, err := fileutil.GlobBase(dir, "*"+Ext)
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	slices.SortFunc(paths, func(a, b string) int {
		return natcmp.Compare(filepath.Base(a), filepath.Base(b))
	})

	var entries []Entry
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat: %w", err)
		}
		if info.IsDir() || (!since.IsZero() && info.ModTime().Before(since)) {
			continue
		}
		doc, err := readFile(path)
		if err != nil {
			slog.Warn("skipping file", "path", path, "err", err)
			continue
		}
		entries = append(entries, Entry{Path: path, ModTime: info.ModTime(), Document: doc})
	}
	return entries, nil
}

func readFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Parse(f)
}
