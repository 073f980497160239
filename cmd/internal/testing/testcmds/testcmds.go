package testcmds

import (
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed testdata/responses
var responses embed.FS

// RegisterTransport serves every lyrics API, search and page request from embedded responses.
func RegisterTransport() {
	var t http.Transport
	t.RegisterProtocol("file", http.NewFileTransportFS(responses))

	os.Setenv("LYRICSMD_OVH_BASE_URL", "file:///testdata/responses/ovh")
	os.Setenv("LYRICSMD_GOOGLE_BASE_URL", "file:///testdata/responses/google/search")
	os.Setenv("LYRICSMD_MUSIXMATCH_BASE_URL", "file:///testdata/responses/musixmatch.com/lyrics")
	os.Setenv("LYRICSMD_GENIUS_BASE_URL", "file:///testdata/responses/genius.com")
	os.Setenv("LYRICSMD_COURTESY_DELAY", "0")
	os.Setenv("LYRICSMD_SCRAPE_RATE_LIMIT", "0")

	http.DefaultTransport = &t
}

// Find prints every path under the given paths, one per line.
func Find() {
	maxDepth := flag.Int("max-depth", -1, "")
	flag.Parse()

	paths := flag.Args()
	sort.Strings(paths)

	for _, p := range paths {
		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			path = filepath.Clean(path)
			if *maxDepth != -1 && strings.Count(path, string(filepath.Separator)) > *maxDepth {
				return nil
			}
			fmt.Println(path)
			return nil
		})
		if err != nil {
			log.Fatal(err)
		}
	}
}
