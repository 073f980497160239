package lyricsmd

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed version.txt
var version string
var Version = strings.TrimSpace(version)

const Name = "lyricsmd"

// UserAgent identifies us to the lyrics API.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (+https://go.senan.xyz/lyricsmd)", Name, Version)
}
