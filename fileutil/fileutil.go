package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func GlobEscape(path string) string {
	var r strings.Builder
	for _, c := range path {
		switch c {
		case '*', '?', '[':
			r.WriteRune('[')
			r.WriteRune(c)
			r.WriteRune(']')
		default:
			r.WriteRune(c)
		}
	}
	return r.String()
}

func GlobBase(dir, pattern string) ([]string, error) {
	return filepath.Glob(filepath.Join(GlobEscape(dir), pattern))
}

var unsafeNameReplacer = strings.NewReplacer(
	"\x00", "",
	"<", "",
	">", "",
	":", "",
	`"`, "",
	"/", "",
	`\`, "",
	"|", "",
	"?", "",
	"*", "",
)

// SafeName strips characters not allowed in file names and limits the result to maxRunes runes.
// SafeName(SafeName(s)) == SafeName(s).
func SafeName(name string, maxRunes int) string {
	name = unsafeNameReplacer.Replace(name)
	if maxRunes > 0 {
		if r := []rune(name); len(r) > maxRunes {
			name = string(r[:maxRunes])
		}
	}
	return strings.TrimSpace(name)
}

// WriteFileAtomic writes data to a temporary file next to path then renames it into place.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
