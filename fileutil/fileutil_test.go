package fileutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/lyricsmd/fileutil"
)

func TestSafeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", fileutil.SafeName("hello", 100))
	assert.Equal(t, "hello", fileutil.SafeName("hello/", 100))
	assert.Equal(t, "helloa", fileutil.SafeName("hello/a", 100))
	assert.Equal(t, "hello", fileutil.SafeName("hel\x00lo", 100))
	assert.Equal(t, "AC DC", fileutil.SafeName(` AC<>:"/\|?* DC `, 100))
	assert.Equal(t, "What Is Love", fileutil.SafeName("What Is Love?", 100))
	assert.Equal(t, "Rähinä", fileutil.SafeName("Rähinä", 100))
	assert.Equal(t, "Räh", fileutil.SafeName("Rähinä", 3))
	assert.Equal(t, "", fileutil.SafeName("???", 100))

	for _, in := range []string{
		"plain",
		strings.Repeat("x", 250),
		strings.Repeat("é", 99) + "  trailing",
		strings.Repeat("a", 99) + " b",
		" <leading and trailing> ",
		"a:b:c",
	} {
		once := fileutil.SafeName(in, 100)
		assert.Equal(t, once, fileutil.SafeName(once, 100), "input %q", in)
		assert.LessOrEqual(t, len([]rune(once)), 100)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "song.md")

	require.NoError(t, fileutil.WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, fileutil.WriteFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	err = fileutil.WriteFileAtomic(filepath.Join(dir, "missing", "song.md"), []byte("x"), 0o644)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGlobBase(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "weird [dir]")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))

	matches, err := fileutil.GlobBase(dir, "*.md")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.md")}, matches)
}
