package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetDirEmptiesExistingContent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, EnsureDir(filepath.Join(dir, "nested")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.html"), []byte("old"), 0o644))

	require.NoError(t, ResetDir(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResetDirCreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never", "existed")
	require.NoError(t, ResetDir(dir))
	assert.True(t, DirExists(dir))
}

func TestCopyFileCreatesParents(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	dst := filepath.Join(root, "a", "b", "dst.txt")
	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x", "y", "f.yaml")
	require.NoError(t, WriteFile(path, []byte("k: v")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "k: v", string(data))
}
