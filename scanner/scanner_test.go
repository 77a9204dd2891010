package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.sh"), []byte("echo b\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bash"), []byte("echo a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me\n"), 0o644))

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "c.sh"), []byte("echo c\n"), 0o644))

	files, err := New(dir).Scan()
	require.NoError(t, err)
	require.Len(t, files, 3)

	// sorted by path
	assert.Equal(t, filepath.Join(dir, "a.bash"), files[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.sh"), files[1].Path)
	assert.Equal(t, filepath.Join(sub, "c.sh"), files[2].Path)
	assert.Equal(t, int64(7), files[0].Size)
}

func TestScanCustomExtensions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.sh"), []byte("echo\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.zsh"), []byte("echo\n"), 0o644))

	files, err := New(dir, ".zsh").Scan()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "b.zsh"), files[0].Path)
}

func TestScanMissingDir(t *testing.T) {
	t.Parallel()
	_, err := New(filepath.Join(t.TempDir(), "absent")).Scan()
	assert.Error(t, err)
}
