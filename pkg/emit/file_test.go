package emit

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.ts")

	wrote, err := WriteFile(path, []byte("a"), WriteOptions{})
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = WriteFile(path, []byte("a"), WriteOptions{})
	require.NoError(t, err)
	assert.False(t, wrote, "unchanged content is not rewritten")

	wrote, err = WriteFile(path, []byte("b"), WriteOptions{})
	require.NoError(t, err)
	assert.True(t, wrote)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file is renamed away")
	assert.Equal(t, "out.ts", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteTemp_RemovesPartialFileOnError(t *testing.T) {
	dir := t.TempDir()
	src := io.MultiReader(strings.NewReader("export const Partial"), iotest.ErrReader(errors.New("disk full")))

	_, err := writeTemp(dir, ".out.ts.*.tmp", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFile_Check(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.ts")

	_, err := WriteFile(path, []byte("a"), WriteOptions{Check: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStale))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "check mode never writes")

	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	wrote, err := WriteFile(path, []byte("a"), WriteOptions{Check: true})
	require.NoError(t, err)
	assert.False(t, wrote)

	_, err = WriteFile(path, []byte("b"), WriteOptions{Check: true})
	assert.True(t, errors.Is(err, ErrStale))
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Api.ts")

	removed, err := Remove(path, WriteOptions{})
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, os.WriteFile(path, []byte("client"), 0o644))
	_, err = Remove(path, WriteOptions{Check: true})
	assert.True(t, errors.Is(err, ErrStale))

	removed, err = Remove(path, WriteOptions{})
	require.NoError(t, err)
	assert.True(t, removed)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
