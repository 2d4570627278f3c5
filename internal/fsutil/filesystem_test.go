package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_WriteFileCreatesParents(t *testing.T) {
	osfs := OSFileSystem{}
	name := filepath.Join(t.TempDir(), "reports", "2026", "out.csv")

	require.NoError(t, osfs.WriteFile(name, []byte("path\n")))

	data, err := osfs.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "path\n", string(data))

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestOSFileSystem_WriteFileReplaces(t *testing.T) {
	osfs := OSFileSystem{}
	dir := t.TempDir()
	name := filepath.Join(dir, "out.csv")

	require.NoError(t, osfs.WriteFile(name, []byte("first run with a longer body\n")))
	require.NoError(t, osfs.WriteFile(name, []byte("second\n")))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestOSFileSystem_ReadMissing(t *testing.T) {
	_, err := OSFileSystem{}.ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	body := []byte(`{"GPSLatitude":"1 2 3 N"}`)
	require.NoError(t, mfs.WriteFile("/meta/a.json", body))
	body[0] = 'X'

	data, err := mfs.ReadFile("/meta/./a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"GPSLatitude":"1 2 3 N"}`, string(data), "stored data is a copy")

	data[0] = 'X'
	again, err := mfs.ReadFile("/meta/a.json")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), again[0], "returned data is a copy")
}

func TestMemoryFileSystem_ReadMissing(t *testing.T) {
	_, err := NewMemoryFileSystem().ReadFile("/missing.json")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_Names(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("b/report.csv", nil))
	require.NoError(t, mfs.WriteFile("./a.json", nil))
	require.NoError(t, mfs.WriteFile("b/../c.png", nil))

	assert.Equal(t, []string{"a.json", "b/report.csv", "c.png"}, mfs.Names())
}
