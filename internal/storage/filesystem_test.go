package storage

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebairia/repobak/internal/backup"
)

var _ backup.Filesystem = (*FS)(nil)

func TestCreateDirectory_IsIdempotent(t *testing.T) {
	fs := New(afero.NewMemMapFs())
	dir := "/backups/octo"
	file := filepath.Join(dir, "repo.zip")

	require.NoError(t, fs.CreateDirectory(dir))
	require.NoError(t, fs.WriteAllBytes(file, []byte("PK\x03\x04")))
	require.NoError(t, fs.CreateDirectory(dir))

	assert.True(t, fs.FileExists(file))
	size, err := fs.GetFileSize(file)
	require.NoError(t, err)
	assert.EqualValues(t, 4, size)

	entries, err := afero.ReadDir(fs.Afero(), dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAllBytes_Truncates(t *testing.T) {
	fs := New(afero.NewMemMapFs())
	require.NoError(t, fs.CreateDirectory("/d"))

	require.NoError(t, fs.WriteAllBytes("/d/f", []byte("longer content")))
	require.NoError(t, fs.WriteAllBytes("/d/f", []byte("short")))

	data, err := fs.ReadAllBytes("/d/f")
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestFileExists(t *testing.T) {
	fs := New(afero.NewMemMapFs())
	require.NoError(t, fs.CreateDirectory("/d"))

	assert.False(t, fs.FileExists("/d/missing"))
	assert.False(t, fs.FileExists("/d"), "directories are not files")
}

func TestGetFileSize_Missing(t *testing.T) {
	fs := New(afero.NewMemMapFs())
	_, err := fs.GetFileSize("/nope")
	assert.Error(t, err)
}

func TestNewOS_WritesToDisk(t *testing.T) {
	fs := NewOS()
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	require.NoError(t, fs.CreateDirectory(dir))
	require.NoError(t, fs.WriteAllBytes(filepath.Join(dir, "a.zip"), []byte("abc")))
	assert.True(t, fs.FileExists(filepath.Join(dir, "a.zip")))
}
