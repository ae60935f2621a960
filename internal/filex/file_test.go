package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesDirectory(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "scratch", "media")

	got, err := EnsureDir(dir)
	require.NoError(t, err)
	require.Equal(t, dir, got)

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")
}

func TestEnsureDir_ReusesExisting(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "scratch")

	first, err := EnsureDir(dir)
	require.NoError(t, err)

	marker := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o660))

	second, err := EnsureDir(dir)
	require.NoError(t, err)
	require.Equal(t, first, second)

	_, err = os.Stat(marker)
	require.NoError(t, err, "existing contents must survive")
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "scratch")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o660))

	_, err := EnsureDir(path)
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestRemoveIfExists(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "a.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o660))

	require.NoError(t, RemoveIfExists(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// second removal of the same path is a no-op
	require.NoError(t, RemoveIfExists(path))
	require.NoError(t, RemoveIfExists(""))
}

func TestNonEmptyFile(t *testing.T) {
	tmp := t.TempDir()

	empty := filepath.Join(tmp, "empty.jpg")
	require.NoError(t, os.WriteFile(empty, nil, 0o660))

	full := filepath.Join(tmp, "full.jpg")
	require.NoError(t, os.WriteFile(full, []byte("jpeg-bytes"), 0o660))

	require.False(t, NonEmptyFile(filepath.Join(tmp, "missing.jpg")))
	require.False(t, NonEmptyFile(empty))
	require.False(t, NonEmptyFile(tmp), "directories do not count")
	require.True(t, NonEmptyFile(full))
}
