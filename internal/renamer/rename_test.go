package renamer

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withLink(t *testing.T, fn func(oldname, newname string) error) {
	t.Helper()
	saved := link
	link = fn
	t.Cleanup(func() { link = saved })
}

func TestRenameNoReplace(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "a.jpg")
	to := filepath.Join(dir, "b.jpg")
	require.NoError(t, os.WriteFile(from, []byte("a"), 0644))

	require.NoError(t, renameNoReplace(from, to))
	assert.NoFileExists(t, from)
	got, err := os.ReadFile(to)
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))
}

func TestRenameNoReplace_DestinationTaken(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "a.jpg")
	to := filepath.Join(dir, "b.jpg")
	require.NoError(t, os.WriteFile(from, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(to, []byte("b"), 0644))

	err := renameNoReplace(from, to)
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.ErrorIs(t, classify(err), ErrDestinationExists)
	assert.FileExists(t, from)
}

func TestRenameNoReplace_AccessDenied(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(from, []byte("a"), 0644))
	withLink(t, func(oldname, newname string) error {
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: syscall.EACCES}
	})

	err := renameNoReplace(from, filepath.Join(dir, "b.jpg"))
	assert.ErrorIs(t, err, syscall.EACCES)
	assert.ErrorIs(t, classify(err), ErrPermissionDenied)
	assert.FileExists(t, from, "no fallback rename after EACCES")
}

func TestRenameNoReplace_NoHardLinks(t *testing.T) {
	noLinks := func(oldname, newname string) error {
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: syscall.EPERM}
	}

	t.Run("falls back to rename", func(t *testing.T) {
		withLink(t, noLinks)
		dir := t.TempDir()
		from := filepath.Join(dir, "a.jpg")
		to := filepath.Join(dir, "b.jpg")
		require.NoError(t, os.WriteFile(from, []byte("a"), 0644))

		require.NoError(t, renameNoReplace(from, to))
		assert.NoFileExists(t, from)
		assert.FileExists(t, to)
	})

	t.Run("still refuses a taken name", func(t *testing.T) {
		withLink(t, noLinks)
		dir := t.TempDir()
		from := filepath.Join(dir, "a.jpg")
		to := filepath.Join(dir, "b.jpg")
		require.NoError(t, os.WriteFile(from, []byte("a"), 0644))
		require.NoError(t, os.WriteFile(to, []byte("b"), 0644))

		err := renameNoReplace(from, to)
		assert.ErrorIs(t, err, fs.ErrExist)
		got, rerr := os.ReadFile(to)
		require.NoError(t, rerr)
		assert.Equal(t, "b", string(got))
	})
}

func TestClassify(t *testing.T) {
	other := &os.PathError{Op: "rename", Path: "x", Err: syscall.EIO}
	assert.Equal(t, other, classify(other))
	assert.ErrorIs(t, classify(&os.LinkError{Err: syscall.EPERM}), ErrPermissionDenied)
	assert.ErrorIs(t, classify(&os.LinkError{Err: syscall.EEXIST}), ErrDestinationExists)
}
