package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-renamer/internal/fixture"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--color", "never"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func names(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func TestRun_RenameAndUndo(t *testing.T) {
	dir := t.TempDir()
	fixture.Write(t, dir, "photo.jpg", fixture.JPEG(fixture.Exif("2023:05:17 10:20:30", "", "")))

	code, out, _ := runCLI(t, dir)
	require.Equal(t, exitOK, code)
	assert.Equal(t, []string{"2023-05-17-10-20-30-photo.jpg"}, names(t, dir))
	assert.Contains(t, out, "Renamed 1 of 1 files")

	code, _, _ = runCLI(t, "-u", dir)
	require.Equal(t, exitOK, code)
	assert.Equal(t, []string{"photo.jpg"}, names(t, dir))
}

func TestRun_InvalidRecursion(t *testing.T) {
	dir := t.TempDir()
	fixture.Write(t, dir, "photo.jpg", fixture.JPEG(fixture.Exif("2023:05:17 10:20:30", "", "")))

	code, _, errOut := runCLI(t, "-r=many", dir)
	assert.Equal(t, exitConfig, code)
	assert.Contains(t, errOut, "recursion must be an integer")
	assert.Equal(t, []string{"photo.jpg"}, names(t, dir), "nothing is touched")
}

func TestRun_MalformedRecursionValue(t *testing.T) {
	for _, v := range []string{"1.5", "deep", "two"} {
		t.Run(v, func(t *testing.T) {
			dir := t.TempDir()
			nested := filepath.Join(dir, "a", "b", "c")
			fixture.Write(t, nested, "photo.jpg", fixture.JPEG(fixture.Exif("2023:05:17 10:20:30", "", "")))

			code, _, errOut := runCLI(t, "-r", v, dir)
			assert.Equal(t, exitConfig, code)
			assert.Contains(t, errOut, "recursion must be an integer")
			assert.Equal(t, []string{"photo.jpg"}, names(t, nested))
		})
	}
}

func TestRun_CollisionFails(t *testing.T) {
	dir := t.TempDir()
	fixture.Write(t, dir, "2023-05-17-10-20-30-photo.jpg", fixture.BareJPEG())
	fixture.Write(t, dir, "photo.jpg", fixture.JPEG(fixture.Exif("2023:05:17 10:20:30", "", "")))

	code, _, errOut := runCLI(t, dir)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "file already exists")
}

func TestRun_MissingFolderIsWarning(t *testing.T) {
	code, out, _ := runCLI(t, filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "directory not found")
}

func TestRun_Help(t *testing.T) {
	code, _, errOut := runCLI(t, "-h")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "Usage:")
}

func TestRecursionLabel(t *testing.T) {
	assert.Equal(t, "unlimited", recursionLabel(-1))
	assert.Equal(t, "folder only", recursionLabel(0))
	assert.Equal(t, "3 levels", recursionLabel(3))
}
