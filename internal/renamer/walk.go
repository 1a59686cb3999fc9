package renamer

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Depth returns how many levels dir lies below root, counted as the path
// separators in the part of dir beyond root. root itself is depth 0.
func Depth(root, dir string) int {
	root = filepath.Clean(root)
	dir = filepath.Clean(dir)
	if dir == root {
		return 0
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// Included reports whether files at depth are processed under limit.
// A limit of -1 includes every depth.
func Included(depth, limit int) bool {
	return limit < 0 || depth <= limit
}

// visitFunc is called for every eligible file. Returning an error stops the
// walk and the error is returned from walk.
type visitFunc func(path string, d fs.DirEntry) error

// walk visits, depth first in lexical order, every regular file below root
// whose directory is within limit and whose extension eligible accepts.
// Directories past the limit are not entered. Unreadable directories are
// reported through skipped and left out.
func walk(root string, limit int, eligible func(ext string) bool, skipped func(path string, err error), visit visitFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil && path == root {
				return err
			}
			skipped(path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if !Included(Depth(root, path), limit) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !eligible(filepath.Ext(d.Name())) {
			return nil
		}
		return visit(path, d)
	})
}
