package renamer

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

var link = os.Link

// renameNoReplace renames oldpath to newpath and fails with fs.ErrExist
// when newpath is already taken. A hard link claims the new name
// atomically; where hard links are unavailable it falls back to an
// existence check followed by os.Rename.
func renameNoReplace(oldpath, newpath string) error {
	err := link(oldpath, newpath)
	switch {
	case err == nil:
		if err := os.Remove(oldpath); err != nil {
			_ = os.Remove(newpath)
			return err
		}
		return nil
	case errors.Is(err, fs.ErrExist), errors.Is(err, syscall.EACCES):
		return err
	}

	if _, err := os.Lstat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(oldpath, newpath)
}
