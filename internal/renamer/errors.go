package renamer

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrDirectoryNotFound marks a root folder that does not exist. It is
	// logged and the folder skipped; it never ends a run.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrDestinationExists means the target name is taken. Fatal in forward
	// mode: renaming over it would destroy a file.
	ErrDestinationExists = errors.New("file already exists")

	// ErrPermissionDenied means the OS refused the rename. Fatal in forward
	// mode.
	ErrPermissionDenied = errors.New("permission denied")
)

// RenameError records a failed rename with both paths.
type RenameError struct {
	Op   string // "rename" or "undo"
	From string
	To   string
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("%s %s -> %s: %v", e.Op, e.From, e.To, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// classify maps OS errors onto the package sentinels, keeping the original
// error in the chain.
func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%w: %w", ErrDestinationExists, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	return err
}
