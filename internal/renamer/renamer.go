// Package renamer walks folders and adds or strips time-label prefixes on
// image filenames.
//
// Forward mode renames "name" to "{label}-name". A name collision or a
// permission problem ends the run, since carrying on could overwrite
// files. Undo mode strips "{label}-" when the recomputed label matches the
// current prefix; its failures are logged and the walk continues.
package renamer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"photo-renamer/internal/config"
	"photo-renamer/internal/logging"
	"photo-renamer/internal/timestamp"
)

// Formats reports which file extensions are images. *imagemeta.Registry
// satisfies it.
type Formats interface {
	Supports(ext string) bool
}

// Stats counts what a run did.
type Stats struct {
	Scanned         int // eligible files visited
	Renamed         int // renamed, or would be in dry-run mode
	NoTimestamp     int // no label could be resolved
	AlreadyPrefixed int // forward: name already carries its label
	NotPrefixed     int // undo: name does not start with its label
	Failed          int // rename attempted and failed
	MissingFolders  int // roots that do not exist
}

// Renamer applies one configuration to every root folder, sequentially.
type Renamer struct {
	folders []string
	limit   int
	dryRun  bool
	formats Formats
	res     *timestamp.Resolver
	log     *logging.Logger
	rename  func(oldpath, newpath string) error
}

// New returns a Renamer for cfg. res must have been built with cfg's
// format and creation-time policy.
func New(cfg *config.Config, formats Formats, res *timestamp.Resolver, log *logging.Logger) *Renamer {
	return &Renamer{
		folders: append([]string(nil), cfg.Folders...),
		limit:   cfg.Recursion,
		dryRun:  cfg.DryRun,
		formats: formats,
		res:     res,
		log:     log,
		rename:  renameNoReplace,
	}
}

// RenameAll prefixes every eligible file with its label. Files without a
// label are left alone. The first failed rename stops the run and is
// returned as a *RenameError.
func (r *Renamer) RenameAll() (Stats, error) {
	return r.run(true, r.res, r.renameFile)
}

// UndoAll strips labels added by RenameAll. The creation-time fallback is
// always on so a label can be recomputed for every file. Failed renames
// are logged and counted, never returned.
func (r *Renamer) UndoAll() (Stats, error) {
	return r.run(false, r.res.WithCreationTime(true), r.undoFile)
}

type fileFunc func(res *timestamp.Resolver, st *Stats, path string) error

func (r *Renamer) run(strict bool, res *timestamp.Resolver, fn fileFunc) (Stats, error) {
	var st Stats
	for _, folder := range r.folders {
		root, err := resolveRoot(folder)
		if err != nil {
			st.MissingFolders++
			r.log.Warn("%s: %s", ErrDirectoryNotFound, folder)
			continue
		}
		r.log.Info("Scanning %s (depth %s)", folder, depthLabel(r.limit))

		err = walk(root, r.limit, r.formats.Supports, r.skipped, func(path string, _ fs.DirEntry) error {
			st.Scanned++
			return fn(res, &st, path)
		})
		if err == nil {
			continue
		}
		if strict {
			return st, err
		}
		r.log.Error("Scanning %s: %v", folder, err)
	}
	return st, nil
}

func (r *Renamer) renameFile(res *timestamp.Resolver, st *Stats, path string) error {
	dir, name := filepath.Split(path)
	label, ok := res.Resolve(path)
	if !ok {
		st.NoTimestamp++
		r.log.Debug("%s: no timestamp, skipped", path)
		return nil
	}

	prefix := label.Text + "-"
	if strings.HasPrefix(name, prefix) {
		st.AlreadyPrefixed++
		r.log.Debug("%s: already prefixed", path)
		return nil
	}

	newPath := filepath.Join(dir, prefix+name)
	if r.dryRun {
		st.Renamed++
		r.log.DryRun("%s -> %s (%s)", path, prefix+name, label.Source)
		return nil
	}
	if err := r.rename(path, newPath); err != nil {
		st.Failed++
		return &RenameError{Op: "rename", From: path, To: newPath, Err: classify(err)}
	}
	st.Renamed++
	r.log.Success("%s -> %s (%s)", path, prefix+name, label.Source)
	return nil
}

// undoFile strips the label prefix from path. The match is a plain string
// prefix test: an original name that happens to start with its own label
// and a dash is stripped too.
func (r *Renamer) undoFile(res *timestamp.Resolver, st *Stats, path string) error {
	dir, name := filepath.Split(path)
	label, ok := res.Resolve(path)
	if !ok {
		st.NoTimestamp++
		r.log.Debug("%s: no timestamp, skipped", path)
		return nil
	}

	prefix := label.Text + "-"
	original := strings.TrimPrefix(name, prefix)
	if original == name || original == "" {
		st.NotPrefixed++
		r.log.Debug("%s: no %q prefix", path, prefix)
		return nil
	}

	newPath := filepath.Join(dir, original)
	if r.dryRun {
		st.Renamed++
		r.log.DryRun("%s -> %s", path, original)
		return nil
	}
	if err := r.rename(path, newPath); err != nil {
		st.Failed++
		r.log.Error("%v", &RenameError{Op: "undo", From: path, To: newPath, Err: classify(err)})
		return nil
	}
	st.Renamed++
	r.log.Success("%s -> %s", path, original)
	return nil
}

func (r *Renamer) skipped(path string, err error) {
	r.log.Warn("Skipping %s: %v", path, err)
}

// resolveRoot returns the directory to walk for folder, following a
// symlinked root, or an error when it is not an existing directory.
func resolveRoot(folder string) (string, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", folder)
	}
	if li, err := os.Lstat(folder); err == nil && li.Mode()&fs.ModeSymlink != 0 {
		return filepath.EvalSymlinks(folder)
	}
	return folder, nil
}

func depthLabel(limit int) string {
	if limit < 0 {
		return "unlimited"
	}
	return fmt.Sprint(limit)
}
