// Photo Renamer - Prefix image filenames with their capture time
//
// This tool scans one or more folders for images, reads the capture date
// from their EXIF metadata and renames each file to "<timestamp>-<name>".
// Runs can be reversed with --undo.
//
// Features:
//   - EXIF date extraction (DateTimeOriginal, DateTimeDigitized, DateTime)
//   - JPEG, TIFF, camera RAW, PNG and HEIF containers
//   - Optional fallback to filesystem creation time
//   - Recursive scanning with a depth limit
//   - Custom strftime timestamp format
//   - Dry-run preview
//
// Usage:
//
//	photo-renamer ~/Pictures              # Rename files in the folder itself
//	photo-renamer -r ~/Pictures           # Include every subfolder
//	photo-renamer -r 2 -ct ~/Pictures     # Two levels deep, creation time fallback
//	photo-renamer -u -r ~/Pictures        # Undo a previous run
//	photo-renamer -n ~/Pictures           # Preview only
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"photo-renamer/internal/config"
	"photo-renamer/internal/imagemeta"
	"photo-renamer/internal/logging"
	"photo-renamer/internal/renamer"
	"photo-renamer/internal/timestamp"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // a rename ended the run
	exitConfig = 2 // invalid configuration, nothing was touched
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the process exit, so it can be tested.
func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, args, stderr); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp), errors.Is(err, config.ErrVersion):
			return exitOK
		}
		fmt.Fprintln(stderr, "Error:", err)
		return exitConfig
	}

	log, err := logging.New(&cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "Error opening log file:", err)
		return exitConfig
	}
	defer log.Close()

	formats, err := imagemeta.DefaultRegistry()
	if err != nil {
		log.Error("Loading image formats: %v", err)
		return exitConfig
	}
	res, err := timestamp.NewResolver(formats, cfg.Format, cfg.CreationTime)
	if err != nil {
		log.Error("%v", err)
		return exitConfig
	}

	printBanner(log, &cfg, formats)

	r := renamer.New(&cfg, formats, res, log)
	var stats renamer.Stats
	if cfg.Undo {
		stats, err = r.UndoAll()
	} else {
		stats, err = r.RenameAll()
	}

	printSummary(log, &cfg, stats)
	if err != nil {
		log.Error("%v", err)
		log.Error("Stopped: remaining files were not processed")
		return exitFailed
	}

	log.Info("Done!")
	return exitOK
}

// =============================================================================
// Output
// =============================================================================

func printBanner(log *logging.Logger, cfg *config.Config, formats *imagemeta.Registry) {
	mode := "rename"
	if cfg.Undo {
		mode = "undo"
	}
	log.Info("%s", strings.Repeat("=", 50))
	log.Info("Photo Renamer v%s", config.Version)
	log.Info("%s", strings.Repeat("=", 50))
	log.Info("Mode:          %s", mode)
	log.Info("Folders:       %s", strings.Join(cfg.Folders, ", "))
	log.Info("Format:        %s", cfg.Format)
	log.Info("Recursion:     %s", recursionLabel(cfg.Recursion))
	log.Info("Creation time: %t", cfg.CreationTime || cfg.Undo)
	if cfg.ConfigFile != "" {
		log.Info("Config file:   %s", cfg.ConfigFile)
	}
	log.Debug("Extensions:    %s", strings.Join(formats.Extensions(), " "))
	if cfg.DryRun {
		log.Info("[DRY RUN MODE - no files will be renamed]")
	}
}

func printSummary(log *logging.Logger, cfg *config.Config, s renamer.Stats) {
	verb := "Renamed"
	if cfg.DryRun {
		verb = "Would rename"
	}
	log.Info("%s %d of %d files", verb, s.Renamed, s.Scanned)
	if s.NoTimestamp > 0 {
		log.Info("No timestamp: %d", s.NoTimestamp)
	}
	if s.AlreadyPrefixed > 0 {
		log.Info("Already prefixed: %d", s.AlreadyPrefixed)
	}
	if s.NotPrefixed > 0 {
		log.Info("Without matching prefix: %d", s.NotPrefixed)
	}
	if s.Failed > 0 {
		log.Warn("Failed: %d", s.Failed)
	}
	if s.MissingFolders > 0 {
		log.Warn("Folders not found: %d", s.MissingFolders)
	}
}

func recursionLabel(depth int) string {
	switch {
	case depth < 0:
		return "unlimited"
	case depth == 0:
		return "folder only"
	}
	return fmt.Sprintf("%d levels", depth)
}
