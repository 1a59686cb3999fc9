// Package config holds runtime configuration: defaults, CLI flag parsing,
// the optional config file and environment overrides, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

// ErrInvalidConfig wraps every validation failure. Callers report it
// before any file is touched.
var ErrInvalidConfig = errors.New("invalid configuration")

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Recursion depth sentinels.
const (
	RecursionRootOnly  = 0
	RecursionUnlimited = -1
)

// DefaultFormat is the strftime pattern used for the filename prefix.
const DefaultFormat = "%Y-%m-%d-%H-%M-%S"

// Config holds all runtime settings. It is built by [DefaultConfig], then
// layered with the config file, the environment and CLI flags by
// [ParseFlags]. After [Config.Validate] it is not modified again.
type Config struct {
	// Roots to process (positional args).
	Folders []string `mapstructure:"folders"`

	// Fall back to filesystem creation time when no metadata date exists.
	CreationTime bool `mapstructure:"creation_time"`

	// Directory levels below each root to scan. -1 is unlimited, 0 is the
	// root directory only.
	Recursion int `mapstructure:"recursion"`

	// strftime pattern for the prefix. Default: DefaultFormat.
	Format string `mapstructure:"format"`

	// Strip previously added prefixes instead of adding them.
	Undo bool `mapstructure:"undo"`

	// Log planned renames without performing them.
	DryRun bool `mapstructure:"dry_run"`

	// Display.
	Verbose   bool      `mapstructure:"verbose"`
	ColorMode ColorMode `mapstructure:"color"`
	LogFile   string    `mapstructure:"log_file"`

	// Path of the config file that was loaded, if any.
	ConfigFile string `mapstructure:"-"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Recursion: RecursionRootOnly,
		Format:    DefaultFormat,
		ColorMode: ColorAuto,
	}
}

// Validate checks every field and returns an error wrapping
// ErrInvalidConfig on the first problem found.
func (c *Config) Validate() error {
	if len(c.Folders) == 0 {
		return fmt.Errorf("%w: at least one folder is required", ErrInvalidConfig)
	}
	for _, f := range c.Folders {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: empty folder path", ErrInvalidConfig)
		}
	}
	if c.Recursion < RecursionUnlimited {
		return fmt.Errorf("%w: recursion must be -1 or greater, got %d", ErrInvalidConfig, c.Recursion)
	}
	if err := ValidateFormat(c.Format); err != nil {
		return err
	}
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color must be auto, always or never, got %q", ErrInvalidConfig, c.ColorMode)
	}
	return nil
}

// ValidateFormat reports whether pattern compiles and produces a label that
// can be used inside a single path element.
func ValidateFormat(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("%w: format must not be empty", ErrInvalidConfig)
	}
	f, err := strftime.New(pattern)
	if err != nil {
		return fmt.Errorf("%w: format %q: %v", ErrInvalidConfig, pattern, err)
	}
	sample := f.FormatString(time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC))
	if strings.ContainsRune(sample, '/') || strings.ContainsRune(sample, filepath.Separator) {
		return fmt.Errorf("%w: format %q produces a path separator", ErrInvalidConfig, pattern)
	}
	return nil
}

// NormalizeDirArg trims trailing path separators, keeping a bare root intact.
func NormalizeDirArg(p string) string {
	if p == "" {
		return p
	}
	trimmed := strings.TrimRight(p, "/"+string(filepath.Separator))
	if trimmed == "" {
		return p[:1]
	}
	return trimmed
}
