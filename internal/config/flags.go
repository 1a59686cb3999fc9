package config

// This file implements CLI flag parsing and help text.
// Long and short spellings share one destination. Folders may appear
// before, between or after flags.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Version is shown by --version; override at build time with
// -ldflags "-X photo-renamer/internal/config.Version=...".
var Version = "1.0.0-dev"

// ErrVersion is returned by ParseFlags after --version has been printed.
var ErrVersion = errors.New("version requested")

// ParseFlags layers the config file, the environment and then args over
// cfg, and validates the result. It returns flag.ErrHelp after printing
// usage for -h, and ErrVersion after printing the version.
func ParseFlags(cfg *Config, args []string, out io.Writer) error {
	args = joinRecursionValue(args)

	if err := LoadFile(cfg, configPathArg(args)); err != nil {
		return err
	}

	fs := flag.NewFlagSet("photo-renamer", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { printUsage(fs) }

	var configPath string
	var showVersion bool
	color := string(cfg.ColorMode)

	fs.BoolVar(&cfg.CreationTime, "creation-time", cfg.CreationTime, "Fall back to filesystem creation time when no metadata date exists")
	fs.BoolVar(&cfg.CreationTime, "ct", cfg.CreationTime, "Same as --creation-time")
	fs.Var(&recursionValue{&cfg.Recursion}, "recursion", "Levels below each folder to scan; bare flag means unlimited (-1)")
	fs.Var(&recursionValue{&cfg.Recursion}, "r", "Same as --recursion")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "strftime pattern for the timestamp prefix")
	fs.StringVar(&cfg.Format, "f", cfg.Format, "Same as --format")
	fs.BoolVar(&cfg.Undo, "undo", cfg.Undo, "Strip previously added timestamp prefixes")
	fs.BoolVar(&cfg.Undo, "u", cfg.Undo, "Same as --undo")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Show planned renames without touching files")
	fs.BoolVar(&cfg.DryRun, "n", cfg.DryRun, "Same as --dry-run")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every file, including skipped ones")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.StringVar(&color, "color", color, "Color output: auto | always | never")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Append log lines to this file")
	fs.StringVar(&configPath, "config", cfg.ConfigFile, "Config file (toml, yaml or json)")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if showVersion {
		fmt.Fprintln(out, "photo-renamer v"+Version)
		return ErrVersion
	}

	cfg.ColorMode = ColorMode(strings.ToLower(color))
	if len(positional) > 0 {
		cfg.Folders = positional
	}
	for i, f := range cfg.Folders {
		cfg.Folders[i] = NormalizeDirArg(f)
	}
	return cfg.Validate()
}

// parseInterleaved parses flags that follow positional arguments, which the
// flag package alone stops at. Everything after "--" is positional.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var tail []string
	for i, a := range args {
		if a == "--" {
			tail = args[i+1:]
			args = args[:i]
			break
		}
	}

	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}
	return append(positional, tail...), nil
}

// joinRecursionValue rewrites "-r N" into "-r=N". The recursion flag takes
// an optional value, which the flag package only supports in the "=" form.
// Malformed values are joined too, so that they fail validation instead of
// being taken for a folder.
func joinRecursionValue(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			out = append(out, args[i:]...)
			break
		}
		if isRecursionFlag(a) && i+1 < len(args) && isRecursionOperand(args[i+1], args[i+2:]) {
			out = append(out, a+"="+args[i+1])
			i++
			continue
		}
		out = append(out, a)
	}
	return out
}

// isRecursionOperand reports whether next, the token after -r, is meant as
// its value. Integers always are. Other tokens are values unless they name
// an existing path, when they look like a number or when a folder argument
// still follows them.
func isRecursionOperand(next string, rest []string) bool {
	if _, err := strconv.Atoi(next); err == nil {
		return true
	}
	if next == "" || strings.HasPrefix(next, "-") {
		return false
	}
	if _, err := os.Stat(next); err == nil {
		return false
	}
	if looksNumeric(next) {
		return true
	}
	for _, a := range rest {
		if a == "--" {
			return false
		}
		if !strings.HasPrefix(a, "-") {
			return true
		}
	}
	return false
}

func looksNumeric(s string) bool {
	s = strings.TrimPrefix(s, "+")
	return s != "" && (s[0] >= '0' && s[0] <= '9' || s[0] == '.')
}

func isRecursionFlag(a string) bool {
	switch a {
	case "-r", "--r", "-recursion", "--recursion":
		return true
	}
	return false
}

// configPathArg finds --config before the flag set exists, so the file can
// provide the defaults the flags override.
func configPathArg(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// recursionValue is a flag.Value for --recursion. It reports itself as a
// boolean flag so that a bare -r parses, and maps that to unlimited depth.
type recursionValue struct{ p *int }

func (v *recursionValue) String() string {
	if v == nil || v.p == nil {
		return "0"
	}
	return strconv.Itoa(*v.p)
}

func (v *recursionValue) Set(s string) error {
	switch s {
	case "true":
		*v.p = RecursionUnlimited
		return nil
	case "false":
		*v.p = RecursionRootOnly
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%w: recursion must be an integer, got %q", ErrInvalidConfig, s)
	}
	if n < RecursionUnlimited {
		return fmt.Errorf("%w: recursion must be -1 or greater, got %d", ErrInvalidConfig, n)
	}
	*v.p = n
	return nil
}

func (v *recursionValue) IsBoolFlag() bool { return true }

func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "photo-renamer v%s - Prefix image filenames with their capture time\n\n", Version)
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  photo-renamer [options] <folder> [folder...]\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  photo-renamer ~/Pictures              # Rename files in the folder itself\n")
	fmt.Fprintf(w, "  photo-renamer -r ~/Pictures           # Include every subfolder\n")
	fmt.Fprintf(w, "  photo-renamer -r 2 -ct ~/Pictures     # Two levels deep, creation time fallback\n")
	fmt.Fprintf(w, "  photo-renamer -f %%Y%%m%%d ~/Pictures    # Custom prefix format\n")
	fmt.Fprintf(w, "  photo-renamer -u -r ~/Pictures        # Undo a previous run\n")
	fmt.Fprintf(w, "\nEnvironment:\n")
	fmt.Fprintf(w, "  %s_<OPTION> overrides the config file, e.g. %s_FORMAT\n", EnvPrefix, EnvPrefix)
}
