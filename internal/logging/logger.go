// Package logging provides the leveled console logger used by every run.
//
// Lines are "2006-01-02 15:04:05 [LEVEL] message". The level tag is styled
// with lipgloss when colors are enabled; the optional log file always gets
// the plain form.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/muesli/termenv"

	"photo-renamer/internal/config"
)

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	file    *os.File
	verbose bool
	styles  map[string]lipgloss.Style // nil when colors are disabled
	now     func() time.Time
}

// New returns a logger resolving colors from cfg. Errors go to errOut,
// everything else to out. Call Close() when done if LogFile was set.
func New(cfg *config.Config, out, errOut io.Writer) (*Logger, error) {
	l := &Logger{
		out:     out,
		errOut:  errOut,
		verbose: cfg.Verbose,
		now:     time.Now,
	}
	if colorEnabled(cfg.ColorMode, out) {
		l.styles = newStyles(out)
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

func colorEnabled(mode config.ColorMode, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
}

func newStyles(out io.Writer) map[string]lipgloss.Style {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.ANSI256)
	tag := func(c string) lipgloss.Style { return r.NewStyle().Bold(true).Foreground(lipgloss.Color(c)) }
	return map[string]lipgloss.Style{
		"INFO":    tag("12"),
		"SUCCESS": tag("10"),
		"WARN":    tag("11"),
		"ERROR":   tag("9"),
		"DEBUG":   tag("14"),
		"DRY-RUN": tag("13"),
	}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level, text string) {
	ts := l.now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	plain := ts + " [" + level + "] " + text + "\n"
	out := l.out
	if level == "ERROR" {
		out = l.errOut
	}
	if style, ok := l.styles[level]; ok {
		_, _ = io.WriteString(out, ts+" "+style.Render("["+level+"]")+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level; used for each completed rename.
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", fmt.Sprintf(format, args...))
}

// Error logs at ERROR level, to the error writer.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", fmt.Sprintf(format, args...))
}

// DryRun logs a rename that would have happened.
func (l *Logger) DryRun(format string, args ...interface{}) {
	l.line("DRY-RUN", fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level only when the logger is verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line("DEBUG", fmt.Sprintf(format, args...))
}

// Discard returns a logger that writes nowhere.
func Discard() *Logger {
	return &Logger{out: io.Discard, errOut: io.Discard, now: time.Now}
}
