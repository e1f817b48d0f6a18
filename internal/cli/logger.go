package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Logger provides leveled logging for the CLI. Info is shown only when
// Verbose is set and Debug only when DebugMode is set.
type Logger struct {
	Verbose   bool
	DebugMode bool

	mu    sync.Mutex
	out   io.Writer
	clock func() time.Time
	tags  map[string]*color.Color
}

// NewLogger creates a logger writing to stderr, coloured when stderr is a terminal.
func NewLogger(verbose, debug bool) *Logger {
	return NewLoggerTo(os.Stderr, verbose, debug, IsTerminal(os.Stderr))
}

// NewLoggerTo creates a logger writing to w.
func NewLoggerTo(w io.Writer, verbose, debug, colorize bool) *Logger {
	l := &Logger{
		Verbose:   verbose,
		DebugMode: debug,
		out:       w,
		clock:     time.Now,
		tags: map[string]*color.Color{
			"INFO":  color.New(color.FgCyan),
			"DEBUG": color.New(color.FgMagenta),
			"WARN":  color.New(color.FgYellow),
			"ERROR": color.New(color.FgRed, color.Bold),
		},
	}
	for _, c := range l.tags {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return l
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (l *Logger) log(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tag := l.tags[level].Sprintf("[%s]", level)
	fmt.Fprintf(l.out, "%s %s: %s\n", tag, l.clock().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.Verbose {
		l.log("INFO", format, args...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.DebugMode {
		l.log("DEBUG", format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log("WARN", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log("ERROR", format, args...)
}
