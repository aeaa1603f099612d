// Package logger provides leveled logging for the Opus CLI.
// Debug and info messages are printed to stderr only when verbose mode is
// enabled via the --verbose flag. Warnings and errors are always printed,
// since they record soft failures the pipeline absorbed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(true, "DEBUG", "", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(true, "INFO", "", format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	write(false, "WARN", "", format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	write(false, "ERROR", "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Entry carries fields that are appended to every message it logs.
type Entry struct {
	suffix string
}

// With returns an Entry that appends the key/value pairs to each message.
// Pairs are rendered as key=value in key order. A trailing key without a
// value is ignored.
func With(kv ...string) *Entry {
	pairs := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, kv[i]+"="+kv[i+1])
	}
	sort.Strings(pairs)
	return &Entry{suffix: strings.Join(pairs, " ")}
}

// Debug prints a message with the entry's fields if verbose mode is enabled.
func (e *Entry) Debug(format string, args ...any) {
	write(true, "DEBUG", e.suffix, format, args...)
}

// Info prints a message with the entry's fields if verbose mode is enabled.
func (e *Entry) Info(format string, args ...any) {
	write(true, "INFO", e.suffix, format, args...)
}

// Warn prints a warning with the entry's fields.
func (e *Entry) Warn(format string, args ...any) {
	write(false, "WARN", e.suffix, format, args...)
}

// Error prints an error with the entry's fields.
func (e *Entry) Error(format string, args ...any) {
	write(false, "ERROR", e.suffix, format, args...)
}

func write(gated bool, level, suffix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if suffix != "" {
		msg += " " + suffix
	}
	fmt.Fprintf(output, "[%s] %s\n", level, msg)
}
