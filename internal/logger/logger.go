// Package logger provides verbose logging for policylens.
// When verbose mode is enabled via the --verbose flag, pipeline stages,
// provider calls and fallbacks are printed to stderr so users can see
// which tier produced an answer and why.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	now               = time.Now
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

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func printf(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	printf("[DEBUG] ", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	printf("[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	printf("[WARN] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Transition logs a state machine step.
func Transition(from, to, reason string) {
	if reason == "" {
		printf("[STATE] ", "%s -> %s", from, to)
		return
	}
	printf("[STATE] ", "%s -> %s (%s)", from, to, reason)
}

// Timed logs the duration of a stage when the returned func is called.
//
//	defer logger.Timed("build index")()
func Timed(stage string) func() {
	start := now()
	return func() {
		printf("[DEBUG] ", "%s took %s", stage, now().Sub(start).Round(time.Millisecond))
	}
}
