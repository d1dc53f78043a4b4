// Package logger writes structured logs to a file. The terminal belongs to
// the UI, so nothing is ever logged to stdout or stderr once the program is
// running.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFile is the log file name used when no path is configured.
const DefaultFile = "osa-transcript.log"

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	logFile  *os.File
	current  *slog.Logger
)

// DefaultPath returns the log path under the OS temp directory.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), DefaultFile)
}

// Init opens path for appending and installs a text handler on it. Calling
// it again closes the previous file first.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	current = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	current.Info("logger initialized", "path", path, "level", levelVar.Level())
	return nil
}

// SetDebug switches between debug and info level.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Get returns the logger, or a discarding one before Init.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return slog.New(slog.DiscardHandler)
	}
	return current
}

// ComponentKey is the attribute naming the subsystem that logged a record.
const ComponentKey = "component"

// Component returns the logger with a component attribute attached.
func Component(name string) *slog.Logger {
	return Get().With(slog.String(ComponentKey, name))
}

// Close flushes and closes the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	current = nil
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
