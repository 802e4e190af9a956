// Package logging wraps log/slog the way the rest of the codebase expects:
// a package-level logger plus a Wrap helper that attaches a stack trace to
// an error before it is logged, so failures deep in the pipeline are still
// traceable once they surface at the API boundary.
package logging

import (
	"log/slog"
	"os"
	"sync"

	"github.com/mdobak/go-xerrors"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
)

// Get returns the package logger.
func Get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLevel rebuilds the package logger at the given level. Intended to be
// called once at startup from config.
func SetLevel(level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// Wrap attaches a stack trace to err for logging. Returns nil if err is
// nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return xerrors.New(err)
}
