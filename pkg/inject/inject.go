// Package inject defines the text replacement sink at the end of the
// correction pipeline.
//
// Platform keystroke injection (selecting the typed word and retyping it) is
// inherently OS-specific; this package defines the contract and a logging
// sink, leaving real injectors to platform builds.
package inject

import (
	"context"
	"log/slog"
)

// Injector applies a correction to the text the user typed. Replace returns
// whether the replacement was actually performed; false with a nil error
// means the injector declined (for example, the focus moved on).
//
// Implementations must be safe for concurrent use.
type Injector interface {
	Replace(ctx context.Context, original, corrected string) (bool, error)
}

// Log is an Injector that records corrections to the structured log instead
// of touching the screen. Used for dry runs and as the demo sink.
type Log struct {
	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger
}

var _ Injector = (*Log)(nil)

// Replace implements [Injector].
func (l *Log) Replace(_ context.Context, original, corrected string) (bool, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("correction", "original", original, "corrected", corrected)
	return true, nil
}
