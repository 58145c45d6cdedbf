// Package logging builds the logr.Logger kvmctl threads through its
// packages. Records go to a log/slog handler: text in development mode,
// JSON otherwise.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/go-logr/logr"
)

// Options configures the logger behavior.
type Options struct {
	// Development enables human-readable text output.
	Development bool

	// Level sets the minimum slog level. logr's V(n) maps to slog level -n,
	// so LevelVerbose enables V(1) records. Defaults to slog.LevelInfo.
	Level slog.Level

	// Writer receives the records. Defaults to os.Stderr so command output
	// on stdout stays clean.
	Writer io.Writer
}

// LevelVerbose shows logr V(1) records (every command line run).
const LevelVerbose = slog.Level(-1)

// DefaultOptions returns the default logging options.
func DefaultOptions() Options {
	return Options{
		Development: false,
		Level:       slog.LevelInfo,
	}
}

// Setup builds a logger and installs its handler as the slog default.
func Setup(opts Options) logr.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler
	if opts.Development {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))

	return logr.FromSlogHandler(handler)
}
