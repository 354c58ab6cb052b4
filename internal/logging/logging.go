// Package logging configures the application's structured logger.
package logging

import (
	"log/slog"
	"os"

	"github.com/vampireLibrarianMonk/orrg/internal/appconf"
)

// New builds a slog.Logger writing to stderr. Development and Test get
// human-readable text output; Production gets JSON. Verbose lowers the
// level to Debug.
func New(env appconf.Environment, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if env == appconf.Production {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
