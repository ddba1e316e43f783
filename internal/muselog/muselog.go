// Package muselog configures the process-wide zerolog logger used by every
// muse component and CLI command.
package muselog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls how Init configures the global logger.
type Options struct {
	// Debug enables debug-level output. Defaults to info level.
	Debug bool

	// JSON forces structured JSON output even on a terminal, instead of
	// the human-readable console writer.
	JSON bool

	// Output overrides the destination writer. Defaults to os.Stderr.
	Output io.Writer
}

// Init configures the global zerolog logger and returns it for callers that
// want a scoped *zerolog.Logger instead of the package-level log.Logger.
func Init(opts Options) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var writer io.Writer = out
	if !opts.JSON {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// Component returns a child logger tagged with the originating subsystem,
// e.g. muselog.Component("queue").
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
