package fy

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the component-level logging sink carried in the options of
// Parser, Emitter and Composer (spec.md §2 Logging); Parser and Emitter
// log their errors to it, and the ypath executor takes none. The zero
// value is a no-op logger (level Disabled), so the core stays silent
// unless a caller opts in with WithLogger.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger wraps a zerolog.Logger for use as a component's Logger.
func NewLogger(zl zerolog.Logger) Logger { return Logger{zl: zl} }

// NewWriterLogger builds a Logger writing to w at info level,
// following the pack's convention of a plain io.Writer sink (grounded
// on github.com/rs/zerolog's own `zerolog.New(w)` constructor).
func NewWriterLogger(w io.Writer) Logger {
	return Logger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

func noopLogger() Logger {
	return Logger{zl: zerolog.Nop()}
}

func (l Logger) tracef(component string, format string, args ...interface{}) {
	l.zl.Trace().Str("component", component).Msgf(format, args...)
}

func (l Logger) errorf(component string, err error) {
	l.zl.Error().Str("component", component).Err(err).Send()
}
