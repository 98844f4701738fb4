package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Development gets a human readable console
// writer, everything else gets JSON lines on stdout.
func New(development bool, level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, development, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(out io.Writer, development bool, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if development {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
