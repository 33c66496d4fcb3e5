package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

type Fields map[string]any

// New builds the process logger. The local env gets a human-readable console writer,
// everything else emits JSON lines.
func New(env, level, service string) Logger {
	var out io.Writer = os.Stdout
	if env == "local" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return newLogger(out, level).With().Str("service", service).Logger()
}

func newLogger(out io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything; used by tests.
func Nop() Logger {
	return zerolog.Nop()
}

func With(logger Logger, fields Fields) Logger {
	ctx := logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}
