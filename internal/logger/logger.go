// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a zerolog.Logger for serviceName. Local environments get a
// human-readable console writer; everything else logs JSON to stdout. An
// unknown level falls back to info.
func New(serviceName, level, env string) zerolog.Logger {
	return NewWithWriter(os.Stdout, serviceName, level, env)
}

func NewWithWriter(w io.Writer, serviceName, level, env string) zerolog.Logger {
	if env == "local" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// SetGlobal installs l as the logger behind github.com/rs/zerolog/log.
func SetGlobal(l zerolog.Logger) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = l
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
