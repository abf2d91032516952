// Package logger builds the zerolog logger shared by the CLI and HTTP server.
package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Output formats
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a logger writing to w at the given level.
// Format "console" produces human-readable output; anything else is JSON.
// An empty level means info. An unknown level falls back to info and logs a warning.
func New(level, format string, w io.Writer) zerolog.Logger {
	if strings.EqualFold(format, FormatConsole) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}
	}

	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	lvl, err := zerolog.ParseLevel(level)
	invalid := err != nil || lvl == zerolog.NoLevel
	if invalid {
		lvl = zerolog.InfoLevel
	}

	log := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	if invalid {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
	}
	return log
}
