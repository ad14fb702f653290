// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// New returns a logger writing to w at the given level.  format is "json"
// or "console"; anything else is treated as json.  An unknown level falls
// back to info.  The result is also installed as the global zerolog logger.
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).With().Timestamp().Logger().Level(lvl)

	zlog.Logger = l
	return l
}
