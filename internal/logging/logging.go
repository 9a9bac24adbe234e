// Package logging sets up the structured zerolog.Logger used across
// clenginectl, replacing the teacher's bare fmt.Printf/log.Printf
// markers with leveled, field-based output.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console-friendly zerolog.Logger at the given level
// ("debug", "info", "warn", "error"; defaults to "info" on parse
// failure or empty input).
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Str("component", "clenginectl").
		Logger()
}
