// Package logging configures the zerolog global logger shared by the CLI,
// the shop stub and the scenario helpers.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at w with a console writer and the given level.
// Unknown levels fall back to info.
func Setup(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return log.Logger
}

// SetupFromEnv reads LOG_LEVEL and configures logging to stderr
func SetupFromEnv() zerolog.Logger {
	return Setup(os.Getenv("LOG_LEVEL"), os.Stderr)
}
