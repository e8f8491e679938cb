// Package logging wraps zerolog behind a tiny package-level API so the rest
// of the tool never touches a logger instance.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var logger = newLogger(os.Getenv("LOG_LEVEL"), os.Stderr)

func newLogger(level string, out io.Writer) zerolog.Logger {
	lvl := parseLevel(level)

	var w io.Writer = out
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetLevel overrides the level picked up from LOG_LEVEL at init.
func SetLevel(level string) {
	logger = logger.Level(parseLevel(level))
}

// SetOutput redirects log output; tests use this to capture events.
func SetOutput(w io.Writer) {
	logger = zerolog.New(w).Level(logger.GetLevel()).With().Timestamp().Logger()
}

func Debug() *zerolog.Event { return logger.Debug() }
func Info() *zerolog.Event  { return logger.Info() }
func Warn() *zerolog.Event  { return logger.Warn() }
func Error() *zerolog.Event { return logger.Error() }
