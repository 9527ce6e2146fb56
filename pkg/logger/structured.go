package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var base zerolog.Logger

// Init configures the process-wide logger. Local, dev and test environments
// get a human-readable console writer; everything else logs JSON to stdout.
// LOG_LEVEL overrides the default info level.
func Init(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.DurationFieldUnit = time.Millisecond

	level := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}

	logger := zerolog.New(os.Stdout)
	switch env {
	case "local", "dev", "development", "test":
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	base = logger.Level(level).With().
		Timestamp().
		Str("app", "mingle-backend").
		Str("env", env).
		Logger()
}

// GetLogger returns the process-wide logger.
func GetLogger() *zerolog.Logger {
	return &base
}

// WithRequestID tags a logger with the id assigned by the request logging
// middleware so one request's lines can be correlated.
func WithRequestID(requestID string) zerolog.Logger {
	return base.With().Str("request_id", requestID).Logger()
}
