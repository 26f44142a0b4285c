package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ZeroLogger implements ports.Logger on top of zerolog.
type ZeroLogger struct {
	log zerolog.Logger
}

// New creates a console logger writing to stderr at the given level
// (debug, info, warn, error; default warn so CLI output stays clean).
func New(level string) *ZeroLogger {
	return NewWithWriter(level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(level string, w io.Writer) *ZeroLogger {
	return &ZeroLogger{
		log: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger(),
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *ZeroLogger {
	return &ZeroLogger{log: zerolog.Nop()}
}

// ParseLevel maps a config string to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

// Zerolog exposes the underlying logger for adapters that log natively.
func (l *ZeroLogger) Zerolog() zerolog.Logger {
	return l.log
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.log.Error().Err(err).Fields(fields).Msg(msg)
}
