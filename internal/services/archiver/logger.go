package archiver

import (
	"github.com/rs/zerolog"
)

// Logger is the narrow logging capability the archiver reports through.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Error(msg string)
}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// Debug logs msg at debug level.
func (l *ZerologLogger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Info logs msg at info level.
func (l *ZerologLogger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Error logs msg at error level.
func (l *ZerologLogger) Error(msg string) {
	l.logger.Error().Msg(msg)
}
