package rtc

import (
	"fmt"

	"github.com/pion/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerFactory routes pion's internal logging into zerolog. Pion is chatty
// at info, so its records are shifted one level down.
type LoggerFactory struct {
	Logger zerolog.Logger
}

// NewLoggerFactory uses the global zerolog logger.
func NewLoggerFactory() LoggerFactory {
	return LoggerFactory{Logger: log.Logger}
}

func (f LoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return scopedLogger{l: f.Logger.With().Str("module", "pion").Str("scope", scope).Logger()}
}

type scopedLogger struct {
	l zerolog.Logger
}

func (s scopedLogger) Trace(msg string)                  { s.l.Trace().Msg(msg) }
func (s scopedLogger) Tracef(format string, args ...any) { s.l.Trace().Msg(fmt.Sprintf(format, args...)) }
func (s scopedLogger) Debug(msg string)                  { s.l.Trace().Msg(msg) }
func (s scopedLogger) Debugf(format string, args ...any) { s.l.Trace().Msg(fmt.Sprintf(format, args...)) }
func (s scopedLogger) Info(msg string)                   { s.l.Debug().Msg(msg) }
func (s scopedLogger) Infof(format string, args ...any)  { s.l.Debug().Msg(fmt.Sprintf(format, args...)) }
func (s scopedLogger) Warn(msg string)                   { s.l.Warn().Msg(msg) }
func (s scopedLogger) Warnf(format string, args ...any)  { s.l.Warn().Msg(fmt.Sprintf(format, args...)) }
func (s scopedLogger) Error(msg string)                  { s.l.Error().Msg(msg) }
func (s scopedLogger) Errorf(format string, args ...any) { s.l.Error().Msg(fmt.Sprintf(format, args...)) }
