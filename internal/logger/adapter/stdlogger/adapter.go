// Package stdlogger adapts the global zerolog logger to printf style logger interfaces,
// e.g. the gorm logger writer.
package stdlogger

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

// Logger forwards printf style calls to zerolog.
type Logger struct {
	component string
}

// New returns an adapter using the global zerolog logger.
func New() *Logger {
	return &Logger{}
}

// NewComponent returns an adapter that tags every line with a component field.
func NewComponent(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) event(e *zerolog.Event) *zerolog.Event {
	if l.component != "" {
		return e.Str("component", l.component)
	}

	return e
}

// Debugf logs on debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.event(log.Debug()).Msgf(format, args...)
}

// Infof logs on info level.
func (l *Logger) Infof(format string, args ...any) {
	l.event(log.Info()).Msgf(format, args...)
}

// Warningf logs on warn level.
func (l *Logger) Warningf(format string, args ...any) {
	l.event(log.Warn()).Msgf(format, args...)
}

// Errorf logs on error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.event(log.Error()).Msgf(format, args...)
}

// Printf implements gorm's logger.Writer. gorm prefixes messages with
// its own level tag which is mapped back to a zerolog level.
func (l *Logger) Printf(format string, args ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))

	switch {
	case strings.Contains(format, "[error]"):
		l.event(log.Error()).Msg(msg)
	case strings.Contains(format, "[warn]"), strings.Contains(format, "SLOW SQL"):
		l.event(log.Warn()).Msg(msg)
	case strings.Contains(format, "[info]"):
		l.event(log.Info()).Msg(msg)
	default:
		l.event(log.Debug()).Msg(msg)
	}
}

// Gorm returns a gorm logger writing through zerolog.
// level is one of silent, error, warn or info; anything else means warn.
func Gorm(level string, slowThreshold time.Duration) gormlogger.Interface {
	lvl := gormlogger.Warn

	switch strings.ToLower(level) {
	case "silent":
		lvl = gormlogger.Silent
	case "error":
		lvl = gormlogger.Error
	case "info":
		lvl = gormlogger.Info
	}

	return gormlogger.New(NewComponent("gorm"), gormlogger.Config{
		SlowThreshold:             slowThreshold,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
