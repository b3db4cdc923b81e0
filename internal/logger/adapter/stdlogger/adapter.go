// Package stdlogger adapts the global zerolog logger to printf style logger interfaces,
// such as gorm's logger.Writer.
package stdlogger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to the global zerolog logger.
type Logger struct {
	level     zerolog.Level // level used by Printf
	component string
}

// New creates a Logger that logs Printf calls on info level.
func New() *Logger {
	return &Logger{level: zerolog.InfoLevel}
}

// NewWithLevel creates a Logger whose Printf calls use the given level and carry a component field.
func NewWithLevel(level zerolog.Level, component string) *Logger {
	return &Logger{level: level, component: component}
}

func (l *Logger) emit(level zerolog.Level, format string, args ...interface{}) {
	event := log.WithLevel(level)
	if l.component != "" {
		event = event.Str("component", l.component)
	}

	// gorm prefixes messages with the caller file and a newline
	event.Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Printf implements gorm logger.Writer.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.emit(l.level, format, args...)
}

// Debugf logs on debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.emit(zerolog.DebugLevel, format, args...)
}

// Infof logs on info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.emit(zerolog.InfoLevel, format, args...)
}

// Warningf logs on warn level.
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.emit(zerolog.WarnLevel, format, args...)
}

// Errorf logs on error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.emit(zerolog.ErrorLevel, format, args...)
}
