package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// -----------------------------------------------------------------------------

// Level ordering for filtering.
const (
	levelDebug = iota
	levelInfo
	levelWarning
	levelError
)

// Logger provides leveled, component-named logging on top of the stdlib log.
type Logger struct {
	name   string
	min    int
	logger *log.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a logger for the named component. level is one of
// DEBUG/INFO/WARNING/ERROR; anything else (or empty) means INFO.
func NewLogger(level, name string) *Logger {
	return &Logger{
		name:   name,
		min:    parseLevel(level),
		logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

// -----------------------------------------------------------------------------

// Named returns a logger for a sub-component sharing this logger's level.
func (l *Logger) Named(name string) *Logger {
	return &Logger{name: name, min: l.min, logger: l.logger}
}

// -----------------------------------------------------------------------------

func parseLevel(level string) int {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return levelDebug
	case "WARNING":
		return levelWarning
	case "ERROR":
		return levelError
	default:
		return levelInfo
	}
}

// -----------------------------------------------------------------------------

func (l *Logger) printf(level int, tag, format string, args ...interface{}) {
	if level < l.min {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", l.name, tag, msg)
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(levelDebug, "DEBUG", format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages.
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(levelInfo, "INFO", format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems.
func (l *Logger) Warning(format string, args ...interface{}) {
	l.printf(levelWarning, "WARNING", format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages.
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(levelError, "ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs a fatal error and exits the application.
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] CRITICAL: %s", l.name, msg)
	os.Exit(1)
}
