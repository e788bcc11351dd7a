package internal

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel orders log messages by severity.  A logger prints messages at its
// level and below.
type LogLevel int32

const (
	LevelFatal LogLevel = iota // the file cannot be used at all
	LevelError                 // an object is lost
	LevelWarn                  // an object is damaged or skipped
	LevelInfo                  // decisions made while reading and building

	// LogLevelDefault shows warnings and above.
	LogLevelDefault = LevelWarn

	LevelMin = LevelFatal
	LevelMax = LevelInfo
)

var levelNames = [...]string{"FATAL", "ERROR", "WARN", "INFO"}

func (l LogLevel) String() string {
	if l < LevelMin || l > LevelMax {
		return fmt.Sprint("LEVEL(", int32(l), ")")
	}
	return levelNames[l]
}

// Logger is a leveled logger for one component.  Every line carries the
// level and the component name.
type Logger struct {
	component string
	level     atomic.Int32
	out       *log.Logger
}

// NewLogger returns a logger for component writing to stderr at the default
// level.
func NewLogger(component string) *Logger {
	l := &Logger{
		component: component,
		out:       log.New(os.Stderr, "", log.LstdFlags),
	}
	l.level.Store(int32(LogLevelDefault))
	return l
}

func (l *Logger) LogLevel() LogLevel {
	return LogLevel(l.level.Load())
}

// SetLogLevel sets the level and returns the previous one.
func (l *Logger) SetLogLevel(level LogLevel) LogLevel {
	if level < LevelMin || level > LevelMax {
		panic("trying to set invalid log level")
	}
	return LogLevel(l.level.Swap(int32(level)))
}

// SetOutput redirects the log output, mostly for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.SetOutput(w)
}

// LevelFromInt maps the public 0..3 log levels onto LogLevel, clamping
// anything outside.
func LevelFromInt(level int) LogLevel {
	switch {
	case level <= int(LevelMin):
		return LevelMin
	case level >= int(LevelMax):
		return LevelMax
	}
	return LogLevel(level)
}

// ParseLevel accepts a level name in any case, such as "warn".
func ParseLevel(s string) (LogLevel, bool) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return LogLevel(i), true
		}
	}
	return LevelMin, false
}

// Enabled reports whether messages at level are printed.
func (l *Logger) Enabled(level LogLevel) bool {
	return level <= l.LogLevel()
}

func (l *Logger) output(level LogLevel, msg string) {
	if !l.Enabled(level) {
		return
	}
	l.out.Output(3, fmt.Sprintf("%-5s %s: %s", level, l.component, msg))
}

func (l *Logger) Info(v ...any)                 { l.output(LevelInfo, fmt.Sprintln(v...)) }
func (l *Logger) Infof(format string, v ...any) { l.output(LevelInfo, fmt.Sprintf(format, v...)) }

func (l *Logger) Warn(v ...any)                 { l.output(LevelWarn, fmt.Sprintln(v...)) }
func (l *Logger) Warnf(format string, v ...any) { l.output(LevelWarn, fmt.Sprintf(format, v...)) }

func (l *Logger) Error(v ...any)                 { l.output(LevelError, fmt.Sprintln(v...)) }
func (l *Logger) Errorf(format string, v ...any) { l.output(LevelError, fmt.Sprintf(format, v...)) }
