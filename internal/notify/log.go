// Package notify provides the leveled logger the tools share. Warnings and
// above double as the user-facing alert channel: when a gotify sink is
// configured they are pushed there as well as logged.
package notify

import (
	"fmt"
	"log"
	"strings"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel maps config strings ("debug", "info", ...) to a Level,
// defaulting to Info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

type Pusher interface {
	Push(message string) error
}

type Logger struct {
	out      *log.Logger
	min      Level
	push     Pusher
	pushFrom Level
}

// NewLogger writes to out (the standard logger when nil) at min level and
// above. If push is non-nil, messages at pushFrom and above are also sent to
// it; push failures are logged locally and swallowed.
func NewLogger(out *log.Logger, min Level, push Pusher, pushFrom Level) *Logger {
	if out == nil {
		out = log.Default()
	}
	return &Logger{out: out, min: min, push: push, pushFrom: pushFrom}
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if level < l.min {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.out.Printf("%s %s", level, msg)

	if l.push != nil && level >= l.pushFrom {
		if err := l.push.Push(msg); err != nil {
			l.out.Printf("ERROR push notification failed: %v", err)
		}
	}
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(Error, format, args...) }
