package core

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	loggerMu       sync.RWMutex
	loggerInstance = NewConsoleLogger(os.Stderr, LevelInfo)
)

// SetLogger sets the global logger instance
func SetLogger(logger *Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	loggerInstance = logger
}

// GetLogger retrieves the global logger instance
func GetLogger() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return loggerInstance
}

// Level orders log severities. Entries below a console logger's minimum are dropped.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelPanic
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
	LevelPanic: "PANIC",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// HandlerFunc receives every entry that passes the logger's level filter.
type HandlerFunc func(level Level, msg string, attrs map[string]interface{})

type Logger struct {
	handlerFunc HandlerFunc
	attrs       map[string]interface{}
}

func NewLogger(handler HandlerFunc) *Logger {
	return &Logger{
		handlerFunc: handler,
		attrs:       make(map[string]interface{}),
	}
}

// NewConsoleLogger writes human readable lines to w, dropping entries below minLevel.
// FATAL exits the process and PANIC panics after the line is written.
func NewConsoleLogger(w io.Writer, minLevel Level) *Logger {
	var mu sync.Mutex
	handler := func(level Level, msg string, attrs map[string]interface{}) {
		if level < minLevel {
			return
		}
		line := formatLine(time.Now(), level, msg, attrs)

		mu.Lock()
		fmt.Fprint(w, line)
		mu.Unlock()

		switch level {
		case LevelFatal:
			os.Exit(1)
		case LevelPanic:
			panic(msg)
		}
	}
	return NewLogger(handler)
}

// NewNopLogger discards everything. Useful in tests.
func NewNopLogger() *Logger {
	return NewLogger(func(Level, string, map[string]interface{}) {})
}

func formatLine(ts time.Time, level Level, msg string, attrs map[string]interface{}) string {
	var b strings.Builder
	b.WriteString(ts.Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	if len(attrs) > 0 {
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, attrs[k])
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	if l == nil || l.handlerFunc == nil {
		return
	}
	if len(args) > 0 {
		// Detect slog-style key-value pairs: even number of args where
		// odd-positioned args (keys) are strings.
		if isKeyValuePairs(args) {
			attrs := make(map[string]interface{}, len(l.attrs)+len(args)/2)
			for k, v := range l.attrs {
				attrs[k] = v
			}
			for i := 0; i < len(args)-1; i += 2 {
				key, _ := args[i].(string)
				attrs[key] = args[i+1]
			}
			l.handlerFunc(level, msg, attrs)
			return
		}
		msg = fmt.Sprintf(msg, args...)
	}
	l.handlerFunc(level, msg, l.attrs)
}

// isKeyValuePairs returns true if args look like slog-style key-value pairs:
// even count and every key (even index) is a string.
func isKeyValuePairs(args []interface{}) bool {
	if len(args)%2 != 0 {
		return false
	}
	for i := 0; i < len(args); i += 2 {
		if _, ok := args[i].(string); !ok {
			return false
		}
	}
	return true
}

func (l *Logger) Trace(msg string, args ...interface{}) { l.log(LevelTrace, msg, args...) }

func (l *Logger) Tracef(format string, args ...interface{}) { l.log(LevelTrace, format, args...) }

func (l *Logger) Debug(msg string, args ...interface{}) { l.log(LevelDebug, msg, args...) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }

func (l *Logger) Info(msg string, args ...interface{}) { l.log(LevelInfo, msg, args...) }

func (l *Logger) Infof(format string, args ...interface{}) { l.log(LevelInfo, format, args...) }

func (l *Logger) Warn(msg string, args ...interface{}) { l.log(LevelWarn, msg, args...) }

func (l *Logger) Warnf(format string, args ...interface{}) { l.log(LevelWarn, format, args...) }

func (l *Logger) Error(msg string, args ...interface{}) { l.log(LevelError, msg, args...) }

func (l *Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, format, args...) }

func (l *Logger) Fatal(msg string, args ...interface{}) { l.log(LevelFatal, msg, args...) }

func (l *Logger) Fatalf(format string, args ...interface{}) { l.log(LevelFatal, format, args...) }

func (l *Logger) Panic(msg string, args ...interface{}) { l.log(LevelPanic, msg, args...) }

func (l *Logger) Panicf(format string, args ...interface{}) { l.log(LevelPanic, format, args...) }

// With returns a child logger carrying attrs on every entry.
func (l *Logger) With(attrs map[string]interface{}) *Logger {
	combinedAttrs := make(map[string]interface{}, len(l.attrs)+len(attrs))
	for k, v := range l.attrs {
		combinedAttrs[k] = v
	}
	for k, v := range attrs {
		combinedAttrs[k] = v
	}
	return &Logger{
		handlerFunc: l.handlerFunc,
		attrs:       combinedAttrs,
	}
}
