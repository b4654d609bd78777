package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// runLoggerKey is the context key for storing a per-run logger.
type runLoggerKey struct{}

// ContextWithRunLogger returns a new context carrying the run logger.
func ContextWithRunLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, runLoggerKey{}, logger)
}

// RunLoggerFromContext extracts the run logger from the context, or nil.
func RunLoggerFromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(runLoggerKey{}).(*Logger); ok {
		return l
	}
	return nil
}

// RunMetadata is the first JSON line in each run log file.
type RunMetadata struct {
	RunID     string `json:"run_id"`
	Command   string `json:"command"`
	StartedAt string `json:"started_at"`
}

// LogEntry is a single JSON log line written after the metadata line.
type LogEntry struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Message   string                 `json:"msg"`
	Attrs     map[string]interface{} `json:"attrs,omitempty"`
}

// RunLogWriter writes structured log lines to a per-run .jsonl file.
type RunLogWriter struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewRunLogWriter creates the log directory and the run log file and writes
// the metadata line.
func NewRunLogWriter(logDir, runID, command string) (*RunLogWriter, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("run logger: mkdir %q: %w", logDir, err)
	}

	path := filepath.Join(logDir, runID+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("run logger: create %q: %w", path, err)
	}

	meta := RunMetadata{
		RunID:     runID,
		Command:   command,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := sonic.Marshal(meta)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("run logger: encode metadata: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return nil, fmt.Errorf("run logger: write metadata: %w", err)
	}

	return &RunLogWriter{file: f, path: path}, nil
}

// Path returns the location of the log file.
func (w *RunLogWriter) Path() string {
	return w.path
}

// Write appends a structured log line. Attribute values that cannot be encoded
// are stringified.
func (w *RunLogWriter) Write(level Level, msg string, attrs map[string]interface{}) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
		Attrs:     encodableAttrs(attrs),
	}
	data, err := sonic.Marshal(entry)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		w.file.Write(append(data, '\n'))
	}
}

// Close closes the log file. Safe to call more than once.
func (w *RunLogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func encodableAttrs(attrs map[string]interface{}) map[string]interface{} {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case error:
			out[k] = val.Error()
		case fmt.Stringer:
			out[k] = val.String()
		default:
			out[k] = v
		}
	}
	return out
}

// NewRunLogger creates a Logger that tees output to both the base logger
// (console) and the run log file. Child loggers created via With() inherit
// this behaviour.
func NewRunLogger(baseLogger *Logger, writer *RunLogWriter) *Logger {
	handler := func(level Level, msg string, attrs map[string]interface{}) {
		if baseLogger != nil && baseLogger.handlerFunc != nil {
			baseLogger.handlerFunc(level, msg, attrs)
		}
		writer.Write(level, msg, attrs)
	}
	return NewLogger(handler)
}
