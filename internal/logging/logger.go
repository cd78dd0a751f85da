// Package logging writes the duel's structured JSON log lines.
package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"tankduel/engine/internal/config"
)

// ServiceName tags every line written by loggers built with New.
const ServiceName = "tankduel"

var (
	globalMu     sync.RWMutex
	globalLogger = NewTestLogger()
)

// Level orders log verbosity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < DebugLevel || l > ErrorLevel {
		return "info"
	}
	return levelNames[l]
}

// parseLevel maps a configured name to a Level. Empty selects info.
func parseLevel(raw string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "":
		return InfoLevel, nil
	case "warning":
		return WarnLevel, nil
	}
	for i, candidate := range levelNames {
		if candidate == name {
			return Level(i), nil
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", raw)
}

// Field is one key/value attribute of a log line.
type Field struct {
	Key   string
	Value any
}

// String returns a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int returns an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 returns an int64 field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Float returns a float64 field.
func Float(key string, value float64) Field { return Field{Key: key, Value: value} }

// Bool returns a bool field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Error returns an error field rendered as its message.
func Error(err error) Field { return Field{Key: "error", Value: err} }

// sink serialises the writes of every logger derived from one root.
type sink struct {
	mu   sync.Mutex
	w    io.Writer
	sync func() error
}

func (s *sink) write(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(line)
}

// Logger writes one JSON object per line: timestamp, level and message first, then the
// bound fields in the order they were added, then the call's own fields.
type Logger struct {
	level Level
	out   *sink
	bound []Field
	now   func() time.Time
}

func newLogger(level Level, out *sink) *Logger {
	return &Logger{
		level: level,
		out:   out,
		bound: []Field{String("service", ServiceName)},
		now:   time.Now,
	}
}

// New builds the process logger: the rotating file from cfg, mirrored to stdout.
func New(cfg config.LoggingConfig) (*Logger, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("logging path must be specified")
	}
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	file, err := newRotatingWriter(cfg)
	if err != nil {
		return nil, err
	}
	return newLogger(level, &sink{w: io.MultiWriter(file, os.Stdout), sync: file.Sync}), nil
}

// NewWriterLogger builds a logger that writes to w at the named level.
func NewWriterLogger(w io.Writer, level string) (*Logger, error) {
	if w == nil {
		return nil, errors.New("logging writer must be specified")
	}
	parsed, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	return newLogger(parsed, &sink{w: w}), nil
}

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() *Logger {
	return &Logger{level: DebugLevel, out: &sink{w: io.Discard}, now: time.Now}
}

// ReplaceGlobals swaps the fallback used by nil loggers and packages built without one.
func ReplaceGlobals(logger *Logger) {
	if logger == nil {
		return
	}
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// L returns the current global logger.
func L() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// With returns a child logger that adds fields to every line. A repeated key replaces
// the earlier value in place.
func (l *Logger) With(fields ...Field) *Logger {
	if l == nil {
		return L().With(fields...)
	}
	child := *l
	child.bound = mergeFields(l.bound, fields)
	return &child
}

// Sync flushes the underlying file, if any.
func (l *Logger) Sync() error {
	if l == nil || l.out == nil || l.out.sync == nil {
		return nil
	}
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	return l.out.sync()
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields ...Field) { l.log(DebugLevel, message, fields) }

// Info logs an informational message.
func (l *Logger) Info(message string, fields ...Field) { l.log(InfoLevel, message, fields) }

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields ...Field) { l.log(WarnLevel, message, fields) }

// Error logs an error message.
func (l *Logger) Error(message string, fields ...Field) { l.log(ErrorLevel, message, fields) }

func (l *Logger) log(level Level, message string, fields []Field) {
	if l == nil {
		L().log(level, message, fields)
		return
	}
	if level < l.level || l.out == nil {
		return
	}
	line, err := encodeLine(l.now(), level, message, mergeFields(l.bound, fields))
	if err != nil {
		return
	}
	l.out.write(line)
}

func mergeFields(base, extra []Field) []Field {
	out := make([]Field, 0, len(base)+len(extra))
	index := make(map[string]int, len(base)+len(extra))
	for _, group := range [][]Field{base, extra} {
		for _, field := range group {
			if at, ok := index[field.Key]; ok {
				out[at] = field
				continue
			}
			index[field.Key] = len(out)
			out = append(out, field)
		}
	}
	return out
}

func encodeLine(at time.Time, level Level, message string, fields []Field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	put := func(key string, value any) error {
		if err, ok := value.(error); ok && err != nil {
			value = err.Error()
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		name, _ := json.Marshal(key)
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(encoded)
		return nil
	}
	//1.- The envelope keys lead so lines read the same in a terminal and a log index.
	_ = put("timestamp", at.UTC().Format(time.RFC3339Nano))
	_ = put("level", level.String())
	_ = put("message", message)
	for _, field := range fields {
		switch field.Key {
		case "timestamp", "level", "message":
			continue
		}
		if err := put(field.Key, field.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
