// Package capkvlog is a small structured logger adapted from
// opal-lang-opal's runtime/decorators logging facility, which never
// reaches for an external logging library — capkv follows suit: a
// leveled Entry/Logger pair with a caller field captured via
// runtime.Caller, rather than bolting on an unrelated dependency the
// corpus never actually demonstrates using.
package capkvlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Entry is one structured log record.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Component string
	Message   string
	Caller    string
	Fields    map[string]interface{}
}

func (e *Entry) format() string {
	var b strings.Builder
	b.WriteString(e.Timestamp.Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(&b, " [%s] (%s) %s", e.Level, e.Component, e.Message)
	if e.Caller != "" {
		fmt.Fprintf(&b, " caller=%s", e.Caller)
	}
	for k, v := range e.Fields {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	return b.String()
}

// Logger writes leveled, component-scoped entries to one or more
// writers. The zero value is not usable; construct with New.
type Logger struct {
	mu        sync.Mutex
	component string
	outputs   []io.Writer
	fields    map[string]interface{}
}

// New creates a Logger for the given component, writing to stderr by
// default (register-callback warnings and permission-denied audit
// entries should not pollute a caller's stdout).
func New(component string) *Logger {
	return &Logger{
		component: component,
		outputs:   []io.Writer{os.Stderr},
		fields:    make(map[string]interface{}),
	}
}

// AddOutput appends an additional writer (e.g. a log file).
func (l *Logger) AddOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = append(l.outputs, w)
}

// WithField returns a derived Logger carrying an extra field, leaving
// the receiver untouched.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value

	return &Logger{component: l.component, outputs: l.outputs, fields: fields}
}

func (l *Logger) write(level Level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Component: l.component,
		Message:   message,
		Fields:    l.fields,
	}

	if pc, file, line, ok := runtime.Caller(2); ok {
		funcName := runtime.FuncForPC(pc).Name()
		entry.Caller = fmt.Sprintf("%s:%d (%s)", filepath.Base(file), line, filepath.Base(funcName))
	}

	formatted := entry.format()
	for _, out := range l.outputs {
		fmt.Fprintln(out, formatted)
	}
}

func (l *Logger) Debug(message string) { l.write(LevelDebug, message) }
func (l *Logger) Info(message string)  { l.write(LevelInfo, message) }
func (l *Logger) Warn(message string)  { l.write(LevelWarn, message) }
func (l *Logger) Error(message string) { l.write(LevelError, message) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.write(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...interface{})  { l.write(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.write(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.write(LevelError, fmt.Sprintf(format, args...)) }
