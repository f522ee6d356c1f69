// Package logger provides the structured JSON logger used across the service
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level represents the severity level of a log message
type Level string

const (
	DebugLevel Level = "DEBUG"
	InfoLevel  Level = "INFO"
	WarnLevel  Level = "WARN"
	ErrorLevel Level = "ERROR"
	FatalLevel Level = "FATAL"
)

var levelRank = map[Level]int{
	DebugLevel: 0,
	InfoLevel:  1,
	WarnLevel:  2,
	ErrorLevel: 3,
	FatalLevel: 4,
}

// ParseLevel maps a case-insensitive level name to a Level
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if level == "WARNING" {
		level = WarnLevel
	}
	if _, ok := levelRank[level]; !ok {
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// Logger defines the interface for the application logger
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Fatal(msg string, fields map[string]interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// JSONLogger writes one JSON object per line
type JSONLogger struct {
	out    *lockedWriter
	level  Level
	fields map[string]interface{}
}

// lockedWriter serializes writes from loggers derived via WithField(s)
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// NewJSONLogger creates a new JSON logger. A nil output writes to stdout.
func NewJSONLogger(output io.Writer, level Level) *JSONLogger {
	if output == nil {
		output = os.Stdout
	}
	if _, ok := levelRank[level]; !ok {
		level = InfoLevel
	}

	return &JSONLogger{
		out:    &lockedWriter{w: output},
		level:  level,
		fields: map[string]interface{}{},
	}
}

// WithField returns a new logger with the field added to the log context
func (l *JSONLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a new logger with the fields added to the log context
func (l *JSONLogger) WithFields(fields map[string]interface{}) Logger {
	if len(fields) == 0 {
		return l
	}

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &JSONLogger{out: l.out, level: l.level, fields: merged}
}

func (l *JSONLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(DebugLevel, msg, fields)
}

func (l *JSONLogger) Info(msg string, fields map[string]interface{}) {
	l.log(InfoLevel, msg, fields)
}

func (l *JSONLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(WarnLevel, msg, fields)
}

func (l *JSONLogger) Error(msg string, fields map[string]interface{}) {
	l.log(ErrorLevel, msg, fields)
}

// Fatal logs a message at fatal level and then terminates the program
func (l *JSONLogger) Fatal(msg string, fields map[string]interface{}) {
	l.log(FatalLevel, msg, fields)
	os.Exit(1)
}

// Enabled reports whether messages at level are written
func (l *JSONLogger) Enabled(level Level) bool {
	return levelRank[level] >= levelRank[l.level]
}

func (l *JSONLogger) log(level Level, msg string, fields map[string]interface{}) {
	if !l.Enabled(level) {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
	}

	record := make(map[string]interface{}, len(l.fields)+len(fields)+5)
	for k, v := range l.fields {
		record[k] = v
	}
	for k, v := range fields {
		if err, isErr := v.(error); isErr {
			v = err.Error()
		}
		record[k] = v
	}
	record["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	record["level"] = level
	record["message"] = msg
	record["caller"] = fmt.Sprintf("%s:%d", trimPath(file), line)

	data, err := json.Marshal(record)
	if err != nil {
		fmt.Fprintf(l.out, "{\"level\":\"ERROR\",\"message\":\"failed to marshal log entry\",\"error\":%q}\n", err.Error())
		return
	}

	if _, err := l.out.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %s\n", err)
	}
}

// trimPath keeps the package directory and file name
func trimPath(file string) string {
	idx := strings.LastIndexByte(file, '/')
	if idx <= 0 {
		return file
	}
	if prev := strings.LastIndexByte(file[:idx], '/'); prev >= 0 {
		return file[prev+1:]
	}
	return file
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = NewJSONLogger(os.Stdout, InfoLevel)
)

// GetDefaultLogger returns the process-wide logger
func GetDefaultLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger replaces the process-wide logger. A nil logger is ignored.
func SetDefaultLogger(l Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

func Debug(msg string, fields map[string]interface{}) { GetDefaultLogger().Debug(msg, fields) }
func Info(msg string, fields map[string]interface{})  { GetDefaultLogger().Info(msg, fields) }
func Warn(msg string, fields map[string]interface{})  { GetDefaultLogger().Warn(msg, fields) }
func Error(msg string, fields map[string]interface{}) { GetDefaultLogger().Error(msg, fields) }
