// Package utils carries the cross-cutting plumbing the refinement
// services share: structured logging and small request helpers.
package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel converts a configuration string into a level,
// defaulting to INFO for unknown values
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Service   string         `json:"service,omitempty"`
	Component string         `json:"component,omitempty"`
	Error     string         `json:"error,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Logger provides structured logging capabilities
type Logger struct {
	level   LogLevel
	format  string // "json" or "text"
	output  io.Writer
	mu      sync.RWMutex
	service string
}

// NewLogger creates a new logger instance
func NewLogger() *Logger {
	return &Logger{
		level:   INFO,
		format:  "text",
		output:  os.Stdout,
		service: "ontoforge",
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetFormat sets the logging format ("json" or "text")
func (l *Logger) SetFormat(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = strings.ToLower(format)
}

// SetOutput sets the logging output destination
func (l *Logger) SetOutput(output io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = output
}

// SetService sets the service name for logging
func (l *Logger) SetService(service string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.service = service
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(DEBUG, msg, fields...)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(INFO, msg, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(WARN, msg, fields...)
}

// Error logs an error message
func (l *Logger) Error(msg string, err error, fields ...Field) {
	if err != nil {
		fields = append(fields, ErrorOf(err))
	}
	l.log(ERROR, msg, fields...)
}

// log performs the actual logging
func (l *Logger) log(level LogLevel, msg string, fields ...Field) {
	l.mu.RLock()
	minLevel, format, output, service := l.level, l.format, l.output, l.service
	l.mu.RUnlock()
	if level < minLevel {
		return
	}

	entry := &LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   msg,
		Service:   service,
		Fields:    make(map[string]any),
	}
	for _, field := range fields {
		field.Apply(entry)
	}
	if len(entry.Fields) == 0 {
		entry.Fields = nil
	}

	var line string
	if format == "json" {
		if jsonBytes, err := json.Marshal(entry); err == nil {
			line = string(jsonBytes)
		} else {
			line = fmt.Sprintf("failed to marshal log entry: %v", err)
		}
	} else {
		line = formatTextEntry(entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(output, line)
}

// formatTextEntry formats a log entry as text
func formatTextEntry(entry *LogEntry) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%s [%s] %s", entry.Timestamp, entry.Level, entry.Message))
	if entry.Component != "" {
		builder.WriteString(fmt.Sprintf(" component=%s", entry.Component))
	}
	if entry.Error != "" {
		builder.WriteString(fmt.Sprintf(" error=%q", entry.Error))
	}
	for key, value := range entry.Fields {
		builder.WriteString(fmt.Sprintf(" %s=%v", key, value))
	}
	return builder.String()
}

// Field applies one structured attribute to a log entry
type Field interface {
	Apply(entry *LogEntry)
}

type stringField struct {
	key   string
	value string
}

func (f stringField) Apply(entry *LogEntry) {
	entry.Fields[f.key] = f.value
}

type intField struct {
	key   string
	value int
}

func (f intField) Apply(entry *LogEntry) {
	entry.Fields[f.key] = f.value
}

type floatField struct {
	key   string
	value float64
}

func (f floatField) Apply(entry *LogEntry) {
	entry.Fields[f.key] = f.value
}

type errorField struct {
	err error
}

func (f errorField) Apply(entry *LogEntry) {
	entry.Error = f.err.Error()
}

type componentField struct {
	component string
}

func (f componentField) Apply(entry *LogEntry) {
	entry.Component = f.component
}

// String creates a string field
func String(key, value string) Field {
	return stringField{key: key, value: value}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return intField{key: key, value: value}
}

// Float creates a float field
func Float(key string, value float64) Field {
	return floatField{key: key, value: value}
}

// ErrorOf creates an error field
func ErrorOf(err error) Field {
	return errorField{err: err}
}

// Component tags the entry with the emitting component
func Component(component string) Field {
	return componentField{component: component}
}

var (
	globalLogger *Logger
	loggerOnce   sync.Once
)

// GetLogger returns the process-wide logger
func GetLogger() *Logger {
	loggerOnce.Do(func() {
		globalLogger = NewLogger()
	})
	return globalLogger
}
