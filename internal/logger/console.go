// Package logger provides leveled diagnostics for scout runs.
//
// Diagnostics never go to stdout, which carries query results. The console
// logger writes to stderr (or any writer) and the file logger keeps one log
// file per run. Implementations are safe for concurrent use, since parallel
// traversal reports skipped entries from several goroutines.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/scout/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the diagnostics surface used by commands and the query engine.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogRunStart(operation, root string)
	LogRunComplete(summary models.RunSummary)
}

// ConsoleLogger writes leveled messages prefixed with [HH:MM:SS] timestamps.
// Color output is enabled automatically for terminal stdout/stderr.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// color.NoColor honours NO_COLOR and non-TTY outputs
		return !color.NoColor
	}
	return false
}

// ValidLevel reports whether level is a recognised log level name.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	if !ValidLevel(level) {
		return "info"
	}
	return strings.ToLower(strings.TrimSpace(level))
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel writes "[HH:MM:SS] [LEVEL] message" if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, colorLevel(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// colorLevel wraps a level tag in its ANSI color.
func colorLevel(level string) string {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// LogRunStart logs the start of an operation at INFO level.
// Format: "[HH:MM:SS] Starting <operation> in <root>"
func (cl *ConsoleLogger) LogRunStart(operation, root string) {
	if operation == "" {
		return
	}
	if cl.colorOutput {
		operation = color.New(color.Bold).Sprint(operation)
	}
	cl.LogInfo(fmt.Sprintf("Starting %s in %s", operation, root))
}

// LogRunComplete logs a one-line summary of a finished operation at INFO level.
// Format: "[HH:MM:SS] find complete: 12 results, 340 visited (45ms)"
func (cl *ConsoleLogger) LogRunComplete(summary models.RunSummary) {
	cl.LogInfo(formatSummary(summary))
	if summary.Truncated {
		cl.LogDebug(fmt.Sprintf("%s stopped at the result limit", summary.Operation))
	}
}

// formatSummary renders the run summary line shared by console and file logs.
func formatSummary(s models.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s complete: %d results, %d visited", s.Operation, s.Results, s.Visited)
	if s.Excluded > 0 {
		fmt.Fprintf(&b, ", %d excluded", s.Excluded)
	}
	if s.Unreadable > 0 {
		fmt.Fprintf(&b, ", %d unreadable", s.Unreadable)
	}
	if s.Truncated {
		b.WriteString(", truncated")
	}
	fmt.Fprintf(&b, " (%s)", formatDuration(s.Duration))
	return b.String()
}

// timestamp returns the current time formatted as HH:MM:SS.
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration renders durations compactly: "850ms", "12s", "3m5s", "1h2m".
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

// NewNoOpLogger returns a logger that discards all messages.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string)                   {}
func (n *NoOpLogger) LogDebug(string)                   {}
func (n *NoOpLogger) LogInfo(string)                    {}
func (n *NoOpLogger) LogWarn(string)                    {}
func (n *NoOpLogger) LogError(string)                   {}
func (n *NoOpLogger) LogRunStart(string, string)        {}
func (n *NoOpLogger) LogRunComplete(models.RunSummary) {}

// MultiLogger fans every message out to several loggers.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers; nil entries are dropped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) LogTrace(message string) {
	for _, l := range m.loggers {
		l.LogTrace(message)
	}
}

func (m *MultiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

func (m *MultiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

func (m *MultiLogger) LogRunStart(operation, root string) {
	for _, l := range m.loggers {
		l.LogRunStart(operation, root)
	}
}

func (m *MultiLogger) LogRunComplete(summary models.RunSummary) {
	for _, l := range m.loggers {
		l.LogRunComplete(summary)
	}
}
