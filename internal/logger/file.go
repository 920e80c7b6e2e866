package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/scout/internal/models"
)

// FileLogger writes one timestamped log file per run under a log directory
// and keeps a latest.log symlink pointing at the newest one.
type FileLogger struct {
	logDir   string
	runID    string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir with the given level.
// The directory is created if needed. Each logger gets its own run ID,
// which also appears in the history store.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	return newFileLoggerWithID(logDir, logLevel, uuid.New().String())
}

func newFileLoggerWithID(logDir, logLevel, runID string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// run-YYYYMMDD-HHMMSS-<id prefix>.log keeps concurrent runs apart
	stamp := time.Now().Format("20060102-150405")
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s-%s.log", stamp, short))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runID:    runID,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== Scout Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Run ID: %s\n", runID))
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// RunID returns the identifier written into the log header.
func (fl *FileLogger) RunID() string {
	return fl.runID
}

// Path returns the path of the run log file.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogRunStart records the operation and root at INFO level.
func (fl *FileLogger) LogRunStart(operation, root string) {
	fl.LogInfo(fmt.Sprintf("Starting %s in %s", operation, root))
}

// LogRunComplete writes the summary line followed by a detail block.
func (fl *FileLogger) LogRunComplete(s models.RunSummary) {
	if !fl.shouldLog("info") {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [INFO] %s\n", timestamp(), formatSummary(s))
	if s.Query != "" {
		fmt.Fprintf(&b, "  query:  %s\n", s.Query)
	}
	fmt.Fprintf(&b, "  root:   %s\n", s.Root)
	fmt.Fprintf(&b, "  format: %s\n", s.Format)
	fl.writeRunLog(b.String())
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
	}
}
