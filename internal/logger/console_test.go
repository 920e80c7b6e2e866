package logger

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/scout/internal/models"
)

// TestNewConsoleLogger verifies the constructor creates a ConsoleLogger with the provided writer.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "warn")

		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "warn" {
			t.Errorf("expected log level %q, got %q", "warn", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("buffers must never get color output")
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		logger.LogError("dropped")
		if logger.writer != nil {
			t.Error("expected nil writer")
		}
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger := NewConsoleLogger(&bytes.Buffer{}, "loud")
		if logger.logLevel != "info" {
			t.Errorf("expected info, got %q", logger.logLevel)
		}
	})
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
	}{
		{"trace", []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}},
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{"info", []string{"INFO", "WARN", "ERROR"}},
		{"warn", []string{"WARN", "ERROR"}},
		{"ERROR", []string{"ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, tt.level)
			logger.LogTrace("t")
			logger.LogDebug("d")
			logger.LogInfo("i")
			logger.LogWarn("w")
			logger.LogError("e")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != len(tt.expected) {
				t.Fatalf("expected %d lines, got %d: %q", len(tt.expected), len(lines), buf.String())
			}
			for i, want := range tt.expected {
				if !strings.Contains(lines[i], "["+want+"]") {
					t.Errorf("line %d = %q, want level %s", i, lines[i], want)
				}
			}
		})
	}
}

func TestConsoleLoggerFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogWarn("skipping unreadable directory")

	out := buf.String()
	if !strings.HasPrefix(out, "[") || out[9] != ']' {
		t.Errorf("expected [HH:MM:SS] prefix, got %q", out)
	}
	if !strings.HasSuffix(out, "[WARN] skipping unreadable directory\n") {
		t.Errorf("unexpected message format: %q", out)
	}
}

func TestLogRunStartAndComplete(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogRunStart(models.OpFind, "/tmp/project")
	logger.LogRunComplete(models.RunSummary{
		Operation:  models.OpSearch,
		Results:    12,
		Visited:    340,
		Excluded:   3,
		Unreadable: 1,
		Truncated:  true,
		Duration:   45 * time.Millisecond,
	})

	out := buf.String()
	for _, want := range []string{
		"Starting find in /tmp/project",
		"search complete: 12 results, 340 visited, 3 excluded, 1 unreadable, truncated (45ms)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "result limit") {
		t.Error("truncation detail is debug-only")
	}
}

func TestLogRunStartEmptyOperation(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "trace").LogRunStart("", "/x")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{12 * time.Second, "12s"},
		{3*time.Minute + 5*time.Second, "3m5s"},
		{2 * time.Minute, "2m"},
		{time.Hour + 2*time.Minute, "1h2m"},
		{3 * time.Hour, "3h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConsoleLoggerConcurrentWrites(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "debug")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.LogDebug(fmt.Sprintf("worker %d", n))
		}(i)
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "\n"); got != 20 {
		t.Errorf("expected 20 lines, got %d", got)
	}
}

func TestMultiLogger(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	multi := NewMultiLogger(NewConsoleLogger(a, "info"), nil, NewConsoleLogger(b, "error"))

	multi.LogInfo("hello")
	multi.LogError("boom")
	multi.LogRunComplete(models.RunSummary{Operation: models.OpList})

	if !strings.Contains(a.String(), "hello") || !strings.Contains(a.String(), "list complete") {
		t.Errorf("first logger missing output: %q", a.String())
	}
	if strings.Contains(b.String(), "hello") || !strings.Contains(b.String(), "boom") {
		t.Errorf("second logger filtered incorrectly: %q", b.String())
	}
}

func TestNoOpLoggerSatisfiesInterface(t *testing.T) {
	var l Logger = NewNoOpLogger()
	l.LogError("ignored")
	l.LogRunComplete(models.RunSummary{})
}
