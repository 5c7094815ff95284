package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestFileLoggerCreatesRunLog verifies the run log file and symlink exist
func TestFileLoggerCreatesRunLog(t *testing.T) {
	logDir := t.TempDir()

	fl, err := NewFileLogger(logDir, "info")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer fl.Close()

	if _, err := os.Stat(fl.RunFile()); err != nil {
		t.Errorf("run log file not created: %v", err)
	}

	linkTarget, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("latest.log symlink not created: %v", err)
	}
	if linkTarget != filepath.Base(fl.RunFile()) {
		t.Errorf("latest.log points to %q, want %q", linkTarget, filepath.Base(fl.RunFile()))
	}
}

// TestFileLoggerWritesMessages verifies messages and the summary land in the file
func TestFileLoggerWritesMessages(t *testing.T) {
	logDir := t.TempDir()

	fl, err := NewFileLogger(logDir, "debug")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	fl.LogInfo("collected 5 files")
	fl.LogDebug("excluding directory .git")
	fl.LogScanSummary(5, 1234, 2, 2*time.Second)

	if err := fl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(fl.RunFile())
	if err != nil {
		t.Fatalf("failed to read run log: %v", err)
	}

	content := string(data)
	for _, want := range []string{"collected 5 files", "excluding directory .git", "SCAN SUMMARY", "Total files: 5"} {
		if !strings.Contains(content, want) {
			t.Errorf("run log missing %q", want)
		}
	}
}

// TestFileLoggerLevelFiltering verifies debug messages are dropped at info level
func TestFileLoggerLevelFiltering(t *testing.T) {
	logDir := t.TempDir()

	fl, err := NewFileLogger(logDir, "info")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	fl.LogDebug("should not appear")
	fl.Close()

	data, err := os.ReadFile(fl.RunFile())
	if err != nil {
		t.Fatalf("failed to read run log: %v", err)
	}
	if strings.Contains(string(data), "should not appear") {
		t.Error("debug message logged despite info level")
	}
}

// TestFileLoggerDoubleClose verifies Close is idempotent
func TestFileLoggerDoubleClose(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir(), "info")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	if err := fl.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
