package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fauxhost/pkg/models"
)

func TestLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "out.log")
	log, err := NewLogger(&models.LogConfig{ToFile: true, FilePath: path})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	log.Info("hello from the test")
	if err := log.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from the test") {
		t.Errorf("Log file does not contain the message: %q", data)
	}
	if !strings.Contains(string(data), `"level":"info"`) {
		t.Errorf("Log file does not carry the level field: %q", data)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	log, err := NewLogger(&models.LogConfig{ToFile: true, FilePath: path, Level: "warn"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	log.Info("quiet")
	log.Warn("loud")
	log.Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "quiet") {
		t.Error("Info message leaked past the warn level")
	}
	if !strings.Contains(string(data), "loud") {
		t.Error("Warn message missing")
	}
}

func TestLogger_RejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger(&models.LogConfig{Level: "whisper"}); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}
