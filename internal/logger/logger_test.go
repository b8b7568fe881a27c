package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: false, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message", "key", "value")
	Warn("Test warning message")
	Error("Test error message")

	if _, err := os.Stat(filepath.Join(logDir, "pillbox.log")); os.IsNotExist(err) {
		t.Error("Log file was not created after writing an info message")
	}
}

func TestWithBeforeInit(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()
	Logger = nil

	l := With("component", "test")
	if l == nil {
		t.Fatal("With() returned nil logger")
	}
	// Must not panic
	l.Info("discarded")
	Info("no-op without logger")
}
