package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
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
	if Logger.GetLevel() != log.WarnLevel {
		t.Errorf("level = %v, want %v", Logger.GetLevel(), log.WarnLevel)
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message", "fast_id", "abc")
	Error("Test error message")
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want %v", Logger.GetLevel(), log.DebugLevel)
	}
}

func TestInitConsoleMode(t *testing.T) {
	var stderr bytes.Buffer
	if err := Init(Config{Console: true, ConfigDir: t.TempDir(), Stderr: &stderr}); err != nil {
		t.Fatal(err)
	}
	if Logger.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want %v", Logger.GetLevel(), log.InfoLevel)
	}

	Debug("hidden")
	Info("Reminder sent", "fast_id", "f1")
	out := stderr.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line reached stderr in console mode: %q", out)
	}
	if !strings.Contains(out, "Reminder sent") || !strings.Contains(out, "fast_id=f1") {
		t.Errorf("stderr = %q, want the info line", out)
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// None of these may panic on a nil logger
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}
