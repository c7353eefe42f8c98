package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	cfg, err := New(Options{DataDir: dir, LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if cfg.AppDataDir != dir {
		t.Errorf("AppDataDir = %q, expected %q", cfg.AppDataDir, dir)
	}
	if cfg.DatabasePath != filepath.Join(dir, "settings.sqlite3") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("data directory not created: %v", err)
	}
	if cfg.ExportDir == "" {
		t.Error("ExportDir is empty")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var quiet bytes.Buffer
	NewLogger(&quiet, false).Debug("hidden")
	if quiet.Len() != 0 {
		t.Errorf("debug message logged without verbose: %q", quiet.String())
	}

	var loud bytes.Buffer
	NewLogger(&loud, true).Debug("shown", "page", 3)
	if !strings.Contains(loud.String(), "shown") || !strings.Contains(loud.String(), "page=3") {
		t.Errorf("verbose logger output = %q", loud.String())
	}
}
