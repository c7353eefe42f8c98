// Package config resolves application directories and builds the logger.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// AppName names the application data directory.
const AppName = "EPaperReader"

// Options come from command line flags.
type Options struct {
	// DataDir overrides the application data directory.
	DataDir string
	Verbose bool
	// LogOutput defaults to stderr.
	LogOutput io.Writer
}

// Config holds application configuration
type Config struct {
	AppDataDir   string
	DatabasePath string
	ExportDir    string
	Logger       *slog.Logger
}

// New resolves directories and creates them when missing.
func New(opts Options) (*Config, error) {
	cfg := &Config{
		Logger: NewLogger(opts.LogOutput, opts.Verbose),
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = defaultAppDataDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg.AppDataDir = dataDir
	cfg.DatabasePath = filepath.Join(dataDir, "settings.sqlite3")
	cfg.ExportDir = defaultExportDir()

	cfg.Logger.Debug("configuration resolved",
		"data_dir", cfg.AppDataDir,
		"database", cfg.DatabasePath,
		"export_dir", cfg.ExportDir)

	return cfg, nil
}

// NewLogger returns a text logger on w, at debug level when verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultAppDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// defaultExportDir prefers ~/Downloads and falls back to the working
// directory.
func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	downloads := filepath.Join(home, "Downloads")
	if info, err := os.Stat(downloads); err == nil && info.IsDir() {
		return downloads
	}
	return "."
}
