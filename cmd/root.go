package cmd

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/T-Bhaskar/ebook-v2/internal/config"
	"github.com/T-Bhaskar/ebook-v2/internal/desktop"
	"github.com/T-Bhaskar/ebook-v2/internal/store"
	"github.com/T-Bhaskar/ebook-v2/pkg/settings"
)

var (
	verbose bool
	dataDir string

	// assets holds the web front end served by the desktop window.
	assets fs.FS
)

var rootCmd = &cobra.Command{
	Use:   "ebook-v2 [pdf file]",
	Short: "A distraction-free PDF reader for e-paper style reading",
	Long: `ebook-v2 opens PDF files in a reader window with paper-like themes,
recolored pages, fullscreen reading with zoom and scroll paging.

Without a subcommand it opens the reader window, optionally with a file:
  ebook-v2
  ebook-v2 book.pdf

The subcommands work without a window:
- export   write a recolored copy of a PDF (PDF or EPUB)
- render   save one recolored page as PNG, JPEG or WebP
- info     show page count and page sizes
- settings show or change the saved reader settings`,
	Version:       desktop.Version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runReader,
}

// Execute runs the command line with the embedded front end.
func Execute(frontend fs.FS) {
	assets = frontend
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for saved settings (default: user config dir)")
}

func runReader(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var file string
	if len(args) == 1 {
		if err := validateInputFile(args[0]); err != nil {
			return fmt.Errorf("input validation failed: %w", err)
		}
		file = args[0]
	}

	return desktop.Run(desktop.Options{
		Config: cfg,
		Assets: assets,
		File:   file,
	})
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.New(config.Options{DataDir: dataDir, Verbose: verbose})
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// loadSettings reads the saved reader settings. A broken store is reported
// and the defaults are used.
func loadSettings(cfg *config.Config) settings.ReaderSettings {
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		cfg.Logger.Warn("using default settings", "error", err)
		return settings.Defaults()
	}
	defer st.Close()

	s, err := settings.Load(st)
	if err != nil {
		cfg.Logger.Warn("using default settings", "error", err)
	}
	return s
}

func validateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("input is a directory: %s", path)
	}
	return nil
}
