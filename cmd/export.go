package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/T-Bhaskar/ebook-v2/pkg/document"
	"github.com/T-Bhaskar/ebook-v2/pkg/export"
	"github.com/T-Bhaskar/ebook-v2/pkg/progress"
	"github.com/T-Bhaskar/ebook-v2/pkg/theme"
	"github.com/T-Bhaskar/ebook-v2/pkg/viewer"
)

var (
	exportDir        string
	exportFormat     string
	exportPages      string
	exportBackground string
	exportText       string
	exportBake       bool
	exportWorkers    int
	exportScale      float64
	exportQuality    int
	exportNoValidate bool
	exportTitle      string
)

var exportCmd = &cobra.Command{
	Use:   "export [pdf file]",
	Short: "Write a recolored copy of a PDF",
	Long: `Render every page of a PDF, remap its background and text colors and
write the result as a new PDF (or a fixed-layout EPUB).

Colors default to the saved reader settings; flags override them.
The output is named {title}_customized_{date}.pdf.

Examples:
  ebook-v2 export book.pdf
  ebook-v2 export book.pdf -o ~/Books --pdf-background dark --pdf-text white
  ebook-v2 export book.pdf --pages "1-3,7" --format epub --bake`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportDir, "output", "o", "", "Output directory (default: Downloads)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "pdf", "Output format (pdf, epub)")
	exportCmd.Flags().StringVar(&exportPages, "pages", "", "Page ranges to export (e.g., \"1-3,7\"), default all")
	exportCmd.Flags().StringVar(&exportBackground, "pdf-background", "", "PDF background color (original, white, sepia, cream, light-gray, dark)")
	exportCmd.Flags().StringVar(&exportText, "pdf-text", "", "PDF text color (original, black, dark-gray, brown, blue, white)")
	exportCmd.Flags().BoolVar(&exportBake, "bake", false, "Bake brightness, contrast and eye protection into the pages")
	exportCmd.Flags().IntVar(&exportWorkers, "workers", 0, "Number of render workers (0 = auto)")
	exportCmd.Flags().Float64Var(&exportScale, "scale", export.DefaultScale, "Render scale")
	exportCmd.Flags().IntVar(&exportQuality, "quality", export.DefaultQuality, "JPEG quality (1-100)")
	exportCmd.Flags().BoolVar(&exportNoValidate, "no-validate", false, "Skip the structural check of the written PDF")
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "Title used for the file name (default: input file name)")
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if err := validateInputFile(inputPath); err != nil {
		return fmt.Errorf("input validation failed: %w", err)
	}
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	if _, err := export.ParsePageRanges(exportPages); err != nil {
		return fmt.Errorf("invalid pages format: %w", err)
	}
	if exportBackground != "" && !theme.IsPDFBackground(exportBackground) {
		return fmt.Errorf("unknown PDF background '%s'", exportBackground)
	}
	if exportText != "" && !theme.IsPDFText(exportText) {
		return fmt.Errorf("unknown PDF text color '%s'", exportText)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := exportDir
	if dir == "" {
		dir = cfg.ExportDir
	}
	if err := validateOutputDir(dir); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	s := loadSettings(cfg)
	if exportBackground != "" {
		s.PDFBackground = exportBackground
	}
	if exportText != "" {
		s.PDFTextColor = exportText
	}

	data, err := document.ReadFile(inputPath)
	if err != nil {
		return err
	}
	engine, err := document.NewEngine(document.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to start PDF engine: %w", err)
	}
	defer engine.Close()

	doc, err := engine.Open(data)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	title := exportTitle
	if title == "" {
		title = viewer.TitleFromName(inputPath)
	}

	bar := progress.NewBar(os.Stderr)
	opts := export.Options{
		Title:    title,
		Dir:      dir,
		Targets:  s.Targets(),
		Scale:    exportScale,
		Quality:  exportQuality,
		Workers:  exportWorkers,
		Format:   format,
		Pages:    exportPages,
		Validate: !exportNoValidate,
		Progress: bar.Sink(),
	}
	if exportBake {
		filter := s.DisplayFilter()
		opts.Display = &filter
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("📖 Exporting %s (%d pages)\n", filepath.Base(inputPath), doc.PageCount())
	res, err := export.New(cfg.Logger).Export(ctx, doc, opts)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	bar.Finish()

	fmt.Printf("✅ %s\n", res.Summary())
	fmt.Printf("   %s\n", res.Path)
	return nil
}

func validateOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("output directory does not exist: %s", dir)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", dir)
	}
	return nil
}
