package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/T-Bhaskar/ebook-v2/pkg/device"
	"github.com/T-Bhaskar/ebook-v2/pkg/document"
	"github.com/T-Bhaskar/ebook-v2/pkg/snapshot"
)

var (
	renderPage      int
	renderOutput    string
	renderScale     float64
	renderMaxWidth  int
	renderMaxHeight int
	renderGrayscale bool
	renderQuality   int
	renderOriginal  bool
	renderBake      bool
	renderDevice    string
)

var renderCmd = &cobra.Command{
	Use:   "render [pdf file]",
	Short: "Save one recolored page as an image",
	Long: `Render a single page with the saved reader colors and save it as PNG,
JPEG or WebP. The format follows the output extension.

Examples:
  ebook-v2 render book.pdf -p 12 -o page.png
  ebook-v2 render book.pdf -p 1 -o cover.webp --max-width 1072 --grayscale
  ebook-v2 render book.pdf -p 5 -o page.jpg --device kindle`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().IntVarP(&renderPage, "page", "p", 1, "Page number (1-based)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output image path (required)")
	renderCmd.Flags().Float64Var(&renderScale, "scale", 2, "Render scale")
	renderCmd.Flags().IntVar(&renderMaxWidth, "max-width", 0, "Maximum width in pixels (0 = unbounded)")
	renderCmd.Flags().IntVar(&renderMaxHeight, "max-height", 0, "Maximum height in pixels (0 = unbounded)")
	renderCmd.Flags().BoolVar(&renderGrayscale, "grayscale", false, "Convert to grayscale for e-paper screens")
	renderCmd.Flags().IntVar(&renderQuality, "quality", 0, "JPEG/WebP quality (1-100, default: device or 90)")
	renderCmd.Flags().BoolVar(&renderOriginal, "original", false, "Keep the original page colors")
	renderCmd.Flags().BoolVar(&renderBake, "bake", false, "Apply brightness, contrast and eye protection")
	renderCmd.Flags().StringVar(&renderDevice, "device", "", fmt.Sprintf("Size for an e-paper device %v", device.IDs()))

	renderCmd.MarkFlagRequired("output")
}

func runRender(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if err := validateInputFile(inputPath); err != nil {
		return fmt.Errorf("input validation failed: %w", err)
	}
	format, err := snapshot.FormatForPath(renderOutput)
	if err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}
	var profile *device.Profile
	if renderDevice != "" {
		p, err := device.Lookup(renderDevice)
		if err != nil {
			return err
		}
		if !p.Supports(format) {
			fmt.Printf("⚠️  %s does not open %s images\n", p.Name, format)
		}
		profile = &p
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s := loadSettings(cfg)

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

	opts := snapshot.Options{
		Page:      renderPage,
		Scale:     renderScale,
		MaxWidth:  renderMaxWidth,
		MaxHeight: renderMaxHeight,
		Grayscale: renderGrayscale,
		Quality:   renderQuality,
	}
	if !renderOriginal {
		opts.Targets = s.Targets()
	}
	if renderBake {
		filter := s.DisplayFilter()
		opts.Display = &filter
	}
	if profile != nil {
		opts = profile.Apply(opts)
	}

	if err := snapshot.WriteFile(doc, renderOutput, opts); err != nil {
		return err
	}
	fmt.Printf("✅ Page %d of %d saved to %s\n", renderPage, doc.PageCount(), renderOutput)
	return nil
}
