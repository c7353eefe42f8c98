package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/T-Bhaskar/ebook-v2/pkg/document"
)

var infoAllPages bool

var infoCmd = &cobra.Command{
	Use:   "info [pdf file]",
	Short: "Show page count and page sizes of a PDF",
	Long: `Show what the reader sees in a PDF: its page count and page sizes.

Examples:
  ebook-v2 info book.pdf
  ebook-v2 info book.pdf --all`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&infoAllPages, "all", false, "List the size of every page")
}

func runInfo(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if err := validateInputFile(inputPath); err != nil {
		return fmt.Errorf("input validation failed: %w", err)
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

	fmt.Printf("📖 PDF: %s\n", filepath.Base(inputPath))
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("📚 Pages:       %d\n", doc.PageCount())
	if stat, err := os.Stat(inputPath); err == nil {
		fmt.Printf("📊 File Size:   %s\n", humanize.Bytes(uint64(stat.Size())))
	}

	if doc.PageCount() > 0 {
		size, err := doc.PageSize(1)
		if err != nil {
			return fmt.Errorf("failed to read page size: %w", err)
		}
		fmt.Printf("📐 Page Size:   %s\n", formatPageSize(size))
	}

	if infoAllPages {
		fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		for n := 1; n <= doc.PageCount(); n++ {
			size, err := doc.PageSize(n)
			if err != nil {
				return fmt.Errorf("failed to read size of page %d: %w", n, err)
			}
			fmt.Printf("%6d  %s\n", n, formatPageSize(size))
		}
	}
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	return nil
}

// formatPageSize prints points and millimetres.
func formatPageSize(s document.Size) string {
	const mmPerPoint = 25.4 / 72
	return fmt.Sprintf("%.0f x %.0f pt (%.0f x %.0f mm)", s.Width, s.Height, s.Width*mmPerPoint, s.Height*mmPerPoint)
}
