// Package pdftest builds small PDF documents for tests.
package pdftest

import (
	"testing"

	"github.com/signintech/gopdf"
)

// Page is the size of one generated page in points.
type Page struct {
	Width  float64
	Height float64
}

// Build returns a PDF with one page per entry. The left half of every page
// is filled black and the right half is left white.
func Build(t testing.TB, pages ...Page) []byte {
	t.Helper()
	if len(pages) == 0 {
		t.Fatal("pdftest.Build needs at least one page")
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		PageSize: gopdf.Rect{W: pages[0].Width, H: pages[0].Height},
		Unit:     gopdf.UnitPT,
	})

	for _, p := range pages {
		pdf.AddPageWithOption(gopdf.PageOption{
			PageSize: &gopdf.Rect{W: p.Width, H: p.Height},
		})
		pdf.SetFillColor(0, 0, 0)
		pdf.RectFromUpperLeftWithStyle(0, 0, p.Width/2, p.Height, "F")
	}

	return pdf.GetBytesPdf()
}

// Pages returns n pages of the given size.
func Pages(n int, width, height float64) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Width: width, Height: height}
	}
	return pages
}
