package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmaupin/go-epub"
	"github.com/google/uuid"
	"github.com/signintech/gopdf"
)

// Format is the output container of an export.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
)

// ParseFormat accepts "pdf" or "epub".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatEPUB:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format '%s'", s)
}

// Frame is one rendered page ready to be placed in the output.
type Frame struct {
	Page int
	// Width and Height are the page size in points.
	Width  float64
	Height float64
	JPEG   []byte
}

// builder assembles frames into an output file.
type builder interface {
	AddPage(f Frame) error
	Write(path string) error
	Close() error
}

func newBuilder(format Format, title string, created time.Time) (builder, error) {
	switch format {
	case FormatPDF:
		return newPDFBuilder(title, created), nil
	case FormatEPUB:
		return newEPUBBuilder(title)
	}
	return nil, fmt.Errorf("unsupported export format '%s'", format)
}

// pdfBuilder places each frame as a full-page JPEG.
type pdfBuilder struct {
	pdf     *gopdf.GoPdf
	title   string
	created time.Time
	started bool
}

func newPDFBuilder(title string, created time.Time) *pdfBuilder {
	return &pdfBuilder{pdf: &gopdf.GoPdf{}, title: title, created: created}
}

func (b *pdfBuilder) AddPage(f Frame) error {
	size := gopdf.Rect{W: f.Width, H: f.Height}

	if !b.started {
		b.pdf.Start(gopdf.Config{PageSize: size, Unit: gopdf.UnitPT})
		b.pdf.SetInfo(gopdf.PdfInfo{
			Title:        b.title,
			Creator:      "E-Paper Ebook Reader",
			CreationDate: b.created,
		})
		b.started = true
	}

	b.pdf.AddPageWithOption(gopdf.PageOption{PageSize: &size})

	holder, err := gopdf.ImageHolderByBytes(f.JPEG)
	if err != nil {
		return fmt.Errorf("failed to load image of page %d: %w", f.Page, err)
	}
	if err := b.pdf.ImageByHolder(holder, 0, 0, &size); err != nil {
		return fmt.Errorf("failed to place image of page %d: %w", f.Page, err)
	}
	return nil
}

func (b *pdfBuilder) Write(path string) error {
	if !b.started {
		return fmt.Errorf("no pages to write")
	}
	if err := b.pdf.WritePdf(path); err != nil {
		return fmt.Errorf("failed to write PDF file: %w", err)
	}
	return nil
}

func (b *pdfBuilder) Close() error {
	return nil
}

// epubBuilder writes one section per page holding the page image.
type epubBuilder struct {
	book     *epub.Epub
	imageDir string
	pages    int
}

func newEPUBBuilder(title string) (*epubBuilder, error) {
	dir, err := os.MkdirTemp("", "ebook-export-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	book := epub.NewEpub(title)
	book.SetLang("en")
	book.SetIdentifier("urn:uuid:" + uuid.NewString())
	book.SetDescription(title + " (customized export)")

	return &epubBuilder{book: book, imageDir: dir}, nil
}

func (b *epubBuilder) AddPage(f Frame) error {
	name := fmt.Sprintf("page-%04d.jpg", f.Page)
	src := filepath.Join(b.imageDir, name)
	if err := os.WriteFile(src, f.JPEG, 0644); err != nil {
		return fmt.Errorf("failed to stage image of page %d: %w", f.Page, err)
	}

	ref, err := b.book.AddImage(src, name)
	if err != nil {
		return fmt.Errorf("failed to add image of page %d: %w", f.Page, err)
	}

	body := fmt.Sprintf(`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>`, ref, f.Page)
	if _, err := b.book.AddSection(body, fmt.Sprintf("Page %d", f.Page), "", ""); err != nil {
		return fmt.Errorf("failed to add page %d: %w", f.Page, err)
	}
	b.pages++
	return nil
}

func (b *epubBuilder) Write(path string) error {
	if b.pages == 0 {
		return fmt.Errorf("no pages to write")
	}
	if err := b.book.Write(path); err != nil {
		return fmt.Errorf("failed to write EPUB file: %w", err)
	}
	return nil
}

func (b *epubBuilder) Close() error {
	return os.RemoveAll(b.imageDir)
}
