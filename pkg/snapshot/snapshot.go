// Package snapshot renders a single page to an image file, with the reader's
// color remapping applied.
package snapshot

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/T-Bhaskar/ebook-v2/pkg/recolor"
	"github.com/T-Bhaskar/ebook-v2/pkg/theme"
)

// Format is an image encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	WebP Format = "webp"
)

// DefaultQuality applies to JPEG and WebP.
const DefaultQuality = 90

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".webp":
		return WebP, nil
	}
	return "", fmt.Errorf("unsupported image extension '%s'", filepath.Ext(path))
}

// Source renders pages.
type Source interface {
	PageCount() int
	Render(n int, scale float64) (*image.RGBA, error)
}

// Options control one snapshot.
type Options struct {
	Page    int
	Scale   float64
	Targets recolor.Targets
	// Display, when set, applies brightness, contrast and eye protection.
	Display *theme.DisplayFilter
	// MaxWidth and MaxHeight bound the output, keeping the aspect ratio.
	// Zero means unbounded.
	MaxWidth  int
	MaxHeight int
	Grayscale bool
	Quality   int
}

// Render draws one page and applies opts.
func Render(src Source, opts Options) (image.Image, error) {
	if opts.Page < 1 || opts.Page > src.PageCount() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", opts.Page, src.PageCount())
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}

	rgba, err := src.Render(opts.Page, opts.Scale)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", opts.Page, err)
	}
	recolor.Apply(rgba, opts.Targets)

	var img image.Image = rgba
	if opts.Display != nil && !opts.Display.IsNeutral() {
		img = opts.Display.Apply(img)
	}
	img = fit(img, opts.MaxWidth, opts.MaxHeight)
	if opts.Grayscale {
		img = imaging.Grayscale(img)
	}
	return img, nil
}

// fit shrinks img to the bounds. A zero bound is unlimited.
func fit(img image.Image, maxWidth, maxHeight int) image.Image {
	if maxWidth <= 0 && maxHeight <= 0 {
		return img
	}
	b := img.Bounds()
	if maxWidth <= 0 {
		maxWidth = b.Dx()
	}
	if maxHeight <= 0 {
		maxHeight = b.Dy()
	}
	if b.Dx() <= maxWidth && b.Dy() <= maxHeight {
		return img
	}
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

// Encode writes img to w in format.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	switch format {
	case PNG:
		encoder := &png.Encoder{CompressionLevel: png.BestCompression}
		return encoder.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case WebP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	}
	return fmt.Errorf("unsupported image format '%s'", format)
}

// WriteFile renders a page and saves it to path, choosing the format from
// the extension. A failed write leaves no file behind.
func WriteFile(src Source, path string, opts Options) (err error) {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	img, err := Render(src, opts)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := Encode(out, img, format, opts.Quality); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}
