// Package recolor remaps the background and text colors of a rendered page
// bitmap using a luminance heuristic.
//
// Pixels brighter than LightThreshold are treated as page background and
// pixels darker than DarkThreshold as text. Everything in between is left
// alone so anti-aliased glyph edges keep their gradient.
package recolor

import (
	"fmt"
	"image"
	"runtime"
	"sync"
)

const (
	// LightThreshold is the luminance above which a pixel counts as background.
	LightThreshold = 200
	// DarkThreshold is the luminance below which a pixel counts as text.
	DarkThreshold = 100

	// parallelRows is the minimum bitmap height split across goroutines.
	parallelRows = 256
)

// RGB is an opaque target color.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color in #rrggbb form.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Targets selects the replacement colors. A nil field keeps the original.
type Targets struct {
	Background *RGB
	Text       *RGB
}

// IsIdentity reports whether applying t would leave every pixel unchanged.
func (t Targets) IsIdentity() bool {
	return t.Background == nil && t.Text == nil
}

// Luminance returns the perceived brightness of an sRGB pixel (0-255).
func Luminance(r, g, b uint8) float64 {
	return float64(r)*0.299 + float64(g)*0.587 + float64(b)*0.114
}

// Apply recolors img in place. It is the single routine used for on-screen
// pages, fullscreen pages and exported pages.
func Apply(img *image.RGBA, t Targets) {
	if img == nil || t.IsIdentity() {
		return
	}

	b := img.Rect
	rows := b.Dy()
	if rows <= 0 || b.Dx() <= 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if rows < parallelRows || workers < 2 {
		remapRows(img, b.Min.Y, b.Max.Y, t)
		return
	}

	chunk := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := b.Min.Y; y0 < b.Max.Y; y0 += chunk {
		y1 := min(y0+chunk, b.Max.Y)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			remapRows(img, y0, y1, t)
		}(y0, y1)
	}
	wg.Wait()
}

func remapRows(img *image.RGBA, y0, y1 int, t Targets) {
	width := img.Rect.Dx() * 4
	for y := y0; y < y1; y++ {
		start := img.PixOffset(img.Rect.Min.X, y)
		remapRow(img.Pix[start:start+width], t)
	}
}

func remapRow(pix []uint8, t Targets) {
	bg, text := t.Background, t.Text
	for i := 0; i+3 < len(pix); i += 4 {
		l := Luminance(pix[i], pix[i+1], pix[i+2])
		switch {
		case l > LightThreshold && bg != nil:
			pix[i], pix[i+1], pix[i+2] = bg.R, bg.G, bg.B
		case l < DarkThreshold && text != nil:
			pix[i], pix[i+1], pix[i+2] = text.R, text.G, text.B
		}
	}
}
