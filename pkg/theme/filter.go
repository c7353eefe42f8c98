package theme

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// DisplayFilter reproduces the CSS filter chain of the reader view on a
// bitmap, so exported pages can carry the on-screen adjustments.
type DisplayFilter struct {
	Brightness    float64
	Contrast      float64
	EyeProtection bool
}

// IsNeutral reports whether the filter leaves pixels unchanged.
func (f DisplayFilter) IsNeutral() bool {
	return f.Brightness == 1 && f.Contrast == 1 && !f.EyeProtection
}

// Apply returns a filtered copy of img. The chain order matches the CSS
// filter: brightness, contrast, then sepia(0.1) saturate(0.8).
func (f DisplayFilter) Apply(img image.Image) *image.NRGBA {
	if f.IsNeutral() {
		return imaging.Clone(img)
	}

	sepia := newColorMatrix()
	saturate := newColorMatrix()
	if f.EyeProtection {
		sepia = sepiaMatrix(0.1)
		saturate = saturateMatrix(0.8)
	}

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255

		r, g, b = r*f.Brightness, g*f.Brightness, b*f.Brightness

		offset := 0.5 - 0.5*f.Contrast
		r, g, b = r*f.Contrast+offset, g*f.Contrast+offset, b*f.Contrast+offset

		if f.EyeProtection {
			r, g, b = clamp01(r), clamp01(g), clamp01(b)
			r, g, b = sepia.apply(r, g, b)
			r, g, b = saturate.apply(r, g, b)
		}

		return color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: c.A}
	})
}

type colorMatrix [3][3]float64

func newColorMatrix() colorMatrix {
	return colorMatrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func (m colorMatrix) apply(r, g, b float64) (float64, float64, float64) {
	return m[0][0]*r + m[0][1]*g + m[0][2]*b,
		m[1][0]*r + m[1][1]*g + m[1][2]*b,
		m[2][0]*r + m[2][1]*g + m[2][2]*b
}

// sepiaMatrix follows the Filter Effects sepia() definition.
func sepiaMatrix(amount float64) colorMatrix {
	a := 1 - amount
	return colorMatrix{
		{0.393 + 0.607*a, 0.769 - 0.769*a, 0.189 - 0.189*a},
		{0.349 - 0.349*a, 0.686 + 0.314*a, 0.168 - 0.168*a},
		{0.272 - 0.272*a, 0.534 - 0.534*a, 0.131 + 0.869*a},
	}
}

// saturateMatrix follows the Filter Effects saturate() definition.
func saturateMatrix(s float64) colorMatrix {
	return colorMatrix{
		{0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s},
		{0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s},
		{0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s},
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
