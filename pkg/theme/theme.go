// Package theme holds the reader color palettes and turns presentation
// settings into display values.
package theme

import (
	"fmt"
	"strings"

	"github.com/T-Bhaskar/ebook-v2/pkg/recolor"
)

// Original is the palette id that leaves rendered PDF colors alone.
const Original = "original"

// PageTheme is the page surface used around the rendered PDF.
type PageTheme struct {
	Background string
	Text       string
}

var pageThemes = map[string]PageTheme{
	"sepia": {Background: "#f4f1ea", Text: "#2c2c2c"},
	"white": {Background: "#ffffff", Text: "#000000"},
	"cream": {Background: "#fdf6e3", Text: "#2c2c2c"},
	"gray":  {Background: "#f5f5f5", Text: "#2c2c2c"},
	"dark":  {Background: "#2d2d2d", Text: "#e0e0e0"},
}

var outerBackgrounds = map[string]string{
	"light-beige": "linear-gradient(135deg, #f4f1ea 0%, #e8e4d9 100%)",
	"white":       "#ffffff",
	"light-gray":  "#f8f8f8",
	"dark-gray":   "#3a3a3a",
	"black":       "#1a1a1a",
	"warm-brown":  "linear-gradient(135deg, #8b7355 0%, #6d5a42 100%)",
}

var pdfBackgrounds = map[string]*recolor.RGB{
	Original:     nil,
	"white":      {R: 255, G: 255, B: 255},
	"sepia":      {R: 244, G: 241, B: 234},
	"cream":      {R: 253, G: 246, B: 227},
	"light-gray": {R: 248, G: 248, B: 248},
	"dark":       {R: 45, G: 45, B: 45},
}

var pdfTextColors = map[string]*recolor.RGB{
	Original:    nil,
	"black":     {R: 0, G: 0, B: 0},
	"dark-gray": {R: 51, G: 51, B: 51},
	"brown":     {R: 93, G: 64, B: 55},
	"blue":      {R: 21, G: 101, B: 192},
	"white":     {R: 255, G: 255, B: 255},
}

// LookupPage returns the page theme for id.
func LookupPage(id string) (PageTheme, bool) {
	t, ok := pageThemes[id]
	return t, ok
}

// LookupOuter returns the CSS background for an outer background id.
func LookupOuter(id string) (string, bool) {
	bg, ok := outerBackgrounds[id]
	return bg, ok
}

// IsPDFBackground reports whether id names a PDF background target.
func IsPDFBackground(id string) bool {
	_, ok := pdfBackgrounds[id]
	return ok
}

// IsPDFText reports whether id names a PDF text target.
func IsPDFText(id string) bool {
	_, ok := pdfTextColors[id]
	return ok
}

// Targets resolves palette ids into recolor targets. Unknown ids behave
// like Original.
func Targets(background, text string) recolor.Targets {
	return recolor.Targets{
		Background: pdfBackgrounds[background],
		Text:       pdfTextColors[text],
	}
}

// Names returns the ids of a palette group: "page", "outer", "pdf-background"
// or "pdf-text".
func Names(group string) ([]string, error) {
	var names []string
	switch group {
	case "page":
		for k := range pageThemes {
			names = append(names, k)
		}
	case "outer":
		for k := range outerBackgrounds {
			names = append(names, k)
		}
	case "pdf-background":
		for k := range pdfBackgrounds {
			names = append(names, k)
		}
	case "pdf-text":
		for k := range pdfTextColors {
			names = append(names, k)
		}
	default:
		return nil, fmt.Errorf("unknown palette group '%s'", group)
	}
	return names, nil
}

// Style is the subset of reader settings that shapes the page presentation.
type Style struct {
	Page          string
	Outer         string
	Brightness    float64
	Contrast      float64
	FontSize      float64
	FontFamily    string
	Margins       int
	EyeProtection bool
}

// Presentation is what the front end applies to the page and window.
type Presentation struct {
	PageBackground  string  `json:"pageBackground"`
	PageText        string  `json:"pageText"`
	OuterBackground string  `json:"outerBackground"`
	FontFamily      string  `json:"fontFamily"`
	FontSizePx      float64 `json:"fontSizePx"`
	PaddingPx       int     `json:"paddingPx"`
	Filter          string  `json:"filter"`
}

// BaseFontSizePx is the page font size at a 1.0 multiplier.
const BaseFontSizePx = 24

// Present computes the presentation for s.
func Present(s Style) Presentation {
	page, ok := pageThemes[s.Page]
	if !ok {
		page = pageThemes["sepia"]
	}
	outer, ok := outerBackgrounds[s.Outer]
	if !ok {
		outer = outerBackgrounds["light-beige"]
	}

	return Presentation{
		PageBackground:  page.Background,
		PageText:        page.Text,
		OuterBackground: outer,
		FontFamily:      s.FontFamily,
		FontSizePx:      BaseFontSizePx * s.FontSize,
		PaddingPx:       s.Margins,
		Filter:          FilterCSS(s.Brightness, s.Contrast, s.EyeProtection),
	}
}

// FilterCSS builds the CSS filter applied over the book container.
func FilterCSS(brightness, contrast float64, eyeProtection bool) string {
	parts := []string{
		fmt.Sprintf("brightness(%g)", brightness),
		fmt.Sprintf("contrast(%g)", contrast),
	}
	if eyeProtection {
		parts = append(parts, "sepia(0.1)", "saturate(0.8)")
	}
	return strings.Join(parts, " ")
}
