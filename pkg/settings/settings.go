// Package settings holds the reader presentation settings and their
// persistence as a flat key-value record.
package settings

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/T-Bhaskar/ebook-v2/pkg/recolor"
	"github.com/T-Bhaskar/ebook-v2/pkg/theme"
)

// StorageKey is the store key holding the JSON settings record.
const StorageKey = "ebookReaderSettings"

// Ranges enforced on numeric settings.
const (
	MinBrightness = 0.5
	MaxBrightness = 2.0
	MinContrast   = 0.5
	MaxContrast   = 2.0
	MinFontSize   = 0.5
	MaxFontSize   = 3.0
	MinMargins    = 0
	MaxMargins    = 120
)

// ReaderSettings is the persisted presentation state of the reader.
type ReaderSettings struct {
	Background      string  `json:"background"`
	OuterBackground string  `json:"outerBackground"`
	PDFBackground   string  `json:"pdfBackground"`
	PDFTextColor    string  `json:"pdfTextColor"`
	Brightness      float64 `json:"brightness"`
	Contrast        float64 `json:"contrast"`
	FontSize        float64 `json:"fontSize"`
	FontFamily      string  `json:"fontFamily"`
	Margins         int     `json:"margins"`
	EyeProtection   bool    `json:"eyeProtection"`
}

// Defaults returns the settings used before anything is saved.
func Defaults() ReaderSettings {
	return ReaderSettings{
		Background:      "sepia",
		OuterBackground: "light-beige",
		PDFBackground:   theme.Original,
		PDFTextColor:    theme.Original,
		Brightness:      1,
		Contrast:        1.1,
		FontSize:        1.5,
		FontFamily:      "Crimson Text",
		Margins:         40,
		EyeProtection:   false,
	}
}

// Targets returns the recolor targets selected by the PDF color settings.
func (s ReaderSettings) Targets() recolor.Targets {
	return theme.Targets(s.PDFBackground, s.PDFTextColor)
}

// Style returns the presentation inputs of s.
func (s ReaderSettings) Style() theme.Style {
	return theme.Style{
		Page:          s.Background,
		Outer:         s.OuterBackground,
		Brightness:    s.Brightness,
		Contrast:      s.Contrast,
		FontSize:      s.FontSize,
		FontFamily:    s.FontFamily,
		Margins:       s.Margins,
		EyeProtection: s.EyeProtection,
	}
}

// Presentation returns the display values for s.
func (s ReaderSettings) Presentation() theme.Presentation {
	return theme.Present(s.Style())
}

// DisplayFilter returns the bitmap equivalent of the on-screen CSS filter.
func (s ReaderSettings) DisplayFilter() theme.DisplayFilter {
	return theme.DisplayFilter{
		Brightness:    s.Brightness,
		Contrast:      s.Contrast,
		EyeProtection: s.EyeProtection,
	}
}

// Normalize replaces unknown palette ids with defaults and pulls numeric
// values back into range. Non-finite numbers become the default.
func (s ReaderSettings) Normalize() ReaderSettings {
	d := Defaults()

	if _, ok := theme.LookupPage(s.Background); !ok {
		s.Background = d.Background
	}
	if _, ok := theme.LookupOuter(s.OuterBackground); !ok {
		s.OuterBackground = d.OuterBackground
	}
	if !theme.IsPDFBackground(s.PDFBackground) {
		s.PDFBackground = d.PDFBackground
	}
	if !theme.IsPDFText(s.PDFTextColor) {
		s.PDFTextColor = d.PDFTextColor
	}
	if s.FontFamily == "" {
		s.FontFamily = d.FontFamily
	}

	s.Brightness = clampFinite(s.Brightness, MinBrightness, MaxBrightness, d.Brightness)
	s.Contrast = clampFinite(s.Contrast, MinContrast, MaxContrast, d.Contrast)
	s.FontSize = clampFinite(s.FontSize, MinFontSize, MaxFontSize, d.FontSize)
	s.Margins = lo.Clamp(s.Margins, MinMargins, MaxMargins)

	return s
}

func clampFinite(v, lower, upper, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return lo.Clamp(v, lower, upper)
}

// Change describes which groups of settings an update touched.
type Change struct {
	// Render is set when the rendered bitmap must be produced again
	// (PDF colors or font size).
	Render bool
	// Theme is set when only the presentation around the bitmap changed.
	Theme bool
}

// Apply merges a partial update, keyed by the JSON field names, into s.
// Values of the wrong type are ignored. The result is normalized.
func (s ReaderSettings) Apply(patch map[string]any) (ReaderSettings, Change) {
	before := s
	var change Change

	for key, val := range patch {
		switch key {
		case "background":
			if v, ok := val.(string); ok {
				s.Background = v
			}
		case "outerBackground":
			if v, ok := val.(string); ok {
				s.OuterBackground = v
			}
		case "pdfBackground":
			if v, ok := val.(string); ok {
				s.PDFBackground = v
			}
		case "pdfTextColor":
			if v, ok := val.(string); ok {
				s.PDFTextColor = v
			}
		case "brightness":
			if v, ok := toFloat(val); ok {
				s.Brightness = v
			}
		case "contrast":
			if v, ok := toFloat(val); ok {
				s.Contrast = v
			}
		case "fontSize":
			if v, ok := toFloat(val); ok {
				s.FontSize = v
			}
		case "fontFamily":
			if v, ok := val.(string); ok {
				s.FontFamily = v
			}
		case "margins":
			if v, ok := toFloat(val); ok {
				s.Margins = int(math.Round(v))
			}
		case "eyeProtection":
			if v, ok := val.(bool); ok {
				s.EyeProtection = v
			}
		}
	}

	s = s.Normalize()

	change.Render = s.PDFBackground != before.PDFBackground ||
		s.PDFTextColor != before.PDFTextColor ||
		s.FontSize != before.FontSize
	change.Theme = s != before

	return s, change
}

func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Store is a synchronous persisted key-value text store.
type Store interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
}

// Load reads the settings record from store and merges it over the
// defaults. Keys that are missing, unknown or hold a value of the wrong type
// keep their default. A store failure or an unreadable record yields the
// defaults together with the error, so callers can log and carry on.
func Load(store Store) (ReaderSettings, error) {
	s := Defaults()

	raw, found, err := store.Get(StorageKey)
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if !found || raw == "" {
		return s, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return s, fmt.Errorf("failed to parse settings record: %w", err)
	}

	decode := func(key string, dst any) {
		if msg, ok := fields[key]; ok {
			// A bad value leaves dst untouched.
			_ = json.Unmarshal(msg, dst)
		}
	}

	decode("background", &s.Background)
	decode("outerBackground", &s.OuterBackground)
	decode("pdfBackground", &s.PDFBackground)
	decode("pdfTextColor", &s.PDFTextColor)
	decode("brightness", &s.Brightness)
	decode("contrast", &s.Contrast)
	decode("fontSize", &s.FontSize)
	decode("fontFamily", &s.FontFamily)
	decode("margins", &s.Margins)
	decode("eyeProtection", &s.EyeProtection)

	return s.Normalize(), nil
}

// Save writes s to store as one JSON record.
func Save(store Store, s ReaderSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := store.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
