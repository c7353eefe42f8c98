package pagination

import (
	"fmt"
	"math"
)

// Share of the window the fullscreen page may occupy; the rest is left for
// the controls.
const (
	AvailableWidthRatio  = 0.98
	AvailableHeightRatio = 0.92
)

// Oversample is the factor between the fullscreen render resolution and the
// displayed size.
const Oversample = 2

// Size is a width and height, in CSS pixels for windows and in points for
// pages.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Layout describes how one fullscreen page is rendered and shown.
type Layout struct {
	// Scale is the display scale: fit-to-area times zoom.
	Scale float64 `json:"scale"`
	// RenderScale is the scale handed to the renderer.
	RenderScale float64 `json:"renderScale"`
	// Backing is the pixel size of the rendered bitmap.
	BackingWidth  int `json:"backingWidth"`
	BackingHeight int `json:"backingHeight"`
	// Display is the on-screen size, half of the backing size.
	DisplayWidth  float64 `json:"displayWidth"`
	DisplayHeight float64 `json:"displayHeight"`
	// Constrained pages are kept inside the available area; zoomed pages
	// overflow and scroll.
	Constrained bool `json:"constrained"`
}

// ComputeLayout fits page into the available part of window and applies zoom.
func ComputeLayout(window, page Size, zoom float64) (Layout, error) {
	if page.Width <= 0 || page.Height <= 0 {
		return Layout{}, fmt.Errorf("invalid page size %gx%g", page.Width, page.Height)
	}
	if window.Width <= 0 || window.Height <= 0 {
		return Layout{}, fmt.Errorf("invalid window size %gx%g", window.Width, window.Height)
	}

	availableWidth := window.Width * AvailableWidthRatio
	availableHeight := window.Height * AvailableHeightRatio

	base := math.Min(availableWidth/page.Width, availableHeight/page.Height)
	scale := base * zoom
	renderScale := scale * Oversample

	renderWidth := page.Width * renderScale
	renderHeight := page.Height * renderScale

	return Layout{
		Scale:         scale,
		RenderScale:   renderScale,
		BackingWidth:  int(renderWidth),
		BackingHeight: int(renderHeight),
		DisplayWidth:  renderWidth / Oversample,
		DisplayHeight: renderHeight / Oversample,
		Constrained:   zoom <= 1,
	}, nil
}
