package desktop

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/T-Bhaskar/ebook-v2/pkg/pagination"
	"github.com/T-Bhaskar/ebook-v2/pkg/theme"
	"github.com/T-Bhaskar/ebook-v2/pkg/viewer"
)

// Events sent to the front end.
const (
	EventPage            = "page:show"
	EventFullscreen      = "fullscreen:show"
	EventFullscreenClear = "fullscreen:clear"
	EventLoading         = "document:loading"
	EventDim             = "page:dim"
	EventOverlay         = "settings:overlay"
	EventPresentation    = "settings:presentation"
	EventExportProgress  = "export:progress"
)

// FrameQuality is the JPEG quality of frames sent to the front end.
const FrameQuality = 92

// Emitter sends one event to the front end.
type Emitter func(event string, payload any)

// PagePayload is the body of EventPage. An empty Image means a blank page.
type PagePayload struct {
	Page     int     `json:"page"`
	Total    int     `json:"total"`
	Progress float64 `json:"progress"`
	Image    string  `json:"image"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// FullscreenPayload is the body of EventFullscreen.
type FullscreenPayload struct {
	Page        int                `json:"page"`
	Total       int                `json:"total"`
	Image       string             `json:"image"`
	Layout      pagination.Layout  `json:"layout"`
	Surface     pagination.Surface `json:"surface"`
	ResetScroll bool               `json:"resetScroll"`
}

// EventDisplay shows viewer output by emitting events.
type EventDisplay struct {
	emit    Emitter
	logger  *slog.Logger
	quality int
}

// NewEventDisplay returns a display that emits through emit.
func NewEventDisplay(emit Emitter, logger *slog.Logger) *EventDisplay {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EventDisplay{emit: emit, logger: logger, quality: FrameQuality}
}

func (d *EventDisplay) ShowPage(f viewer.Frame) {
	payload := PagePayload{Page: f.Page, Total: f.Total, Progress: f.Progress}
	if f.Image != nil {
		payload.Image = d.encode(f.Image)
		payload.Width = f.Image.Bounds().Dx()
		payload.Height = f.Image.Bounds().Dy()
	}
	d.emit(EventPage, payload)
}

func (d *EventDisplay) ShowFullscreen(f viewer.FullscreenFrame) {
	payload := FullscreenPayload{
		Page:        f.Page,
		Total:       f.Total,
		Layout:      f.Layout,
		Surface:     f.Surface,
		ResetScroll: f.ResetScroll,
	}
	if f.Image != nil {
		payload.Image = d.encode(f.Image)
	}
	d.emit(EventFullscreen, payload)
}

func (d *EventDisplay) ClearFullscreen() {
	d.emit(EventFullscreenClear, nil)
}

func (d *EventDisplay) ShowLoading(on bool) {
	d.emit(EventLoading, on)
}

func (d *EventDisplay) Dim(on bool) {
	d.emit(EventDim, on)
}

func (d *EventDisplay) SetOverlay(open bool) {
	d.emit(EventOverlay, open)
}

func (d *EventDisplay) ApplyPresentation(p theme.Presentation) {
	d.emit(EventPresentation, p)
}

// encode returns img as a data URL, or "" when encoding fails.
func (d *EventDisplay) encode(img image.Image) string {
	url, err := EncodeDataURL(img, d.quality)
	if err != nil {
		d.logger.Error("failed to encode frame", "error", err)
		return ""
	}
	return url
}

// EncodeDataURL encodes img as a base64 JPEG data URL.
func EncodeDataURL(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return "", fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
