package desktop

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/T-Bhaskar/ebook-v2/internal/config"
	"github.com/T-Bhaskar/ebook-v2/pkg/pagination"
	"github.com/T-Bhaskar/ebook-v2/pkg/theme"
	"github.com/T-Bhaskar/ebook-v2/pkg/viewer"
)

type event struct {
	name    string
	payload any
}

type recorder struct {
	events []event
}

func (r *recorder) emit(name string, payload any) {
	r.events = append(r.events, event{name: name, payload: payload})
}

func decodeDataURL(t *testing.T, url string) image.Image {
	t.Helper()
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("unexpected data URL prefix: %.40q", url)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("jpeg decode: %v", err)
	}
	return img
}

func TestShowPage(t *testing.T) {
	rec := &recorder{}
	d := NewEventDisplay(rec.emit, nil)

	d.ShowPage(viewer.Frame{Page: 3, Total: 10, Progress: 30, Image: image.NewRGBA(image.Rect(0, 0, 16, 8))})
	d.ShowPage(viewer.Frame{Page: 4, Total: 10, Progress: 40})

	if len(rec.events) != 2 {
		t.Fatalf("events = %d, expected 2", len(rec.events))
	}

	first := rec.events[0].payload.(PagePayload)
	if rec.events[0].name != EventPage || first.Page != 3 || first.Width != 16 || first.Height != 8 {
		t.Errorf("first payload = %+v", first)
	}
	if b := decodeDataURL(t, first.Image).Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("decoded size = %dx%d", b.Dx(), b.Dy())
	}

	blank := rec.events[1].payload.(PagePayload)
	if diff := cmp.Diff(PagePayload{Page: 4, Total: 10, Progress: 40}, blank); diff != "" {
		t.Errorf("blank payload mismatch (-want +got):\n%s", diff)
	}
}

func TestShowFullscreen(t *testing.T) {
	rec := &recorder{}
	d := NewEventDisplay(rec.emit, nil)
	layout := pagination.Layout{Scale: 1.5, RenderScale: 3, BackingWidth: 20, BackingHeight: 10}

	d.ShowFullscreen(viewer.FullscreenFrame{
		Page:        2,
		Total:       5,
		Image:       image.NewRGBA(image.Rect(0, 0, 20, 10)),
		Layout:      layout,
		Surface:     7,
		ResetScroll: true,
	})
	d.ClearFullscreen()

	got := rec.events[0].payload.(FullscreenPayload)
	if got.Surface != 7 || !got.ResetScroll || got.Layout != layout || got.Image == "" {
		t.Errorf("payload = %+v", got)
	}
	if rec.events[1].name != EventFullscreenClear {
		t.Errorf("second event = %q", rec.events[1].name)
	}
}

func TestStateEvents(t *testing.T) {
	rec := &recorder{}
	d := NewEventDisplay(rec.emit, nil)

	d.ShowLoading(true)
	d.Dim(true)
	d.SetOverlay(false)
	d.ApplyPresentation(theme.Presentation{PageBackground: "#fff"})

	var names []string
	for _, e := range rec.events {
		names = append(names, e.name)
	}
	want := []string{EventLoading, EventDim, EventOverlay, EventPresentation}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestAppBeforeStartup(t *testing.T) {
	app := NewApp(&config.Config{Logger: config.NewLogger(&bytes.Buffer{}, false)}, "")

	if err := app.Next(); !errors.Is(err, errNotReady) {
		t.Errorf("Next() error = %v, expected errNotReady", err)
	}
	if err := app.Command("next"); !errors.Is(err, errNotReady) {
		t.Errorf("Command(next) error = %v, expected errNotReady", err)
	}
	if err := app.Command("jump"); err == nil || errors.Is(err, errNotReady) {
		t.Errorf("Command(jump) error = %v, expected unknown command", err)
	}
	if _, err := app.Status(); !errors.Is(err, errNotReady) {
		t.Errorf("Status() error = %v, expected errNotReady", err)
	}
	if app.ToggleSettings() {
		t.Error("ToggleSettings() before startup should report closed")
	}

	palettes, err := app.Palettes()
	if err != nil {
		t.Fatalf("Palettes() error = %v", err)
	}
	if len(palettes["pdf-text"]) != 6 || len(palettes["page"]) != 5 {
		t.Errorf("palettes = %v", palettes)
	}
}
