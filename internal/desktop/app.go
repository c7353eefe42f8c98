// Package desktop runs the reader in a Wails window. The App methods are
// bound to the web front end.
package desktop

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/T-Bhaskar/ebook-v2/internal/config"
	"github.com/T-Bhaskar/ebook-v2/internal/store"
	"github.com/T-Bhaskar/ebook-v2/pkg/document"
	"github.com/T-Bhaskar/ebook-v2/pkg/export"
	"github.com/T-Bhaskar/ebook-v2/pkg/input"
	"github.com/T-Bhaskar/ebook-v2/pkg/pagination"
	"github.com/T-Bhaskar/ebook-v2/pkg/progress"
	"github.com/T-Bhaskar/ebook-v2/pkg/settings"
	"github.com/T-Bhaskar/ebook-v2/pkg/theme"
	"github.com/T-Bhaskar/ebook-v2/pkg/viewer"
)

var errNotReady = errors.New("reader is not initialized")

// App is the bound application object.
type App struct {
	ctx         context.Context
	cfg         *config.Config
	logger      *slog.Logger
	initialFile string
	exportDir   string

	engine *document.Engine
	store  *store.Store
	viewer *viewer.Viewer
}

// NewApp returns an App that opens initialFile, if set, once the window is
// ready.
func NewApp(cfg *config.Config, initialFile string) *App {
	return &App{
		cfg:         cfg,
		logger:      cfg.Logger,
		initialFile: initialFile,
		exportDir:   cfg.ExportDir,
	}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	if err := a.init(); err != nil {
		a.logger.Error("failed to start reader", "error", err)
		wailsruntime.MessageDialog(ctx, wailsruntime.MessageDialogOptions{
			Type:    wailsruntime.ErrorDialog,
			Title:   "Startup failed",
			Message: err.Error(),
		})
	}
}

func (a *App) init() error {
	engine, err := document.NewEngine(document.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to start PDF engine: %w", err)
	}
	a.engine = engine

	var st settings.Store
	db, err := store.Open(a.cfg.DatabasePath)
	if err != nil {
		a.logger.Warn("settings will not persist", "error", err)
		st = settings.NewMemoryStore()
	} else {
		a.store = db
		st = db
	}

	v, err := viewer.New(viewer.Options{
		Display:   NewEventDisplay(a.emit, a.logger),
		Opener:    viewer.EngineOpener(engine),
		Notifier:  &dialogNotifier{app: a, logger: a.logger},
		Store:     st,
		Exporter:  export.New(a.logger),
		Logger:    a.logger,
		ExportDir: a.exportDir,
	})
	if err != nil {
		return err
	}
	a.viewer = v

	a.logger.Info("reader started", "database", a.cfg.DatabasePath, "export_dir", a.exportDir)
	return nil
}

func (a *App) domReady(ctx context.Context) {
	if a.viewer == nil || a.initialFile == "" {
		return
	}
	// Errors are already shown to the user.
	a.viewer.OpenFile(ctx, a.initialFile)
}

func (a *App) shutdown(ctx context.Context) {
	if a.viewer != nil {
		if err := a.viewer.Close(); err != nil {
			a.logger.Warn("failed to close document", "error", err)
		}
	}
	if a.engine != nil {
		if err := a.engine.Close(); err != nil {
			a.logger.Warn("failed to stop PDF engine", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close settings store", "error", err)
		}
	}
}

func (a *App) emit(event string, payload any) {
	if a.ctx == nil {
		return
	}
	wailsruntime.EventsEmit(a.ctx, event, payload)
}

// ready returns the viewer once startup has completed.
func (a *App) ready() (*viewer.Viewer, error) {
	if a.viewer == nil {
		return nil, errNotReady
	}
	return a.viewer, nil
}

// OpenPDF asks for a PDF and opens it. Cancelling the dialog is not an error.
func (a *App) OpenPDF() error {
	v, err := a.ready()
	if err != nil {
		return err
	}
	path, err := wailsruntime.OpenFileDialog(a.ctx, wailsruntime.OpenDialogOptions{
		Title: "Open PDF",
		Filters: []wailsruntime.FileFilter{
			{DisplayName: "PDF Files (*.pdf)", Pattern: "*.pdf"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to show open dialog: %w", err)
	}
	if path == "" {
		return nil
	}
	return v.OpenFile(a.ctx, path)
}

// OpenPath opens the PDF at path.
func (a *App) OpenPath(path string) error {
	v, err := a.ready()
	if err != nil {
		return err
	}
	return v.OpenFile(a.ctx, path)
}

// OpenData opens a dropped file sent as base64.
func (a *App) OpenData(name, data string) error {
	v, err := a.ready()
	if err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("failed to decode dropped file: %w", err)
	}
	return v.OpenBytes(a.ctx, name, raw)
}

// Command runs a reader command by name, such as "next" or
// "toggle-fullscreen".
func (a *App) Command(name string) error {
	cmd, ok := input.ParseCommand(name)
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	v, err := a.ready()
	if err != nil {
		return err
	}
	return v.Dispatch(a.ctx, cmd)
}

// Next turns to the following page.
func (a *App) Next() error {
	return a.run((*viewer.Viewer).Next)
}

// Previous turns to the preceding page.
func (a *App) Previous() error {
	return a.run((*viewer.Viewer).Previous)
}

// First jumps to page 1.
func (a *App) First() error {
	return a.run((*viewer.Viewer).First)
}

// Last jumps to the final page.
func (a *App) Last() error {
	return a.run((*viewer.Viewer).Last)
}

// GoTo jumps to page n.
func (a *App) GoTo(n int) error {
	v, err := a.ready()
	if err != nil {
		return err
	}
	return v.GoTo(a.ctx, n)
}

func (a *App) run(fn func(*viewer.Viewer, context.Context) error) error {
	v, err := a.ready()
	if err != nil {
		return err
	}
	return fn(v, a.ctx)
}

// KeyDown handles a key press. key is the DOM KeyboardEvent.key value.
func (a *App) KeyDown(key string, ctrl, meta bool) error {
	v, err := a.ready()
	if err != nil {
		return err
	}
	return v.HandleKey(a.ctx, key, ctrl, meta)
}

// TouchStart begins a swipe.
func (a *App) TouchStart(x, y float64) {
	if v, err := a.ready(); err == nil {
		v.SwipeStart(x, y)
	}
}

// TouchMove continues a swipe.
func (a *App) TouchMove(x, y float64) {
	if v, err := a.ready(); err == nil {
		v.SwipeMove(x, y)
	}
}

// TouchEnd finishes a swipe.
func (a *App) TouchEnd(x, y float64) error {
	v, err := a.ready()
	if err != nil {
		return err
	}
	return v.SwipeEnd(a.ctx, x, y)
}

// ClickPage handles a click at x on a page of the given width.
func (a *App) ClickPage(x, width float64) error {
	v, err := a.ready()
	if err != nil {
		return err
	}
	return v.Click(a.ctx, x, width)
}

// ToggleFullscreen enters or leaves fullscreen reading.
func (a *App) ToggleFullscreen() error {
	return a.run((*viewer.Viewer).ToggleFullscreen)
}

// ExitFullscreen leaves fullscreen reading.
func (a *App) ExitFullscreen() bool {
	v, err := a.ready()
	if err != nil {
		return false
	}
	return v.ExitFullscreen()
}

// ZoomIn raises the fullscreen zoom.
func (a *App) ZoomIn() (float64, error) {
	v, err := a.ready()
	if err != nil {
		return 0, err
	}
	return v.ZoomIn(a.ctx)
}

// ZoomOut lowers the fullscreen zoom.
func (a *App) ZoomOut() (float64, error) {
	v, err := a.ready()
	if err != nil {
		return 0, err
	}
	return v.ZoomOut(a.ctx)
}

// SetZoom sets the fullscreen zoom.
func (a *App) SetZoom(z float64) (float64, error) {
	v, err := a.ready()
	if err != nil {
		return 0, err
	}
	return v.SetZoom(a.ctx, z)
}

// Scroll reports a scroll sample from the fullscreen surface.
func (a *App) Scroll(surface uint64, sample pagination.ScrollSample) bool {
	v, err := a.ready()
	if err != nil {
		return false
	}
	return v.Scroll(pagination.Surface(surface), sample)
}

// Resize reports the window size in CSS pixels.
func (a *App) Resize(width, height float64) {
	if v, err := a.ready(); err == nil {
		v.Resize(pagination.Size{Width: width, Height: height})
	}
}

// ToggleSettings opens or closes the settings overlay.
func (a *App) ToggleSettings() bool {
	v, err := a.ready()
	if err != nil {
		return false
	}
	return v.ToggleSettings()
}

// CloseSettings closes the settings overlay.
func (a *App) CloseSettings() {
	if v, err := a.ready(); err == nil {
		v.CloseOverlay()
	}
}

// GetSettings returns the reader settings.
func (a *App) GetSettings() (settings.ReaderSettings, error) {
	v, err := a.ready()
	if err != nil {
		return settings.Defaults(), err
	}
	return v.Settings(), nil
}

// UpdateSettings applies a partial settings update.
func (a *App) UpdateSettings(patch map[string]any) (settings.ReaderSettings, error) {
	v, err := a.ready()
	if err != nil {
		return settings.Defaults(), err
	}
	return v.UpdateSettings(a.ctx, patch)
}

// ResetSettings restores the default settings.
func (a *App) ResetSettings() (settings.ReaderSettings, error) {
	v, err := a.ready()
	if err != nil {
		return settings.Defaults(), err
	}
	return v.ResetSettings(a.ctx)
}

// Palettes lists the selectable ids per settings group.
func (a *App) Palettes() (map[string][]string, error) {
	palettes := make(map[string][]string)
	for _, group := range []string{"page", "outer", "pdf-background", "pdf-text"} {
		names, err := theme.Names(group)
		if err != nil {
			return nil, err
		}
		palettes[group] = names
	}
	return palettes, nil
}

// ExportRequest is sent by the export panel.
type ExportRequest struct {
	Format      string `json:"format"`
	Pages       string `json:"pages"`
	BakeDisplay bool   `json:"bakeDisplay"`
}

// ExportPDF writes a customized copy to the export directory. Progress is
// reported through EventExportProgress.
func (a *App) ExportPDF(req ExportRequest) (export.Result, error) {
	v, err := a.ready()
	if err != nil {
		return export.Result{}, err
	}
	format := export.FormatPDF
	if req.Format != "" {
		if format, err = export.ParseFormat(req.Format); err != nil {
			return export.Result{}, err
		}
	}
	return v.Export(a.ctx, viewer.ExportRequest{
		Dir:         a.exportDir,
		Format:      format,
		Pages:       req.Pages,
		BakeDisplay: req.BakeDisplay,
		Progress: func(e progress.Event) {
			a.emit(EventExportProgress, e)
		},
	})
}

// ChooseExportDir asks for the export directory. An empty result keeps the
// current one.
func (a *App) ChooseExportDir() (string, error) {
	dir, err := wailsruntime.OpenDirectoryDialog(a.ctx, wailsruntime.OpenDialogOptions{
		Title:            "Select export folder",
		DefaultDirectory: a.exportDir,
	})
	if err != nil {
		return a.exportDir, fmt.Errorf("failed to show folder dialog: %w", err)
	}
	if dir != "" {
		a.exportDir = dir
	}
	return a.exportDir, nil
}

// Status describes the reader.
func (a *App) Status() (viewer.Status, error) {
	v, err := a.ready()
	if err != nil {
		return viewer.Status{}, err
	}
	return v.Status(), nil
}

// ToggleWindowFullscreen switches the window in and out of fullscreen.
func (a *App) ToggleWindowFullscreen() {
	if wailsruntime.WindowIsFullscreen(a.ctx) {
		wailsruntime.WindowUnfullscreen(a.ctx)
		return
	}
	wailsruntime.WindowFullscreen(a.ctx)
}

func (a *App) about() {
	wailsruntime.MessageDialog(a.ctx, wailsruntime.MessageDialogOptions{
		Type:    wailsruntime.InfoDialog,
		Title:   "About " + WindowTitle,
		Message: "A distraction-free PDF reader with paper-like themes.\nVersion " + Version,
	})
}
