// Package viewer ties the reader together: it owns the settings, the open
// document and the pagination controller, and turns user input into page
// renders on a Display.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/T-Bhaskar/ebook-v2/pkg/document"
	"github.com/T-Bhaskar/ebook-v2/pkg/export"
	"github.com/T-Bhaskar/ebook-v2/pkg/input"
	"github.com/T-Bhaskar/ebook-v2/pkg/pagination"
	"github.com/T-Bhaskar/ebook-v2/pkg/progress"
	"github.com/T-Bhaskar/ebook-v2/pkg/settings"
	"github.com/T-Bhaskar/ebook-v2/pkg/theme"
)

// Defaults for Options.
const (
	DefaultDimDelay  = 200 * time.Millisecond
	DefaultMainScale = 3.2
)

// DefaultWindow is the window size assumed until the host reports one.
var DefaultWindow = pagination.Size{Width: 1400, Height: 900}

// Document is an open PDF.
type Document interface {
	PageCount() int
	PageSize(n int) (document.Size, error)
	Render(n int, scale float64) (*image.RGBA, error)
	Close() error
}

// Opener decodes PDF bytes into a Document.
type Opener func(data []byte) (Document, error)

// EngineOpener opens documents through e.
func EngineOpener(e *document.Engine) Opener {
	return func(data []byte) (Document, error) {
		doc, err := e.Open(data)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
}

// Frame is one normal view page. A nil Image leaves the page blank.
type Frame struct {
	Page     int
	Total    int
	Progress float64
	Image    *image.RGBA
}

// FullscreenFrame is one fullscreen page drawn on a new scroll surface.
type FullscreenFrame struct {
	Page        int
	Total       int
	Image       *image.RGBA
	Layout      pagination.Layout
	Surface     pagination.Surface
	ResetScroll bool
}

// Display shows what the viewer produces.
type Display interface {
	ShowPage(f Frame)
	ShowFullscreen(f FullscreenFrame)
	ClearFullscreen()
	ShowLoading(on bool)
	Dim(on bool)
	SetOverlay(open bool)
	ApplyPresentation(p theme.Presentation)
}

// Notifier shows blocking messages.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Exporter writes customized copies of a document.
type Exporter interface {
	Export(ctx context.Context, src export.Source, opts export.Options) (export.Result, error)
}

// Options configure a Viewer. Display and Opener are required.
type Options struct {
	Display  Display
	Opener   Opener
	Notifier Notifier
	Store    settings.Store
	Exporter Exporter
	Logger   *slog.Logger
	// ExportDir receives exports. Empty means the working directory.
	ExportDir string
	// DimDelay is how long the page stays dimmed on a normal page turn.
	DimDelay time.Duration
	// MainScale times the font size multiplier is the normal view scale.
	MainScale    float64
	ScrollSettle time.Duration
}

// Session is the open document.
type Session struct {
	ID    string
	Title string
	Path  string
	Doc   Document
}

// Viewer is the reader. Its methods are safe for concurrent use.
type Viewer struct {
	opts       Options
	display    Display
	notifier   Notifier
	logger     *slog.Logger
	controller *pagination.Controller
	commands   map[input.Command]func(context.Context) error

	openMu sync.Mutex

	mu       sync.RWMutex
	settings settings.ReaderSettings
	session  *Session
	overlay  bool
	window   pagination.Size
	swipe    input.Swipe
}

// New builds a Viewer and loads the saved settings. A settings load error
// is logged and the defaults are used.
func New(opts Options) (*Viewer, error) {
	if opts.Display == nil {
		return nil, errors.New("viewer needs a display")
	}
	if opts.Opener == nil {
		return nil, errors.New("viewer needs a document opener")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Store == nil {
		opts.Store = settings.NewMemoryStore()
	}
	if opts.Exporter == nil {
		opts.Exporter = export.New(opts.Logger)
	}
	if opts.DimDelay < 0 {
		opts.DimDelay = 0
	} else if opts.DimDelay == 0 {
		opts.DimDelay = DefaultDimDelay
	}
	if opts.MainScale <= 0 {
		opts.MainScale = DefaultMainScale
	}

	v := &Viewer{
		opts:     opts,
		display:  opts.Display,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		window:   DefaultWindow,
	}

	s, err := settings.Load(opts.Store)
	if err != nil {
		v.logger.Warn("failed to load settings, using defaults", "error", err)
	}
	v.settings = s

	v.controller = pagination.New(&pageRenderer{v: v}, pagination.Options{
		ScrollSettle: opts.ScrollSettle,
		OnScrollError: func(err error) {
			v.fail(context.Background(), err)
		},
	})

	v.commands = map[input.Command]func(context.Context) error{
		input.Previous:         v.Previous,
		input.Next:             v.Next,
		input.First:            v.First,
		input.Last:             v.Last,
		input.Escape:           v.Escape,
		input.ToggleFullscreen: v.ToggleFullscreen,
	}

	v.display.ApplyPresentation(s.Presentation())
	return v, nil
}

// fail logs err, shows its notice and returns it.
func (v *Viewer) fail(ctx context.Context, err error) error {
	v.logger.Error("reader error", "error", err)
	v.notify(ctx, NoticeFor(err))
	return err
}

func (v *Viewer) notify(ctx context.Context, n Notice) {
	if v.notifier != nil {
		v.notifier.Notify(ctx, n)
	}
}

// OpenFile reads, validates and opens the PDF at path.
func (v *Viewer) OpenFile(ctx context.Context, path string) error {
	data, err := document.ReadFile(path)
	if err != nil {
		if errors.Is(err, document.ErrNotPDF) {
			return v.fail(ctx, newError(InvalidFileType, "open", path, err))
		}
		return v.fail(ctx, newError(DecodeFailure, "open", path, err))
	}
	return v.open(ctx, filepath.Base(path), path, data)
}

// OpenBytes opens a PDF received without a path, such as a dropped file.
func (v *Viewer) OpenBytes(ctx context.Context, name string, data []byte) error {
	if err := document.Validate(data); err != nil {
		return v.fail(ctx, newError(InvalidFileType, "open", name, err))
	}
	return v.open(ctx, name, "", data)
}

// open decodes data, replaces the session and renders page 1. The previous
// document is closed once the controller has moved to the new one.
func (v *Viewer) open(ctx context.Context, name, path string, data []byte) error {
	v.openMu.Lock()
	defer v.openMu.Unlock()

	label := path
	if label == "" {
		label = name
	}

	v.display.ShowLoading(true)
	doc, err := v.opts.Opener(data)
	v.display.ShowLoading(false)
	if err != nil {
		return v.fail(ctx, newError(DecodeFailure, "decode", label, err))
	}

	sess := &Session{
		ID:    uuid.NewString(),
		Title: TitleFromName(name),
		Path:  path,
		Doc:   doc,
	}

	v.mu.Lock()
	old := v.session
	v.session = sess
	v.mu.Unlock()

	v.logger.Info("document opened", "session", sess.ID, "title", sess.Title, "pages", doc.PageCount())

	_, renderErr := v.controller.Load(ctx, doc.PageCount())

	if old != nil {
		if err := old.Doc.Close(); err != nil {
			v.logger.Warn("failed to close previous document", "session", old.ID, "error", err)
		}
	}

	if renderErr != nil {
		return v.fail(ctx, renderErr)
	}
	return nil
}

// TitleFromName strips a .pdf extension from a file name.
func TitleFromName(name string) string {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".pdf") {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// Session returns a copy of the open session, or false when nothing is open.
func (v *Viewer) Session() (Session, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.session == nil {
		return Session{}, false
	}
	return *v.session, true
}

func (v *Viewer) loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.session != nil
}

// navigate runs a controller transition and surfaces its error.
func (v *Viewer) navigate(ctx context.Context, step func(context.Context) (bool, error)) error {
	if _, err := step(ctx); err != nil {
		return v.fail(ctx, err)
	}
	return nil
}

// Next turns to the following page.
func (v *Viewer) Next(ctx context.Context) error {
	return v.navigate(ctx, v.controller.Next)
}

// Previous turns to the preceding page.
func (v *Viewer) Previous(ctx context.Context) error {
	return v.navigate(ctx, v.controller.Previous)
}

// First jumps to page 1.
func (v *Viewer) First(ctx context.Context) error {
	return v.navigate(ctx, v.controller.First)
}

// Last jumps to the final page.
func (v *Viewer) Last(ctx context.Context) error {
	return v.navigate(ctx, v.controller.Last)
}

// GoTo jumps to page n.
func (v *Viewer) GoTo(ctx context.Context, n int) error {
	return v.navigate(ctx, func(ctx context.Context) (bool, error) {
		return v.controller.GoTo(ctx, n)
	})
}

// Dispatch runs cmd.
func (v *Viewer) Dispatch(ctx context.Context, cmd input.Command) error {
	fn, ok := v.commands[cmd]
	if !ok {
		return nil
	}
	return fn(ctx)
}

// HandleKey maps a key press to a command. Keys are ignored until a
// document is open.
func (v *Viewer) HandleKey(ctx context.Context, key string, ctrl, meta bool) error {
	if !v.loaded() {
		return nil
	}
	return v.Dispatch(ctx, input.CommandForKey(key, ctrl, meta))
}

// SwipeStart begins a touch gesture.
func (v *Viewer) SwipeStart(x, y float64) {
	v.mu.Lock()
	v.swipe.Start(x, y)
	v.mu.Unlock()
}

// SwipeMove records an intermediate touch point.
func (v *Viewer) SwipeMove(x, y float64) {
	v.mu.Lock()
	v.swipe.Move(x, y)
	v.mu.Unlock()
}

// SwipeEnd finishes a touch gesture and turns the page when it was a swipe.
func (v *Viewer) SwipeEnd(ctx context.Context, x, y float64) error {
	v.mu.Lock()
	cmd := v.swipe.End(x, y)
	v.mu.Unlock()
	return v.Dispatch(ctx, cmd)
}

// Click handles a click at x on a page of the given width.
func (v *Viewer) Click(ctx context.Context, x, width float64) error {
	return v.Dispatch(ctx, input.ClickZone(x, width))
}

// ToggleFullscreen enters fullscreen reading, or leaves it.
func (v *Viewer) ToggleFullscreen(ctx context.Context) error {
	if v.controller.Status().Fullscreen {
		v.controller.ExitFullscreen()
		return nil
	}
	return v.EnterFullscreen(ctx)
}

// EnterFullscreen shows the current page fullscreen.
func (v *Viewer) EnterFullscreen(ctx context.Context) error {
	if !v.loaded() {
		return v.fail(ctx, newError(NoDocument, "fullscreen", "", errNoDocument))
	}
	v.mu.RLock()
	window := v.window
	v.mu.RUnlock()
	return v.navigate(ctx, func(ctx context.Context) (bool, error) {
		return v.controller.EnterFullscreen(ctx, window)
	})
}

// ExitFullscreen leaves fullscreen reading.
func (v *Viewer) ExitFullscreen() bool {
	return v.controller.ExitFullscreen()
}

// Escape leaves fullscreen, or closes the settings overlay.
func (v *Viewer) Escape(ctx context.Context) error {
	if v.controller.ExitFullscreen() {
		return nil
	}
	v.CloseOverlay()
	return nil
}

// Resize records the window size used by later fullscreen renders.
func (v *Viewer) Resize(window pagination.Size) {
	if window.Width <= 0 || window.Height <= 0 {
		return
	}
	v.mu.Lock()
	v.window = window
	v.mu.Unlock()
	v.controller.Resize(window)
}

// ZoomIn raises the fullscreen zoom one step.
func (v *Viewer) ZoomIn(ctx context.Context) (float64, error) {
	return v.zoom(ctx, v.controller.ZoomIn)
}

// ZoomOut lowers the fullscreen zoom one step.
func (v *Viewer) ZoomOut(ctx context.Context) (float64, error) {
	return v.zoom(ctx, v.controller.ZoomOut)
}

// SetZoom sets the fullscreen zoom.
func (v *Viewer) SetZoom(ctx context.Context, z float64) (float64, error) {
	return v.zoom(ctx, func(ctx context.Context) (float64, error) {
		return v.controller.SetZoom(ctx, z)
	})
}

func (v *Viewer) zoom(ctx context.Context, fn func(context.Context) (float64, error)) (float64, error) {
	z, err := fn(ctx)
	if err != nil {
		return z, v.fail(ctx, err)
	}
	return z, nil
}

// Scroll forwards a scroll sample from a fullscreen surface.
func (v *Viewer) Scroll(surface pagination.Surface, sample pagination.ScrollSample) bool {
	return v.controller.Scroll(surface, sample)
}

// ToggleSettings opens or closes the settings overlay.
func (v *Viewer) ToggleSettings() bool {
	v.mu.Lock()
	v.overlay = !v.overlay
	open := v.overlay
	v.mu.Unlock()
	v.display.SetOverlay(open)
	return open
}

// CloseOverlay closes the settings overlay if it is open.
func (v *Viewer) CloseOverlay() {
	v.mu.Lock()
	wasOpen := v.overlay
	v.overlay = false
	v.mu.Unlock()
	if wasOpen {
		v.display.SetOverlay(false)
	}
}

// Settings returns the current settings.
func (v *Viewer) Settings() settings.ReaderSettings {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.settings
}

// UpdateSettings applies a partial update keyed by JSON field name, saves
// the result and refreshes what it affects.
func (v *Viewer) UpdateSettings(ctx context.Context, patch map[string]any) (settings.ReaderSettings, error) {
	v.mu.Lock()
	next, change := v.settings.Apply(patch)
	v.settings = next
	v.mu.Unlock()

	return next, v.settingsChanged(ctx, next, change)
}

// ResetSettings restores the defaults.
func (v *Viewer) ResetSettings(ctx context.Context) (settings.ReaderSettings, error) {
	next := settings.Defaults()
	v.mu.Lock()
	prev := v.settings
	v.settings = next
	v.mu.Unlock()

	change := settings.Change{
		Theme: prev != next,
		Render: prev.PDFBackground != next.PDFBackground ||
			prev.PDFTextColor != next.PDFTextColor ||
			prev.FontSize != next.FontSize,
	}
	return next, v.settingsChanged(ctx, next, change)
}

func (v *Viewer) settingsChanged(ctx context.Context, s settings.ReaderSettings, change settings.Change) error {
	if !change.Theme {
		return nil
	}
	if err := settings.Save(v.opts.Store, s); err != nil {
		v.logger.Warn("failed to save settings", "error", err)
	}
	v.display.ApplyPresentation(s.Presentation())
	if change.Render {
		return v.navigate(ctx, v.controller.Refresh)
	}
	return nil
}

// ExportRequest selects what Export writes.
type ExportRequest struct {
	// Dir overrides the configured export directory.
	Dir    string
	Format export.Format
	// Pages selects pages, for example "1-3,7". Empty exports all pages.
	Pages string
	// BakeDisplay writes brightness, contrast and eye protection into the
	// page bitmaps.
	BakeDisplay bool
	Validate    bool
	Progress    progress.Sink
}

// Export writes a customized copy of the open document.
func (v *Viewer) Export(ctx context.Context, req ExportRequest) (export.Result, error) {
	v.mu.RLock()
	sess := v.session
	s := v.settings
	v.mu.RUnlock()

	if sess == nil {
		return export.Result{}, v.fail(ctx, newError(NoDocument, "export", "", errNoDocument))
	}

	dir := req.Dir
	if dir == "" {
		dir = v.opts.ExportDir
	}
	opts := export.Options{
		Title:    sess.Title,
		Dir:      dir,
		Targets:  s.Targets(),
		Format:   req.Format,
		Pages:    req.Pages,
		Validate: req.Validate,
		Progress: req.Progress,
	}
	if req.BakeDisplay {
		filter := s.DisplayFilter()
		opts.Display = &filter
	}

	res, err := v.opts.Exporter.Export(ctx, sess.Doc, opts)
	if err != nil {
		return export.Result{}, v.fail(ctx, newError(ExportFailure, "export", sess.Path, err))
	}

	v.notify(ctx, Notice{
		Title:   "Export complete",
		Message: fmt.Sprintf("PDF exported successfully!\n%s", res.Summary()),
	})
	return res, nil
}

// Status describes the reader.
type Status struct {
	pagination.Status
	Loaded    bool   `json:"loaded"`
	SessionID string `json:"sessionId,omitempty"`
	Title     string `json:"title,omitempty"`
	Overlay   bool   `json:"overlay"`
}

// Status returns a snapshot of the reader.
func (v *Viewer) Status() Status {
	st := Status{Status: v.controller.Status()}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.session != nil {
		st.Loaded = true
		st.SessionID = v.session.ID
		st.Title = v.session.Title
	}
	st.Overlay = v.overlay
	return st
}

// Close leaves fullscreen and closes the open document.
func (v *Viewer) Close() error {
	v.controller.ExitFullscreen()

	v.openMu.Lock()
	defer v.openMu.Unlock()
	v.mu.Lock()
	sess := v.session
	v.session = nil
	v.mu.Unlock()

	if sess == nil {
		return nil
	}
	// Waits out a render that may still hold the document.
	if _, err := v.controller.Load(context.Background(), 0); err != nil {
		v.logger.Warn("failed to reset pagination", "error", err)
	}
	if err := sess.Doc.Close(); err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}
	return nil
}
