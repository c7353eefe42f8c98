// Package pagination tracks the current page of a document and drives page
// renders, including fullscreen zoom and scroll-edge page turns.
//
// A single render may be in flight at a time. Requests that arrive while one
// is running are dropped, not queued.
package pagination

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/samber/lo"
)

// Zoom limits and step.
const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	DefaultZoom = 1.0
	ZoomStep    = 0.1
)

// Scroll-edge pagination defaults.
const (
	DefaultScrollSettle = 150 * time.Millisecond
	DefaultEdgeMargin   = 50.0
)

// RenderRequest describes one page render.
type RenderRequest struct {
	Page       int
	Total      int
	Fullscreen bool
	Zoom       float64
	// Window is the viewport size recorded on fullscreen entry.
	Window Size
	// Surface is the scroll container the fullscreen render must create.
	Surface     Surface
	ResetScroll bool
	Reason      Reason
}

// Renderer draws pages for the controller.
type Renderer interface {
	// RenderPage draws req.Page in the mode given by req.Fullscreen.
	RenderPage(ctx context.Context, req RenderRequest) error
	// ClearFullscreen removes everything drawn on the fullscreen surface.
	ClearFullscreen()
}

// Options tune a Controller. Zero values select the defaults.
type Options struct {
	ScrollSettle time.Duration
	EdgeMargin   float64
	// OnScrollError receives render errors from scroll-triggered page turns,
	// which have no caller to return them to.
	OnScrollError func(error)
}

// Controller is the pagination state machine.
type Controller struct {
	renderer Renderer
	opts     Options
	debounce func(func())

	mu          sync.Mutex
	idle        *sync.Cond
	total       int
	current     int
	zoom        float64
	rendering   bool
	fullscreen  bool
	enteredFrom int
	window      Size
	surface     Surface
	nextSurface Surface
	sample      ScrollSample
	sampleOf    Surface
	scrollCtx   context.Context
}

// New returns a Controller that renders through r.
func New(r Renderer, opts Options) *Controller {
	if opts.ScrollSettle <= 0 {
		opts.ScrollSettle = DefaultScrollSettle
	}
	if opts.EdgeMargin <= 0 {
		opts.EdgeMargin = DefaultEdgeMargin
	}
	c := &Controller{
		renderer: r,
		opts:     opts,
		debounce: debounce.New(opts.ScrollSettle),
		zoom:     DefaultZoom,
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// Load resets the controller to page 1 of a document with total pages and
// renders it. Unlike navigation, Load waits for an in-flight render to
// finish instead of being dropped. Zoom and fullscreen mode are kept.
func (c *Controller) Load(ctx context.Context, total int) (bool, error) {
	if total < 0 {
		return false, fmt.Errorf("invalid page count %d", total)
	}

	c.mu.Lock()
	for c.rendering {
		c.idle.Wait()
	}
	c.total = total
	c.current = 0
	if total > 0 {
		c.current = 1
	}
	c.enteredFrom = c.current
	if total == 0 {
		c.mu.Unlock()
		return false, nil
	}
	req := c.begin(ReasonLoad)
	c.mu.Unlock()

	return true, c.run(ctx, req)
}

// Next turns to the following page.
func (c *Controller) Next(ctx context.Context) (bool, error) {
	return c.move(ctx, ReasonTurn, func() int { return c.current + 1 })
}

// Previous turns to the preceding page.
func (c *Controller) Previous(ctx context.Context) (bool, error) {
	return c.move(ctx, ReasonTurn, func() int { return c.current - 1 })
}

// GoTo jumps to page n. Out of range pages and the current page are ignored.
func (c *Controller) GoTo(ctx context.Context, n int) (bool, error) {
	return c.move(ctx, ReasonJump, func() int { return n })
}

// First jumps to page 1.
func (c *Controller) First(ctx context.Context) (bool, error) {
	return c.GoTo(ctx, 1)
}

// Last jumps to the final page.
func (c *Controller) Last(ctx context.Context) (bool, error) {
	return c.move(ctx, ReasonJump, func() int { return c.total })
}

// Refresh renders the current page again in the current mode.
func (c *Controller) Refresh(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.rendering || c.total == 0 {
		c.mu.Unlock()
		return false, nil
	}
	req := c.begin(ReasonRefresh)
	c.mu.Unlock()

	return true, c.run(ctx, req)
}

// move runs one render cycle for the page chosen by target. target is
// evaluated under the lock.
func (c *Controller) move(ctx context.Context, reason Reason, target func() int) (bool, error) {
	c.mu.Lock()
	if c.rendering || c.total == 0 {
		c.mu.Unlock()
		return false, nil
	}
	n := target()
	if n < 1 || n > c.total || n == c.current {
		c.mu.Unlock()
		return false, nil
	}
	c.current = n
	req := c.begin(reason)
	c.mu.Unlock()

	return true, c.run(ctx, req)
}

// begin sets the render guard and builds the request. Caller holds c.mu.
func (c *Controller) begin(reason Reason) RenderRequest {
	c.rendering = true

	req := RenderRequest{
		Page:       c.current,
		Total:      c.total,
		Fullscreen: c.fullscreen,
		Zoom:       c.zoom,
		Window:     c.window,
		Reason:     reason,
	}
	if c.fullscreen {
		c.nextSurface++
		c.surface = c.nextSurface
		req.Surface = c.surface
		req.ResetScroll = true
	}
	return req
}

// run performs the render outside the lock and clears the guard. The page
// index is not rolled back when the render fails.
func (c *Controller) run(ctx context.Context, req RenderRequest) error {
	err := c.renderer.RenderPage(ctx, req)

	c.mu.Lock()
	c.rendering = false
	left := req.Fullscreen && !c.fullscreen
	c.idle.Broadcast()
	c.mu.Unlock()

	// Fullscreen was exited while this frame was being drawn.
	if left {
		c.renderer.ClearFullscreen()
	}

	if err != nil {
		return fmt.Errorf("failed to render page %d: %w", req.Page, err)
	}
	return nil
}

// EnterFullscreen switches to fullscreen reading for a window of the given
// size and renders the current page there.
func (c *Controller) EnterFullscreen(ctx context.Context, window Size) (bool, error) {
	c.mu.Lock()
	if c.rendering || c.fullscreen || c.total == 0 {
		c.mu.Unlock()
		return false, nil
	}
	c.fullscreen = true
	c.enteredFrom = c.current
	c.window = window
	c.scrollCtx = context.WithoutCancel(ctx)
	req := c.begin(ReasonEnter)
	c.mu.Unlock()

	return true, c.run(ctx, req)
}

// ExitFullscreen leaves fullscreen mode, detaches the scroll surface and
// clears the fullscreen view. It is allowed while a render is in flight.
func (c *Controller) ExitFullscreen() bool {
	c.mu.Lock()
	if !c.fullscreen {
		c.mu.Unlock()
		return false
	}
	c.fullscreen = false
	c.surface = 0
	c.sampleOf = 0
	c.mu.Unlock()

	// Drop any pending edge evaluation.
	c.debounce(func() {})
	c.renderer.ClearFullscreen()
	return true
}

// Resize records a new window size for later fullscreen renders.
func (c *Controller) Resize(window Size) {
	c.mu.Lock()
	c.window = window
	c.mu.Unlock()
}

// ZoomIn raises the zoom level by one step.
func (c *Controller) ZoomIn(ctx context.Context) (float64, error) {
	return c.step(ctx, ZoomStep)
}

// ZoomOut lowers the zoom level by one step.
func (c *Controller) ZoomOut(ctx context.Context) (float64, error) {
	return c.step(ctx, -ZoomStep)
}

// step moves the zoom by delta, rounded to one decimal so repeated steps
// do not drift.
func (c *Controller) step(ctx context.Context, delta float64) (float64, error) {
	c.mu.Lock()
	z := math.Round((c.zoom+delta)*10) / 10
	c.mu.Unlock()
	return c.SetZoom(ctx, z)
}

// SetZoom clamps z into range and stores it. In fullscreen the current page
// is rendered again at the new level, scrolled to the top. The page index
// never changes.
func (c *Controller) SetZoom(ctx context.Context, z float64) (float64, error) {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return c.Zoom(), fmt.Errorf("invalid zoom level %v", z)
	}
	z = lo.Clamp(z, MinZoom, MaxZoom)

	c.mu.Lock()
	c.zoom = z
	if !c.fullscreen || c.rendering || c.total == 0 {
		c.mu.Unlock()
		return z, nil
	}
	req := c.begin(ReasonZoom)
	c.mu.Unlock()

	return z, c.run(ctx, req)
}

// Zoom returns the current zoom level.
func (c *Controller) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// Scroll records a scroll sample from surface. The edge check runs once the
// samples settle. Samples from surfaces other than the current fullscreen
// one are ignored.
func (c *Controller) Scroll(surface Surface, sample ScrollSample) bool {
	c.mu.Lock()
	if !c.fullscreen || surface == 0 || surface != c.surface {
		c.mu.Unlock()
		return false
	}
	c.sample = sample
	c.sampleOf = surface
	c.mu.Unlock()

	c.debounce(c.settle)
	return true
}

// settle evaluates the last scroll sample. Bottom is checked before top.
func (c *Controller) settle() {
	c.mu.Lock()
	if !c.fullscreen || c.sampleOf != c.surface || c.rendering {
		c.mu.Unlock()
		return
	}
	sample := c.sample
	ctx := c.scrollCtx
	var turn func(context.Context) (bool, error)
	switch {
	case sample.AtBottom(c.opts.EdgeMargin) && c.current < c.total:
		turn = c.Next
	case sample.AtTop(c.opts.EdgeMargin) && c.current > 1:
		turn = c.Previous
	}
	c.mu.Unlock()

	if turn == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := turn(ctx); err != nil && c.opts.OnScrollError != nil {
		c.opts.OnScrollError(err)
	}
}

// Status is a snapshot of the controller.
type Status struct {
	State       State   `json:"-"`
	StateName   string  `json:"state"`
	Page        int     `json:"page"`
	Total       int     `json:"total"`
	Zoom        float64 `json:"zoom"`
	Fullscreen  bool    `json:"fullscreen"`
	EnteredFrom int     `json:"enteredFrom"`
	Surface     Surface `json:"surface"`
	// Progress is the percentage of the document read, page/total*100.
	Progress float64 `json:"progress"`
	HasPrev  bool    `json:"hasPrev"`
	HasNext  bool    `json:"hasNext"`
}

// Status returns a snapshot of the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	var state State
	switch {
	case c.fullscreen && c.rendering:
		state = FullscreenRendering
	case c.fullscreen:
		state = FullscreenIdle
	case c.rendering:
		state = Rendering
	default:
		state = Idle
	}

	var progress float64
	if c.total > 0 {
		progress = float64(c.current) / float64(c.total) * 100
	}

	return Status{
		State:       state,
		StateName:   state.String(),
		Page:        c.current,
		Total:       c.total,
		Zoom:        c.zoom,
		Fullscreen:  c.fullscreen,
		EnteredFrom: c.enteredFrom,
		Surface:     c.surface,
		Progress:    progress,
		HasPrev:     c.current > 1,
		HasNext:     c.current < c.total,
	}
}
