package viewer

import (
	"context"
	"errors"
	"time"

	"github.com/T-Bhaskar/ebook-v2/pkg/pagination"
	"github.com/T-Bhaskar/ebook-v2/pkg/recolor"
	"github.com/T-Bhaskar/ebook-v2/pkg/settings"
)

var errNoDocument = errors.New("no document loaded")

// pageRenderer draws pages for the pagination controller.
type pageRenderer struct {
	v *Viewer
}

// source captures the document and settings for one render. A later open
// does not affect a render already running.
func (r *pageRenderer) source() (*Session, settings.ReaderSettings) {
	r.v.mu.RLock()
	defer r.v.mu.RUnlock()
	return r.v.session, r.v.settings
}

func (r *pageRenderer) RenderPage(ctx context.Context, req pagination.RenderRequest) error {
	sess, s := r.source()
	if sess == nil {
		return newError(PageRenderFailure, "render", "", errNoDocument)
	}

	if !req.Fullscreen {
		return r.renderMain(ctx, sess, s, req, req.Reason == pagination.ReasonTurn)
	}

	err := r.renderFullscreen(sess, s, req)
	if changesPage(req.Reason) {
		if mainErr := r.renderMain(ctx, sess, s, req, false); err == nil {
			err = mainErr
		}
	}
	return err
}

// changesPage reports whether a fullscreen render shows a page or document
// the normal view does not show yet.
func changesPage(reason pagination.Reason) bool {
	switch reason {
	case pagination.ReasonLoad, pagination.ReasonTurn, pagination.ReasonJump, pagination.ReasonRefresh:
		return true
	}
	return false
}

func (r *pageRenderer) ClearFullscreen() {
	r.v.display.ClearFullscreen()
}

func (r *pageRenderer) renderMain(ctx context.Context, sess *Session, s settings.ReaderSettings, req pagination.RenderRequest, dim bool) error {
	display := r.v.display
	frame := Frame{
		Page:     req.Page,
		Total:    req.Total,
		Progress: float64(req.Page) / float64(req.Total) * 100,
	}

	if dim && r.v.opts.DimDelay > 0 {
		display.Dim(true)
		defer display.Dim(false)
		timer := time.NewTimer(r.v.opts.DimDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	img, err := sess.Doc.Render(req.Page, r.v.opts.MainScale*s.FontSize)
	if err != nil {
		display.ShowPage(frame)
		return newError(PageRenderFailure, "render", sess.Path, err)
	}
	recolor.Apply(img, s.Targets())

	frame.Image = img
	display.ShowPage(frame)
	return nil
}

func (r *pageRenderer) renderFullscreen(sess *Session, s settings.ReaderSettings, req pagination.RenderRequest) error {
	display := r.v.display
	frame := FullscreenFrame{
		Page:        req.Page,
		Total:       req.Total,
		Surface:     req.Surface,
		ResetScroll: req.ResetScroll,
	}

	size, err := sess.Doc.PageSize(req.Page)
	if err != nil {
		display.ShowFullscreen(frame)
		return newError(PageRenderFailure, "measure", sess.Path, err)
	}
	layout, err := pagination.ComputeLayout(req.Window, pagination.Size{Width: size.Width, Height: size.Height}, req.Zoom)
	if err != nil {
		display.ShowFullscreen(frame)
		return newError(PageRenderFailure, "layout", sess.Path, err)
	}
	frame.Layout = layout

	img, err := sess.Doc.Render(req.Page, layout.RenderScale)
	if err != nil {
		display.ShowFullscreen(frame)
		return newError(PageRenderFailure, "render", sess.Path, err)
	}
	recolor.Apply(img, s.Targets())

	frame.Image = img
	display.ShowFullscreen(frame)
	return nil
}
