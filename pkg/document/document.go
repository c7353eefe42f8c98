// Package document decodes PDF files and renders their pages to bitmaps
// through PDFium running in WebAssembly.
package document

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// ErrClosed is returned by a Document or Engine that has been closed.
var ErrClosed = errors.New("document closed")

// Size is a page size in PDF points at scale 1.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Config sizes the PDFium instance pool.
type Config struct {
	MinIdle  int
	MaxIdle  int
	MaxTotal int
	// Timeout bounds the wait for a free instance.
	Timeout time.Duration
}

// DefaultConfig returns the pool settings used by the reader.
func DefaultConfig() Config {
	return Config{
		MinIdle:  1,
		MaxIdle:  2,
		MaxTotal: 4,
		Timeout:  30 * time.Second,
	}
}

// Engine owns the PDFium pool. One Engine serves any number of documents.
type Engine struct {
	pool    pdfium.Pool
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewEngine starts a PDFium pool.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  cfg.MinIdle,
		MaxIdle:  cfg.MaxIdle,
		MaxTotal: cfg.MaxTotal,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PDFium: %w", err)
	}
	return &Engine{pool: pool, timeout: cfg.Timeout}, nil
}

// Close shuts the pool down. Documents opened from e stop working.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.pool.Close()
}

// instance checks out a PDFium instance. The caller closes it.
func (e *Engine) instance() (pdfium.Pdfium, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	inst, err := e.pool.GetInstance(e.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to get PDFium instance: %w", err)
	}
	return inst, nil
}

// Open decodes data and reads its page sizes. data must stay unmodified
// while the Document is in use. A file that fails to decode is retried once
// with trailing bytes after its last EOF marker removed.
func (e *Engine) Open(data []byte) (*Document, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	doc, err := e.open(data)
	if err == nil || errors.Is(err, ErrClosed) {
		return doc, err
	}
	repaired, ok := Repair(data)
	if !ok {
		return nil, err
	}
	doc, rerr := e.open(repaired)
	if rerr != nil {
		return nil, err
	}
	return doc, nil
}

func (e *Engine) open(data []byte) (*Document, error) {
	inst, err := e.instance()
	if err != nil {
		return nil, err
	}
	defer inst.Close()

	doc, err := inst.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF document: %w", err)
	}
	defer inst.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})

	count, err := inst.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	sizes := make([]Size, count.PageCount)
	for i := range sizes {
		size, err := inst.FPDF_GetPageSizeByIndex(&requests.FPDF_GetPageSizeByIndex{
			Document: doc.Document,
			Index:    i,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get size of page %d: %w", i+1, err)
		}
		sizes[i] = Size{Width: size.Width, Height: size.Height}
	}

	return &Document{engine: e, data: data, sizes: sizes}, nil
}

// Document is a decoded PDF. Pages are numbered from 1. Methods are safe
// for concurrent use; each render checks out its own PDFium instance.
type Document struct {
	engine *Engine
	data   []byte
	sizes  []Size

	mu     sync.RWMutex
	closed bool
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.sizes)
}

// PageSize returns the size of page n in points.
func (d *Document) PageSize(n int) (Size, error) {
	if err := d.checkPage(n); err != nil {
		return Size{}, err
	}
	return d.sizes[n-1], nil
}

// Render draws page n at scale, where scale 1 maps one point to one pixel.
// The returned image is owned by the caller.
func (d *Document) Render(n int, scale float64) (*image.RGBA, error) {
	if err := d.checkPage(n); err != nil {
		return nil, err
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("invalid render scale %v", scale)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}

	size := d.sizes[n-1]
	width := max(1, int(size.Width*scale))
	height := max(1, int(size.Height*scale))

	inst, err := d.engine.instance()
	if err != nil {
		return nil, err
	}
	defer inst.Close()

	doc, err := inst.OpenDocument(&requests.OpenDocument{File: &d.data})
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF document: %w", err)
	}
	defer inst.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})

	rendered, err := inst.RenderPageInPixels(&requests.RenderPageInPixels{
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    n - 1,
			},
		},
		Width:  width,
		Height: height,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", n, err)
	}
	defer rendered.Cleanup()

	src := rendered.Result.Image
	if src == nil {
		return nil, fmt.Errorf("failed to render page %d: empty bitmap", n)
	}

	// The bitmap lives in WebAssembly memory that Cleanup releases.
	img := image.NewRGBA(image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy()))
	if src.Stride == img.Stride {
		copy(img.Pix, src.Pix)
		return img, nil
	}
	for y := 0; y < img.Rect.Dy(); y++ {
		copy(img.Pix[y*img.Stride:(y+1)*img.Stride], src.Pix[y*src.Stride:])
	}
	return img, nil
}

// Close releases the document. Close is idempotent.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.data = nil
	return nil
}

func (d *Document) checkPage(n int) error {
	if n < 1 || n > len(d.sizes) {
		return fmt.Errorf("page number %d out of range (1-%d)", n, len(d.sizes))
	}
	return nil
}
