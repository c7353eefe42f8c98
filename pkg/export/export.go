// Package export re-prints a document into a new PDF (or EPUB) whose pages
// are the recolored page bitmaps.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/T-Bhaskar/ebook-v2/internal/worker"
	"github.com/T-Bhaskar/ebook-v2/pkg/document"
	"github.com/T-Bhaskar/ebook-v2/pkg/progress"
	"github.com/T-Bhaskar/ebook-v2/pkg/recolor"
	"github.com/T-Bhaskar/ebook-v2/pkg/theme"
)

// Export defaults.
const (
	DefaultScale   = 2.0
	DefaultQuality = 95
)

// ErrNoPages is returned when the selection leaves nothing to export.
var ErrNoPages = errors.New("no pages to export")

// Source is the document being exported.
type Source interface {
	PageCount() int
	PageSize(n int) (document.Size, error)
	Render(n int, scale float64) (*image.RGBA, error)
}

// Options control one export.
type Options struct {
	Title string
	// Dir receives the output file. Empty means the working directory.
	Dir string
	// Date stamps the file name. Zero means today.
	Date    time.Time
	Targets recolor.Targets
	// Display, when set, bakes brightness, contrast and eye protection
	// into the page bitmaps.
	Display *theme.DisplayFilter
	Scale   float64
	Quality int
	Workers int
	Format  Format
	// Pages selects pages, for example "1-3,7". Empty exports all pages.
	Pages string
	// Validate runs a structural check on the written PDF.
	Validate bool
	Progress progress.Sink
}

func (o *Options) setDefaults() {
	if o.Date.IsZero() {
		o.Date = time.Now()
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	if o.Format == "" {
		o.Format = FormatPDF
	}
}

// Result describes a finished export.
type Result struct {
	JobID    string        `json:"jobId"`
	Path     string        `json:"path"`
	Format   Format        `json:"format"`
	Pages    int           `json:"pages"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

// HumanSize returns the output size as "1.2 MB".
func (r Result) HumanSize() string {
	return humanize.Bytes(uint64(r.Bytes))
}

// Summary is a one-line description of the result.
func (r Result) Summary() string {
	return fmt.Sprintf("Exported %d pages to %s (%s) in %v",
		r.Pages, filepath.Base(r.Path), r.HumanSize(), r.Duration.Round(time.Millisecond))
}

// Exporter renders, recolors and writes exports.
type Exporter struct {
	logger *slog.Logger
}

// New returns an Exporter logging to logger. A nil logger discards.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{logger: logger}
}

// OutputPath returns where Export would write for opts.
func OutputPath(opts Options) string {
	opts.setDefaults()
	return filepath.Join(opts.Dir, FileName(opts.Title, opts.Date, opts.Format))
}

// Export writes src to OutputPath(opts). Nothing is left on disk when it
// fails.
func (e *Exporter) Export(ctx context.Context, src Source, opts Options) (Result, error) {
	opts.setDefaults()
	start := time.Now()
	jobID := uuid.NewString()
	logger := e.logger.With("job", jobID)

	selection, err := ParsePageRanges(opts.Pages)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse page ranges: %w", err)
	}
	total := src.PageCount()
	if err := selection.ValidateAgainstTotal(total); err != nil {
		return Result{}, fmt.Errorf("invalid page range: %w", err)
	}
	pages := selection.Pages(total)
	if len(pages) == 0 {
		return Result{}, ErrNoPages
	}

	logger.Info("export started", "pages", len(pages), "format", opts.Format, "scale", opts.Scale)

	frames, err := e.renderFrames(ctx, src, pages, opts)
	if err != nil {
		return Result{}, err
	}

	path := OutputPath(opts)
	if err := writeFrames(path, frames, opts); err != nil {
		return Result{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat output: %w", err)
	}

	res := Result{
		JobID:    jobID,
		Path:     path,
		Format:   opts.Format,
		Pages:    len(frames),
		Bytes:    info.Size(),
		Duration: time.Since(start),
	}
	logger.Info("export finished", "path", path, "size", res.HumanSize(), "duration", res.Duration)
	return res, nil
}

// renderFrames renders the selected pages in parallel. Frames come back in
// page order.
func (e *Exporter) renderFrames(ctx context.Context, src Source, pages []int, opts Options) ([]Frame, error) {
	frames := make([]Frame, len(pages))
	tracker := progress.NewTracker("Exporting", len(pages), opts.Progress)

	jobs := make([]worker.Job, len(pages))
	for i, n := range pages {
		jobs[i] = worker.JobFunc{
			Name: fmt.Sprintf("page-%d", n),
			Fn: func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				frame, err := renderFrame(src, n, opts)
				if err != nil {
					return err
				}
				frames[i] = frame
				return nil
			},
		}
	}

	if err := worker.Run(ctx, opts.Workers, tracker, jobs); err != nil {
		return nil, err
	}
	return frames, nil
}

func renderFrame(src Source, n int, opts Options) (Frame, error) {
	size, err := src.PageSize(n)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to get size of page %d: %w", n, err)
	}

	img, err := src.Render(n, opts.Scale)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to render page %d: %w", n, err)
	}

	recolor.Apply(img, opts.Targets)

	var out image.Image = img
	if opts.Display != nil && !opts.Display.IsNeutral() {
		out = opts.Display.Apply(img)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return Frame{}, fmt.Errorf("failed to encode page %d: %w", n, err)
	}

	return Frame{Page: n, Width: size.Width, Height: size.Height, JPEG: buf.Bytes()}, nil
}

// writeFrames builds the output next to path and moves it into place once
// complete.
func writeFrames(path string, frames []Frame, opts Options) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*."+string(opts.Format))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	b, err := newBuilder(opts.Format, opts.Title, opts.Date)
	if err != nil {
		return err
	}
	defer b.Close()

	for _, f := range frames {
		if err := b.AddPage(f); err != nil {
			return err
		}
	}
	if err := b.Write(tmpPath); err != nil {
		return err
	}

	if opts.Validate && opts.Format == FormatPDF {
		if err := pdfapi.ValidateFile(tmpPath, model.NewDefaultConfiguration()); err != nil {
			return fmt.Errorf("exported PDF failed validation: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}
