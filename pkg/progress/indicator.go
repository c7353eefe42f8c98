package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Event reports the state of a job after a step completes.
type Event struct {
	Label      string        `json:"label"`
	Completed  int           `json:"completed"`
	Total      int           `json:"total"`
	Percentage float64       `json:"percentage"`
	Elapsed    time.Duration `json:"elapsed"`
	ETA        time.Duration `json:"eta"`
}

// Done reports whether every step has completed.
func (e Event) Done() bool {
	return e.Completed >= e.Total
}

// Sink receives progress events. It may be called from several goroutines,
// one call at a time.
type Sink func(Event)

// Tracker counts completed steps and forwards throttled events to a sink
// (progress bars that redraw 1000 times a second help nobody)
type Tracker struct {
	mu          sync.Mutex
	label       string
	totalJobs   int
	completed   int
	startTime   time.Time
	lastDisplay time.Time
	displayRate time.Duration
	sink        Sink
}

// NewTracker creates a tracker for total steps. A nil sink is allowed.
func NewTracker(label string, total int, sink Sink) *Tracker {
	return &Tracker{
		label:       label,
		totalJobs:   total,
		startTime:   time.Now(),
		displayRate: 100 * time.Millisecond,
		sink:        sink,
	}
}

// SetDisplayRate changes the minimum time between two events. The first
// and the final event are always delivered.
func (t *Tracker) SetDisplayRate(d time.Duration) {
	t.mu.Lock()
	t.displayRate = d
	t.mu.Unlock()
}

// Step marks one step as completed.
func (t *Tracker) Step() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.completed++

	first := t.lastDisplay.IsZero()
	final := t.completed >= t.totalJobs
	if t.sink == nil || !(first || final || time.Since(t.lastDisplay) >= t.displayRate) {
		return
	}
	t.lastDisplay = time.Now()
	t.sink(t.event())
}

// Stats returns the current progress without notifying the sink.
func (t *Tracker) Stats() Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.event()
}

func (t *Tracker) event() Event {
	elapsed := time.Since(t.startTime)

	var percentage float64
	if t.totalJobs > 0 {
		percentage = float64(t.completed) / float64(t.totalJobs) * 100
	}

	// Estimate time remaining
	var eta time.Duration
	if t.completed > 0 && t.completed < t.totalJobs {
		avgTimePerJob := elapsed / time.Duration(t.completed)
		eta = avgTimePerJob * time.Duration(t.totalJobs-t.completed)
	}

	return Event{
		Label:      t.label,
		Completed:  t.completed,
		Total:      t.totalJobs,
		Percentage: percentage,
		Elapsed:    elapsed,
		ETA:        eta,
	}
}

// Bar draws events as a single-line terminal progress bar.
type Bar struct {
	mu    sync.Mutex
	w     io.Writer
	width int
	drawn bool
}

// NewBar returns a bar writing to w.
func NewBar(w io.Writer) *Bar {
	return &Bar{w: w, width: 40}
}

// Sink returns a Sink that redraws the bar.
func (b *Bar) Sink() Sink {
	return func(e Event) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.drawn = true
		fmt.Fprintf(b.w, "\r%s", Render(e, b.width))
	}
}

// Finish ends the bar line if anything was drawn.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawn {
		fmt.Fprintln(b.w, " DONE")
		b.drawn = false
	}
}

// Render formats e as a bar of the given width.
func Render(e Event, width int) string {
	filled := 0
	if e.Total > 0 {
		filled = width * min(e.Completed, e.Total) / e.Total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	line := fmt.Sprintf("%s [%s] %d/%d (%.1f%%)", e.Label, bar, e.Completed, e.Total, e.Percentage)
	if e.ETA > 0 {
		line += fmt.Sprintf(" | ETA: %v", e.ETA.Round(time.Second))
	}
	return line
}
