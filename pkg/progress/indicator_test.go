package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTrackerThrottles(t *testing.T) {
	var events []Event
	tracker := NewTracker("Rendering", 5, func(e Event) { events = append(events, e) })
	tracker.SetDisplayRate(time.Hour)

	for i := 0; i < 5; i++ {
		tracker.Step()
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, expected first and final only", len(events))
	}
	if events[0].Completed != 1 {
		t.Errorf("first event completed = %d, expected 1", events[0].Completed)
	}
	last := events[1]
	if !last.Done() || last.Percentage != 100 || last.ETA != 0 {
		t.Errorf("final event = %+v", last)
	}
}

func TestTrackerWithoutRate(t *testing.T) {
	var mu sync.Mutex
	count := 0
	tracker := NewTracker("x", 10, func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	tracker.SetDisplayRate(0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Step()
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("sink called %d times, expected 10", count)
	}
	if s := tracker.Stats(); s.Completed != 10 || !s.Done() {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestTrackerNilSink(t *testing.T) {
	tracker := NewTracker("x", 2, nil)
	tracker.Step()
	if s := tracker.Stats(); s.Percentage != 50 {
		t.Errorf("Percentage = %v, expected 50", s.Percentage)
	}
}

func TestRender(t *testing.T) {
	got := Render(Event{Label: "Export", Completed: 3, Total: 10, Percentage: 30}, 10)
	expected := "Export [███░░░░░░░] 3/10 (30.0%)"
	if got != expected {
		t.Errorf("Render() = %q, expected %q", got, expected)
	}

	got = Render(Event{Label: "Export", Completed: 1, Total: 4, Percentage: 25, ETA: 3 * time.Second}, 4)
	if !strings.HasSuffix(got, "| ETA: 3s") {
		t.Errorf("Render() = %q, expected ETA suffix", got)
	}
}

func TestBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf)

	bar.Finish()
	if buf.Len() != 0 {
		t.Errorf("Finish() before drawing wrote %q", buf.String())
	}

	bar.Sink()(Event{Label: "Export", Completed: 2, Total: 2, Percentage: 100})
	bar.Finish()

	out := buf.String()
	if !strings.HasPrefix(out, "\rExport [") || !strings.HasSuffix(out, " DONE\n") {
		t.Errorf("unexpected bar output %q", out)
	}
}
