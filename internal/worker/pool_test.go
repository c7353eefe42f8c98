package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/T-Bhaskar/ebook-v2/pkg/progress"
)

func countingJobs(n int, counter *atomic.Int32) []Job {
	jobs := make([]Job, n)
	for i := range jobs {
		jobs[i] = JobFunc{
			Name: fmt.Sprintf("page-%d", i+1),
			Fn: func(ctx context.Context) error {
				counter.Add(1)
				return nil
			},
		}
	}
	return jobs
}

func TestRunAllJobs(t *testing.T) {
	var counter atomic.Int32
	var events []progress.Event
	tracker := progress.NewTracker("test", 20, func(e progress.Event) { events = append(events, e) })
	tracker.SetDisplayRate(0)

	if err := Run(context.Background(), 4, tracker, countingJobs(20, &counter)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := counter.Load(); got != 20 {
		t.Errorf("processed %d jobs, expected 20", got)
	}
	if s := tracker.Stats(); s.Completed != 20 {
		t.Errorf("tracker completed = %d, expected 20", s.Completed)
	}
	if len(events) != 20 || !events[len(events)-1].Done() {
		t.Errorf("got %d progress events, expected 20 ending in done", len(events))
	}
}

func TestRunEmpty(t *testing.T) {
	if err := Run(context.Background(), 2, nil, nil); err != nil {
		t.Errorf("Run() with no jobs error = %v", err)
	}
}

func TestRunStopsOnFirstError(t *testing.T) {
	boom := errors.New("page 3 is corrupt")
	var started atomic.Int32

	jobs := make([]Job, 50)
	for i := range jobs {
		n := i + 1
		jobs[i] = JobFunc{
			Name: fmt.Sprintf("page-%d", n),
			Fn: func(ctx context.Context) error {
				started.Add(1)
				if n == 3 {
					return boom
				}
				select {
				case <-time.After(20 * time.Millisecond):
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
		}
	}

	err := Run(context.Background(), 2, nil, jobs)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, expected %v", err, boom)
	}
	if got := started.Load(); got >= 50 {
		t.Errorf("all %d jobs started despite the failure", got)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var counter atomic.Int32
	err := Run(ctx, 2, nil, countingJobs(10, &counter))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, expected context.Canceled", err)
	}
}

func TestNewPoolDefaultsToCPUCount(t *testing.T) {
	p := NewPool(context.Background(), 0, nil)
	defer p.Cancel()
	if p.WorkerCount() < 1 {
		t.Errorf("WorkerCount() = %d", p.WorkerCount())
	}
}
