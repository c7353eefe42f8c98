package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/T-Bhaskar/ebook-v2/pkg/progress"
)

// Job is one unit of work, such as rendering a single page.
type Job interface {
	Process(ctx context.Context) error
	ID() string
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	Name string
	Fn   func(ctx context.Context) error
}

func (j JobFunc) Process(ctx context.Context) error { return j.Fn(ctx) }
func (j JobFunc) ID() string                        { return j.Name }

// Result is the outcome of one job.
type Result struct {
	JobID string
	Error error
}

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	workerCount int
	jobs        chan Job
	results     chan Result
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	progress    *progress.Tracker
}

// NewPool creates a pool bound to ctx. workerCount <= 0 uses one worker per
// CPU. tracker may be nil.
func NewPool(ctx context.Context, workerCount int, tracker *progress.Tracker) *Pool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workerCount: workerCount,
		jobs:        make(chan Job, workerCount*2),
		results:     make(chan Result, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
		progress:    tracker,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop closes the queue, waits for the workers and closes Results.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
	p.cancel()
}

// Cancel aborts queued and running jobs. Stop must still be called.
func (p *Pool) Cancel() {
	p.cancel()
}

// Submit queues job. It returns false once the pool is cancelled.
func (p *Pool) Submit(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Results returns the results channel.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// WorkerCount returns the number of workers in the pool.
func (p *Pool) WorkerCount() int {
	return p.workerCount
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if p.ctx.Err() != nil {
				return
			}

			err := job.Process(p.ctx)
			if err == nil && p.progress != nil {
				p.progress.Step()
			}

			p.results <- Result{JobID: job.ID(), Error: err}

		case <-p.ctx.Done():
			return
		}
	}
}

// Run processes jobs on a fresh pool and waits for them. The first failure
// cancels the remaining jobs and is returned. A cancelled ctx returns its
// error.
func Run(ctx context.Context, workerCount int, tracker *progress.Tracker, jobs []Job) error {
	p := NewPool(ctx, workerCount, tracker)
	p.Start()

	go func() {
		defer p.Stop()
		for _, job := range jobs {
			if !p.Submit(job) {
				return
			}
		}
	}()

	var first error
	for res := range p.Results() {
		if res.Error != nil && first == nil {
			first = res.Error
			p.Cancel()
		}
	}

	if first != nil && !errors.Is(first, context.Canceled) {
		return first
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return first
}
