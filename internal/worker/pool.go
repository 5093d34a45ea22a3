package worker

import (
	"context"
	"sync"
)

// Job is one unit of work, typically a batch of chunks to embed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produces. Jobs report failure through GetError rather
// than aborting the pool, so one bad batch does not lose the others.
type Result interface {
	GetError() error
}

// Pool runs jobs across a fixed set of worker goroutines. The expected use
// is submit-everything-then-Wait: ingestion queues all embedding batches and
// collects the results in one call. Results are drained as they are
// produced, so the number of submitted jobs is unbounded; Submit only blocks
// while every worker is busy.
type Pool struct {
	workers   int
	jobs      chan Job
	results   chan Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	collected   []Result
	collectDone chan struct{}
}

// NewPool creates a pool. Fewer than one worker means one.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers:     workers,
		jobs:        make(chan Job, workers*2),
		results:     make(chan Result, workers*2),
		ctx:         ctx,
		cancel:      cancel,
		collectDone: make(chan struct{}),
	}
}

// Start launches the worker goroutines and the result collector. The
// collector keeps the results channel drained while the caller is still
// submitting; without it, workers fill the results buffer and stall, and a
// stalled worker stops consuming jobs, wedging Submit.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}

	go func() {
		for result := range p.results {
			p.collected = append(p.collected, result)
		}
		close(p.collectDone)
	}()
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. Submissions after Shutdown are dropped.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobs <- job:
	}
}

// Wait closes the queue, waits for the workers to drain it and returns every
// result. Call once, after the last Submit.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
	return p.collected
}

// Shutdown cancels in-flight jobs and stops the workers without draining the
// job queue. Results already produced are discarded.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
