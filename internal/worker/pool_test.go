package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubResult struct {
	err error
}

func (r *stubResult) GetError() error { return r.err }

// stubJob counts executions and can fail or stall
type stubJob struct {
	fail     bool
	duration time.Duration
	executed *int32
}

func (j *stubJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &stubResult{err: ctx.Err()}
		}
	}
	if j.fail {
		return &stubResult{err: errors.New("job failed")}
	}
	return &stubResult{}
}

func TestNewPool_ClampsWorkerCount(t *testing.T) {
	for _, tc := range []struct {
		in, want int
	}{
		{in: 5, want: 5},
		{in: 0, want: 1},
		{in: -3, want: 1},
	} {
		if got := NewPool(tc.in).workers; got != tc.want {
			t.Errorf("NewPool(%d).workers = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPool_RunsEveryJob(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var executed int32
	const jobs = 12
	for i := 0; i < jobs; i++ {
		pool.Submit(&stubJob{executed: &executed})
	}

	results := pool.Wait()
	if len(results) != jobs {
		t.Fatalf("got %d results, want %d", len(results), jobs)
	}
	if n := atomic.LoadInt32(&executed); n != jobs {
		t.Fatalf("executed %d jobs, want %d", n, jobs)
	}
}

func TestPool_FailuresDoNotStopOtherJobs(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&stubJob{fail: true})
	pool.Submit(&stubJob{})
	pool.Submit(&stubJob{})

	results := pool.Wait()
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	failed := 0
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("got %d failed results, want 1", failed)
	}
}

// gateJob reports its observed concurrency through the callbacks
type gateJob struct {
	enter func()
	leave func()
}

func (j *gateJob) Execute(ctx context.Context) Result {
	j.enter()
	time.Sleep(10 * time.Millisecond)
	j.leave()
	return &stubResult{}
}

func TestPool_ConcurrencyStaysWithinWorkers(t *testing.T) {
	const workers = 4
	pool := NewPool(workers)
	pool.Start()

	var current, peak int32
	var mu sync.Mutex

	for i := 0; i < 30; i++ {
		pool.Submit(&gateJob{
			enter: func() {
				n := atomic.AddInt32(&current, 1)
				mu.Lock()
				if n > peak {
					peak = n
				}
				mu.Unlock()
			},
			leave: func() {
				atomic.AddInt32(&current, -1)
			},
		})
	}
	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	if peak > workers {
		t.Errorf("peak concurrency %d exceeded %d workers", peak, workers)
	}
}

func TestPool_ManyMoreJobsThanChannelBuffers(t *testing.T) {
	// With one worker the jobs and results buffers hold two entries each.
	// Submitting far more jobs than that before Wait must not wedge: the
	// collector drains results while submission is still in progress.
	pool := NewPool(1)
	pool.Start()

	const jobs = 32
	var executed int32

	done := make(chan []Result, 1)
	go func() {
		for i := 0; i < jobs; i++ {
			pool.Submit(&stubJob{executed: &executed})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != jobs {
			t.Fatalf("got %d results, want %d", len(results), jobs)
		}
		if n := atomic.LoadInt32(&executed); n != jobs {
			t.Fatalf("executed %d jobs, want %d", n, jobs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("submit-then-Wait wedged with more jobs than the channel buffers hold")
	}
}

func TestPool_SubmitAfterShutdownReturns(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		pool.Submit(&stubJob{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked after Shutdown")
	}
}

func TestPool_ShutdownCancelsInFlightJob(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&gateJob{
		enter: func() { close(started) },
		leave: func() {},
	})
	<-started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not return with a job in flight")
	}
}
