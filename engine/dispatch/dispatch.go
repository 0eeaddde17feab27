package dispatch

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// queue is the implementation of the Queue interface.
type queue struct {
	mu      sync.Mutex
	pending []func()
	timers  map[uint64]*time.Timer
	closed  bool

	pool     worker.DynamicWorkerPool
	workers  int
	poolSize int
	idle     time.Duration

	nextTimer atomic.Uint64
	nextTask  atomic.Int64
}

// Queue hands work back to the thread that owns the scene.
// Everything that mutates controller state, including completions of background loads and
// timer callbacks, is posted here and executed by Drain on the frame thread, so controllers
// never need their own locks.
type Queue interface {
	// Post enqueues fn to run during the next Drain. Safe to call from any goroutine.
	//
	// Parameters:
	//   - fn: the callback to run on the draining thread
	//
	// Returns:
	//   - bool: false if the queue is closed and fn was dropped
	Post(fn func()) bool

	// Drain runs every callback posted before the call, in FIFO order, on the caller's goroutine.
	// Callbacks posted while draining run on the next Drain. A panicking callback is logged and skipped.
	//
	// Returns:
	//   - int: the number of callbacks run
	Drain() int

	// After posts fn once d has elapsed.
	//
	// Parameters:
	//   - d: the delay
	//   - fn: the callback to run on the draining thread
	//
	// Returns:
	//   - func(): cancels the timer; fn will not run even if it was already posted. Idempotent.
	After(d time.Duration, fn func()) (cancel func())

	// Async runs work on the worker pool and posts done with its result.
	// Neither runs once the queue is closed.
	//
	// Parameters:
	//   - work: the blocking function, run off the frame thread
	//   - done: receives work's result on the draining thread
	Async(work func() (any, error), done func(result any, err error))

	// Pending reports how many callbacks are waiting for the next Drain.
	//
	// Returns:
	//   - int: the queue length
	Pending() int

	// Close drops pending callbacks, stops timers and stops the worker pool. Later posts and
	// Async calls are ignored. Work already running on the pool finishes, but its completion
	// is discarded.
	Close()
}

var _ Queue = &queue{}

// NewQueue creates a new Queue with the provided options.
//
// Parameters:
//   - options: variadic list of QueueBuilderOption functions to configure the Queue
//
// Returns:
//   - Queue: the newly created Queue instance
func NewQueue(options ...QueueBuilderOption) Queue {
	q := &queue{
		timers:   make(map[uint64]*time.Timer),
		workers:  4,
		poolSize: 64,
		idle:     1 * time.Second,
	}
	for _, opt := range options {
		opt(q)
	}
	q.pool = worker.NewDynamicWorkerPool(q.workers, q.poolSize, q.idle)
	return q
}

func (q *queue) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.pending = append(q.pending, fn)
	return true
}

func (q *queue) Drain() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range batch {
		q.run(fn)
	}
	return len(batch)
}

func (q *queue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dispatch: callback panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

func (q *queue) After(d time.Duration, fn func()) func() {
	id := q.nextTimer.Add(1)
	var cancelled atomic.Bool

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return func() {}
	}
	q.timers[id] = time.AfterFunc(d, func() {
		q.mu.Lock()
		delete(q.timers, id)
		q.mu.Unlock()

		q.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	q.mu.Unlock()

	return func() {
		if cancelled.Swap(true) {
			return
		}
		q.mu.Lock()
		defer q.mu.Unlock()
		if t, ok := q.timers[id]; ok {
			t.Stop()
			delete(q.timers, id)
		}
	}
}

func (q *queue) Async(work func() (any, error), done func(any, error)) {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return
	}

	id := int(q.nextTask.Add(1))
	q.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			result, err := work()
			if done != nil {
				q.Post(func() { done(result, err) })
			}
			return result, err
		},
	})
}

func (q *queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.pending = nil
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.mu.Unlock()

	// workers post completions, which takes q.mu
	q.pool.Stop()
}
