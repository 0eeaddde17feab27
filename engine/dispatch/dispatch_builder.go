package dispatch

import "time"

// QueueBuilderOption is a functional option for configuring a Queue via NewQueue.
type QueueBuilderOption func(*queue)

// WithWorkers is an option builder that sets how many goroutines may run Async work at once.
//
// Parameters:
//   - n: the worker count (values below 1 are ignored)
//
// Returns:
//   - QueueBuilderOption: a function that applies the worker count option to a queue
func WithWorkers(n int) QueueBuilderOption {
	return func(q *queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithTaskBuffer is an option builder that sets how many Async tasks may wait for a worker.
//
// Parameters:
//   - n: the buffer size (values below 1 are ignored)
//
// Returns:
//   - QueueBuilderOption: a function that applies the buffer option to a queue
func WithTaskBuffer(n int) QueueBuilderOption {
	return func(q *queue) {
		if n > 0 {
			q.poolSize = n
		}
	}
}

// WithIdleTimeout is an option builder that sets how long an idle worker lives before exiting.
//
// Parameters:
//   - d: the idle timeout
//
// Returns:
//   - QueueBuilderOption: a function that applies the idle timeout option to a queue
func WithIdleTimeout(d time.Duration) QueueBuilderOption {
	return func(q *queue) {
		if d > 0 {
			q.idle = d
		}
	}
}
