package dispatch

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePostDrainFIFO(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var got []int
	for i := range 5 {
		require.True(t, q.Post(func() { got = append(got, i) }))
	}
	assert.Equal(t, 5, q.Pending())
	assert.Equal(t, 5, q.Drain())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 0, q.Drain())
}

func TestQueuePostFromDrainRunsNextDrain(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var ran []string
	q.Post(func() {
		ran = append(ran, "outer")
		q.Post(func() { ran = append(ran, "inner") })
	})

	assert.Equal(t, 1, q.Drain())
	assert.Equal(t, []string{"outer"}, ran)
	assert.Equal(t, 1, q.Drain())
	assert.Equal(t, []string{"outer", "inner"}, ran)
}

func TestQueuePostConcurrent(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.Post(func() {})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, q.Drain())
}

func TestQueuePanickingCallbackIsSkipped(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	after := false
	q.Post(func() { panic("boom") })
	q.Post(func() { after = true })

	assert.NotPanics(t, func() { q.Drain() })
	assert.True(t, after)
}

func TestQueueAfter(t *testing.T) {
	t.Run("fires through drain", func(t *testing.T) {
		q := NewQueue()
		defer q.Close()

		var fired atomic.Bool
		q.After(10*time.Millisecond, func() { fired.Store(true) })

		assert.False(t, fired.Load())
		require.Eventually(t, func() bool {
			q.Drain()
			return fired.Load()
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("cancel before firing", func(t *testing.T) {
		q := NewQueue()
		defer q.Close()

		var fired atomic.Bool
		cancel := q.After(20*time.Millisecond, func() { fired.Store(true) })
		cancel()
		cancel()

		time.Sleep(60 * time.Millisecond)
		q.Drain()
		assert.False(t, fired.Load())
	})

	t.Run("cancel after posting", func(t *testing.T) {
		q := NewQueue()
		defer q.Close()

		var fired atomic.Bool
		cancel := q.After(time.Millisecond, func() { fired.Store(true) })
		require.Eventually(t, func() bool { return q.Pending() == 1 }, time.Second, time.Millisecond)

		cancel()
		q.Drain()
		assert.False(t, fired.Load())
	})
}

func TestQueueAsync(t *testing.T) {
	q := NewQueue(WithWorkers(2))
	defer q.Close()

	var result atomic.Value
	var gotErr atomic.Value
	q.Async(func() (any, error) {
		return 42, errors.New("partial")
	}, func(r any, err error) {
		result.Store(r)
		gotErr.Store(err)
	})

	require.Eventually(t, func() bool {
		q.Drain()
		return result.Load() != nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 42, result.Load())
	assert.EqualError(t, gotErr.Load().(error), "partial")
}

func TestQueueClose(t *testing.T) {
	q := NewQueue()

	ran := false
	q.Post(func() { ran = true })
	var fired atomic.Bool
	q.After(time.Millisecond, func() { fired.Store(true) })

	q.Close()
	q.Close()

	assert.False(t, q.Post(func() {}))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, q.Drain())
	assert.False(t, ran)
	assert.False(t, fired.Load())

	cancel := q.After(time.Millisecond, func() {})
	assert.NotPanics(t, cancel)
}

// countingPool records the pool calls the queue makes.
type countingPool struct {
	worker.DynamicWorkerPool

	stops     atomic.Int32
	submitted atomic.Int32
}

func (p *countingPool) Stop() {
	p.stops.Add(1)
	p.DynamicWorkerPool.Stop()
}

func (p *countingPool) SubmitTask(t worker.Task) {
	p.submitted.Add(1)
	p.DynamicWorkerPool.SubmitTask(t)
}

func TestQueueCloseStopsPool(t *testing.T) {
	q := NewQueue(WithWorkers(2)).(*queue)
	pool := &countingPool{DynamicWorkerPool: q.pool}
	q.pool = pool

	var ran atomic.Bool
	q.Async(func() (any, error) { return nil, nil }, func(any, error) { ran.Store(true) })
	require.Eventually(t, func() bool {
		q.Drain()
		return ran.Load()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), pool.submitted.Load())

	q.Close()
	q.Close()
	assert.Equal(t, int32(1), pool.stops.Load(), "pool stopped exactly once")

	var worked atomic.Bool
	q.Async(func() (any, error) {
		worked.Store(true)
		return nil, nil
	}, nil)
	assert.Equal(t, int32(1), pool.submitted.Load(), "no work submitted after Close")
	assert.False(t, worked.Load())
}
