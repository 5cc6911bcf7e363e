package goroutine

import (
	"time"

	"github.com/viney-shih/goroutines"
	"github.com/walrens/gateway/base/log"
)

// Pool runs detached background tasks on a bounded set of workers.
type Pool struct {
	pool    *goroutines.Pool
	timeout time.Duration
}

// NewPool creates a pool of size workers with a task queue of queueLen.
// Schedule waits at most scheduleTimeout for a free slot.
func NewPool(size, queueLen int, scheduleTimeout time.Duration) *Pool {
	return &Pool{
		pool: goroutines.NewPool(
			size,
			goroutines.WithTaskQueueLength(queueLen),
			goroutines.WithPreAllocWorkers(size/4),
		),
		timeout: scheduleTimeout,
	}
}

// Go runs f on the pool and never blocks longer than the schedule timeout.
// When the pool is saturated f runs on its own goroutine.
// Panics in f are logged and swallowed.
func (p *Pool) Go(f func()) {
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(log.Fields{
					"err":   r,
					"stack": string(stackOf()),
				}).Error("panic in pool task")
			}
		}()
		f()
	}

	if err := p.pool.ScheduleWithTimeout(p.timeout, task); err != nil {
		logger.WithField("err", err).Warn("pool saturated, fallback to RecoverableGo")
		RecoverableGo(f)
	}
}

// Release waits for running tasks and stops the workers.
func (p *Pool) Release() {
	p.pool.Release()
}
