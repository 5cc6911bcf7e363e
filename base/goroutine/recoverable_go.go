package goroutine

import (
	"github.com/walrens/gateway/base/log"
	"github.com/walrens/gateway/base/metrics"
	"github.com/walrens/gateway/base/utils"
)

var (
	logger = log.Log()
	met    = metrics.New("goroutine")
)

// PanicEvent is sent once when the goroutine recovered from a panic
type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type hooks struct {
	beforeStart    func()
	afterEnded     func()
	afterRecovered func(p interface{}, stack []byte)
}

// Option hooks into the lifecycle of a RecoverableGo goroutine
type Option func(*hooks)

func WithBeforeStart(f func()) Option {
	return func(h *hooks) {
		h.beforeStart = f
	}
}

// WithAfterEnded runs after f returns or panics, before any recovery hook
func WithAfterEnded(f func()) Option {
	return func(h *hooks) {
		h.afterEnded = f
	}
}

func WithAfterRecovered(f func(p interface{}, stack []byte)) Option {
	return func(h *hooks) {
		h.afterRecovered = f
	}
}

// RecoverableGo runs f on a new goroutine. The returned channel yields the
// PanicEvent if f panicked, and is closed without a value otherwise.
func RecoverableGo(f func(), opts ...Option) <-chan *PanicEvent {
	h := hooks{}
	for _, opt := range opts {
		opt(&h)
	}

	events := make(chan *PanicEvent, 1)
	go func() {
		defer func() {
			if h.afterEnded != nil {
				h.afterEnded()
			}

			p := recover()
			if p == nil {
				close(events)
				return
			}

			stack := stackOf()
			met.BumpSum("panic", 1)
			logger.WithFields(log.Fields{
				"err":   p,
				"stack": string(stack),
			}).Error("panic")

			if h.afterRecovered != nil {
				h.afterRecovered(p, stack)
			}
			events <- &PanicEvent{Panic: p, Stack: stack}
		}()

		if h.beforeStart != nil {
			h.beforeStart()
		}
		f()
	}()

	return events
}

func stackOf() []byte {
	// skip Callers, Stack, stackOf and the deferred func
	return utils.Stack(3)
}
