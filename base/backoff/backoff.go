package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Strategy computes the wait before the next attempt from the attempt count
type Strategy interface {
	Duration(count int, start time.Duration) time.Duration
}

// Backoff sleeps between attempts, growing per strategy up to limit
type Backoff struct {
	start    time.Duration
	limit    time.Duration
	jitter   float64
	count    int
	next     time.Duration
	strategy Strategy
}

func New(strategy Strategy, start, limit time.Duration) *Backoff {
	b := &Backoff{strategy: strategy, start: start, limit: limit}
	b.Reset()
	return b
}

// WithJitter spreads each wait by up to ratio of its length
func (b *Backoff) WithJitter(ratio float64) *Backoff {
	b.jitter = ratio
	return b
}

func (b *Backoff) Reset() {
	b.count = 0
	b.next = b.duration()
}

// Count is the number of completed waits
func (b *Backoff) Count() int {
	return b.count
}

// Next is the length of the coming wait, jitter excluded
func (b *Backoff) Next() time.Duration {
	return b.next
}

// Backoff waits for the next duration. It returns ctx.Err() when ctx is done first.
func (b *Backoff) Backoff(ctx context.Context) error {
	d := b.next
	if b.jitter > 0 {
		d += time.Duration(rand.Float64() * b.jitter * float64(d))
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	b.count++
	b.next = b.duration()
	return nil
}

func (b *Backoff) duration() time.Duration {
	d := b.strategy.Duration(b.count, b.start)
	if b.limit > 0 && d > b.limit {
		d = b.limit
	}
	return d
}

type exponential struct{}

func (exponential) Duration(count int, start time.Duration) time.Duration {
	return time.Duration(math.Pow(2, float64(count))) * start
}

func NewExponential(start, limit time.Duration) *Backoff {
	return New(exponential{}, start, limit)
}

type linear struct{}

func (linear) Duration(count int, start time.Duration) time.Duration {
	return time.Duration(count+1) * start
}

func NewLinear(start, limit time.Duration) *Backoff {
	return New(linear{}, start, limit)
}
