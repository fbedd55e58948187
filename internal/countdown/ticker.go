// Package countdown provides the scoped timer and stale-result guard used by
// live progress displays.
package countdown

import (
	"context"
	"sync"
	"time"
)

// Ticker calls a function on a fixed interval between Start and Stop. Stop
// blocks until the goroutine has exited, so no tick fires after it returns.
type Ticker struct {
	interval time.Duration
	fn       func(time.Time)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTicker(interval time.Duration, fn func(time.Time)) *Ticker {
	return &Ticker{interval: interval, fn: fn}
}

// Start begins ticking. The first call happens immediately. Starting a
// running ticker is a no-op. The ticker also stops when ctx is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.run(ctx, t.done)
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	t.fn(time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			// A tick and a cancel can be ready together
			if ctx.Err() != nil {
				return
			}
			t.fn(now)
		}
	}
}

// Stop cancels the ticker and waits for it to exit. It is safe to call more
// than once.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the ticker has been started and not stopped
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
