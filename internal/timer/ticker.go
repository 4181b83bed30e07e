// Package timer provides the cancelable periodic tick that drives countdown displays.
package timer

import (
	"sync"
	"time"
)

// Ticker calls fn on every interval until Stop. Start and Stop are idempotent;
// once Stop returns, fn is never called again.
type Ticker struct {
	interval time.Duration
	fn       func(now time.Time)

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New builds a stopped ticker.
func New(interval time.Duration, fn func(now time.Time)) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{
		interval: interval,
		fn:       fn,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the tick goroutine. Calls after the first, or after Stop, do nothing.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.stopped {
		return
	}
	t.started = true
	go t.run()
}

func (t *Ticker) run() {
	defer close(t.done)
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	for {
		select {
		case now := <-tk.C:
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			// fn runs under the lock so Stop cannot return while a tick is in flight.
			t.fn(now)
			t.mu.Unlock()
		case <-t.stop:
			return
		}
	}
}

// Stop tears the ticker down exactly once and waits for the goroutine to exit.
// It must not be called from inside fn.
func (t *Ticker) Stop() {
	t.once.Do(func() {
		t.mu.Lock()
		t.stopped = true
		started := t.started
		t.mu.Unlock()
		close(t.stop)
		if started {
			<-t.done
		}
	})
}
