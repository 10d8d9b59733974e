package game

import (
	"sync"
	"time"
)

// Timer drives the countdown at a fixed tick granularity. Resume while
// already running is a no-op (no duplicate tickers), as is Pause while
// stopped. Ticks are delivered on the timer's own goroutine.
type Timer struct {
	interval time.Duration
	tick     func()

	mu   sync.Mutex
	stop chan struct{}
}

func NewTimer(interval time.Duration, tick func()) *Timer {
	return &Timer{interval: interval, tick: tick}
}

func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	stop := make(chan struct{})
	t.stop = stop

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				t.tick()
			}
		}
	}()
}

func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop == nil {
		return
	}
	close(t.stop)
	t.stop = nil
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}
