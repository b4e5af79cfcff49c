// internal/game/timer.go
//
// Countdown clock for a round.
// State machine: Idle → Running → {Expired, Cancelled}.
//
// Guarantees:
//   - onExpire is invoked at most once per Start, and never after Cancel
//     wins the race with an in-flight tick.
//   - Cancel is idempotent and reports whether it stopped a running clock
//     (false means the countdown already expired or was never running).
//   - Remaining() is monotonically non-increasing while Running.
//
// Ticks at a fixed sub-second resolution; each runner goroutine carries an
// epoch so a stale runner from a previous Start can never touch the clock.

package game

import (
	"sync"
	"time"
)

// TimerState is the countdown lifecycle state.
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerExpired
	TimerCancelled
)

// tickInterval is the countdown resolution.
const tickInterval = 50 * time.Millisecond

// Countdown is a cancellable, resettable round clock.
type Countdown struct {
	mu        sync.Mutex
	state     TimerState
	epoch     uint64
	deadline  time.Time
	remaining time.Duration
	stop      chan struct{}
	onExpire  func()
}

// NewCountdown returns an idle countdown.
func NewCountdown() *Countdown {
	return &Countdown{}
}

// Start begins a countdown of d, invoking onExpire (on its own goroutine)
// when it reaches zero. Any previous countdown is cancelled first.
func (c *Countdown) Start(d time.Duration, onExpire func()) {
	c.mu.Lock()
	c.stopLocked()
	c.epoch++
	c.state = TimerRunning
	c.deadline = time.Now().Add(d)
	c.remaining = d
	c.onExpire = onExpire
	c.stop = make(chan struct{})
	epoch := c.epoch
	stop := c.stop
	c.mu.Unlock()

	go c.run(epoch, stop)
}

// Reset restarts the countdown with a new duration, keeping the callback.
// No-op on an idle clock.
func (c *Countdown) Reset(d time.Duration) {
	c.mu.Lock()
	onExpire := c.onExpire
	idle := c.state == TimerIdle
	c.mu.Unlock()
	if idle || onExpire == nil {
		return
	}
	c.Start(d, onExpire)
}

// Cancel stops the countdown. Returns true if it stopped a running clock,
// meaning the pending expiry will never fire. Safe to call repeatedly.
func (c *Countdown) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != TimerRunning {
		return false
	}
	c.state = TimerCancelled
	c.stopLocked()
	return true
}

// State reports the current lifecycle state.
func (c *Countdown) State() TimerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining reports time left on the clock. Zero once expired or cancelled.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != TimerRunning {
		return 0
	}
	return c.remainingLocked()
}

// remainingLocked clamps the wall-clock remainder so reads never increase.
func (c *Countdown) remainingLocked() time.Duration {
	left := time.Until(c.deadline)
	if left > c.remaining {
		left = c.remaining
	}
	if left < 0 {
		left = 0
	}
	c.remaining = left
	return left
}

// stopLocked closes the current runner's stop channel, if any.
func (c *Countdown) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// run is the ticking goroutine for one Start epoch.
func (c *Countdown) run(epoch uint64, stop chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.epoch != epoch || c.state != TimerRunning {
				c.mu.Unlock()
				return
			}
			if c.remainingLocked() > 0 {
				c.mu.Unlock()
				continue
			}
			// Expiry commits under the lock, so a concurrent Cancel
			// either beat us (state != Running above) or arrives too
			// late to stop the callback.
			c.state = TimerExpired
			onExpire := c.onExpire
			c.stop = nil
			c.mu.Unlock()

			if onExpire != nil {
				go onExpire()
			}
			return
		}
	}
}
