package game

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	var fired int32
	c := NewCountdown()
	done := make(chan struct{}, 1)
	c.Start(120*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
		done <- struct{}{}
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for expiry")
	}

	// Give any spurious second invocation time to surface.
	time.Sleep(200 * time.Millisecond)
	if n := atomic.LoadInt32(&fired); n != 1 {
		t.Fatalf("onExpire fired %d times, want 1", n)
	}
	if c.State() != TimerExpired {
		t.Fatalf("state=%v, want expired", c.State())
	}
	if c.Remaining() != 0 {
		t.Fatalf("remaining=%v after expiry, want 0", c.Remaining())
	}
}

func TestCountdownCancelPreventsExpiry(t *testing.T) {
	var fired int32
	c := NewCountdown()
	c.Start(100*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	if !c.Cancel() {
		t.Fatalf("Cancel returned false on a running countdown")
	}
	// Idempotent: further cancels are safe no-ops.
	if c.Cancel() {
		t.Fatalf("second Cancel returned true")
	}

	time.Sleep(300 * time.Millisecond)
	if n := atomic.LoadInt32(&fired); n != 0 {
		t.Fatalf("onExpire fired %d times after cancel, want 0", n)
	}
	if c.State() != TimerCancelled {
		t.Fatalf("state=%v, want cancelled", c.State())
	}
}

func TestCountdownCancelAfterExpiryReturnsFalse(t *testing.T) {
	c := NewCountdown()
	done := make(chan struct{}, 1)
	c.Start(80*time.Millisecond, func() { done <- struct{}{} })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for expiry")
	}
	if c.Cancel() {
		t.Fatalf("Cancel returned true after expiry")
	}
}

func TestCountdownRemainingMonotone(t *testing.T) {
	c := NewCountdown()
	c.Start(500*time.Millisecond, func() {})
	defer c.Cancel()

	prev := c.Remaining()
	for i := 0; i < 20; i++ {
		time.Sleep(10 * time.Millisecond)
		cur := c.Remaining()
		if cur > prev {
			t.Fatalf("remaining increased: %v → %v", prev, cur)
		}
		prev = cur
	}
}

func TestCountdownResetRestartsClock(t *testing.T) {
	var fired int32
	c := NewCountdown()
	c.Start(60*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	// Keep pushing the deadline out; the original expiry must not land.
	for i := 0; i < 3; i++ {
		time.Sleep(30 * time.Millisecond)
		c.Reset(200 * time.Millisecond)
	}
	if n := atomic.LoadInt32(&fired); n != 0 {
		t.Fatalf("onExpire fired %d times during resets, want 0", n)
	}

	time.Sleep(400 * time.Millisecond)
	if n := atomic.LoadInt32(&fired); n != 1 {
		t.Fatalf("onExpire fired %d times after final reset, want 1", n)
	}
}
