package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock drives the pacer deterministically: sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestPacerFirstCallDoesNotSleep(t *testing.T) {
	clock := newFakeClock()
	p := NewPacerWithClock(500*time.Millisecond, clock.Now, clock.Sleep)

	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("Expected no sleep on first call, got %v", clock.sleeps)
	}
}

func TestPacerEnforcesMinDelay(t *testing.T) {
	clock := newFakeClock()
	p := NewPacerWithClock(500*time.Millisecond, clock.Now, clock.Sleep)
	ctx := context.Background()

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("second Wait failed: %v", err)
	}

	if len(clock.sleeps) != 1 {
		t.Fatalf("Expected exactly one sleep, got %d", len(clock.sleeps))
	}
	if clock.sleeps[0] != 500*time.Millisecond {
		t.Errorf("Expected 500ms sleep, got %v", clock.sleeps[0])
	}
}

func TestPacerNoSleepAfterDelayElapsed(t *testing.T) {
	clock := newFakeClock()
	p := NewPacerWithClock(500*time.Millisecond, clock.Now, clock.Sleep)
	ctx := context.Background()

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}
	clock.Advance(time.Second)
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("second Wait failed: %v", err)
	}

	if len(clock.sleeps) != 0 {
		t.Errorf("Expected no sleep after delay elapsed, got %v", clock.sleeps)
	}
}

func TestPacerSerializesBurst(t *testing.T) {
	clock := newFakeClock()
	p := NewPacerWithClock(500*time.Millisecond, clock.Now, clock.Sleep)
	ctx := context.Background()

	// Five back-to-back calls reserve strictly increasing slots.
	for i := 0; i < 5; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
	}

	var total time.Duration
	for _, d := range clock.sleeps {
		if d <= 0 {
			t.Errorf("Expected positive sleep, got %v", d)
		}
		total += d
	}
	// Four waits of 500ms after the free first call.
	if total != 2*time.Second {
		t.Errorf("Expected 2s total sleep across burst, got %v", total)
	}
}

func TestPacerCancellation(t *testing.T) {
	clock := newFakeClock()
	p := NewPacerWithClock(500*time.Millisecond, clock.Now, clock.Sleep)

	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	cancel()
	if err := p.Wait(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestPacerConcurrentCallersNeverShareSlot(t *testing.T) {
	const minDelay = 10 * time.Millisecond
	const callers = 5
	p := NewPacer(minDelay)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if err := p.Wait(ctx); err != nil {
				t.Errorf("Wait failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// The first slot is free; every other caller reserved a distinct slot,
	// so the burst cannot complete faster than (callers-1) delays.
	elapsed := time.Since(start)
	if elapsed < (callers-1)*minDelay {
		t.Errorf("Burst of %d completed in %v, want at least %v", callers, elapsed, (callers-1)*minDelay)
	}
}
