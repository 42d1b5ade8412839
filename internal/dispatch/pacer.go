package dispatch

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum spacing between outbound backend calls across the
// whole process. The check-and-reserve of the next dispatch slot is a single
// critical section, so two concurrent callers can never both observe a stale
// timestamp and proceed immediately; the sleep itself happens outside the
// lock.
type Pacer struct {
	mu       sync.Mutex
	minDelay time.Duration
	next     time.Time

	// now/sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer with the given minimum delay between dispatches.
func NewPacer(minDelay time.Duration) *Pacer {
	return &Pacer{
		minDelay: minDelay,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// NewPacerWithClock creates a pacer with an injected clock and sleeper.
func NewPacerWithClock(minDelay time.Duration, now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *Pacer {
	return &Pacer{minDelay: minDelay, now: now, sleep: sleep}
}

// Wait blocks until at least minDelay has elapsed since the previous
// reserved dispatch, then records the new dispatch time. It only fails on
// context cancellation.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := p.now()
	at := p.next
	if at.Before(now) {
		at = now
	}
	p.next = at.Add(p.minDelay)
	p.mu.Unlock()

	if d := at.Sub(now); d > 0 {
		return p.sleep(ctx, d)
	}
	return ctx.Err()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
