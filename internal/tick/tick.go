// Package tick provides the one-second counter shared between the tick
// source and the main loop.
//
// The counter is the only multi-byte value written from more than one
// context. Every access goes through a single atomic operation, which plays
// the part of a critical section: the tick context only ever adds one, the
// main loop only ever loads or stores.
package tick

import (
	"context"
	"sync/atomic"
	"time"
)

// Period is the real-time length of one tick.
const Period = time.Second

// Ticker is the narrow handle given to the tick context. It can advance the
// counter and nothing else.
type Ticker interface {
	Tick()
}

// Clock is an unsigned wraparound second counter.
type Clock struct {
	v atomic.Uint32
}

// Tick advances the counter by one.
func (c *Clock) Tick() {
	c.v.Add(1)
}

// Load returns the current counter value.
func (c *Clock) Load() uint32 {
	return c.v.Load()
}

// Reset overwrites the counter. Only the main loop may call it. A tick that
// lands between the caller's Load and Reset is lost, which stays within the
// one-tick tolerance of the schedule.
func (c *Clock) Reset(v uint32) {
	c.v.Store(v)
}

// Run advances t once per value received on tick until ctx is done. It does
// nothing else, so it cannot hold up the button handlers.
func Run(ctx context.Context, t Ticker, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			t.Tick()
		}
	}
}
