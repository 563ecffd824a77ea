package gpio

import "time"

// settled turns a stream of edge timestamps into one pattern read per press.
// The first edge of a burst sleeps settle, then reads the whole group; any
// edge within settle of the last accepted one is bounce and is dropped.
// It must be called from a single goroutine.
func settled(settle time.Duration, read func() (uint8, bool), h PatternHandler) func(ts time.Duration) {
	var (
		last time.Duration
		seen bool
	)
	return func(ts time.Duration) {
		if seen && ts-last < settle {
			return
		}
		last, seen = ts, true
		time.Sleep(settle)
		if p, ok := read(); ok {
			h(p)
		}
	}
}
