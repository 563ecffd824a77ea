// Package input turns raw button patterns and serial command lines into
// intents and hands them to the main loop.
package input

import (
	"sync/atomic"

	"github.com/sweeney/basin-controller/internal/logic"
)

// Slot is a single pending intent. Writers overwrite whatever has not yet
// been drained (last write wins); the main loop drains once per iteration.
// Post and Drain are each one atomic pointer operation, so neither blocks.
type Slot struct {
	p          atomic.Pointer[logic.Intent]
	overwrites atomic.Uint32
}

// Post stores it as the pending intent, replacing any undrained one.
func (s *Slot) Post(it logic.Intent) {
	if old := s.p.Swap(&it); old != nil {
		s.overwrites.Add(1)
	}
}

// Drain takes the pending intent, if any.
func (s *Slot) Drain() (logic.Intent, bool) {
	p := s.p.Swap(nil)
	if p == nil {
		return logic.Intent{}, false
	}
	return *p, true
}

// Overwrites returns how many intents were dropped by a later Post.
func (s *Slot) Overwrites() uint32 {
	return s.overwrites.Load()
}

// ModeView publishes the current mode kind from the main loop to the input
// handlers, which need it to interpret a button pattern.
type ModeView struct {
	v atomic.Value
}

// Publish records the mode the main loop settled on.
func (m *ModeView) Publish(k logic.ModeKind) {
	m.v.Store(k)
}

// Load returns the last published mode, or Home before the first Publish.
func (m *ModeView) Load() logic.ModeKind {
	k, ok := m.v.Load().(logic.ModeKind)
	if !ok {
		return logic.KindHome
	}
	return k
}
