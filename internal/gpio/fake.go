package gpio

import (
	"sync"

	"github.com/sweeney/basin-controller/internal/logic"
)

// FakeValves is a test double that records valve levels.
type FakeValves struct {
	mu sync.Mutex

	state logic.Outputs

	// History records the state after every Apply-sized change.
	History []logic.Outputs

	// Closed tracks if Close was called
	Closed bool

	// SetError, if set, will be returned by every setter.
	SetError error
}

// NewFakeValves creates FakeValves with every line off.
func NewFakeValves() *FakeValves {
	return &FakeValves{}
}

func (f *FakeValves) set(p *bool, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	if *p != on {
		*p = on
		f.History = append(f.History, f.state)
	}
	return nil
}

func (f *FakeValves) SetFill(on bool) error   { return f.set(&f.state.Fill, on) }
func (f *FakeValves) SetClean(on bool) error  { return f.set(&f.state.Clean, on) }
func (f *FakeValves) SetAux(on bool) error    { return f.set(&f.state.Aux, on) }
func (f *FakeValves) SetEnable(on bool) error { return f.set(&f.state.Enable, on) }

// State returns the current line levels.
func (f *FakeValves) State() logic.Outputs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Close de-energizes every line and marks the valves as closed.
func (f *FakeValves) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = logic.AllOff
	f.Closed = true
	return nil
}

// FakeButtons is a test double for a button source.
type FakeButtons struct {
	handler PatternHandler

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeButtons creates a FakeButtons that forwards presses to h.
func NewFakeButtons(h PatternHandler) *FakeButtons {
	return &FakeButtons{handler: h}
}

// Press delivers pattern as if it had settled after an edge.
func (f *FakeButtons) Press(pattern uint8) {
	if f.Closed {
		return
	}
	f.handler(pattern)
}

// Close stops delivering presses.
func (f *FakeButtons) Close() error {
	f.Closed = true
	return nil
}
