package display

import "sync"

// Display performs the physical refresh of one screen.
type Display interface {
	Show(l Lines) error
	Close() error
}

// FakeDisplay is a test double that records every frame shown.
type FakeDisplay struct {
	mu     sync.Mutex
	frames []Lines

	// ShowError, if set, will be returned by Show().
	ShowError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeDisplay creates an empty FakeDisplay.
func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{}
}

// Show records l.
func (f *FakeDisplay) Show(l Lines) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ShowError != nil {
		return f.ShowError
	}
	f.frames = append(f.frames, l)
	return nil
}

// Frames returns a copy of every frame shown.
func (f *FakeDisplay) Frames() []Lines {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Lines, len(f.frames))
	copy(out, f.frames)
	return out
}

// Last returns the most recent frame, or blank lines before the first.
func (f *FakeDisplay) Last() Lines {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return Lines{}
	}
	return f.frames[len(f.frames)-1]
}

// Close marks the display as closed.
func (f *FakeDisplay) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Discard is a Display for running without a screen.
type Discard struct{}

func (Discard) Show(Lines) error { return nil }
func (Discard) Close() error     { return nil }
