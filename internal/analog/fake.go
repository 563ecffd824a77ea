package analog

import (
	"errors"
	"sync"
)

// FakeSampler is a test double that returns fixed voltages per channel.
type FakeSampler struct {
	mu sync.Mutex

	// Volts maps a channel to the voltage it reads.
	Volts map[int]float64

	// Errors maps a channel to the error its read returns.
	Errors map[int]error

	// Reads counts conversions per channel.
	Reads map[int]int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeSampler creates a FakeSampler reading volts.
func NewFakeSampler(volts map[int]float64) *FakeSampler {
	if volts == nil {
		volts = make(map[int]float64)
	}
	return &FakeSampler{Volts: volts, Errors: make(map[int]error), Reads: make(map[int]int)}
}

// Set changes the voltage on ch.
func (f *FakeSampler) Set(ch int, v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Volts[ch] = v
}

// ReadChannel returns the configured voltage for ch.
func (f *FakeSampler) ReadChannel(ch int) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads[ch]++
	if err := f.Errors[ch]; err != nil {
		return 0, err
	}
	v, ok := f.Volts[ch]
	if !ok {
		return 0, errors.New("no voltage configured")
	}
	return v, nil
}

// ReadCount returns how many conversions ran on ch.
func (f *FakeSampler) ReadCount(ch int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Reads[ch]
}

// Close marks the sampler as closed.
func (f *FakeSampler) Close() error {
	f.Closed = true
	return nil
}
