//go:build !linux

package analog

import "errors"

// RealSampler is not available on non-Linux platforms.
type RealSampler struct{}

// NewRealSampler returns an error on non-Linux platforms.
func NewRealSampler(scale float64) (*RealSampler, error) {
	return nil, errors.New("analog: not supported on this platform (requires Linux)")
}

// ReadChannel is not implemented on non-Linux platforms.
func (r *RealSampler) ReadChannel(int) (float64, error) {
	return 0, errors.New("analog: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealSampler) Close() error {
	return nil
}
