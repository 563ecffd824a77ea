//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealValves is not available on non-Linux platforms.
type RealValves struct{}

// NewRealValves returns an error on non-Linux platforms.
func NewRealValves(chipName string, pins ValvePins) (*RealValves, error) {
	return nil, errUnsupported
}

func (v *RealValves) SetFill(bool) error   { return errUnsupported }
func (v *RealValves) SetClean(bool) error  { return errUnsupported }
func (v *RealValves) SetAux(bool) error    { return errUnsupported }
func (v *RealValves) SetEnable(bool) error { return errUnsupported }
func (v *RealValves) Close() error         { return nil }

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

// NewRealButtons returns an error on non-Linux platforms.
func NewRealButtons(chipName string, offsets []int, settle time.Duration, h PatternHandler) (*RealButtons, error) {
	return nil, errUnsupported
}

// Close is a no-op on non-Linux platforms.
func (b *RealButtons) Close() error { return nil }
