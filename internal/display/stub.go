//go:build !linux

package display

import "errors"

// DefaultAddress is the I2C address of the PCF8574 backpack.
const DefaultAddress = 0x27

// LCD is not available on non-Linux platforms.
type LCD struct{}

// NewLCD returns an error on non-Linux platforms.
func NewLCD(busNum byte, addr byte) (*LCD, error) {
	return nil, errors.New("display: not supported on this platform (requires Linux)")
}

// Show is not implemented on non-Linux platforms.
func (l *LCD) Show(Lines) error {
	return errors.New("display: not supported")
}

// Close is not implemented on non-Linux platforms.
func (l *LCD) Close() error {
	return nil
}
