//go:build linux

package display

import (
	"fmt"

	"github.com/kidoman/embd"
	"github.com/kidoman/embd/controller/hd44780"
	_ "github.com/kidoman/embd/host/all"
	"github.com/kidoman/embd/interface/display/characterdisplay"
)

// DefaultAddress is the I2C address of the PCF8574 backpack.
const DefaultAddress = 0x27

// LCD is a 20x4 HD44780 display behind a PCF8574 I2C expander.
type LCD struct {
	d    *characterdisplay.Display
	last Lines
	seen bool
}

// NewLCD opens the display on I2C bus busNum at addr and clears it.
func NewLCD(busNum byte, addr byte) (*LCD, error) {
	if err := embd.InitI2C(); err != nil {
		return nil, fmt.Errorf("init i2c: %w", err)
	}
	bus := embd.NewI2CBus(busNum)

	dc, err := hd44780.NewI2C(bus, addr, hd44780.PCF8574PinMap, hd44780.RowAddress20Col, hd44780.TwoLine)
	if err != nil {
		embd.CloseI2C()
		return nil, fmt.Errorf("open hd44780 at 0x%02x: %w", addr, err)
	}
	if err := dc.BacklightOn(); err != nil {
		dc.Close()
		embd.CloseI2C()
		return nil, fmt.Errorf("backlight on: %w", err)
	}
	d := characterdisplay.New(dc, Width, Rows)
	if err := d.Clear(); err != nil {
		d.Close()
		embd.CloseI2C()
		return nil, fmt.Errorf("clear display: %w", err)
	}
	return &LCD{d: d}, nil
}

// Show rewrites only the rows that changed since the previous frame.
func (l *LCD) Show(lines Lines) error {
	for row, text := range lines {
		if l.seen && l.last[row] == text {
			continue
		}
		if err := l.d.SetCursor(0, row); err != nil {
			l.seen = false
			return fmt.Errorf("set cursor row %d: %w", row, err)
		}
		if err := l.d.Message(text); err != nil {
			l.seen = false
			return fmt.Errorf("write row %d: %w", row, err)
		}
		l.last[row] = text
	}
	l.seen = true
	return nil
}

// Close clears the screen and releases the bus.
func (l *LCD) Close() error {
	var errs []error
	if err := l.d.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("clear display: %w", err))
	}
	if err := l.d.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close display: %w", err))
	}
	if err := embd.CloseI2C(); err != nil {
		errs = append(errs, fmt.Errorf("close i2c: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
