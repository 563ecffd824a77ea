// Package gpio drives the valve lines and reads the button panels.
// The real implementation uses the Linux GPIO character device.
// The fakes allow testing without hardware.
package gpio

import (
	"errors"
	"fmt"

	"github.com/sweeney/basin-controller/internal/logic"
)

// Valves is the actuator gateway. Every setter is idempotent.
type Valves interface {
	SetFill(on bool) error
	SetClean(on bool) error
	SetAux(on bool) error
	SetEnable(on bool) error

	// Close de-energizes every line and releases GPIO resources.
	Close() error
}

// Apply drives all four lines to o. It always attempts every line and
// returns the joined errors.
func Apply(v Valves, o logic.Outputs) error {
	var errs []error
	if err := v.SetFill(o.Fill); err != nil {
		errs = append(errs, fmt.Errorf("fill: %w", err))
	}
	if err := v.SetClean(o.Clean); err != nil {
		errs = append(errs, fmt.Errorf("clean: %w", err))
	}
	if err := v.SetAux(o.Aux); err != nil {
		errs = append(errs, fmt.Errorf("aux: %w", err))
	}
	if err := v.SetEnable(o.Enable); err != nil {
		errs = append(errs, fmt.Errorf("enable: %w", err))
	}
	return errors.Join(errs...)
}

// PatternHandler receives the settled pin pattern of a button source. Bit i
// is the level of the source's i-th line; lines are pulled up, so a pressed
// button reads 0.
type PatternHandler func(pattern uint8)

// Buttons is a running edge source. It calls its PatternHandler from its own
// goroutine until closed.
type Buttons interface {
	Close() error
}

// ValvePins holds the BCM line offsets of the four outputs.
type ValvePins struct {
	Fill   int `yaml:"fill"`
	Clean  int `yaml:"clean"`
	Aux    int `yaml:"aux"`
	Enable int `yaml:"enable"`
}

// Offsets returns the pins in fill, clean, aux, enable order.
func (p ValvePins) Offsets() []int {
	return []int{p.Fill, p.Clean, p.Aux, p.Enable}
}

// Pin definitions (BCM numbering)
var (
	DefaultValvePins = ValvePins{Fill: 17, Clean: 27, Aux: 22, Enable: 23}

	// DefaultPanelPins are the four local panel buttons, first button first.
	DefaultPanelPins = []int{5, 6, 13, 19}

	// DefaultExternalPins are the remote clean and fill buttons.
	DefaultExternalPins = []int{20, 21}
)

// DefaultChip is the GPIO character device used on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// Pattern packs line levels into a pattern, first line in bit 0.
func Pattern(values []int) uint8 {
	var p uint8
	for i, v := range values {
		if i >= 8 {
			break
		}
		if v != 0 {
			p |= 1 << i
		}
	}
	return p
}
