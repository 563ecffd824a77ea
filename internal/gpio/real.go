//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealValves drives the valve lines on actual hardware.
type RealValves struct {
	chip  *gpiocdev.Chip
	lines [4]*gpiocdev.Line
}

const (
	lineFill = iota
	lineClean
	lineAux
	lineEnable
)

var lineNames = [4]string{"fill", "clean", "aux", "enable"}

// NewRealValves requests the four valve lines as outputs, all driven low.
func NewRealValves(chipName string, pins ValvePins) (*RealValves, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	v := &RealValves{chip: chip}
	for i, offset := range pins.Offsets() {
		l, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
		if err != nil {
			v.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", lineNames[i], offset, err)
		}
		v.lines[i] = l
	}
	return v, nil
}

func (v *RealValves) set(i int, on bool) error {
	val := 0
	if on {
		val = 1
	}
	if err := v.lines[i].SetValue(val); err != nil {
		return fmt.Errorf("set %s pin: %w", lineNames[i], err)
	}
	return nil
}

func (v *RealValves) SetFill(on bool) error   { return v.set(lineFill, on) }
func (v *RealValves) SetClean(on bool) error  { return v.set(lineClean, on) }
func (v *RealValves) SetAux(on bool) error    { return v.set(lineAux, on) }
func (v *RealValves) SetEnable(on bool) error { return v.set(lineEnable, on) }

// Close drives every line low, then leaves it as a pulled-down input so the
// SSR inputs cannot float while the daemon is down.
func (v *RealValves) Close() error {
	var errs []error
	for i, l := range v.lines {
		if l == nil {
			continue
		}
		if err := l.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s pin: %w", lineNames[i], err))
		}
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", lineNames[i], err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", lineNames[i], err))
		}
	}
	if v.chip != nil {
		if err := v.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealButtons watches a group of button lines for falling edges.
type RealButtons struct {
	chip  *gpiocdev.Chip
	lines atomic.Pointer[gpiocdev.Lines]
	edge  func(ts time.Duration)
}

// NewRealButtons requests offsets as pulled-up inputs and calls h with the
// pattern of the whole group once settle has passed after each falling edge.
func NewRealButtons(chipName string, offsets []int, settle time.Duration, h PatternHandler) (*RealButtons, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &RealButtons{chip: chip}
	b.edge = settled(settle, b.read, h)
	lines, err := chip.RequestLines(offsets,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(b.onEdge),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pins %v: %w", offsets, err)
	}
	b.lines.Store(lines)
	return b, nil
}

// onEdge runs on the gpiocdev event goroutine, once per queued kernel event.
func (b *RealButtons) onEdge(evt gpiocdev.LineEvent) {
	b.edge(evt.Timestamp)
}

func (b *RealButtons) read() (uint8, bool) {
	lines := b.lines.Load()
	if lines == nil {
		return 0, false
	}
	values := make([]int, len(lines.Offsets()))
	if err := lines.Values(values); err != nil {
		return 0, false
	}
	return Pattern(values), true
}

// Close releases the button lines.
func (b *RealButtons) Close() error {
	var errs []error
	if lines := b.lines.Swap(nil); lines != nil {
		if err := lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pins: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
