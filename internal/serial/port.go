package serial

import (
	"fmt"

	bugst "go.bug.st/serial"
)

// DefaultBaud is the command channel line rate.
const DefaultBaud = 9600

// Open opens the named serial device at baud, 8N1.
func Open(name string, baud int) (bugst.Port, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := bugst.Open(name, &bugst.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	return p, nil
}
