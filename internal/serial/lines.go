// Package serial collects newline-terminated command lines from the serial
// command channel.
package serial

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// MaxLine is the capacity of the line buffer in bytes.
const MaxLine = 50

// LineReader assembles command lines byte by byte into a fixed buffer.
// A line longer than the buffer wraps the write index back to 0 and is
// dropped when its newline arrives. Carriage returns are skipped.
type LineReader struct {
	buf        [MaxLine]byte
	n          int
	overflowed bool
	overflows  atomic.Int64
}

// Feed consumes one byte. It returns the completed line and true when b
// terminates a line that fit in the buffer.
func (l *LineReader) Feed(b byte) (string, bool) {
	switch b {
	case '\r':
		return "", false
	case '\n':
		line := string(l.buf[:l.n])
		dropped := l.overflowed
		l.n = 0
		l.overflowed = false
		if dropped {
			return "", false
		}
		return line, true
	}
	if l.n == len(l.buf) {
		l.n = 0
		if !l.overflowed {
			l.overflows.Add(1)
		}
		l.overflowed = true
	}
	l.buf[l.n] = b
	l.n++
	return "", false
}

// Overflows returns how many lines were dropped for exceeding the buffer.
// It may be called while Run is reading.
func (l *LineReader) Overflows() int {
	return int(l.overflows.Load())
}

// Run reads r until EOF or error and calls fn with every complete line.
// A clean EOF returns nil.
func (l *LineReader) Run(r io.Reader, fn func(string)) error {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("serial read: %w", err)
		}
		if line, ok := l.Feed(b); ok {
			fn(line)
		}
	}
}
