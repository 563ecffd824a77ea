//go:build linux

package analog

import (
	"fmt"
	"sync"

	"github.com/kidoman/embd"
	"github.com/kidoman/embd/convertors/mcp3008"
	_ "github.com/kidoman/embd/host/all"
)

const (
	spiChannel = 0
	spiSpeed   = 1000000
)

// RealSampler reads an MCP3008 on the Pi's SPI0 bus through embd.
type RealSampler struct {
	mu    sync.Mutex
	scale float64
	bus   embd.SPIBus
	adc   *mcp3008.MCP3008
}

// NewRealSampler opens the SPI bus. A scale <= 0 selects DefaultScale.
func NewRealSampler(scale float64) (*RealSampler, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	if err := embd.InitSPI(); err != nil {
		return nil, fmt.Errorf("init spi: %w", err)
	}
	bus := embd.NewSPIBus(embd.SPIMode0, spiChannel, spiSpeed, 8, 0)
	return &RealSampler{
		scale: scale,
		bus:   bus,
		adc:   mcp3008.New(mcp3008.SingleMode, bus),
	}, nil
}

// ReadChannel performs one single-ended conversion on ch and returns volts.
func (r *RealSampler) ReadChannel(ch int) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.adc.AnalogValueAt(ch)
	if err != nil {
		return 0, fmt.Errorf("read adc channel %d: %w", ch, err)
	}
	return float64(raw) / r.scale, nil
}

// Close releases the bus and the host SPI driver.
func (r *RealSampler) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if err := r.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close spi bus: %w", err))
	}
	if err := embd.CloseSPI(); err != nil {
		errs = append(errs, fmt.Errorf("close spi: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
