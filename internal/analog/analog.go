// Package analog reads calibrated voltages from the ADC channels used for
// the night-mode light sensor and the SSR sense lines.
package analog

import (
	"errors"
	"fmt"
)

// Sampler performs one conversion per call. A conversion may take a few
// milliseconds; callers run it from the main loop only.
type Sampler interface {
	ReadChannel(ch int) (float64, error)
	Close() error
}

// Channel assignments on the MCP3008.
const (
	ChannelAmbient = 3
	ChannelFill    = 4
	ChannelAux     = 5
	ChannelClean   = 6
)

// DefaultScale is the number of counts per volt for the 10-bit converter
// with a 3.3 V reference.
const DefaultScale = 310.0

// GoodThreshold is the voltage an energized SSR sense line must exceed.
const GoodThreshold = 1.0

// Sense holds the three SSR sense voltages.
type Sense struct {
	Fill  float64 `json:"fill"`
	Aux   float64 `json:"aux"`
	Clean float64 `json:"clean"`
}

// ReadSense samples the three SSR sense channels. It reads every channel
// even if one fails.
func ReadSense(s Sampler) (Sense, error) {
	var out Sense
	var errs []error
	for _, c := range []struct {
		ch  int
		dst *float64
	}{
		{ChannelFill, &out.Fill},
		{ChannelAux, &out.Aux},
		{ChannelClean, &out.Clean},
	} {
		v, err := s.ReadChannel(c.ch)
		if err != nil {
			errs = append(errs, fmt.Errorf("channel %d: %w", c.ch, err))
			continue
		}
		*c.dst = v
	}
	return out, errors.Join(errs...)
}

// Report is the outcome of the power-on self test.
type Report struct {
	Sense   Sense   `json:"sense"`
	Ambient float64 `json:"ambient"`
}

// FillGood reports whether the fill SSR sense line is live.
func (r Report) FillGood() bool { return r.Sense.Fill > GoodThreshold }

// AuxGood reports whether the auxiliary SSR sense line is live.
func (r Report) AuxGood() bool { return r.Sense.Aux > GoodThreshold }

// CleanGood reports whether the clean SSR sense line is live.
func (r Report) CleanGood() bool { return r.Sense.Clean > GoodThreshold }

// SolarGood reports whether the light sensor reads a plausible voltage.
func (r Report) SolarGood() bool { return r.Ambient > GoodThreshold }

// Passed reports whether every check is good.
func (r Report) Passed() bool {
	return r.FillGood() && r.AuxGood() && r.CleanGood() && r.SolarGood()
}

// SelfTest samples the sense and ambient channels. The caller energizes the
// outputs before and clears them after.
func SelfTest(s Sampler) (Report, error) {
	sense, err := ReadSense(s)
	ambient, aerr := s.ReadChannel(ChannelAmbient)
	if aerr != nil {
		aerr = fmt.Errorf("channel %d: %w", ChannelAmbient, aerr)
	}
	return Report{Sense: sense, Ambient: ambient}, errors.Join(err, aerr)
}
