// Package config holds the controller settings: factory defaults, an
// optional YAML file on top, and validation. Nothing is ever written back.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/basin-controller/internal/gpio"
	"github.com/sweeney/basin-controller/internal/logic"
)

// Schedule is the cycle timing, in seconds.
type Schedule struct {
	FillPeriod      uint32 `yaml:"fill_period"`
	CleanPeriod     uint32 `yaml:"clean_period"`
	CleanPeriodMin  uint32 `yaml:"clean_period_min"`
	CleanPeriodMax  uint32 `yaml:"clean_period_max"`
	CleanPeriodStep uint32 `yaml:"clean_period_step"`
	FillDuration    uint32 `yaml:"fill_duration"`
	TopoffDuration  uint32 `yaml:"topoff_duration"`
	TopoffMax       uint32 `yaml:"topoff_max"`
	CleanDuration   uint32 `yaml:"clean_duration"`
	AuxCutoff       uint32 `yaml:"aux_cutoff"`
}

// Logic converts s to the core's schedule.
func (s Schedule) Logic() logic.Schedule {
	return logic.Schedule{
		FillPeriod:      s.FillPeriod,
		CleanPeriod:     s.CleanPeriod,
		CleanPeriodMin:  s.CleanPeriodMin,
		CleanPeriodMax:  s.CleanPeriodMax,
		CleanPeriodStep: s.CleanPeriodStep,
		FillDuration:    s.FillDuration,
		TopoffDuration:  s.TopoffDuration,
		TopoffMax:       s.TopoffMax,
		CleanDuration:   s.CleanDuration,
		AuxCutoff:       s.AuxCutoff,
	}
}

// GPIO holds the chip and line offsets.
type GPIO struct {
	Chip     string         `yaml:"chip"`
	Valves   gpio.ValvePins `yaml:"valves"`
	Panel    []int          `yaml:"panel"`
	External []int          `yaml:"external"`
	Debounce time.Duration  `yaml:"debounce"`
}

// Serial is the command channel port. An empty Device disables it.
type Serial struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// Display is the I2C character display. Bus < 0 disables it.
type Display struct {
	Bus     int `yaml:"bus"`
	Address int `yaml:"address"`
}

// Analog is the MCP3008 calibration and night-mode threshold. The converter
// sits on the Raspberry Pi's SPI0 bus, chip select 0.
type Analog struct {
	Scale          float64 `yaml:"scale"`
	NightThreshold float64 `yaml:"night_threshold"`
}

// MQTT is the telemetry broker. An empty Broker disables publishing.
type MQTT struct {
	Broker    string        `yaml:"broker"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// Config is the complete controller configuration.
type Config struct {
	Schedule Schedule `yaml:"schedule"`
	GPIO     GPIO     `yaml:"gpio"`
	Serial   Serial   `yaml:"serial"`
	Display  Display  `yaml:"display"`
	Analog   Analog   `yaml:"analog"`
	MQTT     MQTT     `yaml:"mqtt"`

	// Frame is the main loop period.
	Frame time.Duration `yaml:"frame"`
	// SelfTestHold is how long the power-on self test result stays on
	// screen. Zero skips the self test.
	SelfTestHold time.Duration `yaml:"self_test_hold"`
	// HTTP is the status page address. Empty disables it.
	HTTP string `yaml:"http"`
}

// Default returns the factory configuration.
func Default() Config {
	s := logic.DefaultSchedule()
	return Config{
		Schedule: Schedule{
			FillPeriod:      s.FillPeriod,
			CleanPeriod:     s.CleanPeriod,
			CleanPeriodMin:  s.CleanPeriodMin,
			CleanPeriodMax:  s.CleanPeriodMax,
			CleanPeriodStep: s.CleanPeriodStep,
			FillDuration:    s.FillDuration,
			TopoffDuration:  s.TopoffDuration,
			TopoffMax:       s.TopoffMax,
			CleanDuration:   s.CleanDuration,
			AuxCutoff:       s.AuxCutoff,
		},
		GPIO: GPIO{
			Chip:     gpio.DefaultChip,
			Valves:   gpio.DefaultValvePins,
			Panel:    append([]int(nil), gpio.DefaultPanelPins...),
			External: append([]int(nil), gpio.DefaultExternalPins...),
			Debounce: 20 * time.Millisecond,
		},
		Serial: Serial{
			Device: "/dev/ttyS0",
			Baud:   9600,
		},
		Display: Display{
			Bus:     1,
			Address: 0x27,
		},
		Analog: Analog{
			Scale:          310,
			NightThreshold: 1.6,
		},
		MQTT: MQTT{
			Broker:    "tcp://192.168.1.200:1883",
			Heartbeat: 15 * time.Minute,
		},
		Frame:        100 * time.Millisecond,
		SelfTestHold: 10 * time.Second,
		HTTP:         ":80",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, rejecting unknown keys. Lists in the file
// replace the defaults as a whole.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the invariants the core relies on.
func (c Config) Validate() error {
	var errs []error
	s := c.Schedule

	if s.FillPeriod == 0 {
		errs = append(errs, errors.New("schedule: fill_period must be > 0"))
	} else {
		for _, v := range []struct {
			name string
			val  uint32
		}{
			{"clean_period", s.CleanPeriod},
			{"clean_period_min", s.CleanPeriodMin},
			{"clean_period_max", s.CleanPeriodMax},
			{"clean_period_step", s.CleanPeriodStep},
		} {
			if v.val%s.FillPeriod != 0 {
				errs = append(errs, fmt.Errorf("schedule: %s %d is not a multiple of fill_period %d", v.name, v.val, s.FillPeriod))
			}
		}
	}
	if s.CleanPeriodStep == 0 {
		errs = append(errs, errors.New("schedule: clean_period_step must be > 0"))
	}
	if s.CleanPeriodMin < s.FillPeriod*2 {
		errs = append(errs, fmt.Errorf("schedule: clean_period_min %d leaves less than one fill per clean", s.CleanPeriodMin))
	}
	if s.CleanPeriodMin > s.CleanPeriodMax {
		errs = append(errs, fmt.Errorf("schedule: clean_period_min %d > clean_period_max %d", s.CleanPeriodMin, s.CleanPeriodMax))
	}
	if s.CleanPeriod < s.CleanPeriodMin || s.CleanPeriod > s.CleanPeriodMax {
		errs = append(errs, fmt.Errorf("schedule: clean_period %d outside [%d, %d]", s.CleanPeriod, s.CleanPeriodMin, s.CleanPeriodMax))
	}
	if s.TopoffMax == 0 || s.TopoffDuration < 1 || s.TopoffDuration > s.TopoffMax {
		errs = append(errs, fmt.Errorf("schedule: topoff_duration %d outside [1, %d]", s.TopoffDuration, s.TopoffMax))
	}
	if s.FillDuration == 0 || s.CleanDuration == 0 {
		errs = append(errs, errors.New("schedule: fill_duration and clean_duration must be > 0"))
	}
	if s.FillDuration >= s.FillPeriod || s.CleanDuration >= s.FillPeriod || s.TopoffMax >= s.FillPeriod {
		errs = append(errs, errors.New("schedule: cycle durations must be shorter than fill_period"))
	}
	if s.AuxCutoff > s.CleanDuration {
		errs = append(errs, fmt.Errorf("schedule: aux_cutoff %d > clean_duration %d", s.AuxCutoff, s.CleanDuration))
	}

	if c.GPIO.Chip == "" {
		errs = append(errs, errors.New("gpio: chip must be set"))
	}
	if len(c.GPIO.Panel) != 4 {
		errs = append(errs, fmt.Errorf("gpio: panel needs 4 pins, got %d", len(c.GPIO.Panel)))
	}
	if len(c.GPIO.External) != 2 {
		errs = append(errs, fmt.Errorf("gpio: external needs 2 pins, got %d", len(c.GPIO.External)))
	}
	seen := make(map[int]bool)
	all := append(append(c.GPIO.Valves.Offsets(), c.GPIO.Panel...), c.GPIO.External...)
	for _, p := range all {
		if p < 0 {
			errs = append(errs, fmt.Errorf("gpio: invalid pin %d", p))
			continue
		}
		if seen[p] {
			errs = append(errs, fmt.Errorf("gpio: pin %d assigned twice", p))
		}
		seen[p] = true
	}
	if c.GPIO.Debounce < 0 || c.GPIO.Debounce >= time.Second {
		errs = append(errs, fmt.Errorf("gpio: debounce %v must be within [0, 1s)", c.GPIO.Debounce))
	}

	if c.Serial.Device != "" && c.Serial.Baud <= 0 {
		errs = append(errs, fmt.Errorf("serial: invalid baud %d", c.Serial.Baud))
	}
	if c.Display.Bus >= 0 && (c.Display.Address <= 0 || c.Display.Address > 0x7F) {
		errs = append(errs, fmt.Errorf("display: invalid i2c address 0x%x", c.Display.Address))
	}
	if c.Analog.Scale <= 0 {
		errs = append(errs, errors.New("analog: scale must be > 0"))
	}
	if c.Frame <= 0 || c.Frame > time.Second {
		errs = append(errs, fmt.Errorf("frame %v must be within (0, 1s]", c.Frame))
	}
	if c.SelfTestHold < 0 {
		errs = append(errs, errors.New("self_test_hold must be >= 0"))
	}
	if c.MQTT.Heartbeat < 0 {
		errs = append(errs, errors.New("mqtt: heartbeat must be >= 0"))
	}

	return errors.Join(errs...)
}
