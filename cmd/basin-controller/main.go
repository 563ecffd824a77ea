// Command basin-controller runs the fill/clean cycle schedule, drives the
// valves and the operator display, and publishes cycle events to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/basin-controller/internal/analog"
	"github.com/sweeney/basin-controller/internal/config"
	"github.com/sweeney/basin-controller/internal/display"
	"github.com/sweeney/basin-controller/internal/gpio"
	"github.com/sweeney/basin-controller/internal/input"
	"github.com/sweeney/basin-controller/internal/logic"
	"github.com/sweeney/basin-controller/internal/mqtt"
	"github.com/sweeney/basin-controller/internal/serial"
	"github.com/sweeney/basin-controller/internal/status"
	"github.com/sweeney/basin-controller/internal/tick"
	"github.com/sweeney/basin-controller/internal/web"
)

const clientID = "basin-controller"

func main() {
	def := config.Default()

	configPath := flag.String("config", "", "YAML config file (factory defaults when empty)")
	broker := flag.String("broker", def.MQTT.Broker, "MQTT broker address (empty to disable)")
	heartbeat := flag.Duration("heartbeat", def.MQTT.Heartbeat, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", def.HTTP, "HTTP status address (empty to disable)")
	serialDev := flag.String("serial", def.Serial.Device, "Serial command device (empty to disable)")
	frame := flag.Duration("frame", def.Frame, "Main loop period")
	debounce := flag.Duration("debounce", def.GPIO.Debounce, "Button settle time")
	selfTestOnly := flag.Bool("self-test", false, "Run the power-on self test, print the result and exit")

	flag.Parse()

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("fatal: %v", err)
		}
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "broker":
			cfg.MQTT.Broker = *broker
		case "heartbeat":
			cfg.MQTT.Heartbeat = *heartbeat
		case "http":
			cfg.HTTP = *httpAddr
		case "serial":
			cfg.Serial.Device = *serialDev
		case "frame":
			cfg.Frame = *frame
		case "debounce":
			cfg.GPIO.Debounce = *debounce
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: invalid config: %v", err)
	}

	if err := run(cfg, *selfTestOnly); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, selfTestOnly bool) error {
	valves, err := gpio.NewRealValves(cfg.GPIO.Chip, cfg.GPIO.Valves)
	if err != nil {
		return fmt.Errorf("init valves: %w", err)
	}
	defer valves.Close()

	sampler, err := analog.NewRealSampler(cfg.Analog.Scale)
	if err != nil {
		return fmt.Errorf("init analog: %w", err)
	}
	defer sampler.Close()

	var disp display.Display = display.Discard{}
	if cfg.Display.Bus >= 0 {
		lcd, err := display.NewLCD(byte(cfg.Display.Bus), byte(cfg.Display.Address))
		if err != nil {
			log.Printf("display: %v (continuing without display)", err)
		} else {
			disp = lcd
			defer lcd.Close()
		}
	}

	// Self test mode
	if selfTestOnly {
		report, err := selfTest(valves, sampler, disp, 0, time.Sleep)
		if err != nil {
			log.Printf("self test: %v", err)
		}
		for _, l := range display.FormatSelfTest(report) {
			fmt.Println(strings.TrimRight(l, " "))
		}
		fmt.Printf("sense: fill=%.2fV aux=%.2fV clean=%.2fV ambient=%.2fV\n",
			report.Sense.Fill, report.Sense.Aux, report.Sense.Clean, report.Ambient)
		return nil
	}

	// Initialize MQTT
	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.Discard{}
	if cfg.MQTT.Broker != "" {
		publisher = mqtt.NewRealPublisher(cfg.MQTT.Broker, clientID)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		FrameMs:        cfg.Frame.Milliseconds(),
		DebounceMs:     cfg.GPIO.Debounce.Milliseconds(),
		HeartbeatMs:    cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:         cfg.MQTT.Broker,
		HTTPPort:       cfg.HTTP,
		SerialDevice:   cfg.Serial.Device,
		NightThreshold: cfg.Analog.NightThreshold,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	if cfg.SelfTestHold > 0 {
		report, err := selfTest(valves, sampler, disp, cfg.SelfTestHold, time.Sleep)
		if err != nil {
			log.Printf("self test: %v", err)
		}
		verdict := selfTestVerdict(report, err)
		log.Printf("self test: %s", verdict)
		tracker.SetSelfTest(verdict)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := &tick.Clock{}
	secs := time.NewTicker(tick.Period)
	defer secs.Stop()
	go tick.Run(ctx, clock, secs.C)

	slot := &input.Slot{}
	view := &input.ModeView{}
	handlers := input.NewHandlers(slot, view)

	panel, err := gpio.NewRealButtons(cfg.GPIO.Chip, cfg.GPIO.Panel, cfg.GPIO.Debounce, handlers.Panel)
	if err != nil {
		return fmt.Errorf("init panel buttons: %w", err)
	}
	defer panel.Close()

	external, err := gpio.NewRealButtons(cfg.GPIO.Chip, cfg.GPIO.External, cfg.GPIO.Debounce, handlers.External)
	if err != nil {
		return fmt.Errorf("init external buttons: %w", err)
	}
	defer external.Close()

	lines := &serial.LineReader{}
	if cfg.Serial.Device != "" {
		port, err := serial.Open(cfg.Serial.Device, cfg.Serial.Baud)
		if err != nil {
			log.Printf("serial: %v (continuing without command channel)", err)
		} else {
			defer port.Close()
			go func() {
				if err := lines.Run(port, handlers.Command); err != nil && ctx.Err() == nil {
					log.Printf("serial: %v", err)
				}
			}()
			log.Printf("serial command channel on %s at %d baud", cfg.Serial.Device, cfg.Serial.Baud)
		}
	}

	// Start HTTP status server
	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}

	log.Printf("started: frame=%v debounce=%v broker=%s heartbeat=%v fill_period=%ds clean_period=%ds",
		cfg.Frame, cfg.GPIO.Debounce, cfg.MQTT.Broker, cfg.MQTT.Heartbeat,
		cfg.Schedule.FillPeriod, cfg.Schedule.CleanPeriod)

	frames := time.NewTicker(cfg.Frame)
	defer frames.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	d := deps{
		machine:    logic.NewMachine(cfg.Schedule.Logic(), cfg.Analog.NightThreshold),
		clock:      clock,
		slot:       slot,
		view:       view,
		valves:     valves,
		sampler:    sampler,
		display:    disp,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		lines:      lines,
		heartbeat:  cfg.MQTT.Heartbeat,
	}
	return runLoop(d, time.Now, frames.C, sigCh)
}

// deps is everything the main loop reads from or writes to.
type deps struct {
	machine    *logic.Machine
	clock      *tick.Clock
	slot       *input.Slot
	view       *input.ModeView
	valves     gpio.Valves
	sampler    analog.Sampler
	display    display.Display
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus // may be nil
	tracker    *status.Tracker       // may be nil
	lines      *serial.LineReader    // may be nil
	heartbeat  time.Duration
}

// selfTest energizes every output, samples the sense lines, shows the result
// for hold and de-energizes again.
func selfTest(valves gpio.Valves, sampler analog.Sampler, disp display.Display, hold time.Duration, sleep func(time.Duration)) (analog.Report, error) {
	if err := gpio.Apply(valves, logic.AllOn); err != nil {
		log.Printf("self test: energize: %v", err)
	}
	report, err := analog.SelfTest(sampler)
	if serr := disp.Show(display.FormatSelfTest(report)); serr != nil {
		log.Printf("display: %v", serr)
	}
	if hold > 0 {
		sleep(hold)
	}
	if aerr := gpio.Apply(valves, logic.AllOff); aerr != nil {
		err = errors.Join(err, fmt.Errorf("de-energize: %w", aerr))
	}
	return report, err
}

func selfTestVerdict(r analog.Report, err error) string {
	if err != nil {
		return "ERROR"
	}
	var failed []string
	if !r.FillGood() {
		failed = append(failed, "fill")
	}
	if !r.CleanGood() {
		failed = append(failed, "clean")
	}
	if !r.AuxGood() {
		failed = append(failed, "aux")
	}
	if !r.SolarGood() {
		failed = append(failed, "solar")
	}
	if len(failed) == 0 {
		return "PASS"
	}
	return "FAIL " + strings.Join(failed, ",")
}

func runLoop(d deps, now func() time.Time, frame <-chan time.Time, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(now())

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if err := gpio.Apply(d.valves, logic.AllOff); err != nil {
				log.Printf("gpio: %v", err)
			}
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if d.tracker != nil {
				if d.mqttStatus != nil {
					d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
				}
				snap := d.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-frame:
			t := now()
			iterate(d, t)

			if hbData := hb.Check(t, d.heartbeat, d.machine.EventCountsSnapshot()); hbData != nil {
				log.Printf("heartbeat: uptime=%v fills=%d cleans=%d cancels=%d",
					hbData.Uptime, hbData.Counts.Fills, hbData.Counts.Cleans, hbData.Counts.Cancels)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if d.tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						d.tracker.SetNetwork(net)
					}
					snap := d.tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// iterate runs one main-loop pass: drain, step, actuate, render, report.
func iterate(d deps, t time.Time) {
	in := logic.Input{Clock: d.clock.Load(), Time: t}
	if it, ok := d.slot.Drain(); ok {
		in.Intent = &it
	}
	if d.machine.NeedsAmbient() {
		v, err := d.sampler.ReadChannel(analog.ChannelAmbient)
		if err != nil {
			log.Printf("analog: ambient: %v", err)
		} else {
			in.Ambient, in.AmbientValid = v, true
		}
	}

	res := d.machine.Step(in)
	if res.ResetClock {
		d.clock.Reset(res.Clock)
	}
	d.view.Publish(res.Mode.Kind())

	if err := gpio.Apply(d.valves, res.Outputs); err != nil {
		log.Printf("gpio: %v", err)
	}

	v := display.View{
		Mode:         res.Mode,
		Clock:        res.Clock,
		Schedule:     d.machine.Schedule(),
		NightEnabled: d.machine.NightEnabled(),
		Label:        d.machine.Label(),
	}
	if _, ok := res.Mode.(logic.Diagnostics); ok {
		sense, err := analog.ReadSense(d.sampler)
		if err != nil {
			log.Printf("analog: sense: %v", err)
		}
		v.Sense = sense
		if amb, err := d.sampler.ReadChannel(analog.ChannelAmbient); err == nil {
			v.Ambient = amb
		}
	}
	screen := display.Format(v)
	if err := d.display.Show(screen); err != nil {
		log.Printf("display: %v", err)
	}

	for _, event := range res.Events {
		log.Printf("event: %s (mode=%s clock=%d reason=%s)", event.Type, event.Mode, event.Clock, event.Reason)
		if err := d.publisher.Publish(event); err != nil {
			log.Printf("publish error: %v", err)
		}
	}

	if d.tracker != nil {
		var remaining uint32
		switch md := res.Mode.(type) {
		case logic.Filling:
			remaining = md.Remaining(res.Clock)
		case logic.Cleaning:
			remaining = md.Remaining(res.Clock)
		}
		st := status.State{
			Mode:             res.Mode.Kind(),
			Clock:            res.Clock,
			Remaining:        remaining,
			Schedule:         v.Schedule,
			Outputs:          res.Outputs,
			Lines:            screen,
			NightEnabled:     v.NightEnabled,
			Label:            v.Label,
			Counts:           d.machine.EventCountsSnapshot(),
			IntentOverwrites: d.slot.Overwrites(),
		}
		if d.lines != nil {
			st.SerialOverflows = d.lines.Overflows()
		}
		d.tracker.Update(st)
		if d.mqttStatus != nil {
			d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
