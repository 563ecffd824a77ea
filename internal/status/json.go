package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string       `json:"event,omitempty"`
	Reason           string       `json:"reason,omitempty"`
	Mode             string       `json:"mode"`
	Ready            bool         `json:"ready"`
	Clock            uint32       `json:"clock"`
	Remaining        uint32       `json:"remaining_seconds"`
	NightMode        bool         `json:"night_mode"`
	Label            string       `json:"label,omitempty"`
	SelfTest         string       `json:"self_test,omitempty"`
	Outputs          OutputsJSON  `json:"outputs"`
	Schedule         ScheduleJSON `json:"schedule"`
	Display          []string     `json:"display"`
	UptimeSeconds    int64        `json:"uptime_seconds"`
	StartTime        string       `json:"start_time"`
	Timestamp        string       `json:"timestamp"`
	MQTT             MQTTStatus   `json:"mqtt"`
	Counts           CountsJSON   `json:"event_counts"`
	IntentOverwrites uint32       `json:"intent_overwrites"`
	SerialOverflows  int          `json:"serial_overflows"`
	Network          *NetworkJSON `json:"network,omitempty"`
	Config           ConfigJSON   `json:"config"`
}

// OutputsJSON is the JSON representation of the actuator lines.
type OutputsJSON struct {
	Fill   bool `json:"fill"`
	Clean  bool `json:"clean"`
	Aux    bool `json:"aux"`
	Enable bool `json:"enable"`
}

// ScheduleJSON is the JSON representation of the adjustable schedule.
type ScheduleJSON struct {
	FillPeriod     uint32 `json:"fill_period"`
	CleanPeriod    uint32 `json:"clean_period"`
	FillsPerClean  uint32 `json:"fills_per_clean"`
	FillDuration   uint32 `json:"fill_duration"`
	TopoffDuration uint32 `json:"topoff_duration"`
	CleanDuration  uint32 `json:"clean_duration"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Fills   int `json:"fills"`
	Cleans  int `json:"cleans"`
	Cancels int `json:"cancels"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	FrameMs        int64   `json:"frame_ms"`
	DebounceMs     int64   `json:"debounce_ms"`
	HeartbeatMs    int64   `json:"heartbeat_ms"`
	Broker         string  `json:"broker"`
	HTTPPort       string  `json:"http_port"`
	SerialDevice   string  `json:"serial_device,omitempty"`
	NightThreshold float64 `json:"night_threshold"`
}

func buildInner(snap Snapshot) StatusInner {
	mode := string(snap.Mode)
	if mode == "" {
		mode = "UNKNOWN"
	}
	s := snap.Schedule

	return StatusInner{
		Mode:      mode,
		Ready:     snap.Running,
		Clock:     snap.Clock,
		Remaining: snap.Remaining,
		NightMode: snap.NightEnabled,
		Label:     snap.Label,
		SelfTest:  snap.SelfTest,
		Outputs: OutputsJSON{
			Fill:   snap.Outputs.Fill,
			Clean:  snap.Outputs.Clean,
			Aux:    snap.Outputs.Aux,
			Enable: snap.Outputs.Enable,
		},
		Schedule: ScheduleJSON{
			FillPeriod:     s.FillPeriod,
			CleanPeriod:    s.CleanPeriod,
			FillsPerClean:  s.FillsPerClean(),
			FillDuration:   s.FillDuration,
			TopoffDuration: s.TopoffDuration,
			CleanDuration:  s.CleanDuration,
		},
		Display:       snap.Lines[:],
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Fills:   snap.Counts.Fills,
			Cleans:  snap.Counts.Cleans,
			Cancels: snap.Counts.Cancels,
		},
		IntentOverwrites: snap.IntentOverwrites,
		SerialOverflows:  snap.SerialOverflows,
		Config: ConfigJSON{
			FrameMs:        snap.Config.FrameMs,
			DebounceMs:     snap.Config.DebounceMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Broker:         snap.Config.Broker,
			HTTPPort:       snap.Config.HTTPPort,
			SerialDevice:   snap.Config.SerialDevice,
			NightThreshold: snap.Config.NightThreshold,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
