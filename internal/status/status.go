// Package status provides a thread-safe status tracker for the basin controller.
// It is read by the HTTP handlers and the MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/basin-controller/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	FrameMs        int64
	DebounceMs     int64
	HeartbeatMs    int64
	Broker         string
	HTTPPort       string
	SerialDevice   string
	NightThreshold float64
}

// State is what the main loop reports after every iteration.
type State struct {
	Mode         logic.ModeKind
	Clock        uint32
	Remaining    uint32 // seconds left in the active cycle, 0 otherwise
	Schedule     logic.Schedule
	Outputs      logic.Outputs
	Lines        [4]string
	NightEnabled bool
	Label        string
	Counts       logic.EventCounts

	IntentOverwrites uint32
	SerialOverflows  int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State
	Running       bool // true once the first iteration has reported
	SelfTest      string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the state after a main-loop iteration.
func (t *Tracker) Update(st State) {
	t.mu.Lock()
	t.snap.State = st
	t.snap.Running = true
	t.mu.Unlock()
}

// SetSelfTest records the power-on self test verdict.
func (t *Tracker) SetSelfTest(result string) {
	t.mu.Lock()
	t.snap.SelfTest = result
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
