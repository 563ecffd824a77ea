package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/basin-controller/internal/logic"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{FrameMs: 100, DebounceMs: 20, Broker: "tcp://localhost:1883", HTTPPort: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.FrameMs != 100 {
		t.Errorf("Config.FrameMs: got %d, want 100", snap.Config.FrameMs)
	}
	if snap.Config.HTTPPort != ":80" {
		t.Errorf("Config.HTTPPort: got %q, want %q", snap.Config.HTTPPort, ":80")
	}
	if snap.Running {
		t.Error("expected Running=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(State{
		Mode:      logic.KindFilling,
		Clock:     3610,
		Remaining: 10,
		Schedule:  logic.DefaultSchedule(),
		Outputs:   logic.Outputs{Fill: true, Aux: true, Enable: true},
		Counts:    logic.EventCounts{Fills: 3, Cleans: 1},
	})

	snap := tr.Snapshot()
	if snap.Mode != logic.KindFilling {
		t.Errorf("Mode: got %q, want FILLING", snap.Mode)
	}
	if snap.Clock != 3610 || snap.Remaining != 10 {
		t.Errorf("Clock/Remaining: got %d/%d", snap.Clock, snap.Remaining)
	}
	if !snap.Outputs.Fill || snap.Outputs.Clean {
		t.Errorf("Outputs: got %+v", snap.Outputs)
	}
	if !snap.Running {
		t.Error("expected Running=true")
	}
	if snap.Counts.Fills != 3 {
		t.Errorf("Counts.Fills: got %d, want 3", snap.Counts.Fills)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetSelfTest(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.SetSelfTest("GOOD")
	if got := tr.Snapshot().SelfTest; got != "GOOD" {
		t.Errorf("SelfTest: got %q, want GOOD", got)
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	if tr.Snapshot().Network != nil {
		t.Error("expected nil Network initially")
	}

	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"})

	snap := tr.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected non-nil Network")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want %q", snap.Network.IP, "192.168.1.42")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(State{Mode: logic.KindHome, Lines: [4]string{"a", "b", "c", "d"}})

	snap1 := tr.Snapshot()

	tr.Update(State{Mode: logic.KindCleaning, Lines: [4]string{"w", "x", "y", "z"}})

	if snap1.Mode != logic.KindHome {
		t.Error("snapshot should be a copy; Mode was modified")
	}
	if snap1.Lines[0] != "a" {
		t.Error("snapshot should be a copy; Lines were modified")
	}
}

func testSnapshot() Snapshot {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return Snapshot{
		State: State{
			Mode:         logic.KindCleaning,
			Clock:        10830,
			Remaining:    15,
			Schedule:     logic.DefaultSchedule(),
			Outputs:      logic.Outputs{Clean: true, Enable: true},
			Lines:        [4]string{"Currently Cleaning", "Time Remaining: 0:15", "", "Any Button to Cancel"},
			NightEnabled: true,
			Label:        "IP:10.0.0.5",
			Counts:       logic.EventCounts{Fills: 5, Cleans: 2, Cancels: 1},

			IntentOverwrites: 4,
		},
		Running:       true,
		SelfTest:      "GOOD",
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{FrameMs: 100, DebounceMs: 20, HeartbeatMs: 900000, Broker: "tcp://localhost:1883", HTTPPort: ":80"},
	}
}

func TestFormatJSON(t *testing.T) {
	data := FormatJSON(testSnapshot())

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	st := parsed.Status
	if st.Mode != "CLEANING" {
		t.Errorf("Mode: got %q, want CLEANING", st.Mode)
	}
	if !st.Ready {
		t.Error("expected Ready=true")
	}
	if st.Clock != 10830 || st.Remaining != 15 {
		t.Errorf("Clock/Remaining: got %d/%d", st.Clock, st.Remaining)
	}
	if !st.Outputs.Clean || st.Outputs.Aux {
		t.Errorf("Outputs: got %+v", st.Outputs)
	}
	if st.Schedule.FillsPerClean != 2 {
		t.Errorf("FillsPerClean: got %d, want 2", st.Schedule.FillsPerClean)
	}
	if len(st.Display) != 4 || st.Display[1] != "Time Remaining: 0:15" {
		t.Errorf("Display: got %q", st.Display)
	}
	if st.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", st.UptimeSeconds)
	}
	if !st.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if st.Counts.Cleans != 2 || st.Counts.Cancels != 1 {
		t.Errorf("Counts: got %+v", st.Counts)
	}
	if st.IntentOverwrites != 4 {
		t.Errorf("IntentOverwrites: got %d, want 4", st.IntentOverwrites)
	}
	if st.Label != "IP:10.0.0.5" || !st.NightMode {
		t.Errorf("Label/NightMode: got %q/%v", st.Label, st.NightMode)
	}
	// Event and Reason should be omitted
	if st.Event != "" || st.Reason != "" {
		t.Errorf("expected empty Event/Reason for web format, got %q/%q", st.Event, st.Reason)
	}
}

func TestFormatJSONUnknownMode(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var parsed StatusJSON
	json.Unmarshal(FormatJSON(snap), &parsed)

	if parsed.Status.Mode != "UNKNOWN" {
		t.Errorf("Mode: got %q, want UNKNOWN", parsed.Status.Mode)
	}
	if parsed.Status.Ready {
		t.Error("expected Ready=false before the first update")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	data := FormatStatusEvent(testSnapshot(), "HEARTBEAT", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("Event: got %q, want HEARTBEAT", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("Reason: got %q, want empty", parsed.Status.Reason)
	}
	if parsed.Status.Schedule.CleanPeriod != 10800 {
		t.Errorf("Schedule.CleanPeriod: got %d, want 10800", parsed.Status.Schedule.CleanPeriod)
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	data := FormatStatusEvent(testSnapshot(), "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var raw map[string]interface{}
	json.Unmarshal(FormatStatusEvent(snap, "STARTUP", ""), &raw)
	status := raw["status"].(map[string]interface{})
	for _, key := range []string{"reason", "label", "self_test", "network"} {
		if _, exists := status[key]; exists {
			t.Errorf("%s should be omitted when empty", key)
		}
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := testSnapshot()
	snap.Network = &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"}

	var parsed StatusJSON
	json.Unmarshal(FormatJSON(snap), &parsed)

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", parsed.Status.Network.IP)
	}
	if parsed.Status.Network.SSID != "MyNet" {
		t.Errorf("Network.SSID: got %q, want MyNet", parsed.Status.Network.SSID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(State{Mode: logic.KindHome, Clock: uint32(i), Counts: logic.EventCounts{Fills: i}})
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetNetwork(&NetworkInfo{IP: "1.2.3.4"})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
