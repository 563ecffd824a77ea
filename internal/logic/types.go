// Package logic contains the pure control core of the basin controller: the
// cycle scheduler and the mode state machine.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// The second counter and wall time are always passed in by the caller.
package logic

import "time"

// ModeKind names a Mode variant. It is the only part of a Mode that is
// published outside the main loop.
type ModeKind string

const (
	KindHome             ModeKind = "HOME"
	KindModeMenu         ModeKind = "MODE_MENU"
	KindDisableConfirm   ModeKind = "DISABLE_CONFIRM"
	KindDisabled         ModeKind = "DISABLED"
	KindNightModeConfirm ModeKind = "NIGHT_MODE_CONFIRM"
	KindNightModeActive  ModeKind = "NIGHT_MODE"
	KindScheduleClean    ModeKind = "SCHEDULE_CLEAN"
	KindScheduleFill     ModeKind = "SCHEDULE_FILL"
	KindFilling          ModeKind = "FILLING"
	KindCleaning         ModeKind = "CLEANING"
	KindDiagnostics      ModeKind = "DIAGNOSTICS"
)

// Mode is the closed set of operator-facing states. Only the types in this
// file implement it.
type Mode interface {
	Kind() ModeKind
	mode()
}

type (
	Home             struct{}
	ModeMenu         struct{}
	DisableConfirm   struct{}
	Disabled         struct{}
	NightModeConfirm struct{}
	NightModeActive  struct{}
	ScheduleClean    struct{}
	ScheduleFill     struct{}
	Diagnostics      struct{}
)

// Cycle holds the fields that only exist while a fill or clean is running.
type Cycle struct {
	// Deadline is the clock value at which the cycle ends.
	Deadline uint32
	// CameFromClean marks the fill paired with a preceding clean.
	CameFromClean bool
	// ExternalTrigger marks a cycle started by a button or serial command.
	ExternalTrigger bool
	// WasDisabledBefore restores Disabled when the cycle ends.
	WasDisabledBefore bool
}

// Remaining returns the seconds left until Deadline, or 0 once it has passed.
func (c Cycle) Remaining(clock uint32) uint32 {
	if clock >= c.Deadline {
		return 0
	}
	return c.Deadline - clock
}

// Filling is an active fill cycle.
type Filling struct{ Cycle }

// Cleaning is an active clean cycle.
type Cleaning struct{ Cycle }

func (Home) Kind() ModeKind             { return KindHome }
func (ModeMenu) Kind() ModeKind         { return KindModeMenu }
func (DisableConfirm) Kind() ModeKind   { return KindDisableConfirm }
func (Disabled) Kind() ModeKind         { return KindDisabled }
func (NightModeConfirm) Kind() ModeKind { return KindNightModeConfirm }
func (NightModeActive) Kind() ModeKind  { return KindNightModeActive }
func (ScheduleClean) Kind() ModeKind    { return KindScheduleClean }
func (ScheduleFill) Kind() ModeKind     { return KindScheduleFill }
func (Filling) Kind() ModeKind          { return KindFilling }
func (Cleaning) Kind() ModeKind         { return KindCleaning }
func (Diagnostics) Kind() ModeKind      { return KindDiagnostics }

func (Home) mode()             {}
func (ModeMenu) mode()         {}
func (DisableConfirm) mode()   {}
func (Disabled) mode()         {}
func (NightModeConfirm) mode() {}
func (NightModeActive) mode()  {}
func (ScheduleClean) mode()    {}
func (ScheduleFill) mode()     {}
func (Filling) mode()          {}
func (Cleaning) mode()         {}
func (Diagnostics) mode()      {}

// IntentKind is a decoded operator request.
type IntentKind string

const (
	IntentHome          IntentKind = "HOME"
	IntentModeMenu      IntentKind = "MODE_MENU"
	IntentDiagnostics   IntentKind = "DIAGNOSTICS"
	IntentScheduleClean IntentKind = "SCHEDULE_CLEAN"
	IntentScheduleFill  IntentKind = "SCHEDULE_FILL"
	IntentDisableMenu   IntentKind = "DISABLE_MENU"
	IntentNightModeMenu IntentKind = "NIGHT_MODE_MENU"
	IntentConfirm       IntentKind = "CONFIRM"
	IntentDeny          IntentKind = "DENY"
	IntentIncrease      IntentKind = "INCREASE"
	IntentDecrease      IntentKind = "DECREASE"
	IntentStartFill     IntentKind = "START_FILL"
	IntentStartClean    IntentKind = "START_CLEAN"
	IntentCancel        IntentKind = "CANCEL"
	IntentNightModeOff  IntentKind = "NIGHT_MODE_OFF"
	IntentDisable       IntentKind = "DISABLE"
	IntentEnable        IntentKind = "ENABLE"
	IntentSetLabel      IntentKind = "SET_LABEL"
)

// Intent is a request handed from an input context to the main loop.
type Intent struct {
	Kind IntentKind
	// Label is only set for IntentSetLabel.
	Label string
}

// Outputs is the desired level of each actuator line.
type Outputs struct {
	Fill   bool
	Clean  bool
	Aux    bool
	Enable bool
}

// AllOff is the de-energized output set.
var AllOff = Outputs{}

// AllOn energizes every line; used by diagnostics and the self test.
var AllOn = Outputs{Fill: true, Clean: true, Aux: true, Enable: true}

// EventType represents a reportable transition.
type EventType string

const (
	EventFillStart  EventType = "FILL_START"
	EventFillEnd    EventType = "FILL_END"
	EventCleanStart EventType = "CLEAN_START"
	EventCleanEnd   EventType = "CLEAN_END"
	EventDisabled   EventType = "DISABLED"
	EventEnabled    EventType = "ENABLED"
	EventNightOn    EventType = "NIGHT_MODE_ON"
	EventNightOff   EventType = "NIGHT_MODE_OFF"
)

// Reasons attached to events.
const (
	ReasonAutonomous = "autonomous"
	ReasonExternal   = "external"
	ReasonDeadline   = "deadline"
	ReasonCancel     = "cancel"
	ReasonAmbient    = "ambient"
	ReasonOperator   = "operator"
)

// Event represents a transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Mode      ModeKind // mode after the transition
	Clock     uint32   // clock after the transition
	Reason    string
}

// Input is everything one main-loop iteration feeds the machine.
type Input struct {
	Clock  uint32
	Intent *Intent
	// Ambient is the light sample in volts; ignored unless AmbientValid.
	Ambient      float64
	AmbientValid bool
	Time         time.Time
}

// Result is the outcome of one Step.
type Result struct {
	Mode    Mode
	Outputs Outputs
	// Clock is the counter value after the step. When ResetClock is set the
	// caller must write it back to the shared counter.
	Clock      uint32
	ResetClock bool
	Events     []Event
}

// EventCounts tracks the number of cycles since startup.
type EventCounts struct {
	Fills   int
	Cleans  int
	Cancels int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
