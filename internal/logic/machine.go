package logic

// Machine is the mode state machine. It is owned by the main loop and is
// never touched from an input or tick context.
type Machine struct {
	mode     Mode
	schedule Schedule

	nightEnabled   bool
	nightThreshold float64

	label string

	// pairedFill is set when a clean ends; the next fill uses FillDuration
	// and resets the clock when it ends.
	pairedFill         bool
	pairedFillDisabled bool

	// lastTrigger is the clock value of the last autonomous start. The
	// scheduler fires at most once per clock value.
	lastTrigger uint32
	triggered   bool

	counts EventCounts
}

// NewMachine creates a machine in Home with the given schedule. Night mode
// engages when the ambient sample drops below nightThreshold volts.
func NewMachine(s Schedule, nightThreshold float64) *Machine {
	return &Machine{
		mode:           Home{},
		schedule:       s,
		nightThreshold: nightThreshold,
	}
}

// step carries the per-iteration scratch state.
type step struct {
	clock  uint32
	reset  bool
	in     Input
	events []Event
}

func (st *step) setClock(v uint32) {
	if st.clock != v {
		st.clock = v
		st.reset = true
	}
}

// Step runs one main-loop iteration: scheduler, pending intent, cycle
// completion, night gate. It never fails; intents that make no sense in the
// current mode are dropped.
func (m *Machine) Step(in Input) Result {
	st := &step{clock: in.Clock, in: in}

	// Time does not accrue while the system is down.
	if m.clockHeld() {
		st.setClock(0)
	}

	if m.triggered && st.clock != m.lastTrigger {
		m.triggered = false
	}
	trigger := Decide(st.clock, m.schedule)
	if m.triggered {
		trigger = TriggerNone
	}
	// The paired fill is due on the first Home iteration after its clean,
	// even when a tick already moved the clock past the fill window. A clock
	// held at 0 by Disabled or night mode waits for the next fill window.
	if m.pairedFill && trigger == TriggerNone && st.clock >= m.schedule.FillPeriod {
		trigger = TriggerFill
	}
	_, wasHome := m.mode.(Home)

	if in.Intent != nil {
		m.apply(st, *in.Intent)
	}

	// A mode that left Home this iteration, or any mode other than Home,
	// suppresses autonomous starts.
	if _, isHome := m.mode.(Home); wasHome && isHome {
		switch trigger {
		case TriggerClean:
			m.startClean(st, false)
		case TriggerFill:
			m.startFill(st, false)
		}
		if trigger != TriggerNone {
			m.lastTrigger, m.triggered = st.clock, true
		}
	}

	switch md := m.mode.(type) {
	case Filling:
		if st.clock >= md.Deadline {
			m.endFill(st, md, ReasonDeadline)
		}
	case Cleaning:
		if st.clock >= md.Deadline {
			m.endClean(st, md, ReasonDeadline)
		}
	}

	m.nightGate(st)

	if m.clockHeld() {
		st.setClock(0)
	}

	return Result{
		Mode:       m.mode,
		Outputs:    m.outputs(st.clock),
		Clock:      st.clock,
		ResetClock: st.reset,
		Events:     st.events,
	}
}

func (m *Machine) clockHeld() bool {
	switch m.mode.(type) {
	case Disabled, NightModeActive:
		return true
	}
	return false
}

func (m *Machine) inCycle() bool {
	switch m.mode.(type) {
	case Filling, Cleaning:
		return true
	}
	return false
}

func (m *Machine) apply(st *step, it Intent) {
	// Mode-independent intents first.
	switch it.Kind {
	case IntentSetLabel:
		m.label = it.Label
		return
	case IntentStartFill:
		if !m.inCycle() {
			m.startFill(st, true)
		}
		return
	case IntentStartClean:
		if !m.inCycle() {
			m.startClean(st, true)
		}
		return
	case IntentDisable:
		if _, ok := m.mode.(Disabled); !ok && !m.inCycle() {
			m.disable(st)
		}
		return
	}

	switch md := m.mode.(type) {
	case Home:
		switch it.Kind {
		case IntentModeMenu:
			m.mode = ModeMenu{}
		case IntentDiagnostics:
			m.mode = Diagnostics{}
		case IntentScheduleClean:
			m.mode = ScheduleClean{}
		case IntentScheduleFill:
			m.mode = ScheduleFill{}
		}
	case ModeMenu:
		switch it.Kind {
		case IntentDisableMenu:
			m.mode = DisableConfirm{}
		case IntentNightModeMenu:
			m.mode = NightModeConfirm{}
		case IntentHome:
			m.mode = Home{}
		}
	case DisableConfirm:
		switch it.Kind {
		case IntentConfirm:
			m.disable(st)
		case IntentDeny:
			m.mode = ModeMenu{}
		}
	case Disabled:
		switch it.Kind {
		case IntentEnable, IntentCancel:
			m.mode = Home{}
			m.emit(st, EventEnabled, ReasonOperator)
		}
	case NightModeConfirm:
		switch it.Kind {
		case IntentConfirm:
			m.nightEnabled = !m.nightEnabled
			m.mode = Home{}
		case IntentDeny:
			m.mode = ModeMenu{}
		}
	case NightModeActive:
		if it.Kind == IntentNightModeOff {
			m.nightEnabled = false
			m.mode = Home{}
			m.emit(st, EventNightOff, ReasonOperator)
		}
	case ScheduleClean:
		switch it.Kind {
		case IntentIncrease:
			m.schedule.IncreaseCleanPeriod()
		case IntentDecrease:
			m.schedule.DecreaseCleanPeriod()
		case IntentHome:
			m.schedule.CatchUp(st.clock)
			m.mode = Home{}
		}
	case ScheduleFill:
		switch it.Kind {
		case IntentIncrease:
			m.schedule.IncreaseTopoff()
		case IntentDecrease:
			m.schedule.DecreaseTopoff()
		case IntentHome:
			m.mode = Home{}
		}
	case Diagnostics:
		if it.Kind == IntentHome {
			m.mode = Home{}
		}
	case Filling:
		if it.Kind == IntentCancel {
			m.endFill(st, md, ReasonCancel)
		}
	case Cleaning:
		if it.Kind == IntentCancel {
			m.endClean(st, md, ReasonCancel)
		}
	}
}

func (m *Machine) disable(st *step) {
	m.mode = Disabled{}
	st.setClock(0)
	m.emit(st, EventDisabled, ReasonOperator)
}

func (m *Machine) startFill(st *step, external bool) {
	_, disabled := m.mode.(Disabled)
	c := Cycle{
		ExternalTrigger:   external,
		WasDisabledBefore: disabled,
	}
	duration := m.schedule.TopoffDuration
	if m.pairedFill {
		c.CameFromClean = true
		c.WasDisabledBefore = c.WasDisabledBefore || m.pairedFillDisabled
		duration = m.schedule.FillDuration
		m.pairedFill = false
		m.pairedFillDisabled = false
	}
	c.Deadline = st.clock + duration
	m.mode = Filling{c}
	m.emit(st, EventFillStart, startReason(external))
}

func (m *Machine) startClean(st *step, external bool) {
	_, disabled := m.mode.(Disabled)
	m.mode = Cleaning{Cycle{
		Deadline:          st.clock + m.schedule.CleanDuration,
		ExternalTrigger:   external,
		WasDisabledBefore: disabled,
	}}
	m.emit(st, EventCleanStart, startReason(external))
}

// endFill is the single exit path of Filling, for both completion and
// cancellation.
func (m *Machine) endFill(st *step, f Filling, reason string) {
	if f.ExternalTrigger || f.CameFromClean {
		st.setClock(0)
	}
	if f.WasDisabledBefore {
		m.mode = Disabled{}
	} else {
		m.mode = Home{}
	}
	m.counts.Fills++
	if reason == ReasonCancel {
		m.counts.Cancels++
	}
	m.emit(st, EventFillEnd, reason)
}

// endClean is the single exit path of Cleaning. The clock jumps to the start
// of the fill window so the paired fill starts on the next iteration.
func (m *Machine) endClean(st *step, c Cleaning, reason string) {
	st.setClock(m.schedule.FillPeriod)
	m.pairedFill = true
	m.pairedFillDisabled = c.WasDisabledBefore
	m.mode = Home{}
	m.counts.Cleans++
	if reason == ReasonCancel {
		m.counts.Cancels++
	}
	m.emit(st, EventCleanEnd, reason)
}

func (m *Machine) nightGate(st *step) {
	if !st.in.AmbientValid {
		return
	}
	dark := st.in.Ambient < m.nightThreshold
	switch m.mode.(type) {
	case Disabled, Filling, Cleaning:
		return
	case NightModeActive:
		if !dark {
			m.mode = Home{}
			m.emit(st, EventNightOff, ReasonAmbient)
		}
	default:
		if m.nightEnabled && dark {
			m.mode = NightModeActive{}
			st.setClock(0)
			m.emit(st, EventNightOn, ReasonAmbient)
		}
	}
}

// outputs derives the actuator levels from the mode alone, so leaving a
// cycle always de-energizes its lines.
func (m *Machine) outputs(clock uint32) Outputs {
	switch md := m.mode.(type) {
	case Filling:
		return Outputs{Fill: true, Aux: true, Enable: true}
	case Cleaning:
		return Outputs{
			Clean:  true,
			Aux:    md.Remaining(clock) > m.schedule.AuxCutoff,
			Enable: true,
		}
	case Diagnostics:
		return AllOn
	}
	return AllOff
}

func (m *Machine) emit(st *step, t EventType, reason string) {
	st.events = append(st.events, Event{
		Timestamp: st.in.Time,
		Type:      t,
		Mode:      m.mode.Kind(),
		Clock:     st.clock,
		Reason:    reason,
	})
}

func startReason(external bool) string {
	if external {
		return ReasonExternal
	}
	return ReasonAutonomous
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// Schedule returns a copy of the current schedule.
func (m *Machine) Schedule() Schedule {
	return m.schedule
}

// NightEnabled reports whether the night-mode gate is armed.
func (m *Machine) NightEnabled() bool {
	return m.nightEnabled
}

// NeedsAmbient reports whether the next Step will look at the light sample.
// The main loop skips the conversion otherwise.
func (m *Machine) NeedsAmbient() bool {
	if _, ok := m.mode.(NightModeActive); ok {
		return true
	}
	return m.nightEnabled
}

// Label returns the operator label set over the serial channel.
func (m *Machine) Label() string {
	return m.label
}

// EventCountsSnapshot returns a copy of the cycle counters.
func (m *Machine) EventCountsSnapshot() EventCounts {
	return m.counts
}
