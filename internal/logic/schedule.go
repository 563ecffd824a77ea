package logic

// Schedule holds the cycle timing, all in seconds of the shared clock.
type Schedule struct {
	// FillPeriod is the interval between autonomous top-off fills.
	FillPeriod uint32
	// CleanPeriod is the clock value at which a clean starts. It stays a
	// multiple of FillPeriod within [CleanPeriodMin, CleanPeriodMax].
	CleanPeriod     uint32
	CleanPeriodMin  uint32
	CleanPeriodMax  uint32
	CleanPeriodStep uint32

	// FillDuration is the length of the fill paired with a clean.
	FillDuration uint32
	// TopoffDuration is the length of a routine fill, at least 1.
	TopoffDuration uint32
	TopoffMax      uint32
	CleanDuration  uint32
	// AuxCutoff closes the auxiliary valve when this many seconds of a
	// clean remain.
	AuxCutoff uint32
}

// DefaultSchedule returns the factory timing: a top-off every hour, a clean
// every third hour.
func DefaultSchedule() Schedule {
	return Schedule{
		FillPeriod:      3600,
		CleanPeriod:     10800,
		CleanPeriodMin:  10800,
		CleanPeriodMax:  64800,
		CleanPeriodStep: 3600,
		FillDuration:    45,
		TopoffDuration:  20,
		TopoffMax:       255,
		CleanDuration:   45,
		AuxCutoff:       30,
	}
}

// Trigger is an autonomous cycle start decided from the clock alone.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerFill
	TriggerClean
)

func (t Trigger) String() string {
	switch t {
	case TriggerFill:
		return "FILL"
	case TriggerClean:
		return "CLEAN"
	default:
		return "NONE"
	}
}

// Decide reports whether an autonomous cycle is due at clock. A clean wins
// over a fill on the same tick, and nothing fires at clock 0.
func Decide(clock uint32, s Schedule) Trigger {
	if clock == s.CleanPeriod {
		return TriggerClean
	}
	if s.FillPeriod == 0 {
		return TriggerNone
	}
	if clock >= s.FillPeriod && clock%s.FillPeriod == 0 {
		return TriggerFill
	}
	return TriggerNone
}

// IncreaseCleanPeriod adds one step, saturating at CleanPeriodMax.
func (s *Schedule) IncreaseCleanPeriod() {
	if s.CleanPeriod < s.CleanPeriodMax && s.CleanPeriodMax-s.CleanPeriod >= s.CleanPeriodStep {
		s.CleanPeriod += s.CleanPeriodStep
	}
}

// DecreaseCleanPeriod removes one step, saturating at CleanPeriodMin.
func (s *Schedule) DecreaseCleanPeriod() {
	if s.CleanPeriod > s.CleanPeriodMin && s.CleanPeriod-s.CleanPeriodMin >= s.CleanPeriodStep {
		s.CleanPeriod -= s.CleanPeriodStep
	}
}

// IncreaseTopoff adds one second, saturating at TopoffMax.
func (s *Schedule) IncreaseTopoff() {
	if s.TopoffDuration < s.TopoffMax {
		s.TopoffDuration++
	}
}

// DecreaseTopoff removes one second; a top-off never drops below 1 second.
func (s *Schedule) DecreaseTopoff() {
	if s.TopoffDuration > 1 {
		s.TopoffDuration--
	}
}

// CatchUp moves CleanPeriod ahead of clock in whole steps so a clean that was
// scheduled in the past is not skipped forever. It returns false if the
// maximum is reached before passing clock.
func (s *Schedule) CatchUp(clock uint32) bool {
	for clock > s.CleanPeriod {
		before := s.CleanPeriod
		s.IncreaseCleanPeriod()
		if s.CleanPeriod == before {
			return false
		}
	}
	return true
}

// FillsPerClean is the number of top-off fills between two cleans.
func (s Schedule) FillsPerClean() uint32 {
	if s.FillPeriod == 0 || s.CleanPeriod < s.FillPeriod {
		return 0
	}
	return s.CleanPeriod/s.FillPeriod - 1
}
