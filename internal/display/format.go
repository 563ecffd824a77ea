// Package display formats the four-line operator screen and writes it to a
// 20x4 character display.
package display

import (
	"fmt"
	"math"

	"github.com/sweeney/basin-controller/internal/analog"
	"github.com/sweeney/basin-controller/internal/logic"
)

// Screen geometry.
const (
	Width = 20
	Rows  = 4
)

// Lines is one screen, each line blank-padded to Width.
type Lines [Rows]string

// View is everything a screen is formatted from.
type View struct {
	Mode         logic.Mode
	Clock        uint32
	Schedule     logic.Schedule
	NightEnabled bool
	Label        string

	// Sense and Ambient are only sampled in Diagnostics.
	Sense   analog.Sense
	Ambient float64
}

func pad(s string) string {
	return fmt.Sprintf("%-*.*s", Width, Width, s)
}

func screen(l1, l2, l3, l4 string) Lines {
	return Lines{pad(l1), pad(l2), pad(l3), pad(l4)}
}

// Format renders v. Every mode has exactly one screen.
func Format(v View) Lines {
	switch md := v.Mode.(type) {
	case logic.Home:
		return formatHome(v)
	case logic.ModeMenu:
		return screen("Select an option:", "", v.Label, "DSBL  NM        HOME")
	case logic.DisableConfirm:
		return screen("DISABLE SYSTEM?", "", "", "YES    NO")
	case logic.Disabled:
		return screen("", "   SYSTEM DISABLED", "", "                ENBL")
	case logic.NightModeConfirm:
		if v.NightEnabled {
			return screen("Turn off night mode?", "", "", "YES    NO")
		}
		return screen("Turn on night mode?", "", "", "YES    NO")
	case logic.NightModeActive:
		return screen("", "     NIGHT MODE", "", "                DSBL")
	case logic.ScheduleClean:
		return screen(
			"Fill Every "+every(v.Schedule.FillPeriod),
			"How many Fills?",
			fmt.Sprintf("%d Fills per 1 Clean", v.Schedule.FillsPerClean()),
			"INC  DEC  CLEAN HOME",
		)
	case logic.ScheduleFill:
		d := v.Schedule.TopoffDuration
		return screen(
			"Duration of fill?",
			fmt.Sprintf("%dm %ds", d/60, d%60),
			"",
			"INC  DEC  HOME  FILL",
		)
	case logic.Filling:
		return cycleScreen("Currently Filling", md.Remaining(v.Clock))
	case logic.Cleaning:
		return cycleScreen("Currently Cleaning", md.Remaining(v.Clock))
	case logic.Diagnostics:
		return screen(
			"SSR1 SSR2  SSR3  SOL",
			fmt.Sprintf("%.2f %.2f  %.2f  %.1f",
				trunc(v.Sense.Fill, 100), trunc(v.Sense.Aux, 100), trunc(v.Sense.Clean, 100), trunc(v.Ambient, 10)),
			"",
			"                HOME",
		)
	}
	return screen("", "", "", "")
}

func cycleScreen(title string, remaining uint32) Lines {
	return screen(
		title,
		fmt.Sprintf("Time Remaining: %d:%02d", remaining/60, remaining%60),
		"",
		"Any Button to Cancel",
	)
}

// formatHome shows the last event and the next two, with the time since
// the last and until each of the next.
func formatHome(v View) Lines {
	s := v.Schedule
	night := "OFF"
	if v.NightEnabled {
		night = " ON"
	}
	if s.FillPeriod == 0 {
		return screen("LAST NEXT NEXT    NM", "CLN  -    -       "+night, "", "MODE DIAG CLEAN FILL")
	}

	// Below one fill period the last event was the clean and its paired fill.
	last, since := "FILL", v.Clock%s.FillPeriod
	if v.Clock < s.FillPeriod {
		last, since = "CLN", v.Clock
	}
	next1 := (v.Clock/s.FillPeriod + 1) * s.FillPeriod
	next2 := next1 + s.FillPeriod

	return screen(
		"LAST NEXT NEXT    NM",
		fmt.Sprintf("%-4s %-4s %-4s   %s", last, eventAt(next1, s), eventAt(next2, s), night),
		fmt.Sprintf("%s %s %s", hhmm(since), hhmm(next1-v.Clock), hhmm(next2-v.Clock)),
		"MODE DIAG CLEAN FILL",
	)
}

func eventAt(clock uint32, s logic.Schedule) string {
	if clock == s.CleanPeriod {
		return "CLN"
	}
	return "FILL"
}

func hhmm(sec uint32) string {
	return fmt.Sprintf("%d:%02d", sec/3600, sec%3600/60)
}

func every(period uint32) string {
	switch {
	case period == 3600:
		return "Hour"
	case period%3600 == 0:
		return fmt.Sprintf("%d Hours", period/3600)
	default:
		return fmt.Sprintf("%d Min", period/60)
	}
}

// trunc drops digits past 1/scale instead of rounding.
func trunc(v, scale float64) float64 {
	return math.Trunc(v*scale) / scale
}

// FormatSelfTest renders the power-on self test result.
func FormatSelfTest(r analog.Report) Lines {
	return screen(
		"Power-On Self Tests",
		fmt.Sprintf("FILL-%s  SOLR-%s", goodFail(r.FillGood()), goodFail(r.SolarGood())),
		fmt.Sprintf(" CLN-%s", goodFail(r.CleanGood())),
		fmt.Sprintf(" AUX-%s", goodFail(r.AuxGood())),
	)
}

func goodFail(ok bool) string {
	if ok {
		return "GOOD"
	}
	return "FAIL"
}
