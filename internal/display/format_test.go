package display

import (
	"strings"
	"testing"

	"github.com/sweeney/basin-controller/internal/analog"
	"github.com/sweeney/basin-controller/internal/logic"
)

func view(m logic.Mode, clock uint32) View {
	return View{Mode: m, Clock: clock, Schedule: logic.DefaultSchedule()}
}

func TestFormatWidth(t *testing.T) {
	modes := []logic.Mode{
		logic.Home{}, logic.ModeMenu{}, logic.DisableConfirm{}, logic.Disabled{},
		logic.NightModeConfirm{}, logic.NightModeActive{}, logic.ScheduleClean{},
		logic.ScheduleFill{}, logic.Diagnostics{},
		logic.Filling{Cycle: logic.Cycle{Deadline: 100}},
		logic.Cleaning{Cycle: logic.Cycle{Deadline: 100}},
	}
	for _, m := range modes {
		v := view(m, 40)
		v.Label = "IP:192.168.100.200 and then some more text"
		for i, line := range Format(v) {
			if len(line) != Width {
				t.Errorf("%s line %d: expected width %d, got %d (%q)", m.Kind(), i, Width, len(line), line)
			}
		}
	}
}

func TestFormatHome(t *testing.T) {
	tests := []struct {
		name  string
		clock uint32
		night bool
		line2 string
		line3 string
	}{
		{"after clean", 600, false, "CLN  FILL FILL   OFF", "0:10 0:50 1:50"},
		{"clean is next", 7300, false, "FILL CLN  FILL   OFF", "0:01 0:58 1:58"},
		{"clean after next", 4000, true, "FILL FILL CLN     ON", "0:06 0:53 1:53"},
		{"at zero", 0, false, "CLN  FILL FILL   OFF", "0:00 1:00 2:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := view(logic.Home{}, tt.clock)
			v.NightEnabled = tt.night
			l := Format(v)
			if l[0] != pad("LAST NEXT NEXT    NM") {
				t.Errorf("line 1: got %q", l[0])
			}
			if l[1] != pad(tt.line2) {
				t.Errorf("line 2: expected %q, got %q", tt.line2, l[1])
			}
			if l[2] != pad(tt.line3) {
				t.Errorf("line 3: expected %q, got %q", tt.line3, l[2])
			}
			if l[3] != "MODE DIAG CLEAN FILL" {
				t.Errorf("line 4: got %q", l[3])
			}
		})
	}
}

func TestFormatHomeLongCleanPeriod(t *testing.T) {
	v := view(logic.Home{}, 3600*5+60)
	v.Schedule.CleanPeriod = 64800
	l := Format(v)
	if l[1] != pad("FILL FILL FILL   OFF") {
		t.Errorf("expected no clean in the next two events, got %q", l[1])
	}
}

func TestFormatCycles(t *testing.T) {
	fill := logic.Filling{Cycle: logic.Cycle{Deadline: 3645}}
	l := Format(view(fill, 3600))
	if !strings.HasPrefix(l[0], "Currently Filling") {
		t.Errorf("line 1: got %q", l[0])
	}
	if l[1] != pad("Time Remaining: 0:45") {
		t.Errorf("line 2: got %q", l[1])
	}
	if l[3] != "Any Button to Cancel" {
		t.Errorf("line 4: got %q", l[3])
	}

	clean := logic.Cleaning{Cycle: logic.Cycle{Deadline: 10845}}
	l = Format(view(clean, 10850))
	if l[1] != pad("Time Remaining: 0:00") {
		t.Errorf("overdue cycle should show zero, got %q", l[1])
	}
}

func TestFormatSchedules(t *testing.T) {
	l := Format(view(logic.ScheduleClean{}, 0))
	if l[0] != pad("Fill Every Hour") || l[2] != pad("2 Fills per 1 Clean") {
		t.Errorf("schedule clean: got %q", l)
	}

	v := view(logic.ScheduleFill{}, 0)
	v.Schedule.TopoffDuration = 75
	l = Format(v)
	if l[1] != pad("1m 15s") {
		t.Errorf("schedule fill: got %q", l[1])
	}
	if l[3] != "INC  DEC  HOME  FILL" {
		t.Errorf("schedule fill line 4: got %q", l[3])
	}
}

func TestFormatEvery(t *testing.T) {
	tests := []struct {
		period uint32
		want   string
	}{
		{3600, "Hour"},
		{7200, "2 Hours"},
		{1800, "30 Min"},
	}
	for _, tt := range tests {
		if got := every(tt.period); got != tt.want {
			t.Errorf("every(%d): expected %q, got %q", tt.period, tt.want, got)
		}
	}
}

func TestFormatNightConfirm(t *testing.T) {
	v := view(logic.NightModeConfirm{}, 0)
	if l := Format(v); l[0] != pad("Turn on night mode?") {
		t.Errorf("got %q", l[0])
	}
	v.NightEnabled = true
	if l := Format(v); l[0] != pad("Turn off night mode?") {
		t.Errorf("got %q", l[0])
	}
}

func TestFormatModeMenuLabel(t *testing.T) {
	v := view(logic.ModeMenu{}, 0)
	v.Label = "IP:10.0.0.7"
	if l := Format(v); l[2] != pad("IP:10.0.0.7") {
		t.Errorf("got %q", l[2])
	}
}

func TestFormatDiagnostics(t *testing.T) {
	v := view(logic.Diagnostics{}, 0)
	v.Sense = analog.Sense{Fill: 1.239, Aux: 0.5, Clean: 1.999}
	v.Ambient = 2.06
	l := Format(v)
	if l[1] != pad("1.23 0.50  1.99  2.0") {
		t.Errorf("expected truncated voltages, got %q", l[1])
	}
}

func TestFormatSelfTest(t *testing.T) {
	r := analog.Report{Sense: analog.Sense{Fill: 1.8, Aux: 0.1, Clean: 1.5}, Ambient: 2.0}
	l := FormatSelfTest(r)
	want := Lines{
		pad("Power-On Self Tests"),
		pad("FILL-GOOD  SOLR-GOOD"),
		pad(" CLN-GOOD"),
		pad(" AUX-FAIL"),
	}
	if l != want {
		t.Errorf("expected %q, got %q", want, l)
	}
}

func TestFakeDisplay(t *testing.T) {
	d := NewFakeDisplay()
	if d.Last() != (Lines{}) {
		t.Error("expected blank frame before first show")
	}
	a := Format(view(logic.Home{}, 0))
	b := Format(view(logic.Disabled{}, 0))
	d.Show(a)
	d.Show(b)
	if len(d.Frames()) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(d.Frames()))
	}
	if d.Last() != b {
		t.Errorf("expected last frame to be the disabled screen")
	}
}

func TestDiscardDisplay(t *testing.T) {
	var d Display = Discard{}
	if err := d.Show(Format(View{Mode: logic.Home{}, Schedule: logic.DefaultSchedule()})); err != nil {
		t.Errorf("Show: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
