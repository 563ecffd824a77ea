package input

import (
	"strings"

	"github.com/sweeney/basin-controller/internal/logic"
)

// Panel patterns are the low four pins read active-low: a pressed button
// pulls its bit to 0.
const (
	Button1 uint8 = 0b1110
	Button2 uint8 = 0b1101
	Button3 uint8 = 0b1011
	Button4 uint8 = 0b0111

	PanelMask uint8 = 0x0F
)

// External patterns are the two pins of the remote buttons, as sampled.
const (
	ExternalClean uint8 = 0b01
	ExternalFill  uint8 = 0b10

	ExternalMask uint8 = 0x03
)

// LabelPrefix starts the serial command that sets the operator label.
const LabelPrefix = "IP:"

var panelTable = map[logic.ModeKind]map[uint8]logic.IntentKind{
	logic.KindHome: {
		Button1: logic.IntentModeMenu,
		Button2: logic.IntentDiagnostics,
		Button3: logic.IntentScheduleClean,
		Button4: logic.IntentScheduleFill,
	},
	logic.KindModeMenu: {
		Button1: logic.IntentDisableMenu,
		Button2: logic.IntentNightModeMenu,
		Button4: logic.IntentHome,
	},
	logic.KindDisableConfirm: {
		Button1: logic.IntentConfirm,
		Button2: logic.IntentDeny,
	},
	logic.KindDisabled: {
		Button4: logic.IntentEnable,
	},
	logic.KindNightModeConfirm: {
		Button1: logic.IntentConfirm,
		Button2: logic.IntentDeny,
	},
	logic.KindScheduleClean: {
		Button1: logic.IntentIncrease,
		Button2: logic.IntentDecrease,
		Button3: logic.IntentStartClean,
		Button4: logic.IntentHome,
	},
	logic.KindScheduleFill: {
		Button1: logic.IntentIncrease,
		Button2: logic.IntentDecrease,
		Button3: logic.IntentHome,
		Button4: logic.IntentStartFill,
	},
	logic.KindDiagnostics: {
		Button4: logic.IntentHome,
	},
	logic.KindNightModeActive: {
		Button4: logic.IntentNightModeOff,
	},
}

// DecodePanel maps a local panel pattern to an intent for the given mode.
// Any button cancels a running cycle.
func DecodePanel(mode logic.ModeKind, pattern uint8) (logic.Intent, bool) {
	pattern &= PanelMask
	switch mode {
	case logic.KindFilling, logic.KindCleaning:
		if pattern != PanelMask {
			return logic.Intent{Kind: logic.IntentCancel}, true
		}
		return logic.Intent{}, false
	}
	k, ok := panelTable[mode][pattern]
	if !ok {
		return logic.Intent{}, false
	}
	return logic.Intent{Kind: k}, true
}

// DecodeExternal maps a remote button pattern to an intent. The clean button
// cancels whatever cycle is running; the fill button only cancels a fill.
// Both are inert while night mode is active.
func DecodeExternal(mode logic.ModeKind, pattern uint8) (logic.Intent, bool) {
	if mode == logic.KindNightModeActive {
		return logic.Intent{}, false
	}
	switch pattern & ExternalMask {
	case ExternalClean:
		if mode == logic.KindFilling || mode == logic.KindCleaning {
			return logic.Intent{Kind: logic.IntentCancel}, true
		}
		return logic.Intent{Kind: logic.IntentStartClean}, true
	case ExternalFill:
		switch mode {
		case logic.KindFilling:
			return logic.Intent{Kind: logic.IntentCancel}, true
		case logic.KindCleaning:
			return logic.Intent{}, false
		}
		return logic.Intent{Kind: logic.IntentStartFill}, true
	}
	return logic.Intent{}, false
}

// DecodeCommand parses one serial command line. Unknown commands are
// ignored.
func DecodeCommand(line string) (logic.Intent, bool) {
	line = strings.TrimRight(line, "\r\n")
	switch line {
	case "fill":
		return logic.Intent{Kind: logic.IntentStartFill}, true
	case "clean":
		return logic.Intent{Kind: logic.IntentStartClean}, true
	case "disable":
		return logic.Intent{Kind: logic.IntentDisable}, true
	case "cancel":
		return logic.Intent{Kind: logic.IntentCancel}, true
	}
	if strings.HasPrefix(line, LabelPrefix) {
		return logic.Intent{Kind: logic.IntentSetLabel, Label: line}, true
	}
	return logic.Intent{}, false
}
