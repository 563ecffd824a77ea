package input

// Handlers binds the input sources to one Slot. Each method runs in the
// context of its source and only writes the slot.
type Handlers struct {
	slot *Slot
	view *ModeView
}

// NewHandlers creates handlers that post into slot and read the mode from
// view.
func NewHandlers(slot *Slot, view *ModeView) *Handlers {
	return &Handlers{slot: slot, view: view}
}

// Panel handles a settled pattern from the local button panel.
func (h *Handlers) Panel(pattern uint8) {
	if it, ok := DecodePanel(h.view.Load(), pattern); ok {
		h.slot.Post(it)
	}
}

// External handles a settled pattern from the remote buttons.
func (h *Handlers) External(pattern uint8) {
	if it, ok := DecodeExternal(h.view.Load(), pattern); ok {
		h.slot.Post(it)
	}
}

// Command handles one complete serial line.
func (h *Handlers) Command(line string) {
	if it, ok := DecodeCommand(line); ok {
		h.slot.Post(it)
	}
}
