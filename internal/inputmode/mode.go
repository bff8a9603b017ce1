package inputmode

import (
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/termhive/termhive/internal/logging"
)

// Mode is the input interpretation state.
type Mode int

const (
	// ModeRaw forwards every keystroke to the child byte-for-byte, except
	// the reserved exit chord. This is the initial mode.
	ModeRaw Mode = iota
	// ModeNormal interprets keystrokes as application commands.
	ModeNormal
	// ModeInsert buffers text input for a named target field.
	ModeInsert
	// ModePalette routes input to the command palette.
	ModePalette
	// ModeConfirm awaits a yes/no answer for a pending action.
	ModeConfirm
)

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeNormal:
		return "normal"
	case ModeInsert:
		return "insert"
	case ModePalette:
		return "palette"
	case ModeConfirm:
		return "confirm"
	}
	return "unknown"
}

// Routing tells the consumer where a handled key should go.
type Routing int

const (
	// RouteNone means the machine consumed the key (or it was a no-op).
	RouteNone Routing = iota
	// RoutePTY means encode the key and write it to the child.
	RoutePTY
	// RouteInsert means deliver the key to the active insert target.
	RouteInsert
	// RoutePalette means deliver the key to the palette widget.
	RoutePalette
)

// Event signals that a mode interaction completed.
type Event int

const (
	EventNone Event = iota
	EventInsertSubmit
	EventInsertCancel
	EventPaletteSubmit
	EventPaletteCancel
	EventConfirmAccept
	EventConfirmReject
)

// Result is the outcome of handling one key.
type Result struct {
	Route Routing
	Event Event
}

// TransitionFunc observes mode changes.
type TransitionFunc func(from, to Mode)

// Machine is the input-mode state machine. It is long-lived; every key maps
// to exactly one mode-dependent interpretation, and unrecognized keys are
// no-ops rather than errors.
type Machine struct {
	mu sync.Mutex

	mode         Mode
	insertTarget string
	pendingAct   string
	rawExit      string

	onTransition TransitionFunc
}

// NewMachine creates a machine in raw passthrough mode. rawExitKey is the
// chord (in bubbletea key-string form, e.g. "ctrl+\\") that leaves raw mode.
func NewMachine(rawExitKey string) *Machine {
	if rawExitKey == "" {
		rawExitKey = "ctrl+\\"
	}
	return &Machine{mode: ModeRaw, rawExit: rawExitKey}
}

// OnTransition registers a callback fired after every mode change.
func (m *Machine) OnTransition(fn TransitionFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTransition = fn
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// InsertTarget names the field receiving insert-mode input.
func (m *Machine) InsertTarget() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertTarget
}

// PendingAction names the action awaiting confirmation.
func (m *Machine) PendingAction() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingAct
}

func (m *Machine) transition(to Mode) {
	from := m.mode
	if from == to {
		return
	}
	m.mode = to
	if to != ModeInsert {
		m.insertTarget = ""
	}
	if to != ModeConfirm {
		m.pendingAct = ""
	}
	logging.Debug("input mode %s -> %s", from, to)
	if m.onTransition != nil {
		m.onTransition(from, to)
	}
}

// EnterInsert switches to insert mode for the named target.
func (m *Machine) EnterInsert(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transition(ModeInsert)
	m.insertTarget = target
}

// EnterPalette opens the command palette.
func (m *Machine) EnterPalette() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transition(ModePalette)
}

// EnterConfirm asks for confirmation of the named action.
func (m *Machine) EnterConfirm(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transition(ModeConfirm)
	m.pendingAct = action
}

// EnterRaw returns to raw passthrough.
func (m *Machine) EnterRaw() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transition(ModeRaw)
}

// EnterNormal switches to command interpretation.
func (m *Machine) EnterNormal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transition(ModeNormal)
}

// Handle interprets one key press in the current mode.
func (m *Machine) Handle(msg tea.KeyPressMsg) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := msg.String()
	switch m.mode {
	case ModeRaw:
		if s == m.rawExit {
			m.transition(ModeNormal)
			return Result{}
		}
		return Result{Route: RoutePTY}

	case ModeNormal:
		switch s {
		case "i":
			m.transition(ModeInsert)
			m.insertTarget = "prompt"
		case ":", "p":
			m.transition(ModePalette)
		case "a", "enter":
			m.transition(ModeRaw)
		case "q":
			m.transition(ModeConfirm)
			m.pendingAct = "quit"
		}
		return Result{}

	case ModeInsert:
		switch s {
		case "esc":
			m.transition(ModeNormal)
			return Result{Event: EventInsertCancel}
		case "enter":
			m.transition(ModeNormal)
			return Result{Event: EventInsertSubmit}
		}
		return Result{Route: RouteInsert}

	case ModePalette:
		switch s {
		case "esc":
			m.transition(ModeNormal)
			return Result{Event: EventPaletteCancel}
		case "enter":
			m.transition(ModeNormal)
			return Result{Event: EventPaletteSubmit}
		}
		return Result{Route: RoutePalette}

	case ModeConfirm:
		switch s {
		case "y", "Y", "enter":
			m.transition(ModeNormal)
			return Result{Event: EventConfirmAccept}
		case "n", "N", "esc":
			m.transition(ModeNormal)
			return Result{Event: EventConfirmReject}
		}
		return Result{}
	}
	return Result{}
}
