package vterm

import (
	"fmt"
	"strings"
)

// MouseMode is the reporting granularity requested by the application.
type MouseMode int

const (
	MouseOff MouseMode = iota
	MouseNormal
	MouseButton
	MouseAny
)

// Modes holds the terminal mode flags toggled by SM/RM and DECSET/DECRST.
type Modes struct {
	AltScreen      bool
	AppCursorKeys  bool
	AppKeypad      bool
	BracketedPaste bool
	Mouse          MouseMode
	MouseSGR       bool
	Origin         bool
	AutoWrap       bool
	CursorHidden   bool
	Insert         bool
}

func defaultModes() Modes {
	return Modes{AutoWrap: true}
}

func (t *Terminal) applyModes(private bool, params []int, set bool) {
	for _, p := range params {
		if private {
			t.applyPrivateMode(p, set)
		} else {
			t.applyANSIMode(p, set)
		}
	}
}

func (t *Terminal) applyANSIMode(p int, set bool) {
	switch p {
	case 4: // IRM
		t.modes.Insert = set
	}
}

func (t *Terminal) applyPrivateMode(p int, set bool) {
	switch p {
	case 1: // DECCKM
		t.modes.AppCursorKeys = set
	case 6: // DECOM
		t.modes.Origin = set
		t.setCursorPos(0, 0)
	case 7: // DECAWM
		t.modes.AutoWrap = set
		if !set {
			t.pendingWrap = false
		}
	case 25: // DECTCEM
		t.modes.CursorHidden = !set
	case 47, 1047:
		t.switchScreen(set, false)
	case 1048:
		if set {
			t.saveCursor()
		} else {
			t.restoreCursor()
		}
	case 1049:
		t.switchScreen(set, true)
	case 1000:
		t.setMouse(set, MouseNormal)
	case 1002:
		t.setMouse(set, MouseButton)
	case 1003:
		t.setMouse(set, MouseAny)
	case 1006:
		t.modes.MouseSGR = set
	case 2004:
		t.modes.BracketedPaste = set
	case 2026:
		t.setSynchronized(set)
	}
}

func (t *Terminal) setMouse(set bool, mode MouseMode) {
	if set {
		t.modes.Mouse = mode
	} else if t.modes.Mouse == mode {
		t.modes.Mouse = MouseOff
	}
}

// switchScreen enters or leaves the alternate screen. Entering is idempotent.
// The alternate screen never feeds scrollback, and leaving restores the
// primary screen contents exactly. withCursor adds the 1049 save/restore of
// the cursor around the switch.
func (t *Terminal) switchScreen(toAlt, withCursor bool) {
	if toAlt == t.modes.AltScreen {
		return
	}
	if toAlt {
		if withCursor {
			t.saveCursor()
		}
		t.primaryGrid = t.grid
		t.primaryCursor = t.cursor
		t.primaryPending = t.pendingWrap
		t.grid = makeGrid(t.width, t.height)
		t.cursor = Cursor{}
		t.pendingWrap = false
		t.modes.AltScreen = true
		t.viewOffset = 0
	} else {
		t.modes.AltScreen = false
		if t.primaryGrid != nil {
			t.grid = t.primaryGrid
			t.cursor = t.primaryCursor
			t.pendingWrap = t.primaryPending
			t.primaryGrid = nil
		} else {
			t.grid = makeGrid(t.width, t.height)
			t.cursor = Cursor{}
		}
		if withCursor {
			t.restoreCursor()
		}
	}
	t.scrollTop = 0
	t.scrollBottom = t.height - 1
}

// setSynchronized freezes the rendered view while application updates keep
// flowing into the live grid. Reset swaps the live grid back in atomically.
func (t *Terminal) setSynchronized(on bool) {
	if on {
		if !t.syncActive {
			t.syncActive = true
			t.syncSnapshot = snapshotRows(t.grid)
			t.syncCursor = t.cursor
		}
		return
	}
	t.syncActive = false
	t.syncSnapshot = nil
}

func snapshotRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i := range rows {
		out[i] = CopyRow(rows[i])
	}
	return out
}

func (t *Terminal) handleReport(r Report) {
	switch r.Kind {
	case ReportStatus:
		t.reply("\x1b[0n")
	case ReportCursorPos:
		row := t.cursor.Y + 1 - t.originBase()
		col := t.cursor.X + 1
		t.reply(fmt.Sprintf("\x1b[%d;%dR", row, col))
	case ReportPrimaryDA:
		// VT220 with no options
		t.reply("\x1b[?62c")
	case ReportSecondaryDA:
		t.reply("\x1b[>0;10;1c")
	case ReportMode:
		if len(r.Params) == 0 {
			return
		}
		p := r.Params[0]
		t.reply(fmt.Sprintf("\x1b[?%d;%d$y", p, t.modeStatus(p)))
	}
}

// modeStatus maps a private mode to a DECRPM status: 1 set, 2 reset,
// 0 unrecognized.
func (t *Terminal) modeStatus(p int) int {
	var on bool
	switch p {
	case 1:
		on = t.modes.AppCursorKeys
	case 6:
		on = t.modes.Origin
	case 7:
		on = t.modes.AutoWrap
	case 25:
		on = !t.modes.CursorHidden
	case 47, 1047, 1049:
		on = t.modes.AltScreen
	case 1000:
		on = t.modes.Mouse == MouseNormal
	case 1002:
		on = t.modes.Mouse == MouseButton
	case 1003:
		on = t.modes.Mouse == MouseAny
	case 1006:
		on = t.modes.MouseSGR
	case 2004:
		on = t.modes.BracketedPaste
	case 2026:
		on = t.syncActive
	default:
		return 0
	}
	if on {
		return 1
	}
	return 2
}

func (t *Terminal) reply(s string) {
	if t.respond == nil {
		return
	}
	// Best effort; a dead PTY drops the reply
	t.respond.Write([]byte(s))
}

// handleOSC captures window title updates (OSC 0 and 2). Other OSC payloads
// are decoded losslessly but not acted on.
func (t *Terminal) handleOSC(payload string) {
	idx := strings.IndexByte(payload, ';')
	if idx < 0 {
		return
	}
	switch payload[:idx] {
	case "0", "2":
		t.title = payload[idx+1:]
	}
}
