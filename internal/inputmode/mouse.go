package inputmode

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/termhive/termhive/internal/vterm"
)

// MouseToBytes encodes a mouse event for the child, honoring the reporting
// mode it requested. Returns nil when the event should not be reported.
func MouseToBytes(msg tea.MouseMsg, mode vterm.MouseMode, sgr bool) []byte {
	if mode == vterm.MouseOff {
		return nil
	}

	var x, y, btn int
	release := false

	switch m := msg.(type) {
	case tea.MouseClickMsg:
		x, y = m.X, m.Y
		btn = buttonCode(m.Button)
	case tea.MouseReleaseMsg:
		x, y = m.X, m.Y
		btn = buttonCode(m.Button)
		release = true
	case tea.MouseWheelMsg:
		x, y = m.X, m.Y
		switch m.Button {
		case tea.MouseWheelUp:
			btn = 64
		case tea.MouseWheelDown:
			btn = 65
		default:
			return nil
		}
	case tea.MouseMotionMsg:
		if mode != vterm.MouseAny && mode != vterm.MouseButton {
			return nil
		}
		x, y = m.X, m.Y
		if mode == vterm.MouseButton && m.Button == tea.MouseNone {
			return nil
		}
		btn = buttonCode(m.Button) + 32
	default:
		return nil
	}

	if btn < 0 {
		return nil
	}

	if sgr {
		final := byte('M')
		if release {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", btn, x+1, y+1, final))
	}

	// Legacy X10 encoding caps coordinates at 223
	if x > 222 || y > 222 {
		return nil
	}
	if release {
		btn = 3
	}
	return []byte{0x1b, '[', 'M', byte(32 + btn), byte(33 + x), byte(33 + y)}
}

func buttonCode(b tea.MouseButton) int {
	switch b {
	case tea.MouseLeft:
		return 0
	case tea.MouseMiddle:
		return 1
	case tea.MouseRight:
		return 2
	case tea.MouseNone:
		return 3
	}
	return -1
}
