package inputmode

import (
	tea "charm.land/bubbletea/v2"
)

// KeyToBytes converts a key press to the bytes a child process expects.
// appCursor selects the application cursor-key encoding (DECCKM set).
func KeyToBytes(msg tea.KeyPressMsg, appCursor bool) []byte {
	key := msg.Key()

	if key.Mod&tea.ModCtrl != 0 && key.Code >= 'a' && key.Code <= 'z' {
		// ctrl+i is tab and ctrl+m is enter; both arrive as their own codes
		return []byte{byte(key.Code-'a') + 1}
	}
	if key.Mod&tea.ModCtrl != 0 {
		switch key.Code {
		case '\\':
			return []byte{0x1c}
		case ']':
			return []byte{0x1d}
		case '^':
			return []byte{0x1e}
		case '_':
			return []byte{0x1f}
		case '@', tea.KeySpace:
			return []byte{0x00}
		}
	}

	switch key.Code {
	case tea.KeyEnter:
		if key.Mod&tea.ModShift != 0 {
			return []byte{0x1b, '[', '1', '3', ';', '2', 'u'}
		}
		return []byte{'\r'}
	case tea.KeyBackspace:
		return []byte{0x7f}
	case tea.KeyTab:
		if key.Mod&tea.ModShift != 0 {
			return []byte{0x1b, '[', 'Z'}
		}
		return []byte{'\t'}
	case tea.KeySpace:
		return []byte{' '}
	case tea.KeyEscape:
		return []byte{0x1b}
	case tea.KeyUp:
		return cursorKey('A', key.Mod, appCursor)
	case tea.KeyDown:
		return cursorKey('B', key.Mod, appCursor)
	case tea.KeyRight:
		return cursorKey('C', key.Mod, appCursor)
	case tea.KeyLeft:
		return cursorKey('D', key.Mod, appCursor)
	case tea.KeyHome:
		return cursorKey('H', key.Mod, appCursor)
	case tea.KeyEnd:
		return cursorKey('F', key.Mod, appCursor)
	case tea.KeyDelete:
		return []byte{0x1b, '[', '3', '~'}
	case tea.KeyInsert:
		return []byte{0x1b, '[', '2', '~'}
	case tea.KeyPgUp:
		return []byte{0x1b, '[', '5', '~'}
	case tea.KeyPgDown:
		return []byte{0x1b, '[', '6', '~'}
	case tea.KeyF1:
		return []byte{0x1b, 'O', 'P'}
	case tea.KeyF2:
		return []byte{0x1b, 'O', 'Q'}
	case tea.KeyF3:
		return []byte{0x1b, 'O', 'R'}
	case tea.KeyF4:
		return []byte{0x1b, 'O', 'S'}
	case tea.KeyF5:
		return []byte{0x1b, '[', '1', '5', '~'}
	case tea.KeyF6:
		return []byte{0x1b, '[', '1', '7', '~'}
	case tea.KeyF7:
		return []byte{0x1b, '[', '1', '8', '~'}
	case tea.KeyF8:
		return []byte{0x1b, '[', '1', '9', '~'}
	case tea.KeyF9:
		return []byte{0x1b, '[', '2', '0', '~'}
	case tea.KeyF10:
		return []byte{0x1b, '[', '2', '1', '~'}
	case tea.KeyF11:
		return []byte{0x1b, '[', '2', '3', '~'}
	case tea.KeyF12:
		return []byte{0x1b, '[', '2', '4', '~'}
	}

	if key.Mod&tea.ModAlt != 0 && key.Text != "" {
		return append([]byte{0x1b}, []byte(key.Text)...)
	}
	if key.Text != "" {
		return []byte(key.Text)
	}
	if s := msg.String(); len(s) == 1 {
		return []byte(s)
	}
	return nil
}

// cursorKey encodes an arrow/home/end key. Alt adds the xterm modifier
// parameter; application mode uses the SS3 prefix.
func cursorKey(final byte, mod tea.KeyMod, appCursor bool) []byte {
	if mod&tea.ModAlt != 0 {
		return []byte{0x1b, '[', '1', ';', '3', final}
	}
	if mod&tea.ModShift != 0 {
		return []byte{0x1b, '[', '1', ';', '2', final}
	}
	if appCursor {
		return []byte{0x1b, 'O', final}
	}
	return []byte{0x1b, '[', final}
}

// PasteToBytes encodes pasted text, wrapping it in bracketed-paste markers
// when the child has requested them.
func PasteToBytes(text string, bracketed bool) []byte {
	if !bracketed {
		return []byte(text)
	}
	out := make([]byte, 0, len(text)+12)
	out = append(out, 0x1b, '[', '2', '0', '0', '~')
	out = append(out, text...)
	out = append(out, 0x1b, '[', '2', '0', '1', '~')
	return out
}
