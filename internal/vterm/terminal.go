package vterm

import (
	"io"
	"sync"
)

// Cursor is a 0-based screen position.
type Cursor struct {
	X, Y int
}

type savedCursor struct {
	cursor Cursor
	style  Style
	origin bool
	valid  bool
}

// Terminal is the in-memory terminal state machine. Bytes written to it are
// decoded into Ops and applied to the active screen. All methods are safe for
// concurrent use.
type Terminal struct {
	mu sync.Mutex

	width  int
	height int

	// Active screen rows, exactly height entries
	grid []Row

	// Saved primary screen while the alternate screen is active
	primaryGrid    []Row
	primaryCursor  Cursor
	primaryPending bool

	scrollback *Scrollback

	cursor      Cursor
	saved       savedCursor
	pendingWrap bool

	style Style
	modes Modes

	// Scroll region, 0-based inclusive
	scrollTop    int
	scrollBottom int

	title string

	// Viewport offset into scrollback. 0 means live view at the bottom;
	// positive values scroll back by that many rows.
	viewOffset int

	sel Selection

	// Snapshot of the screen held while synchronized output (mode 2026) is
	// active. Render serves this; state updates continue underneath.
	syncActive   bool
	syncSnapshot []Row
	syncCursor   Cursor

	decoder *Decoder
	respond io.Writer
	version uint64
}

// New creates a terminal of the given size with a scrollback buffer holding
// up to scrollbackRows evicted lines.
func New(width, height, scrollbackRows int) *Terminal {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	t := &Terminal{
		width:        width,
		height:       height,
		scrollback:   NewScrollback(scrollbackRows),
		scrollBottom: height - 1,
		modes:        defaultModes(),
		decoder:      NewDecoder(),
	}
	t.grid = makeGrid(width, height)
	return t
}

func makeGrid(width, height int) []Row {
	grid := make([]Row, height)
	for i := range grid {
		grid[i] = MakeBlankRow(width)
	}
	return grid
}

// SetResponseWriter sets the destination for query replies (DSR, DA, DECRQM).
// Typically the PTY so reports reach the child process.
func (t *Terminal) SetResponseWriter(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.respond = w
}

// Write decodes p and applies the resulting operations. Partial escape
// sequences at the end of p carry over to the next call. Implements io.Writer.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, op := range t.decoder.Decode(p) {
		t.apply(op)
	}
	t.version++
	return len(p), nil
}

// Apply applies a single already-decoded operation.
func (t *Terminal) Apply(op Op) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apply(op)
	t.version++
}

func (t *Terminal) apply(op Op) {
	switch v := op.(type) {
	case Print:
		t.print(v.Rune)
	case Bell:
		// No bell surface; ignored
	case Backspace:
		if t.cursor.X > 0 {
			t.cursor.X--
		}
		t.pendingWrap = false
	case HorizontalTab:
		t.tab()
	case Linefeed:
		t.linefeed()
	case CarriageReturn:
		t.cursor.X = 0
		t.pendingWrap = false
	case CursorMove:
		t.moveCursor(v.DY, v.DX)
	case CursorPos:
		t.setCursorPos(v.Row-1, v.Col-1)
	case ColumnAbs:
		t.setCursorPos(t.cursor.Y-t.originBase(), v.Col-1)
	case RowAbs:
		t.setCursorPos(v.Row-1, t.cursor.X)
	case CursorNextLine:
		t.moveCursor(v.N, 0)
		t.cursor.X = 0
	case CursorPrevLine:
		t.moveCursor(-v.N, 0)
		t.cursor.X = 0
	case EraseDisplay:
		t.eraseDisplay(v.Mode)
	case EraseLine:
		t.eraseLine(v.Mode)
	case InsertLines:
		t.insertLines(v.N)
	case DeleteLines:
		t.deleteLines(v.N)
	case InsertChars:
		t.insertChars(v.N)
	case DeleteChars:
		t.deleteChars(v.N)
	case EraseChars:
		t.eraseChars(v.N)
	case ScrollUp:
		t.scrollUp(v.N)
	case ScrollDown:
		t.scrollDown(v.N)
	case SGR:
		t.applySGR(v.Params)
	case SetMode:
		t.applyModes(v.Private, v.Params, true)
	case ResetMode:
		t.applyModes(v.Private, v.Params, false)
	case SetScrollRegion:
		t.setScrollRegion(v.Top, v.Bottom)
	case SaveCursor:
		t.saveCursor()
	case RestoreCursor:
		t.restoreCursor()
	case Index:
		t.index()
	case ReverseIndex:
		t.reverseIndex()
	case NextLine:
		t.index()
		t.cursor.X = 0
	case Keypad:
		t.modes.AppKeypad = v.Application
	case FullReset:
		t.fullReset()
	case OscString:
		t.handleOSC(v.Payload)
	case DcsString:
		// No DCS handlers yet; payloads are decoded and dropped
	case Report:
		t.handleReport(v)
	case Unhandled:
		// Decoded but unrecognized; deliberately dropped
	}
}

// Size returns the current screen dimensions.
func (t *Terminal) Size() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

// CursorPosition returns the 0-based cursor position.
func (t *Terminal) CursorPosition() Cursor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// Title returns the window title set via OSC 0/2.
func (t *Terminal) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// Version returns a counter incremented on every applied write, usable for
// cheap change detection.
func (t *Terminal) Version() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// Modes returns a copy of the current mode flags.
func (t *Terminal) ModeState() Modes {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.modes
}

// Resize changes the screen dimensions without reflowing content. Rows are
// truncated or padded on width changes. On height shrink, rows scrolled off
// the top of the primary screen are pushed into scrollback.
func (t *Terminal) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if width == t.width && height == t.height {
		return
	}

	var dropped int
	t.grid, dropped = resizeGrid(t.grid, width, height, t.scrollback, !t.modes.AltScreen)
	t.cursor.Y -= dropped
	if t.modes.AltScreen && t.primaryGrid != nil {
		var pdropped int
		t.primaryGrid, pdropped = resizeGrid(t.primaryGrid, width, height, t.scrollback, true)
		t.primaryCursor.Y -= pdropped
		t.primaryCursor = clampCursorTo(t.primaryCursor, width, height)
	}

	t.width = width
	t.height = height
	t.cursor = clampCursorTo(t.cursor, width, height)
	t.scrollTop = 0
	t.scrollBottom = height - 1
	t.pendingWrap = false
	t.viewOffset = 0
	t.version++
}

func clampCursorTo(c Cursor, width, height int) Cursor {
	if c.X >= width {
		c.X = width - 1
	}
	if c.Y >= height {
		c.Y = height - 1
	}
	if c.X < 0 {
		c.X = 0
	}
	if c.Y < 0 {
		c.Y = 0
	}
	return c
}

func resizeGrid(grid []Row, width, height int, sb *Scrollback, pushToScrollback bool) (rows []Row, dropped int) {
	// Width: truncate or pad each row in place
	for i := range grid {
		if len(grid[i].Cells) > width {
			grid[i].Cells = grid[i].Cells[:width]
			fixTrailingWide(&grid[i])
		} else if len(grid[i].Cells) < width {
			pad := make([]Cell, width-len(grid[i].Cells))
			for j := range pad {
				pad[j] = DefaultCell()
			}
			grid[i].Cells = append(grid[i].Cells, pad...)
		}
	}

	switch {
	case height < len(grid):
		// Shrink evicts rows from the top. Evicted primary rows land in
		// scrollback so content is not lost.
		dropped = len(grid) - height
		if pushToScrollback && sb != nil {
			for i := 0; i < dropped; i++ {
				sb.Push(grid[i])
			}
		}
		grid = append([]Row(nil), grid[dropped:]...)
	case height > len(grid):
		for len(grid) < height {
			grid = append(grid, MakeBlankRow(width))
		}
	}
	return grid, dropped
}

// fixTrailingWide blanks a wide cell whose continuation was truncated away.
func fixTrailingWide(row *Row) {
	n := len(row.Cells)
	if n > 0 && row.Cells[n-1].Width == 2 {
		row.Cells[n-1] = DefaultCell()
	}
}

func (t *Terminal) fullReset() {
	t.grid = makeGrid(t.width, t.height)
	t.primaryGrid = nil
	t.cursor = Cursor{}
	t.saved = savedCursor{}
	t.pendingWrap = false
	t.style = Style{}
	t.modes = defaultModes()
	t.scrollTop = 0
	t.scrollBottom = t.height - 1
	t.viewOffset = 0
	t.syncActive = false
	t.syncSnapshot = nil
	t.sel = Selection{}
	t.scrollback.Clear()
	t.decoder.Reset()
}
