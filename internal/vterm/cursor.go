package vterm

// originBase returns the row the coordinate origin maps to. With origin mode
// set, absolute positioning is relative to the scroll region.
func (t *Terminal) originBase() int {
	if t.modes.Origin {
		return t.scrollTop
	}
	return 0
}

// setCursorPos places the cursor at a 0-based position relative to the
// current origin, clamped to the screen (or the scroll region under origin
// mode).
func (t *Terminal) setCursorPos(row, col int) {
	t.pendingWrap = false
	row += t.originBase()
	minY, maxY := 0, t.height-1
	if t.modes.Origin {
		minY, maxY = t.scrollTop, t.scrollBottom
	}
	if row < minY {
		row = minY
	}
	if row > maxY {
		row = maxY
	}
	if col < 0 {
		col = 0
	}
	if col > t.width-1 {
		col = t.width - 1
	}
	t.cursor.Y = row
	t.cursor.X = col
}

// moveCursor moves the cursor relative to its position. Vertical movement
// does not cross the scroll region boundary the cursor starts inside.
func (t *Terminal) moveCursor(dy, dx int) {
	t.pendingWrap = false
	minY, maxY := 0, t.height-1
	if t.cursor.Y >= t.scrollTop {
		minY = t.scrollTop
	}
	if t.cursor.Y <= t.scrollBottom {
		maxY = t.scrollBottom
	}
	y := t.cursor.Y + dy
	if y < minY {
		y = minY
	}
	if y > maxY {
		y = maxY
	}
	x := t.cursor.X + dx
	if x < 0 {
		x = 0
	}
	if x > t.width-1 {
		x = t.width - 1
	}
	t.cursor.Y = y
	t.cursor.X = x
}

func (t *Terminal) saveCursor() {
	t.saved = savedCursor{
		cursor: t.cursor,
		style:  t.style,
		origin: t.modes.Origin,
		valid:  true,
	}
}

func (t *Terminal) restoreCursor() {
	t.pendingWrap = false
	if !t.saved.valid {
		t.cursor = Cursor{}
		return
	}
	t.cursor = clampCursorTo(t.saved.cursor, t.width, t.height)
	t.style = t.saved.style
	t.modes.Origin = t.saved.origin
}

// setScrollRegion takes 1-based bounds; bottom 0 means the last line. An
// inverted or degenerate region resets to the full screen. The cursor homes
// to the origin.
func (t *Terminal) setScrollRegion(top, bottom int) {
	if bottom == 0 {
		bottom = t.height
	}
	top--
	bottom--
	if top < 0 {
		top = 0
	}
	if bottom > t.height-1 {
		bottom = t.height - 1
	}
	if top >= bottom {
		top = 0
		bottom = t.height - 1
	}
	t.scrollTop = top
	t.scrollBottom = bottom
	t.setCursorPos(0, 0)
}

// index moves the cursor down one line, scrolling when at the region bottom.
func (t *Terminal) index() {
	t.linefeed()
}

// reverseIndex moves the cursor up one line, scrolling down when at the
// region top.
func (t *Terminal) reverseIndex() {
	t.pendingWrap = false
	if t.cursor.Y == t.scrollTop {
		t.scrollDown(1)
		return
	}
	if t.cursor.Y > 0 {
		t.cursor.Y--
	}
}
