package vterm

// blankCell returns an erased cell carrying the current background color.
func (t *Terminal) blankCell() Cell {
	return Cell{Rune: ' ', Style: Style{Bg: t.style.Bg}, Width: 1}
}

func (t *Terminal) eraseDisplay(mode int) {
	t.pendingWrap = false
	switch mode {
	case 0: // Cursor to end of screen
		t.eraseLineRange(t.cursor.Y, t.cursor.X, t.width-1)
		for y := t.cursor.Y + 1; y < t.height; y++ {
			t.eraseLineRange(y, 0, t.width-1)
		}
	case 1: // Start of screen to cursor
		for y := 0; y < t.cursor.Y; y++ {
			t.eraseLineRange(y, 0, t.width-1)
		}
		t.eraseLineRange(t.cursor.Y, 0, t.cursor.X)
	case 2: // Entire screen, cursor unchanged
		for y := 0; y < t.height; y++ {
			t.eraseLineRange(y, 0, t.width-1)
		}
	case 3: // Entire screen plus scrollback
		for y := 0; y < t.height; y++ {
			t.eraseLineRange(y, 0, t.width-1)
		}
		t.scrollback.Clear()
		t.viewOffset = 0
	}
}

func (t *Terminal) eraseLine(mode int) {
	t.pendingWrap = false
	switch mode {
	case 0:
		t.eraseLineRange(t.cursor.Y, t.cursor.X, t.width-1)
	case 1:
		t.eraseLineRange(t.cursor.Y, 0, t.cursor.X)
	case 2:
		t.eraseLineRange(t.cursor.Y, 0, t.width-1)
	}
}

// eraseLineRange blanks columns x0..x1 inclusive, repairing any wide pair
// split at the boundaries.
func (t *Terminal) eraseLineRange(y, x0, x1 int) {
	if y < 0 || y >= t.height {
		return
	}
	row := &t.grid[y]
	if x0 < 0 {
		x0 = 0
	}
	if x1 > t.width-1 {
		x1 = t.width - 1
	}
	if x0 > x1 {
		return
	}
	clearOverwrittenWide(row, x0)
	clearOverwrittenWide(row, x1)
	blank := t.blankCell()
	for x := x0; x <= x1; x++ {
		row.Cells[x] = blank
	}
	if x0 == 0 {
		row.Wrapped = false
	}
}

func (t *Terminal) eraseChars(n int) {
	if n < 1 {
		n = 1
	}
	t.eraseLineRange(t.cursor.Y, t.cursor.X, t.cursor.X+n-1)
}
