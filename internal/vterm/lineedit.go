package vterm

// insertLines inserts n blank lines at the cursor row, shifting lines below
// toward the region bottom. Outside the scroll region it is a no-op.
func (t *Terminal) insertLines(n int) {
	if t.cursor.Y < t.scrollTop || t.cursor.Y > t.scrollBottom {
		return
	}
	t.pendingWrap = false
	span := t.scrollBottom - t.cursor.Y + 1
	if n > span {
		n = span
	}
	if n < 1 {
		return
	}
	copy(t.grid[t.cursor.Y+n:t.scrollBottom+1], t.grid[t.cursor.Y:t.scrollBottom+1-n])
	for y := t.cursor.Y; y < t.cursor.Y+n; y++ {
		t.grid[y] = MakeBlankRow(t.width)
	}
	t.cursor.X = 0
}

// deleteLines removes n lines at the cursor row, pulling lines up from the
// region bottom.
func (t *Terminal) deleteLines(n int) {
	if t.cursor.Y < t.scrollTop || t.cursor.Y > t.scrollBottom {
		return
	}
	t.pendingWrap = false
	span := t.scrollBottom - t.cursor.Y + 1
	if n > span {
		n = span
	}
	if n < 1 {
		return
	}
	copy(t.grid[t.cursor.Y:t.scrollBottom+1-n], t.grid[t.cursor.Y+n:t.scrollBottom+1])
	for y := t.scrollBottom - n + 1; y <= t.scrollBottom; y++ {
		t.grid[y] = MakeBlankRow(t.width)
	}
	t.cursor.X = 0
}

// insertChars shifts cells at the cursor right by n, dropping cells pushed
// past the right edge.
func (t *Terminal) insertChars(n int) {
	if n < 1 {
		n = 1
	}
	if n > t.width-t.cursor.X {
		n = t.width - t.cursor.X
	}
	t.pendingWrap = false
	row := &t.grid[t.cursor.Y]
	clearOverwrittenWide(row, t.cursor.X)
	copy(row.Cells[t.cursor.X+n:], row.Cells[t.cursor.X:t.width-n])
	blank := t.blankCell()
	for x := t.cursor.X; x < t.cursor.X+n; x++ {
		row.Cells[x] = blank
	}
	fixTrailingWide(row)
}

// deleteChars removes n cells at the cursor, pulling the remainder of the
// line left and blank-filling the right edge.
func (t *Terminal) deleteChars(n int) {
	if n < 1 {
		n = 1
	}
	if n > t.width-t.cursor.X {
		n = t.width - t.cursor.X
	}
	t.pendingWrap = false
	row := &t.grid[t.cursor.Y]
	clearOverwrittenWide(row, t.cursor.X)
	clearOverwrittenWide(row, t.cursor.X+n-1)
	copy(row.Cells[t.cursor.X:], row.Cells[t.cursor.X+n:t.width])
	blank := t.blankCell()
	for x := t.width - n; x < t.width; x++ {
		row.Cells[x] = blank
	}
}
