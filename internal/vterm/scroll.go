package vterm

// scrollUp shifts lines in the scroll region up by n. Lines leaving the top
// of the primary screen enter scrollback when the region starts at row 0.
func (t *Terminal) scrollUp(n int) {
	if n < 1 {
		return
	}
	span := t.scrollBottom - t.scrollTop + 1
	if n > span {
		n = span
	}
	if !t.modes.AltScreen && t.scrollTop == 0 {
		for i := 0; i < n; i++ {
			t.scrollback.Push(t.grid[t.scrollTop+i])
		}
	}
	copy(t.grid[t.scrollTop:], t.grid[t.scrollTop+n:t.scrollBottom+1])
	for y := t.scrollBottom - n + 1; y <= t.scrollBottom; y++ {
		t.grid[y] = MakeBlankRow(t.width)
	}
}

// scrollDown shifts lines in the scroll region down by n. Lines leaving the
// bottom are discarded.
func (t *Terminal) scrollDown(n int) {
	if n < 1 {
		return
	}
	span := t.scrollBottom - t.scrollTop + 1
	if n > span {
		n = span
	}
	copy(t.grid[t.scrollTop+n:t.scrollBottom+1], t.grid[t.scrollTop:t.scrollBottom+1-n])
	for y := t.scrollTop; y < t.scrollTop+n; y++ {
		t.grid[y] = MakeBlankRow(t.width)
	}
}
