package vterm

import "strings"

// Selection is a span over absolute row coordinates (scrollback first, then
// the screen). Start and End are inclusive cell positions; End may precede
// Start and is normalized on extraction.
type Selection struct {
	StartRow, StartCol int
	EndRow, EndCol     int
	Active             bool
}

// StartSelection begins a new selection anchored at the given absolute cell.
func (t *Terminal) StartSelection(row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sel = Selection{StartRow: row, StartCol: col, EndRow: row, EndCol: col, Active: true}
	t.version++
}

// UpdateSelection extends the active selection to the given absolute cell.
func (t *Terminal) UpdateSelection(row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.sel.Active {
		return
	}
	t.sel.EndRow, t.sel.EndCol = row, col
	t.version++
}

// ClearSelection drops any active selection.
func (t *Terminal) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sel.Active {
		t.sel = Selection{}
		t.version++
	}
}

// Selection returns the current selection state.
func (t *Terminal) Selection() Selection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sel
}

func (s Selection) normalized() Selection {
	if s.StartRow > s.EndRow || (s.StartRow == s.EndRow && s.StartCol > s.EndCol) {
		s.StartRow, s.EndRow = s.EndRow, s.StartRow
		s.StartCol, s.EndCol = s.EndCol, s.StartCol
	}
	return s
}

// SelectedText extracts the text covered by sel. Rows continue without a
// newline when the following row is a soft wrap; hard line breaks produce
// newlines. Trailing blanks on each hard line are trimmed.
func (t *Terminal) SelectedText(sel Selection) string {
	if !sel.Active {
		return ""
	}
	sel = sel.normalized()
	t.mu.Lock()
	defer t.mu.Unlock()

	total := t.scrollback.Len() + t.height
	if sel.StartRow < 0 {
		sel.StartRow = 0
	}
	if sel.EndRow >= total {
		sel.EndRow = total - 1
	}
	if sel.StartRow > sel.EndRow {
		return ""
	}

	var b strings.Builder
	for r := sel.StartRow; r <= sel.EndRow; r++ {
		row := t.row(r)
		x0, x1 := 0, len(row.Cells)-1
		if r == sel.StartRow {
			x0 = sel.StartCol
		}
		if r == sel.EndRow {
			x1 = sel.EndCol
		}
		if x1 >= len(row.Cells) {
			x1 = len(row.Cells) - 1
		}
		if x0 < 0 {
			x0 = 0
		}

		line := sliceText(row, x0, x1)
		if r < sel.EndRow {
			next := t.row(r + 1)
			if next.Wrapped {
				// Soft wrap keeps trailing spaces so the join is lossless
				b.WriteString(line)
			} else {
				b.WriteString(strings.TrimRight(line, " "))
				b.WriteByte('\n')
			}
		} else {
			b.WriteString(strings.TrimRight(line, " "))
		}
	}
	return b.String()
}

func sliceText(row Row, x0, x1 int) string {
	var b strings.Builder
	for x := x0; x <= x1 && x < len(row.Cells); x++ {
		c := row.Cells[x]
		if c.Width == 0 {
			continue
		}
		if c.Rune == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteRune(c.Rune)
		}
	}
	return b.String()
}
