package vterm

import (
	"github.com/mattn/go-runewidth"
)

const tabStop = 8

func (t *Terminal) print(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		// Combining marks attach to the previous cell; zero-width characters
		// with nothing to attach to are dropped.
		t.attachCombining(r)
		return
	}
	if w > 2 {
		w = 2
	}

	if t.pendingWrap && t.modes.AutoWrap {
		t.wrapLine()
	}
	t.pendingWrap = false

	// A wide glyph that doesn't fit in the remaining columns wraps early,
	// leaving the last cell blank.
	if w == 2 && t.cursor.X == t.width-1 {
		if t.modes.AutoWrap {
			t.setCell(t.cursor.Y, t.cursor.X, DefaultCell())
			t.wrapLine()
		} else {
			t.cursor.X = t.width - 2
			if t.cursor.X < 0 {
				t.cursor.X = 0
			}
		}
	}

	row := &t.grid[t.cursor.Y]
	clearOverwrittenWide(row, t.cursor.X)

	cell := Cell{Rune: r, Style: t.style, Width: w}
	t.setCell(t.cursor.Y, t.cursor.X, cell)
	if w == 2 && t.cursor.X+1 < t.width {
		t.setCell(t.cursor.Y, t.cursor.X+1, Cell{Rune: 0, Style: t.style, Width: 0})
	}

	if t.cursor.X+w >= t.width {
		// Stay on the last column; wrap is deferred until the next print
		t.cursor.X = t.width - 1
		if t.modes.AutoWrap {
			t.pendingWrap = true
		}
	} else {
		t.cursor.X += w
	}
}

// attachCombining folds a combining mark into the cell the cursor last wrote.
func (t *Terminal) attachCombining(r rune) {
	x := t.cursor.X
	if !t.pendingWrap && x > 0 {
		x--
	}
	row := &t.grid[t.cursor.Y]
	if x >= 0 && x < len(row.Cells) && row.Cells[x].Rune != 0 {
		row.Cells[x].Rune = combine(row.Cells[x].Rune, r)
	}
}

// combine keeps the base rune. Full grapheme clustering is out of scope for
// the cell model; the mark is dropped rather than corrupting the grid.
func combine(base, _ rune) rune {
	return base
}

// clearOverwrittenWide repairs a wide pair when a write lands on either half.
func clearOverwrittenWide(row *Row, x int) {
	if x < 0 || x >= len(row.Cells) {
		return
	}
	// Writing onto a continuation cell blanks its lead
	if row.Cells[x].Width == 0 && row.Cells[x].Rune == 0 && x > 0 && row.Cells[x-1].Width == 2 {
		row.Cells[x-1] = DefaultCell()
	}
	// Writing onto a lead cell blanks its continuation
	if row.Cells[x].Width == 2 && x+1 < len(row.Cells) {
		row.Cells[x+1] = DefaultCell()
	}
}

func (t *Terminal) setCell(y, x int, c Cell) {
	if y < 0 || y >= t.height || x < 0 || x >= t.width {
		return
	}
	t.grid[y].Cells[x] = c
}

// wrapLine moves to column 0 of the next line and marks the new line as a
// soft continuation of the previous one.
func (t *Terminal) wrapLine() {
	t.cursor.X = 0
	t.pendingWrap = false
	t.linefeed()
	t.grid[t.cursor.Y].Wrapped = true
}

func (t *Terminal) linefeed() {
	t.pendingWrap = false
	if t.cursor.Y == t.scrollBottom {
		t.scrollUp(1)
		return
	}
	if t.cursor.Y < t.height-1 {
		t.cursor.Y++
	}
}

func (t *Terminal) tab() {
	t.pendingWrap = false
	next := (t.cursor.X/tabStop + 1) * tabStop
	if next >= t.width {
		next = t.width - 1
	}
	t.cursor.X = next
}
