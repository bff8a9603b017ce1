package vterm

import (
	"fmt"
	"strings"
)

// TotalRows returns the scrollback length plus the screen height.
func (t *Terminal) TotalRows() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scrollback.Len() + t.height
}

// ViewOffset returns how many rows the viewport is scrolled back from live.
func (t *Terminal) ViewOffset() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewOffset
}

// ScrollBy moves the viewport by delta rows (positive scrolls back in
// history), clamped to the available scrollback. The alternate screen has
// no history, so scrolling there is a no-op.
func (t *Terminal) ScrollBy(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.modes.AltScreen {
		return
	}
	t.viewOffset += delta
	if t.viewOffset > t.scrollback.Len() {
		t.viewOffset = t.scrollback.Len()
	}
	if t.viewOffset < 0 {
		t.viewOffset = 0
	}
	t.version++
}

// ScrollToBottom returns the viewport to the live screen.
func (t *Terminal) ScrollToBottom() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.viewOffset != 0 {
		t.viewOffset = 0
		t.version++
	}
}

// row returns the absolute row i, 0 being the oldest scrollback row. The
// screen follows scrollback.
func (t *Terminal) row(i int) Row {
	if r, ok := t.scrollback.At(i); ok {
		return r
	}
	i -= t.scrollback.Len()
	if i >= 0 && i < t.height {
		return t.grid[i]
	}
	return Row{}
}

// VisibleRows returns deep copies of the rows the viewport currently shows,
// respecting scroll offset and a synchronized-output snapshot.
func (t *Terminal) VisibleRows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return snapshotRows(t.visibleRowsLocked())
}

func (t *Terminal) visibleRowsLocked() []Row {
	if t.syncActive && t.viewOffset == 0 {
		return t.syncSnapshot
	}
	if t.viewOffset == 0 {
		return t.grid
	}
	out := make([]Row, 0, t.height)
	start := t.scrollback.Len() - t.viewOffset
	for i := start; i < start+t.height; i++ {
		out = append(out, t.row(i))
	}
	return out
}

// RowAt returns a deep copy of absolute row i, 0 being the oldest
// scrollback row.
func (t *Terminal) RowAt(i int) Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return CopyRow(t.row(i))
}

// Rows returns deep copies of absolute rows [start, end), scrollback first.
func (t *Terminal) Rows(start, end int) []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := t.scrollback.Len() + t.height
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	out := make([]Row, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, CopyRow(t.row(i)))
	}
	return out
}

// Render produces the visible screen as styled ANSI text, one line per row.
// While synchronized output is active the frozen snapshot is rendered.
func (t *Terminal) Render() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.visibleRowsLocked()
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		renderRow(&b, row)
	}
	return b.String()
}

func renderRow(b *strings.Builder, row Row) {
	var cur Style
	styled := false
	for _, c := range row.Cells {
		if c.Width == 0 {
			continue
		}
		if c.Style != cur {
			b.WriteString(styleToANSI(c.Style))
			cur = c.Style
			styled = cur != (Style{})
		}
		if c.Rune == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteRune(c.Rune)
		}
	}
	if styled {
		b.WriteString("\x1b[0m")
	}
}

// styleToANSI re-encodes a cell style as an SGR sequence, starting from a
// reset so sequences compose without leaking state between cells.
func styleToANSI(s Style) string {
	parts := []string{"0"}
	if s.Bold {
		parts = append(parts, "1")
	}
	if s.Dim {
		parts = append(parts, "2")
	}
	if s.Italic {
		parts = append(parts, "3")
	}
	if s.Underline {
		parts = append(parts, "4")
	}
	if s.Blink {
		parts = append(parts, "5")
	}
	if s.Reverse {
		parts = append(parts, "7")
	}
	if s.Hidden {
		parts = append(parts, "8")
	}
	if s.Strike {
		parts = append(parts, "9")
	}
	parts = append(parts, colorParams(s.Fg, false)...)
	parts = append(parts, colorParams(s.Bg, true)...)
	return "\x1b[" + strings.Join(parts, ";") + "m"
}

func colorParams(c Color, bg bool) []string {
	base := 38
	if bg {
		base = 48
	}
	switch c.Type {
	case ColorIndexed:
		if c.Value < 8 {
			offset := 30
			if bg {
				offset = 40
			}
			return []string{fmt.Sprintf("%d", offset+int(c.Value))}
		}
		if c.Value < 16 {
			offset := 90
			if bg {
				offset = 100
			}
			return []string{fmt.Sprintf("%d", offset+int(c.Value)-8)}
		}
		return []string{fmt.Sprintf("%d;5;%d", base, c.Value)}
	case ColorRGB:
		r := (c.Value >> 16) & 0xff
		g := (c.Value >> 8) & 0xff
		b := c.Value & 0xff
		return []string{fmt.Sprintf("%d;2;%d;%d;%d", base, r, g, b)}
	}
	return nil
}

// PlainText returns the visible screen without styling, trailing blanks
// trimmed per line.
func (t *Terminal) PlainText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.visibleRowsLocked()
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = rowText(row)
	}
	return strings.Join(lines, "\n")
}

func rowText(row Row) string {
	var b strings.Builder
	for _, c := range row.Cells {
		if c.Width == 0 {
			continue
		}
		if c.Rune == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteRune(c.Rune)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// CursorVisible reports whether a renderer should draw the cursor: hidden
// mode off and the viewport at the live screen.
func (t *Terminal) CursorVisible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.modes.CursorHidden && t.viewOffset == 0 && !t.syncActive
}
