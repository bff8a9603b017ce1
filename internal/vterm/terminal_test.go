package vterm

import (
	"bytes"
	"strings"
	"testing"
)

func write(t *testing.T, term *Terminal, s string) {
	t.Helper()
	if _, err := term.Write([]byte(s)); err != nil {
		t.Fatalf("Write(%q): %v", s, err)
	}
}

// cellAt inspects the live grid without going through Render.
func cellAt(term *Terminal, y, x int) Cell {
	term.mu.Lock()
	defer term.mu.Unlock()
	return term.grid[y].Cells[x]
}

func lineText(term *Terminal, y int) string {
	term.mu.Lock()
	defer term.mu.Unlock()
	return strings.TrimRight(rowText(term.grid[y]), " ")
}

func TestPrintAdvancesCursor(t *testing.T) {
	term := New(80, 24, 100)
	write(t, term, "hello")
	if got := lineText(term, 0); got != "hello" {
		t.Errorf("line 0 = %q, want %q", got, "hello")
	}
	cur := term.CursorPosition()
	if cur.X != 5 || cur.Y != 0 {
		t.Errorf("cursor = %+v, want {5 0}", cur)
	}
}

func TestCarriageReturnAndLinefeed(t *testing.T) {
	term := New(80, 24, 100)
	write(t, term, "abc\rX")
	if got := lineText(term, 0); got != "Xbc" {
		t.Errorf("CR overwrite: line = %q, want %q", got, "Xbc")
	}

	write(t, term, "\nY")
	cur := term.CursorPosition()
	if cur.Y != 1 {
		t.Errorf("LF did not advance row: cursor %+v", cur)
	}
	// Bare LF keeps the column
	if cellAt(term, 1, 1).Rune != 'Y' {
		t.Errorf("line 1 = %q, want Y at column 1", lineText(term, 1))
	}
}

func TestPendingWrap(t *testing.T) {
	term := New(10, 4, 100)
	write(t, term, "0123456789")
	cur := term.CursorPosition()
	if cur.X != 9 || cur.Y != 0 {
		t.Fatalf("cursor after full line = %+v, want {9 0}", cur)
	}

	// CUP while wrap is pending must cancel it
	write(t, term, "\x1b[1;10HX")
	if cellAt(term, 0, 9).Rune != 'X' {
		t.Errorf("overwrite at margin failed: %q", lineText(term, 0))
	}
	if term.CursorPosition().Y != 0 {
		t.Errorf("cursor wrapped after CUP, want row 0")
	}

	// The next print after filling the line wraps
	write(t, term, "a")
	cur = term.CursorPosition()
	if cur.Y != 1 || cur.X != 1 {
		t.Errorf("cursor after wrap = %+v, want {1 1}", cur)
	}
	if cellAt(term, 1, 0).Rune != 'a' {
		t.Errorf("wrapped char not at row 1 col 0")
	}

	term.mu.Lock()
	wrapped := term.grid[1].Wrapped
	term.mu.Unlock()
	if !wrapped {
		t.Errorf("continuation row not marked wrapped")
	}
}

func TestAutoWrapDisabled(t *testing.T) {
	term := New(5, 3, 0)
	write(t, term, "\x1b[?7labcdefg")
	if got := lineText(term, 0); got != "abcdg" {
		t.Errorf("line = %q, want last column overwritten in place", got)
	}
	if term.CursorPosition().Y != 0 {
		t.Errorf("wrapped despite DECAWM reset")
	}
}

func TestScrollbackCaptureAndBound(t *testing.T) {
	term := New(20, 3, 5)
	for i := 0; i < 10; i++ {
		write(t, term, "line\r\n")
	}
	term.mu.Lock()
	n := term.scrollback.Len()
	capN := term.scrollback.Cap()
	term.mu.Unlock()
	if capN != 5 {
		t.Fatalf("scrollback cap = %d, want 5", capN)
	}
	if n != 5 {
		t.Errorf("scrollback len = %d, want 5 (bounded)", n)
	}
}

func TestEraseDisplayKeepsCursor(t *testing.T) {
	term := New(20, 5, 10)
	write(t, term, "one\r\ntwo\r\nthree")
	before := term.CursorPosition()
	write(t, term, "\x1b[2J")
	if got := term.CursorPosition(); got != before {
		t.Errorf("ED 2 moved cursor from %+v to %+v", before, got)
	}
	for y := 0; y < 5; y++ {
		if got := lineText(term, y); got != "" {
			t.Errorf("row %d = %q after ED 2, want blank", y, got)
		}
	}
}

func TestEraseScrollback(t *testing.T) {
	term := New(20, 3, 50)
	for i := 0; i < 10; i++ {
		write(t, term, "x\r\n")
	}
	if term.TotalRows() <= 3 {
		t.Fatalf("expected scrollback before ED 3")
	}
	write(t, term, "\x1b[3J")
	if got := term.TotalRows(); got != 3 {
		t.Errorf("TotalRows after ED 3 = %d, want 3", got)
	}
}

func TestEraseLineModes(t *testing.T) {
	term := New(10, 2, 0)
	write(t, term, "abcdefghij\x1b[1;5H")

	write(t, term, "\x1b[K")
	if got := lineText(term, 0); got != "abcd" {
		t.Errorf("EL 0: line = %q, want %q", got, "abcd")
	}

	write(t, term, "\x1b[1;2H\x1b[1K")
	if got := lineText(term, 0); got != "  cd" {
		t.Errorf("EL 1: line = %q, want %q", got, "  cd")
	}
}

func TestSGRStyles(t *testing.T) {
	term := New(20, 2, 0)
	write(t, term, "\x1b[1;31mA\x1b[0mB")
	a := cellAt(term, 0, 0)
	if !a.Style.Bold || a.Style.Fg != (Color{Type: ColorIndexed, Value: 1}) {
		t.Errorf("A style = %+v, want bold red", a.Style)
	}
	b := cellAt(term, 0, 1)
	if b.Style != (Style{}) {
		t.Errorf("B style = %+v, want default", b.Style)
	}
}

func TestSGRTruecolor(t *testing.T) {
	term := New(20, 2, 0)
	write(t, term, "\x1b[38;2;255;128;0mX")
	x := cellAt(term, 0, 0)
	want := Color{Type: ColorRGB, Value: 0xFF8000}
	if x.Style.Fg != want {
		t.Errorf("fg = %+v, want %+v", x.Style.Fg, want)
	}
}

func TestWideGlyph(t *testing.T) {
	term := New(10, 3, 0)
	write(t, term, "世a")
	lead := cellAt(term, 0, 0)
	if lead.Rune != '世' || lead.Width != 2 {
		t.Fatalf("lead cell = %+v, want wide 世", lead)
	}
	cont := cellAt(term, 0, 1)
	if cont.Width != 0 {
		t.Errorf("continuation cell width = %d, want 0", cont.Width)
	}
	if cellAt(term, 0, 2).Rune != 'a' {
		t.Errorf("following char misplaced: %q", lineText(term, 0))
	}
}

func TestWideGlyphAtMarginWraps(t *testing.T) {
	term := New(4, 3, 0)
	write(t, term, "abc世")
	if got := lineText(term, 0); got != "abc" {
		t.Errorf("line 0 = %q, want last cell left blank", got)
	}
	lead := cellAt(term, 1, 0)
	if lead.Rune != '世' || lead.Width != 2 {
		t.Errorf("wide glyph not wrapped to next row: %+v", lead)
	}
}

func TestOverwritingWidePairRepairsIt(t *testing.T) {
	term := New(10, 2, 0)
	write(t, term, "世\x1b[1;2HX")
	if got := cellAt(term, 0, 0); got.Rune != ' ' {
		t.Errorf("lead cell = %q, want blanked", got.Rune)
	}
	if got := cellAt(term, 0, 1); got.Rune != 'X' {
		t.Errorf("continuation cell = %q, want X", got.Rune)
	}
}

func TestResizeNoReflow(t *testing.T) {
	term := New(10, 4, 50)
	write(t, term, "0123456789")

	term.Resize(5, 4)
	if got := lineText(term, 0); got != "01234" {
		t.Errorf("after shrink line = %q, want %q (truncated, not reflowed)", got, "01234")
	}
	cur := term.CursorPosition()
	if cur.X > 4 {
		t.Errorf("cursor not clamped: %+v", cur)
	}

	term.Resize(10, 4)
	if got := lineText(term, 0); got != "01234" {
		t.Errorf("grow restored content: line = %q, want %q", got, "01234")
	}
}

func TestResizeHeightShrinkPushesScrollback(t *testing.T) {
	term := New(10, 4, 50)
	write(t, term, "a\r\nb\r\nc\r\nd")
	before := term.TotalRows()
	term.Resize(10, 2)
	if got := lineText(term, 0); got != "c" {
		t.Errorf("top row after shrink = %q, want %q", got, "c")
	}
	if term.TotalRows() != before {
		t.Errorf("rows lost on shrink: total %d, want %d", term.TotalRows(), before)
	}
	cur := term.CursorPosition()
	if cur.Y != 1 {
		t.Errorf("cursor row = %d, want 1 (tracked shrink)", cur.Y)
	}
}

func TestAltScreen(t *testing.T) {
	term := New(20, 4, 50)
	write(t, term, "primary")
	sbBefore := term.TotalRows() - 4

	write(t, term, "\x1b[?1049h")
	if got := lineText(term, 0); got != "" {
		t.Errorf("alt screen not blank: %q", got)
	}

	// Alt-screen output must not feed scrollback
	for i := 0; i < 10; i++ {
		write(t, term, "alt\r\n")
	}
	if got := term.TotalRows() - 4; got != sbBefore {
		t.Errorf("alt screen fed scrollback: %d, want %d", got, sbBefore)
	}

	write(t, term, "\x1b[?1049l")
	if got := lineText(term, 0); got != "primary" {
		t.Errorf("primary not restored exactly: %q", got)
	}
	cur := term.CursorPosition()
	if cur.X != 7 || cur.Y != 0 {
		t.Errorf("cursor not restored: %+v", cur)
	}
}

func TestAltScreenEnterIdempotent(t *testing.T) {
	term := New(20, 4, 0)
	write(t, term, "keep\x1b[?1049h\x1b[?1049hnested\x1b[?1049l")
	if got := lineText(term, 0); got != "keep" {
		t.Errorf("re-entry clobbered saved primary: %q", got)
	}
}

func TestScrollRegion(t *testing.T) {
	term := New(10, 5, 0)
	write(t, term, "a\r\nb\r\nc\r\nd\r\ne")
	// Region rows 2-4 (1-based), scroll it up twice
	write(t, term, "\x1b[2;4r\x1b[2S")
	if got := lineText(term, 0); got != "a" {
		t.Errorf("row outside region touched: %q", got)
	}
	if got := lineText(term, 4); got != "e" {
		t.Errorf("row below region touched: %q", got)
	}
	if got := lineText(term, 1); got != "d" {
		t.Errorf("region scroll wrong: row 1 = %q, want %q", got, "d")
	}
}

func TestScrollRegionLinefeedDoesNotFeedScrollback(t *testing.T) {
	term := New(10, 5, 50)
	write(t, term, "\x1b[2;4r\x1b[4;1H")
	before := term.TotalRows()
	write(t, term, "\n\n\n")
	if term.TotalRows() != before {
		t.Errorf("region scroll fed scrollback")
	}
}

func TestInsertDeleteLines(t *testing.T) {
	term := New(10, 4, 0)
	write(t, term, "a\r\nb\r\nc\r\nd\x1b[2;1H")

	write(t, term, "\x1b[L")
	if lineText(term, 1) != "" || lineText(term, 2) != "b" {
		t.Errorf("IL: rows = %q,%q", lineText(term, 1), lineText(term, 2))
	}

	write(t, term, "\x1b[M")
	if lineText(term, 1) != "b" || lineText(term, 2) != "c" {
		t.Errorf("DL: rows = %q,%q", lineText(term, 1), lineText(term, 2))
	}
}

func TestInsertDeleteChars(t *testing.T) {
	term := New(10, 2, 0)
	write(t, term, "abcdef\x1b[1;3H")

	write(t, term, "\x1b[2@")
	if got := lineText(term, 0); got != "ab  cdef" {
		t.Errorf("ICH: line = %q, want %q", got, "ab  cdef")
	}

	write(t, term, "\x1b[2P")
	if got := lineText(term, 0); got != "abcdef" {
		t.Errorf("DCH: line = %q, want %q", got, "abcdef")
	}
}

func TestOriginMode(t *testing.T) {
	term := New(10, 6, 0)
	write(t, term, "\x1b[3;5r\x1b[?6h\x1b[1;1HX")
	if cellAt(term, 2, 0).Rune != 'X' {
		t.Errorf("origin-relative CUP landed wrong; row 2 = %q", lineText(term, 2))
	}
	// Cursor cannot leave the region while origin mode is set
	write(t, term, "\x1b[99;1HY")
	if cellAt(term, 4, 0).Rune != 'Y' {
		t.Errorf("cursor escaped region bottom; row 4 = %q", lineText(term, 4))
	}
}

func TestTabStops(t *testing.T) {
	term := New(20, 2, 0)
	write(t, term, "\tx")
	if cellAt(term, 0, 8).Rune != 'x' {
		t.Errorf("tab stop: line = %q", lineText(term, 0))
	}
}

func TestTitleCapture(t *testing.T) {
	term := New(20, 2, 0)
	write(t, term, "\x1b]2;hello title\x07")
	if got := term.Title(); got != "hello title" {
		t.Errorf("title = %q, want %q", got, "hello title")
	}
	write(t, term, "\x1b]0;via osc0\x1b\\")
	if got := term.Title(); got != "via osc0" {
		t.Errorf("title = %q, want %q", got, "via osc0")
	}
}

func TestQueryReplies(t *testing.T) {
	term := New(20, 5, 0)
	var buf bytes.Buffer
	term.SetResponseWriter(&buf)

	write(t, term, "\x1b[3;4H\x1b[6n")
	if got := buf.String(); got != "\x1b[3;4R" {
		t.Errorf("CPR = %q, want %q", got, "\x1b[3;4R")
	}

	buf.Reset()
	write(t, term, "\x1b[5n")
	if got := buf.String(); got != "\x1b[0n" {
		t.Errorf("DSR = %q, want %q", got, "\x1b[0n")
	}

	buf.Reset()
	write(t, term, "\x1b[c")
	if got := buf.String(); got != "\x1b[?62c" {
		t.Errorf("DA = %q, want %q", got, "\x1b[?62c")
	}

	buf.Reset()
	write(t, term, "\x1b[?2004h\x1b[?2004$p")
	if got := buf.String(); got != "\x1b[?2004;1$y" {
		t.Errorf("DECRPM = %q, want %q", got, "\x1b[?2004;1$y")
	}
}

func TestModeFlags(t *testing.T) {
	term := New(20, 5, 0)
	write(t, term, "\x1b[?1h\x1b[?2004h\x1b[?1002h\x1b[?1006h\x1b[?25l")
	m := term.ModeState()
	if !m.AppCursorKeys || !m.BracketedPaste || m.Mouse != MouseButton || !m.MouseSGR || !m.CursorHidden {
		t.Errorf("modes = %+v", m)
	}
	write(t, term, "\x1b[?1002l\x1b[?25h")
	m = term.ModeState()
	if m.Mouse != MouseOff || m.CursorHidden {
		t.Errorf("modes after reset = %+v", m)
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	term := New(20, 5, 0)
	write(t, term, "\x1b[2;3H\x1b7\x1b[5;5H\x1b8")
	cur := term.CursorPosition()
	if cur.Y != 1 || cur.X != 2 {
		t.Errorf("cursor = %+v, want {2 1}", cur)
	}
}

func TestFullReset(t *testing.T) {
	term := New(20, 5, 50)
	write(t, term, "\x1b[1;31mstuff\r\n\r\n\r\n\r\n\r\n\r\n\x1b[?1049h\x1bc")
	if term.TotalRows() != 5 {
		t.Errorf("scrollback survived RIS")
	}
	m := term.ModeState()
	if m.AltScreen {
		t.Errorf("alt screen survived RIS")
	}
	if cur := term.CursorPosition(); cur != (Cursor{}) {
		t.Errorf("cursor = %+v after RIS", cur)
	}
}

func TestReverseIndexScrollsDown(t *testing.T) {
	term := New(10, 3, 0)
	write(t, term, "a\r\nb\r\nc\x1b[1;1H\x1bM")
	if got := lineText(term, 0); got != "" {
		t.Errorf("row 0 = %q, want blank after RI scroll", got)
	}
	if got := lineText(term, 1); got != "a" {
		t.Errorf("row 1 = %q, want %q", got, "a")
	}
}

func TestSynchronizedOutput(t *testing.T) {
	term := New(20, 3, 0)
	write(t, term, "before")
	write(t, term, "\x1b[?2026h")
	write(t, term, "\rafter!")
	if got := term.PlainText(); !strings.Contains(got, "before") {
		t.Errorf("render during sync = %q, want frozen %q", got, "before")
	}
	write(t, term, "\x1b[?2026l")
	if got := term.PlainText(); !strings.Contains(got, "after!") {
		t.Errorf("render after sync = %q, want live %q", got, "after!")
	}
}

func TestViewportScroll(t *testing.T) {
	term := New(10, 3, 50)
	for i := 0; i < 5; i++ {
		write(t, term, string(rune('a'+i))+"\r\n")
	}
	// Screen shows d, e, blank; history holds a, b, c
	term.ScrollBy(2)
	rows := term.VisibleRows()
	if got := strings.TrimRight(rowText(rows[0]), " "); got != "b" {
		t.Errorf("scrolled top row = %q, want %q", got, "b")
	}
	term.ScrollToBottom()
	if term.ViewOffset() != 0 {
		t.Errorf("offset = %d after ScrollToBottom", term.ViewOffset())
	}
}

func TestSelectionJoinsSoftWraps(t *testing.T) {
	term := New(5, 4, 10)
	write(t, term, "abcdefgh\r\nnext")
	sel := Selection{StartRow: 0, StartCol: 0, EndRow: 2, EndCol: 3, Active: true}
	got := term.SelectedText(sel)
	want := "abcdefgh\nnext"
	if got != want {
		t.Errorf("selection = %q, want %q", got, want)
	}
}

func TestSelectionTracking(t *testing.T) {
	term := New(10, 3, 0)
	write(t, term, "hello\r\nworld")

	term.StartSelection(0, 0)
	term.UpdateSelection(1, 4)
	got := term.SelectedText(term.Selection())
	if want := "hello\nworld"; got != want {
		t.Errorf("selection = %q, want %q", got, want)
	}

	term.ClearSelection()
	if term.Selection().Active {
		t.Errorf("selection still active after clear")
	}
}

func TestSelectionInactive(t *testing.T) {
	term := New(5, 2, 0)
	write(t, term, "ab")
	if got := term.SelectedText(Selection{}); got != "" {
		t.Errorf("inactive selection = %q, want empty", got)
	}
}

func TestVersionChangesOnWrite(t *testing.T) {
	term := New(10, 2, 0)
	v := term.Version()
	write(t, term, "x")
	if term.Version() == v {
		t.Errorf("version did not change")
	}
}
