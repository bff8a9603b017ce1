package vterm

// Op is one decoded terminal operation. The set is closed: every variant
// lives in this file and implements the unexported marker so consumers can
// switch exhaustively.
type Op interface {
	op()
}

// Print writes one assembled rune at the cursor.
type Print struct {
	Rune rune
}

// Bell is C0 BEL.
type Bell struct{}

// Backspace is C0 BS.
type Backspace struct{}

// HorizontalTab is C0 HT.
type HorizontalTab struct{}

// Linefeed is C0 LF: line feed preserving the column, scrolling at the
// bottom margin.
type Linefeed struct{}

// CarriageReturn is C0 CR: column to zero, row unchanged.
type CarriageReturn struct{}

// CursorMove moves the cursor relative to its position.
type CursorMove struct {
	DY, DX int
}

// CursorPos sets the cursor position (1-indexed, CUP).
type CursorPos struct {
	Row, Col int
}

// ColumnAbs sets the cursor column (1-indexed, CHA).
type ColumnAbs struct {
	Col int
}

// RowAbs sets the cursor row (1-indexed, VPA).
type RowAbs struct {
	Row int
}

// CursorNextLine moves down n lines to column zero (CNL).
type CursorNextLine struct {
	N int
}

// CursorPrevLine moves up n lines to column zero (CPL).
type CursorPrevLine struct {
	N int
}

// EraseDisplay clears part of the display (ED). Mode 0 cursor→end,
// 1 start→cursor, 2 all, 3 all plus scrollback.
type EraseDisplay struct {
	Mode int
}

// EraseLine clears part of the current line (EL). Mode 0 cursor→end,
// 1 start→cursor, 2 all.
type EraseLine struct {
	Mode int
}

// InsertLines inserts n blank lines at the cursor (IL).
type InsertLines struct {
	N int
}

// DeleteLines deletes n lines at the cursor (DL).
type DeleteLines struct {
	N int
}

// InsertChars inserts n blank cells at the cursor (ICH).
type InsertChars struct {
	N int
}

// DeleteChars deletes n cells at the cursor (DCH).
type DeleteChars struct {
	N int
}

// EraseChars blanks n cells at the cursor without shifting (ECH).
type EraseChars struct {
	N int
}

// ScrollUp scrolls the region up n lines (SU).
type ScrollUp struct {
	N int
}

// ScrollDown scrolls the region down n lines (SD).
type ScrollDown struct {
	N int
}

// SGR carries raw select-graphic-rendition parameters.
type SGR struct {
	Params []int
}

// SetMode sets terminal modes (SM / DECSET when Private).
type SetMode struct {
	Private bool
	Params  []int
}

// ResetMode resets terminal modes (RM / DECRST when Private).
type ResetMode struct {
	Private bool
	Params  []int
}

// SetScrollRegion sets the scrolling margins (DECSTBM, 1-indexed).
// Bottom 0 means the last line.
type SetScrollRegion struct {
	Top, Bottom int
}

// SaveCursor saves cursor position and style (DECSC / SCP).
type SaveCursor struct{}

// RestoreCursor restores the saved cursor (DECRC / RCP).
type RestoreCursor struct{}

// Index moves down one line, scrolling at the bottom margin (IND).
type Index struct{}

// ReverseIndex moves up one line, scrolling at the top margin (RI).
type ReverseIndex struct{}

// NextLine is CR followed by Index (NEL).
type NextLine struct{}

// Keypad toggles application keypad mode (DECKPAM / DECKPNM).
type Keypad struct {
	Application bool
}

// FullReset is RIS.
type FullReset struct{}

// OscString carries the raw payload of an operating-system command.
type OscString struct {
	Payload string
}

// DcsString carries the raw payload of a device-control string.
type DcsString struct {
	Payload string
}

// ReportKind identifies a terminal query that needs a response on the PTY.
type ReportKind int

const (
	ReportStatus ReportKind = iota
	ReportCursorPos
	ReportPrimaryDA
	ReportSecondaryDA
	ReportMode
)

// Report is a query the terminal answers through its response writer.
type Report struct {
	Kind   ReportKind
	Params []int
}

// Unhandled carries the raw bytes of a sequence the decoder recognized but
// does not implement. Surfaced for diagnostics instead of dropped silently.
type Unhandled struct {
	Seq []byte
}

func (Print) op()           {}
func (Bell) op()            {}
func (Backspace) op()       {}
func (HorizontalTab) op()   {}
func (Linefeed) op()        {}
func (CarriageReturn) op()  {}
func (CursorMove) op()      {}
func (CursorPos) op()       {}
func (ColumnAbs) op()       {}
func (RowAbs) op()          {}
func (CursorNextLine) op()  {}
func (CursorPrevLine) op()  {}
func (EraseDisplay) op()    {}
func (EraseLine) op()       {}
func (InsertLines) op()     {}
func (DeleteLines) op()     {}
func (InsertChars) op()     {}
func (DeleteChars) op()     {}
func (EraseChars) op()      {}
func (ScrollUp) op()        {}
func (ScrollDown) op()      {}
func (SGR) op()             {}
func (SetMode) op()         {}
func (ResetMode) op()       {}
func (SetScrollRegion) op() {}
func (SaveCursor) op()      {}
func (RestoreCursor) op()   {}
func (Index) op()           {}
func (ReverseIndex) op()    {}
func (NextLine) op()        {}
func (Keypad) op()          {}
func (FullReset) op()       {}
func (OscString) op()       {}
func (DcsString) op()       {}
func (Report) op()          {}
func (Unhandled) op()       {}
