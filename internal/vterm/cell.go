package vterm

// Color represents a terminal color
type Color struct {
	Type  ColorType
	Value uint32 // Indexed: 0-255, RGB: 0xRRGGBB
}

type ColorType uint8

const (
	ColorDefault ColorType = iota
	ColorIndexed
	ColorRGB
)

// Style holds text styling attributes
type Style struct {
	Fg        Color
	Bg        Color
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
	Blink     bool
	Reverse   bool
	Hidden    bool
	Strike    bool
}

// Cell represents a single character cell. Cells are plain values with no
// identity beyond their grid position.
type Cell struct {
	Rune  rune
	Style Style
	Width int // 1 normal, 2 wide, 0 continuation
}

// DefaultCell returns a blank cell
func DefaultCell() Cell {
	return Cell{Rune: ' ', Width: 1}
}

// Row is one fixed-width screen line. Wrapped marks a soft wrap from the
// previous row, which selection extraction uses to join lines without a
// newline.
type Row struct {
	Cells   []Cell
	Wrapped bool
}

// MakeBlankRow creates a blank row of the given width
func MakeBlankRow(width int) Row {
	cells := make([]Cell, width)
	for i := range cells {
		cells[i] = DefaultCell()
	}
	return Row{Cells: cells}
}

// CopyRow deep copies a row
func CopyRow(src Row) Row {
	dst := Row{Cells: make([]Cell, len(src.Cells)), Wrapped: src.Wrapped}
	copy(dst.Cells, src.Cells)
	return dst
}
