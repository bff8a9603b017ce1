package vterm

// Scrollback is a fixed-capacity FIFO ring of rows evicted from the top of
// the screen. Once full, pushing evicts the oldest row in O(1) without
// reallocating.
type Scrollback struct {
	rows []Row
	head int
	size int
}

// NewScrollback creates a ring holding at most capacity rows.
// A zero capacity disables history: pushes are dropped.
func NewScrollback(capacity int) *Scrollback {
	if capacity < 0 {
		capacity = 0
	}
	return &Scrollback{rows: make([]Row, 0, capacity)}
}

// Push appends a row, evicting the oldest when at capacity.
func (s *Scrollback) Push(row Row) {
	if cap(s.rows) == 0 {
		return
	}
	if len(s.rows) < cap(s.rows) {
		s.rows = append(s.rows, row)
		s.size++
		return
	}
	s.rows[s.head] = row
	s.head = (s.head + 1) % cap(s.rows)
}

// At returns the row at index i, oldest first. ok is false when out of range.
func (s *Scrollback) At(i int) (Row, bool) {
	if i < 0 || i >= s.size {
		return Row{}, false
	}
	if s.size < cap(s.rows) {
		return s.rows[i], true
	}
	return s.rows[(s.head+i)%cap(s.rows)], true
}

// Len returns the number of stored rows.
func (s *Scrollback) Len() int {
	return s.size
}

// Cap returns the configured capacity.
func (s *Scrollback) Cap() int {
	return cap(s.rows)
}

// Clear drops all stored rows but keeps the allocation.
func (s *Scrollback) Clear() {
	s.rows = s.rows[:0]
	s.head = 0
	s.size = 0
}
