package vterm

import (
	"strconv"
	"unicode/utf8"
)

// Decoder states
type decodeState int

const (
	stateGround decodeState = iota
	stateEscape
	stateCharset
	stateCSI
	stateCSIIgnore
	stateOSC
	stateOSCEsc
	stateDCS
	stateDCSEsc
	stateStringIgnore
	stateStringIgnoreEsc
)

const (
	// Caps that force a malformed sequence into the ignore sub-state instead
	// of growing without bound or desynchronizing the stream.
	maxCSIParams   = 32
	maxParamDigits = 10
	maxStringBytes = 4096
	maxSeqBytes    = 128
)

// Decoder is the escape-sequence state machine. It consumes arbitrary byte
// chunks and produces decoded Ops; all partial-sequence state (split escapes,
// split UTF-8 runes) is retained between calls, so any chunking of the same
// stream decodes to the same Op sequence.
type Decoder struct {
	state decodeState

	// CSI sequence building
	params   []int
	paramBuf []byte
	private  byte
	interm   byte

	// String sequence building (OSC / DCS)
	strBuf []byte

	// Raw bytes of the current escape sequence, kept for Unhandled diagnostics
	seq []byte

	// UTF-8 decoding state
	utf8Buf [4]byte
	utf8Len int // expected length
	utf8Pos int // current position
}

// NewDecoder creates a decoder in the ground state.
func NewDecoder() *Decoder {
	return &Decoder{
		params:   make([]int, 0, maxCSIParams),
		paramBuf: make([]byte, 0, maxParamDigits),
		strBuf:   make([]byte, 0, 128),
		seq:      make([]byte, 0, maxSeqBytes),
	}
}

// Reset returns the decoder to the ground state, dropping any partial sequence.
func (d *Decoder) Reset() {
	d.state = stateGround
	d.params = d.params[:0]
	d.paramBuf = d.paramBuf[:0]
	d.strBuf = d.strBuf[:0]
	d.seq = d.seq[:0]
	d.private = 0
	d.interm = 0
	d.utf8Len = 0
	d.utf8Pos = 0
}

// Decode processes one chunk and returns the operations it completed.
// Sequences split across chunk boundaries resume on the next call.
func (d *Decoder) Decode(data []byte) []Op {
	ops := make([]Op, 0, 16)
	for _, b := range data {
		ops = d.step(b, ops)
	}
	return ops
}

func (d *Decoder) step(b byte, ops []Op) []Op {
	switch d.state {
	case stateGround:
		return d.stepGround(b, ops)
	case stateEscape:
		return d.stepEscape(b, ops)
	case stateCharset:
		d.appendSeq(b)
		d.state = stateGround
		return ops
	case stateCSI:
		return d.stepCSI(b, ops)
	case stateCSIIgnore:
		return d.stepCSIIgnore(b, ops)
	case stateOSC:
		return d.stepOSC(b, ops)
	case stateOSCEsc:
		if b == '\\' {
			ops = append(ops, OscString{Payload: string(d.strBuf)})
			d.state = stateGround
			return ops
		}
		// ESC followed by anything else terminates the string and starts a
		// fresh escape sequence.
		ops = append(ops, OscString{Payload: string(d.strBuf)})
		d.enterEscape()
		return d.step(b, ops)
	case stateDCS:
		return d.stepDCS(b, ops)
	case stateDCSEsc:
		if b == '\\' {
			ops = append(ops, DcsString{Payload: string(d.strBuf)})
			d.state = stateGround
			return ops
		}
		ops = append(ops, DcsString{Payload: string(d.strBuf)})
		d.enterEscape()
		return d.step(b, ops)
	case stateStringIgnore:
		if b == 0x1b {
			d.state = stateStringIgnoreEsc
		}
		return ops
	case stateStringIgnoreEsc:
		if b == '\\' {
			d.state = stateGround
			return ops
		}
		d.enterEscape()
		return d.step(b, ops)
	}
	return ops
}

func (d *Decoder) stepGround(b byte, ops []Op) []Op {
	// Handle UTF-8 continuation if we're in the middle of a sequence
	if d.utf8Len > 0 {
		if b >= 0x80 && b <= 0xBF {
			d.utf8Buf[d.utf8Pos] = b
			d.utf8Pos++
			if d.utf8Pos == d.utf8Len {
				r := decodeUTF8(d.utf8Buf[:d.utf8Len])
				d.utf8Len = 0
				d.utf8Pos = 0
				return append(ops, Print{Rune: r})
			}
			return ops
		}
		// Invalid continuation: emit a replacement and reprocess this byte.
		d.utf8Len = 0
		d.utf8Pos = 0
		ops = append(ops, Print{Rune: '�'})
	}

	switch {
	case b == 0x1b:
		d.enterEscape()
	case b == '\n', b == 0x0b, b == 0x0c: // LF, VT, FF all line feed
		ops = append(ops, Linefeed{})
	case b == '\r':
		ops = append(ops, CarriageReturn{})
	case b == '\t':
		ops = append(ops, HorizontalTab{})
	case b == '\b':
		ops = append(ops, Backspace{})
	case b == 0x07:
		ops = append(ops, Bell{})
	case b == 0x0e, b == 0x0f: // SI/SO charset switching
		// Ignore
	case b < 0x20 || b == 0x7f: // Remaining C0 controls and DEL
		// Ignore
	case b < 0x80: // Printable ASCII
		ops = append(ops, Print{Rune: rune(b)})
	case b >= 0xC0 && b <= 0xDF: // 2-byte UTF-8 start
		d.utf8Buf[0] = b
		d.utf8Len = 2
		d.utf8Pos = 1
	case b >= 0xE0 && b <= 0xEF: // 3-byte UTF-8 start
		d.utf8Buf[0] = b
		d.utf8Len = 3
		d.utf8Pos = 1
	case b >= 0xF0 && b <= 0xF4: // 4-byte UTF-8 start
		d.utf8Buf[0] = b
		d.utf8Len = 4
		d.utf8Pos = 1
	default: // Stray continuation byte or invalid lead
		ops = append(ops, Print{Rune: '�'})
	}
	return ops
}

// decodeUTF8 decodes a UTF-8 byte sequence into a rune. Overlong
// encodings, surrogates and out-of-range values are invalid and decode
// to the replacement character.
func decodeUTF8(b []byte) rune {
	var r, min rune
	switch len(b) {
	case 2:
		r = rune(b[0]&0x1F)<<6 | rune(b[1]&0x3F)
		min = 0x80
	case 3:
		r = rune(b[0]&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F)
		min = 0x800
	case 4:
		r = rune(b[0]&0x07)<<18 | rune(b[1]&0x3F)<<12 | rune(b[2]&0x3F)<<6 | rune(b[3]&0x3F)
		min = 0x10000
	default:
		return '�'
	}
	if r < min || r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
		return '�'
	}
	return r
}

func (d *Decoder) enterEscape() {
	d.state = stateEscape
	d.seq = d.seq[:0]
	d.seq = append(d.seq, 0x1b)
}

func (d *Decoder) appendSeq(b byte) {
	if len(d.seq) < maxSeqBytes {
		d.seq = append(d.seq, b)
	}
}

func (d *Decoder) seqCopy() []byte {
	out := make([]byte, len(d.seq))
	copy(out, d.seq)
	return out
}

func (d *Decoder) stepEscape(b byte, ops []Op) []Op {
	d.appendSeq(b)
	switch b {
	case '[': // CSI
		d.state = stateCSI
		d.params = d.params[:0]
		d.paramBuf = d.paramBuf[:0]
		d.private = 0
		d.interm = 0
	case ']': // OSC
		d.state = stateOSC
		d.strBuf = d.strBuf[:0]
	case 'P': // DCS
		d.state = stateDCS
		d.strBuf = d.strBuf[:0]
	case 'X', '^', '_': // SOS / PM / APC
		d.state = stateStringIgnore
	case '(', ')', '*', '+': // Charset designation - consume next byte
		d.state = stateCharset
	case '7': // DECSC
		ops = append(ops, SaveCursor{})
		d.state = stateGround
	case '8': // DECRC
		ops = append(ops, RestoreCursor{})
		d.state = stateGround
	case 'D': // IND
		ops = append(ops, Index{})
		d.state = stateGround
	case 'M': // RI
		ops = append(ops, ReverseIndex{})
		d.state = stateGround
	case 'E': // NEL
		ops = append(ops, NextLine{})
		d.state = stateGround
	case 'c': // RIS
		ops = append(ops, FullReset{})
		d.state = stateGround
	case '=': // DECKPAM
		ops = append(ops, Keypad{Application: true})
		d.state = stateGround
	case '>': // DECKPNM
		ops = append(ops, Keypad{Application: false})
		d.state = stateGround
	case '\\': // Stray ST
		d.state = stateGround
	case 0x1b: // ESC restarts
		d.enterEscape()
	default:
		ops = append(ops, Unhandled{Seq: d.seqCopy()})
		d.state = stateGround
	}
	return ops
}

func (d *Decoder) stepCSI(b byte, ops []Op) []Op {
	d.appendSeq(b)
	switch {
	case b >= '0' && b <= '9':
		if len(d.paramBuf) >= maxParamDigits {
			d.state = stateCSIIgnore
			return ops
		}
		d.paramBuf = append(d.paramBuf, b)
	case b == ';', b == ':': // Sub-parameters flatten into the param list
		if len(d.params) >= maxCSIParams {
			d.state = stateCSIIgnore
			return ops
		}
		d.pushParam()
	case b == '<', b == '=', b == '>', b == '?':
		d.private = b
	case b >= 0x20 && b <= 0x2f: // Intermediate bytes (e.g. '$')
		d.interm = b
	case b >= 0x40 && b <= 0x7e: // Final byte
		d.pushParam()
		d.state = stateGround
		if len(d.params) > maxCSIParams {
			return append(ops, Unhandled{Seq: d.seqCopy()})
		}
		return d.csiOps(b, ops)
	case b == 0x18, b == 0x1a: // CAN/SUB aborts
		d.state = stateGround
	case b == 0x1b: // ESC restarts
		d.enterEscape()
	default:
		// Other C0 controls inside CSI are ignored
	}
	return ops
}

func (d *Decoder) stepCSIIgnore(b byte, ops []Op) []Op {
	d.appendSeq(b)
	switch {
	case b >= 0x40 && b <= 0x7e:
		d.state = stateGround
		return append(ops, Unhandled{Seq: d.seqCopy()})
	case b == 0x18, b == 0x1a:
		d.state = stateGround
	case b == 0x1b:
		d.enterEscape()
	}
	return ops
}

func (d *Decoder) stepOSC(b byte, ops []Op) []Op {
	switch b {
	case 0x07: // BEL terminates
		ops = append(ops, OscString{Payload: string(d.strBuf)})
		d.state = stateGround
	case 0x1b:
		d.state = stateOSCEsc
	default:
		if len(d.strBuf) < maxStringBytes {
			d.strBuf = append(d.strBuf, b)
		}
	}
	return ops
}

func (d *Decoder) stepDCS(b byte, ops []Op) []Op {
	switch b {
	case 0x1b:
		d.state = stateDCSEsc
	default:
		if len(d.strBuf) < maxStringBytes {
			d.strBuf = append(d.strBuf, b)
		}
	}
	return ops
}

func (d *Decoder) pushParam() {
	if len(d.paramBuf) == 0 {
		d.params = append(d.params, 0)
		return
	}
	val, _ := strconv.Atoi(string(d.paramBuf))
	d.params = append(d.params, val)
	d.paramBuf = d.paramBuf[:0]
}

func (d *Decoder) getParam(idx, def int) int {
	if idx < len(d.params) && d.params[idx] != 0 {
		return d.params[idx]
	}
	return def
}

func (d *Decoder) rawParam(idx int) int {
	if idx < len(d.params) {
		return d.params[idx]
	}
	return 0
}

func (d *Decoder) copyParams() []int {
	out := make([]int, len(d.params))
	copy(out, d.params)
	return out
}

func (d *Decoder) count(idx int) int {
	n := d.getParam(idx, 1)
	if n < 1 {
		n = 1
	}
	return n
}

func (d *Decoder) csiOps(final byte, ops []Op) []Op {
	switch final {
	case 'A': // CUU
		return append(ops, CursorMove{DY: -d.count(0)})
	case 'B', 'e': // CUD / VPR
		return append(ops, CursorMove{DY: d.count(0)})
	case 'C', 'a': // CUF / HPR
		return append(ops, CursorMove{DX: d.count(0)})
	case 'D': // CUB
		return append(ops, CursorMove{DX: -d.count(0)})
	case 'E': // CNL
		return append(ops, CursorNextLine{N: d.count(0)})
	case 'F': // CPL
		return append(ops, CursorPrevLine{N: d.count(0)})
	case 'G', '`': // CHA / HPA
		return append(ops, ColumnAbs{Col: d.getParam(0, 1)})
	case 'd': // VPA
		return append(ops, RowAbs{Row: d.getParam(0, 1)})
	case 'H', 'f': // CUP
		return append(ops, CursorPos{Row: d.getParam(0, 1), Col: d.getParam(1, 1)})
	case 'J': // ED
		return append(ops, EraseDisplay{Mode: d.rawParam(0)})
	case 'K': // EL
		return append(ops, EraseLine{Mode: d.rawParam(0)})
	case 'L': // IL
		return append(ops, InsertLines{N: d.count(0)})
	case 'M': // DL
		return append(ops, DeleteLines{N: d.count(0)})
	case 'P': // DCH
		return append(ops, DeleteChars{N: d.count(0)})
	case '@': // ICH
		return append(ops, InsertChars{N: d.count(0)})
	case 'X': // ECH
		return append(ops, EraseChars{N: d.count(0)})
	case 'S': // SU
		return append(ops, ScrollUp{N: d.count(0)})
	case 'T': // SD
		return append(ops, ScrollDown{N: d.count(0)})
	case 'm': // SGR
		return append(ops, SGR{Params: d.copyParams()})
	case 'n': // DSR
		switch d.rawParam(0) {
		case 5:
			return append(ops, Report{Kind: ReportStatus})
		case 6:
			return append(ops, Report{Kind: ReportCursorPos})
		}
		return append(ops, Unhandled{Seq: d.seqCopy()})
	case 'r': // DECSTBM
		return append(ops, SetScrollRegion{Top: d.getParam(0, 1), Bottom: d.rawParam(1)})
	case 's': // SCP
		if d.private == 0 && d.interm == 0 {
			return append(ops, SaveCursor{})
		}
		return append(ops, Unhandled{Seq: d.seqCopy()})
	case 'u': // RCP
		if d.private == 0 && d.interm == 0 {
			return append(ops, RestoreCursor{})
		}
		return append(ops, Unhandled{Seq: d.seqCopy()})
	case 'c': // DA
		switch d.private {
		case 0:
			return append(ops, Report{Kind: ReportPrimaryDA})
		case '>':
			return append(ops, Report{Kind: ReportSecondaryDA})
		}
		return append(ops, Unhandled{Seq: d.seqCopy()})
	case 'h': // SM / DECSET
		return append(ops, SetMode{Private: d.private == '?', Params: d.copyParams()})
	case 'l': // RM / DECRST
		return append(ops, ResetMode{Private: d.private == '?', Params: d.copyParams()})
	case 'p': // DECRQM
		if d.private == '?' && d.interm == '$' {
			return append(ops, Report{Kind: ReportMode, Params: d.copyParams()})
		}
		return append(ops, Unhandled{Seq: d.seqCopy()})
	case 't': // Window operations
		return ops
	}
	return append(ops, Unhandled{Seq: d.seqCopy()})
}
