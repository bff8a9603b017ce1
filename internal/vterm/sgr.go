package vterm

// applySGR updates the current text style from SGR parameters. Unknown
// parameters are skipped so the rest of the sequence still applies.
func (t *Terminal) applySGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			t.style = Style{}
		case p == 1:
			t.style.Bold = true
		case p == 2:
			t.style.Dim = true
		case p == 3:
			t.style.Italic = true
		case p == 4:
			t.style.Underline = true
		case p == 5, p == 6:
			t.style.Blink = true
		case p == 7:
			t.style.Reverse = true
		case p == 8:
			t.style.Hidden = true
		case p == 9:
			t.style.Strike = true
		case p == 21, p == 22:
			t.style.Bold = false
			t.style.Dim = false
		case p == 23:
			t.style.Italic = false
		case p == 24:
			t.style.Underline = false
		case p == 25:
			t.style.Blink = false
		case p == 27:
			t.style.Reverse = false
		case p == 28:
			t.style.Hidden = false
		case p == 29:
			t.style.Strike = false
		case p >= 30 && p <= 37:
			t.style.Fg = Color{Type: ColorIndexed, Value: uint32(p - 30)}
		case p == 38:
			c, skip, ok := parseExtendedColor(params[i+1:])
			if !ok {
				return
			}
			t.style.Fg = c
			i += skip
		case p == 39:
			t.style.Fg = Color{}
		case p >= 40 && p <= 47:
			t.style.Bg = Color{Type: ColorIndexed, Value: uint32(p - 40)}
		case p == 48:
			c, skip, ok := parseExtendedColor(params[i+1:])
			if !ok {
				return
			}
			t.style.Bg = c
			i += skip
		case p == 49:
			t.style.Bg = Color{}
		case p >= 90 && p <= 97:
			t.style.Fg = Color{Type: ColorIndexed, Value: uint32(p - 90 + 8)}
		case p >= 100 && p <= 107:
			t.style.Bg = Color{Type: ColorIndexed, Value: uint32(p - 100 + 8)}
		}
	}
}

// parseExtendedColor handles the 38/48 sub-sequences: 5;n for 256-color and
// 2;r;g;b for truecolor. Returns how many parameters were consumed.
func parseExtendedColor(rest []int) (Color, int, bool) {
	if len(rest) == 0 {
		return Color{}, 0, false
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return Color{}, 0, false
		}
		return Color{Type: ColorIndexed, Value: uint32(clamp8(rest[1]))}, 2, true
	case 2:
		if len(rest) < 4 {
			return Color{}, 0, false
		}
		r := clamp8(rest[1])
		g := clamp8(rest[2])
		b := clamp8(rest[3])
		return Color{Type: ColorRGB, Value: uint32(r)<<16 | uint32(g)<<8 | uint32(b)}, 4, true
	}
	return Color{}, 0, false
}

func clamp8(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
