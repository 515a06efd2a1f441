package ansicode

// parseSGR turns the numeric parameters of a CSI ... m sequence into a
// sequence of TerminalCharAttribute values, one per attribute selector. An
// empty parameter list means "CSI m", i.e. a single reset.
func parseSGR(params [][]uint16) []TerminalCharAttribute {
	if len(params) == 0 {
		return []TerminalCharAttribute{{Attr: CharAttributeReset}}
	}

	var out []TerminalCharAttribute
	for i := 0; i < len(params); i++ {
		sub := params[i]
		code := uint16(0)
		if len(sub) > 0 {
			code = sub[0]
		}

		switch code {
		case 0:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeReset})
		case 1:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeBold})
		case 2:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeDim})
		case 3:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeItalic})
		case 4:
			// Colon form "4:3" (curly), "4:4" (dotted), "4:5" (dashed); bare
			// "4" or semicolon form "4;1" is a plain underline.
			sub := underlineVariant(sub)
			out = append(out, sub)
		case 5:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeBlinkSlow})
		case 6:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeBlinkFast})
		case 7:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeReverse})
		case 8:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeHidden})
		case 9:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeStrike})
		case 21:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeDoubleUnderline})
		case 22:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeCancelBoldDim})
		case 23:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeCancelItalic})
		case 24:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeCancelUnderline})
		case 25:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeCancelBlink})
		case 27:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeCancelReverse})
		case 28:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeCancelHidden})
		case 29:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeCancelStrike})

		case 30, 31, 32, 33, 34, 35, 36, 37:
			n := int(code - 30)
			out = append(out, TerminalCharAttribute{Attr: CharAttributeForeground, NamedColor: &n})
		case 39:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeForeground})
		case 40, 41, 42, 43, 44, 45, 46, 47:
			n := int(code - 40)
			out = append(out, TerminalCharAttribute{Attr: CharAttributeBackground, NamedColor: &n})
		case 49:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeBackground})

		case 90, 91, 92, 93, 94, 95, 96, 97:
			n := int(code-90) + 8
			out = append(out, TerminalCharAttribute{Attr: CharAttributeForeground, NamedColor: &n})
		case 100, 101, 102, 103, 104, 105, 106, 107:
			n := int(code-100) + 8
			out = append(out, TerminalCharAttribute{Attr: CharAttributeBackground, NamedColor: &n})

		case 38, 48, 58:
			var attr CharAttribute
			switch code {
			case 38:
				attr = CharAttributeForeground
			case 48:
				attr = CharAttributeBackground
			case 58:
				attr = CharAttributeUnderlineColor
			}
			consumed, ok := extendedColor(attr, sub, params, i)
			if ok {
				out = append(out, consumed.attr)
				i = consumed.nextIndex
			}
		case 59:
			out = append(out, TerminalCharAttribute{Attr: CharAttributeUnderlineColor})

		default:
			// Unknown/unsupported SGR code: ignored, matching the common
			// terminal behavior of silently skipping codes it doesn't know.
		}
	}
	return out
}

func underlineVariant(sub []uint16) TerminalCharAttribute {
	if len(sub) < 2 {
		return TerminalCharAttribute{Attr: CharAttributeUnderline}
	}
	switch sub[1] {
	case 0:
		return TerminalCharAttribute{Attr: CharAttributeCancelUnderline}
	case 2:
		return TerminalCharAttribute{Attr: CharAttributeDoubleUnderline}
	case 3:
		return TerminalCharAttribute{Attr: CharAttributeCurlyUnderline}
	case 4:
		return TerminalCharAttribute{Attr: CharAttributeDottedUnderline}
	case 5:
		return TerminalCharAttribute{Attr: CharAttributeDashedUnderline}
	default:
		return TerminalCharAttribute{Attr: CharAttributeUnderline}
	}
}

type extendedResult struct {
	attr      TerminalCharAttribute
	nextIndex int
}

// extendedColor parses both the colon form ("38:2:0:r:g:b", "38:2:r:g:b" /
// "38:5:n", all within a single parameter's sub-parameters) and the legacy
// semicolon form ("38;2;r;g;b" / "38;5;n", spread across following
// top-level parameters).
func extendedColor(attr CharAttribute, sub []uint16, params [][]uint16, i int) (extendedResult, bool) {
	if len(sub) >= 2 {
		switch sub[1] {
		case 2:
			if len(sub) >= 6 {
				// Colorspace id present in sub[2]; the channels follow it.
				return extendedResult{
					attr:      TerminalCharAttribute{Attr: attr, RGBColor: &RGBColor{R: u8(sub[3]), G: u8(sub[4]), B: u8(sub[5])}},
					nextIndex: i,
				}, true
			}
			if len(sub) >= 5 {
				return extendedResult{
					attr:      TerminalCharAttribute{Attr: attr, RGBColor: &RGBColor{R: u8(sub[2]), G: u8(sub[3]), B: u8(sub[4])}},
					nextIndex: i,
				}, true
			}
		case 5:
			if len(sub) >= 3 {
				return extendedResult{
					attr:      TerminalCharAttribute{Attr: attr, IndexedColor: &IndexedColor{Index: u8(sub[2])}},
					nextIndex: i,
				}, true
			}
		}
	}

	// Legacy semicolon-separated form: "38", "2"|"5", then 1 or 3 more params.
	if i+1 >= len(params) {
		return extendedResult{}, false
	}
	mode := first(params[i+1])
	switch mode {
	case 5:
		if i+2 < len(params) {
			idx := u8(first(params[i+2]))
			return extendedResult{attr: TerminalCharAttribute{Attr: attr, IndexedColor: &IndexedColor{Index: idx}}, nextIndex: i + 2}, true
		}
	case 2:
		if i+4 < len(params) {
			r := u8(first(params[i+2]))
			g := u8(first(params[i+3]))
			b := u8(first(params[i+4]))
			return extendedResult{attr: TerminalCharAttribute{Attr: attr, RGBColor: &RGBColor{R: r, G: g, B: b}}, nextIndex: i + 4}, true
		}
	}
	return extendedResult{}, false
}

func first(sub []uint16) uint16 {
	if len(sub) == 0 {
		return 0
	}
	return sub[0]
}

func u8(v uint16) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
