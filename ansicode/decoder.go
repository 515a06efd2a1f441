package ansicode

import "unicode/utf8"

// Resource caps on string-type sequences, mirroring the limits real
// terminals impose so a hostile or runaway stream can't grow these buffers
// without bound.
const (
	maxOSCLen = 2048
	maxDCSLen = 65536
	maxStrLen = 1 << 20
)

type state int

const (
	stateGround state = iota
	stateEscape
	stateEscapeIntermediate
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateOSCString
	stateDCSPassthrough
	stateSOSPMAPCString
	stateCharsetDesignate
	// stateStringEscape is entered from one of the *_string states on ESC,
	// waiting to see whether it's the '\\' of a String Terminator or the
	// start of an unrelated escape sequence (which aborts the string).
	stateStringEscape
)

// Decoder turns a byte stream into calls against a Handler, implementing
// the VT500-series state machine (DEC STD 070 / ECMA-48) extended with the
// xterm/iTerm2/Kitty sequences the Handler interface exposes.
type Decoder struct {
	handler Handler
	st      state
	resumeSt state // state to return to if stateStringEscape sees a non-'\\' byte

	params paramStack
	inter  []byte

	oscBuf []byte

	// stringKind distinguishes which of DCS/SOS/PM/APC is being collected.
	stringKind byte
	strBuf     []byte

	// charsetSlot holds the G-set designator between ESC and its final byte.
	charsetSlot byte

	// pending holds bytes of a UTF-8 sequence split across Write calls.
	pending [4]byte
	nPend   int
}

// NewDecoder creates a Decoder that dispatches to handler.
func NewDecoder(handler Handler) *Decoder {
	return &Decoder{handler: handler}
}

// Write feeds raw bytes into the decoder, decoding UTF-8 and escape
// sequences and invoking the Handler as sequences complete. It always
// consumes the entire input and never returns an error; malformed bytes are
// replaced with U+FFFD per the Unicode recommendation rather than aborting
// the stream.
func (d *Decoder) Write(data []byte) (int, error) {
	n := len(data)
	i := 0

	if d.nPend > 0 {
		for i < n && d.nPend < 4 {
			d.pending[d.nPend] = data[i]
			d.nPend++
			i++
			size := utf8SeqLen(d.pending[0])
			if size != 0 && d.nPend >= size {
				r, _ := utf8.DecodeRune(d.pending[:size])
				d.feedRune(r)
				d.nPend = 0
				break
			}
			if size == 0 {
				d.handler.ReportError(ErrorDecoding, "invalid UTF-8 continuation across Write calls")
				d.feedRune(utf8.RuneError)
				d.nPend = 0
				break
			}
		}
	}

	for i < n {
		b := data[i]
		if b < 0x80 {
			d.feedByte(b)
			i++
			continue
		}

		size := utf8SeqLen(b)
		if size == 0 {
			d.handler.ReportError(ErrorDecoding, "invalid UTF-8 lead byte")
			d.feedRune(utf8.RuneError)
			i++
			continue
		}
		if i+size > n {
			copy(d.pending[:], data[i:n])
			d.nPend = n - i
			i = n
			break
		}
		r, sz := utf8.DecodeRune(data[i : i+size])
		if r == utf8.RuneError && sz <= 1 {
			d.handler.ReportError(ErrorDecoding, "invalid UTF-8 sequence")
			d.feedRune(utf8.RuneError)
			i++
			continue
		}
		d.feedRune(r)
		i += size
	}

	return n, nil
}

func utf8SeqLen(b byte) int {
	switch {
	case b&0x80 == 0x00:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

// feedByte handles a single ASCII (< 0x80) byte, which may be a C0 control
// code, a printable character, or part of an escape/control sequence.
func (d *Decoder) feedByte(b byte) {
	switch d.st {
	case stateGround:
		d.ground(b)
	case stateEscape:
		d.escape(b)
	case stateEscapeIntermediate:
		d.escapeIntermediate(b)
	case stateCSIEntry, stateCSIParam:
		d.csiParam(b)
	case stateCSIIntermediate:
		d.csiIntermediate(b)
	case stateCSIIgnore:
		d.csiIgnore(b)
	case stateOSCString:
		d.oscString(b)
	case stateSOSPMAPCString:
		d.stringByte(b)
	case stateDCSPassthrough:
		d.dcsByte(b)
	case stateCharsetDesignate:
		d.charsetDesignate(b)
	case stateStringEscape:
		d.stringEscape(b)
	}
}

// feedRune handles a decoded (possibly multi-byte) rune. Outside of GROUND
// and the string-collecting states, only ASCII bytes participate in
// control sequences, so any non-ASCII rune elsewhere is always printable
// input (or, inside a string, raw payload bytes).
func (d *Decoder) feedRune(r rune) {
	if r < 0x80 {
		d.feedByte(byte(r))
		return
	}
	switch d.st {
	case stateGround:
		d.handler.Input(r)
	case stateOSCString:
		var buf [4]byte
		n := utf8.EncodeRune(buf[:], r)
		d.appendOSC(buf[:n])
	case stateSOSPMAPCString:
		var buf [4]byte
		n := utf8.EncodeRune(buf[:], r)
		d.appendStr(buf[:n])
	case stateDCSPassthrough:
		// payload bytes collected but not interpreted further
	default:
		d.handler.Input(r)
	}
}

func (d *Decoder) reset() {
	d.st = stateGround
	d.params.reset()
	d.inter = d.inter[:0]
}

// --- GROUND ---

func (d *Decoder) ground(b byte) {
	switch {
	case b == 0x1b:
		d.reset()
		d.st = stateEscape
	case b == 0x07:
		d.handler.Bell()
	case b == 0x08:
		d.handler.Backspace()
	case b == 0x09:
		d.handler.Tab(1)
	case b == 0x0a, b == 0x0b, b == 0x0c:
		d.handler.LineFeed()
	case b == 0x0d:
		d.handler.CarriageReturn()
	case b < 0x20:
		// Other C0 controls are outside this terminal's feature set.
	default:
		d.handler.Input(rune(b))
	}
}

// --- ESCAPE ---

func (d *Decoder) escape(b byte) {
	switch {
	case b == 0x5b: // '[' -> CSI
		d.st = stateCSIEntry
	case b == 0x5d: // ']' -> OSC
		d.st = stateOSCString
		d.oscBuf = d.oscBuf[:0]
	case b == 0x50: // 'P' -> DCS
		d.st = stateDCSPassthrough
		d.strBuf = d.strBuf[:0]
	case b == 0x58, b == 0x5e, b == 0x5f: // 'X' SOS, '^' PM, '_' APC
		d.stringKind = b
		d.strBuf = d.strBuf[:0]
		d.st = stateSOSPMAPCString
	case b == 0x28, b == 0x29, b == 0x2a, b == 0x2b: // '(' ')' '*' '+'
		d.charsetSlot = b
		d.st = stateCharsetDesignate
	case b >= 0x20 && b <= 0x2f:
		d.inter = append(d.inter, b)
		d.st = stateEscapeIntermediate
	case b >= 0x30 && b <= 0x7e:
		d.dispatchEscape(b)
		d.reset()
	default:
		d.reset()
	}
}

func (d *Decoder) escapeIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		d.inter = append(d.inter, b)
	case b >= 0x30 && b <= 0x7e:
		d.dispatchEscape(b)
		d.reset()
	default:
		d.reset()
	}
}

func (d *Decoder) dispatchEscape(final byte) {
	h := d.handler
	switch final {
	case 'D': // IND
		h.MoveDown(1)
	case 'E': // NEL
		h.CarriageReturn()
		h.MoveDown(1)
	case 'H': // HTS
		h.HorizontalTabSet()
	case 'M': // RI
		h.ReverseIndex()
	case 'c': // RIS
		h.ResetState()
	case '7': // DECSC
		h.SaveCursorPosition()
	case '8': // DECRC
		h.RestoreCursorPosition()
	case '=': // DECKPAM
		h.SetKeypadApplicationMode()
	case '>': // DECKPNM
		h.UnsetKeypadApplicationMode()
	}
}

func (d *Decoder) charsetDesignate(b byte) {
	defer d.reset()
	var cs Charset
	switch b {
	case 'B':
		cs = CharsetASCII
	case '0':
		cs = CharsetLineDrawing
	default:
		return
	}
	var idx CharsetIndex
	switch d.charsetSlot {
	case '(':
		idx = CharsetIndexG0
	case ')':
		idx = CharsetIndexG1
	case '*':
		idx = CharsetIndexG2
	case '+':
		idx = CharsetIndexG3
	}
	d.handler.ConfigureCharset(idx, cs)
}

// --- CSI ---

func (d *Decoder) csiParam(b byte) {
	switch {
	case b >= '0' && b <= '9':
		d.params.digit(b)
		d.st = stateCSIParam
	case b == ';':
		d.params.separator()
		d.st = stateCSIParam
	case b == ':':
		d.params.subSeparator()
		d.st = stateCSIParam
	case b == '?' || b == '>' || b == '=' || b == '<':
		d.inter = append(d.inter, b)
		d.st = stateCSIParam
	case b >= 0x20 && b <= 0x2f:
		d.inter = append(d.inter, b)
		d.st = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7e:
		d.dispatchCSI(b)
		d.reset()
	default:
		d.st = stateCSIIgnore
	}
}

func (d *Decoder) csiIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		d.inter = append(d.inter, b)
	case b >= 0x40 && b <= 0x7e:
		d.dispatchCSI(b)
		d.reset()
	default:
		d.st = stateCSIIgnore
	}
}

func (d *Decoder) csiIgnore(b byte) {
	if b >= 0x40 && b <= 0x7e {
		d.reset()
	}
}

func (d *Decoder) prefixByte() byte {
	for _, c := range d.inter {
		switch c {
		case '?', '>', '=', '<':
			return c
		}
	}
	return 0
}

func (d *Decoder) dispatchCSI(final byte) {
	h := d.handler
	params := d.params.finish()
	prefix := d.prefixByte()
	if d.params.overflowed {
		h.ReportError(ErrorOverflowIgnored, "CSI parameter count exceeded maxParams")
	}

	switch final {
	case 'A':
		h.MoveUp(intOr(params, 0, 1))
	case 'B':
		h.MoveDown(intOr(params, 0, 1))
	case 'C', 'a':
		h.MoveForward(intOr(params, 0, 1))
	case 'D':
		h.MoveBackward(intOr(params, 0, 1))
	case 'E':
		h.MoveDownCr(intOr(params, 0, 1))
	case 'F':
		h.MoveUpCr(intOr(params, 0, 1))
	case 'G', '`':
		h.GotoCol(intOr(params, 0, 1) - 1)
	case 'd':
		h.GotoLine(intOr(params, 0, 1) - 1)
	case 'H', 'f':
		row := intOr(params, 0, 1)
		col := intOr(params, 1, 1)
		h.Goto(row-1, col-1)
	case 'I':
		h.MoveForwardTabs(intOr(params, 0, 1))
	case 'Z':
		h.MoveBackwardTabs(intOr(params, 0, 1))

	case 'J':
		h.ClearScreen(clearModeFrom(intOr(params, 0, 0)))
	case 'K':
		h.ClearLine(lineClearModeFrom(intOr(params, 0, 0)))
	case 'g':
		h.ClearTabs(tabClearModeFrom(intOr(params, 0, 0)))

	case '@':
		h.InsertBlank(intOr(params, 0, 1))
	case 'L':
		h.InsertBlankLines(intOr(params, 0, 1))
	case 'P':
		h.DeleteChars(intOr(params, 0, 1))
	case 'M':
		h.DeleteLines(intOr(params, 0, 1))
	case 'X':
		h.EraseChars(intOr(params, 0, 1))
	case 'S':
		h.ScrollUp(intOr(params, 0, 1))
	case 'T':
		h.ScrollDown(intOr(params, 0, 1))
	case 'r':
		top := intOr(params, 0, 1)
		bottom := intOr(params, 1, 0)
		h.SetScrollingRegion(top, bottom)

	case 'h':
		d.setModes(params, prefix, true)
	case 'l':
		d.setModes(params, prefix, false)

	case 'm':
		if prefix == '>' {
			h.SetModifyOtherKeys(ModifyOtherKeys(intOr(params, 1, 0)))
			return
		}
		for _, attr := range parseSGR(params) {
			h.SetTerminalCharAttribute(attr)
		}

	case 'q':
		if len(d.inter) > 0 && d.inter[len(d.inter)-1] == ' ' {
			h.SetCursorStyle(CursorStyle(intOr(params, 0, 1) - 1))
		}

	case 's':
		h.SaveCursorPosition()
	case 'u':
		switch prefix {
		case '?':
			h.ReportKeyboardMode()
		case '>':
			h.PushKeyboardMode(KeyboardMode(intOr(params, 0, 0)))
		case '<':
			h.PopKeyboardMode(intOr(params, 0, 1))
		case '=':
			h.SetKeyboardMode(KeyboardMode(intOr(params, 0, 0)), keyboardBehaviorFrom(intOr(params, 1, 1)))
		default:
			h.RestoreCursorPosition()
		}

	case 'n':
		h.DeviceStatus(intOr(params, 0, 0))
	case 'c':
		h.IdentifyTerminal(0)
	default:
		h.ReportError(ErrorUnknownSequence, "CSI final byte "+string(final))
	}
}

func (d *Decoder) setModes(params [][]uint16, prefix byte, set bool) {
	h := d.handler
	for _, p := range params {
		if len(p) == 0 {
			continue
		}
		mode, ok := terminalModeFrom(int(p[0]), prefix == '?')
		if !ok {
			continue
		}
		if set {
			h.SetMode(mode)
		} else {
			h.UnsetMode(mode)
		}
	}
}

func clearModeFrom(n int) ClearMode {
	switch n {
	case 1:
		return ClearModeAbove
	case 2:
		return ClearModeAll
	case 3:
		return ClearModeSaved
	default:
		return ClearModeBelow
	}
}

func lineClearModeFrom(n int) LineClearMode {
	switch n {
	case 1:
		return LineClearModeLeft
	case 2:
		return LineClearModeAll
	default:
		return LineClearModeRight
	}
}

func tabClearModeFrom(n int) TabulationClearMode {
	if n == 3 {
		return TabulationClearModeAll
	}
	return TabulationClearModeCurrent
}

func keyboardBehaviorFrom(n int) KeyboardModeBehavior {
	switch n {
	case 2:
		return KeyboardModeBehaviorUnion
	case 3:
		return KeyboardModeBehaviorDifference
	default:
		return KeyboardModeBehaviorReplace
	}
}

// terminalModeFrom maps a DEC private (prefix '?') or ANSI mode number to
// our enum. Numbers not in this table are reported as unknown so callers
// can ignore them rather than guess.
func terminalModeFrom(n int, private bool) (TerminalMode, bool) {
	if !private {
		switch n {
		case 4:
			return TerminalModeInsert, true
		case 20:
			return TerminalModeLineFeedNewLine, true
		}
		return 0, false
	}
	switch n {
	case 1:
		return TerminalModeCursorKeys, true
	case 3:
		return TerminalModeColumnMode, true
	case 6:
		return TerminalModeOrigin, true
	case 7:
		return TerminalModeLineWrap, true
	case 12:
		return TerminalModeBlinkingCursor, true
	case 25:
		return TerminalModeShowCursor, true
	case 47:
		return TerminalModeAltScreen, true
	case 1000:
		return TerminalModeReportMouseClicks, true
	case 1002:
		return TerminalModeReportCellMouseMotion, true
	case 1003:
		return TerminalModeReportAllMouseMotion, true
	case 1004:
		return TerminalModeReportFocusInOut, true
	case 1005:
		return TerminalModeUTF8Mouse, true
	case 1006:
		return TerminalModeSGRMouse, true
	case 1007:
		return TerminalModeAlternateScroll, true
	case 1042:
		return TerminalModeUrgencyHints, true
	case 1047:
		return TerminalModeAltScreenSaveRestore, true
	case 1049:
		return TerminalModeSwapScreenAndSetRestoreCursor, true
	case 2004:
		return TerminalModeBracketedPaste, true
	}
	return 0, false
}

// --- string-collecting states: OSC, DCS, SOS/PM/APC ---
//
// All four share the same termination rule (BEL for OSC only, or ST = ESC
// \\ for all of them), implemented via stateStringEscape: seeing an ESC
// while collecting a string tentatively suspends collection, and the next
// byte decides whether that ESC was a terminator ('\\') or the string
// should be abandoned and the byte reprocessed as a fresh escape.

func (d *Decoder) appendOSC(b []byte) {
	if len(d.oscBuf) < maxOSCLen {
		d.oscBuf = append(d.oscBuf, b...)
	} else {
		d.handler.ReportError(ErrorOverflowIgnored, "OSC payload exceeded maxOSCLen")
	}
}

func (d *Decoder) appendStr(b []byte) {
	if len(d.strBuf) < maxStrLen {
		d.strBuf = append(d.strBuf, b...)
	} else {
		d.handler.ReportError(ErrorOverflowIgnored, "SOS/PM/APC payload exceeded maxStrLen")
	}
}

func (d *Decoder) oscString(b byte) {
	switch {
	case b == 0x07:
		d.dispatchOSC(d.oscBuf)
		d.reset()
	case b == 0x1b:
		d.resumeSt = stateOSCString
		d.st = stateStringEscape
	default:
		d.appendOSC([]byte{b})
	}
}

func (d *Decoder) stringByte(b byte) {
	switch {
	case b == 0x1b:
		d.resumeSt = stateSOSPMAPCString
		d.st = stateStringEscape
	default:
		d.appendStr([]byte{b})
	}
}

func (d *Decoder) dcsByte(b byte) {
	switch {
	case b == 0x1b:
		d.resumeSt = stateDCSPassthrough
		d.st = stateStringEscape
	default:
		if len(d.strBuf) < maxDCSLen {
			d.strBuf = append(d.strBuf, b)
		} else {
			d.handler.ReportError(ErrorOverflowIgnored, "DCS payload exceeded maxDCSLen")
		}
	}
}

func (d *Decoder) stringEscape(b byte) {
	if b == '\\' {
		switch d.resumeSt {
		case stateOSCString:
			d.dispatchOSC(d.oscBuf)
		case stateSOSPMAPCString:
			d.dispatchString()
		case stateDCSPassthrough:
			// DCS payloads (e.g. Sixel) are collected but not acted on.
		}
		d.reset()
		return
	}
	// Not a terminator: the prior string is abandoned and this byte starts
	// a fresh escape sequence.
	d.reset()
	d.st = stateEscape
	d.escape(b)
}

func (d *Decoder) dispatchString() {
	switch d.stringKind {
	case 0x5f: // APC
		d.handler.ApplicationCommandReceived(d.strBuf)
	case 0x5e: // PM
		d.handler.PrivacyMessageReceived(d.strBuf)
	case 0x58: // SOS
		d.handler.StartOfStringReceived(d.strBuf)
	}
}
