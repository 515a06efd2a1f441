// Package ansicode defines the vocabulary used to describe parsed ANSI/VT
// escape sequences (modes, attributes, charsets) and the Handler interface
// that a terminal implements to receive them, plus the Decoder that turns a
// raw byte stream into calls against that interface.
package ansicode

import "image/color"

// LineClearMode selects which part of the current line ED/EL clears.
type LineClearMode int

const (
	LineClearModeRight LineClearMode = iota
	LineClearModeLeft
	LineClearModeAll
)

// ClearMode selects which part of the screen ED clears.
type ClearMode int

const (
	ClearModeBelow ClearMode = iota
	ClearModeAbove
	ClearModeAll
	ClearModeSaved
)

// TabulationClearMode selects which tab stops TBC clears.
type TabulationClearMode int

const (
	TabulationClearModeCurrent TabulationClearMode = iota
	TabulationClearModeAll
)

// CharsetIndex selects one of the four G0-G3 charset slots. Values are
// numerically significant: the terminal converts directly between this type
// and its own internal charset-slot type.
type CharsetIndex int

const (
	CharsetIndexG0 CharsetIndex = iota
	CharsetIndexG1
	CharsetIndexG2
	CharsetIndexG3
)

// Charset is a designatable character set (invoked into a G0-G3 slot via
// ESC ( / ESC ) / etc). Values are numerically significant in the same way
// as CharsetIndex.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
)

// CursorStyle is the DECSCUSR cursor shape. Values are numerically
// significant: the terminal converts directly between this type and its own
// cursor style type.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// TerminalMode is a DEC private or ANSI mode toggled by SM/RM or DECSET/DECRST.
type TerminalMode int

const (
	TerminalModeCursorKeys TerminalMode = iota + 1
	TerminalModeColumnMode
	TerminalModeInsert
	TerminalModeOrigin
	TerminalModeLineWrap
	TerminalModeBlinkingCursor
	TerminalModeLineFeedNewLine
	TerminalModeShowCursor
	TerminalModeReportMouseClicks
	TerminalModeReportCellMouseMotion
	TerminalModeReportAllMouseMotion
	TerminalModeReportFocusInOut
	TerminalModeUTF8Mouse
	TerminalModeSGRMouse
	TerminalModeAlternateScroll
	TerminalModeUrgencyHints
	TerminalModeSwapScreenAndSetRestoreCursor
	TerminalModeBracketedPaste
	// TerminalModeAltScreen is DEC mode 47: switch to the alternate screen
	// buffer without touching the cursor save slot or clearing on exit.
	TerminalModeAltScreen
	// TerminalModeAltScreenSaveRestore is DEC mode 1047: like 47, but clears
	// the alternate screen on entry; leaving it returns to the primary
	// buffer with its contents as they were.
	TerminalModeAltScreenSaveRestore
)

// CharAttribute is an SGR attribute selector.
type CharAttribute int

const (
	CharAttributeReset CharAttribute = iota
	CharAttributeBold
	CharAttributeDim
	CharAttributeItalic
	CharAttributeUnderline
	CharAttributeDoubleUnderline
	CharAttributeCurlyUnderline
	CharAttributeDottedUnderline
	CharAttributeDashedUnderline
	CharAttributeBlinkSlow
	CharAttributeBlinkFast
	CharAttributeReverse
	CharAttributeHidden
	CharAttributeStrike
	CharAttributeCancelBold
	CharAttributeCancelBoldDim
	CharAttributeCancelItalic
	CharAttributeCancelUnderline
	CharAttributeCancelBlink
	CharAttributeCancelReverse
	CharAttributeCancelHidden
	CharAttributeCancelStrike
	CharAttributeForeground
	CharAttributeBackground
	CharAttributeUnderlineColor
)

// RGBColor is a literal truecolor value (SGR 38;2 / 48;2 / 58;2).
type RGBColor struct {
	R, G, B uint8
}

// IndexedColor is a palette-index color value (SGR 38;5 / 48;5 / 58;5).
type IndexedColor struct {
	Index uint8
}

// TerminalCharAttribute is one parsed SGR attribute. At most one of
// RGBColor, IndexedColor, or NamedColor is set; for CharAttributeForeground/
// Background/UnderlineColor with all three nil, the attribute means "reset
// to default" for that color slot.
type TerminalCharAttribute struct {
	Attr         CharAttribute
	RGBColor     *RGBColor
	IndexedColor *IndexedColor
	NamedColor   *int
}

// Hyperlink is a parsed OSC 8 hyperlink (empty ID is valid and means the
// link has no explicit identity for matching against other runs).
type Hyperlink struct {
	ID  string
	URI string
}

// KeyboardMode is a bitmask of Kitty keyboard protocol flags (CSI > u / =
// u / < u), combined via SetKeyboardMode's KeyboardModeBehavior.
type KeyboardMode uint8

const (
	KeyboardModeNoMode KeyboardMode = 0

	KeyboardModeDisambiguateEscapeCodes KeyboardMode = 1 << (iota - 1)
	KeyboardModeReportEventTypes
	KeyboardModeReportAlternateKeys
	KeyboardModeReportAllKeysAsEscapeCodes
	KeyboardModeReportAssociatedText
)

// KeyboardModeBehavior selects how SetKeyboardMode combines a new mode with
// the mode currently on top of the keyboard-mode stack.
type KeyboardModeBehavior int

const (
	KeyboardModeBehaviorReplace KeyboardModeBehavior = iota + 1
	KeyboardModeBehaviorUnion
	KeyboardModeBehaviorDifference
)

// ModifyOtherKeys is xterm's modifyOtherKeys mode (CSI > 4 ; n m).
type ModifyOtherKeys int

const (
	ModifyOtherKeysOff ModifyOtherKeys = iota
	ModifyOtherKeysNumeric
	ModifyOtherKeysAll
)

// ShellIntegrationMark is an OSC 133 semantic prompt mark.
type ShellIntegrationMark int

const (
	PromptStart ShellIntegrationMark = iota
	CommandStart
	CommandExecuted
	CommandFinished
)

// Handler receives callbacks from a Decoder as it parses a byte stream. A
// terminal implements this interface to react to every recognized control
// function, CSI/OSC/DCS/APC/PM/SOS sequence, and printable-text run.
type Handler interface {
	Input(r rune)
	Bell()
	Backspace()
	CarriageReturn()
	LineFeed()
	Tab(n int)

	ClearLine(mode LineClearMode)
	ClearScreen(mode ClearMode)
	ClearTabs(mode TabulationClearMode)

	Goto(row, col int)
	GotoLine(row int)
	GotoCol(col int)
	MoveUp(n int)
	MoveDown(n int)
	MoveForward(n int)
	MoveBackward(n int)
	MoveUpCr(n int)
	MoveDownCr(n int)
	MoveForwardTabs(n int)
	MoveBackwardTabs(n int)

	InsertBlank(n int)
	InsertBlankLines(n int)
	DeleteChars(n int)
	DeleteLines(n int)
	EraseChars(n int)
	ScrollUp(n int)
	ScrollDown(n int)
	SetScrollingRegion(top, bottom int)

	SetMode(mode TerminalMode)
	UnsetMode(mode TerminalMode)
	SetTerminalCharAttribute(attr TerminalCharAttribute)

	SetTitle(title string)
	PushTitle()
	PopTitle()

	SetCursorStyle(style CursorStyle)
	SaveCursorPosition()
	RestoreCursorPosition()
	ReverseIndex()
	ResetState()
	Substitute()
	Decaln()

	DeviceStatus(n int)
	IdentifyTerminal(b byte)

	ConfigureCharset(index CharsetIndex, charset Charset)
	SetActiveCharset(n int)
	SetKeypadApplicationMode()
	UnsetKeypadApplicationMode()

	SetColor(index int, c color.Color)
	ResetColor(i int)
	SetDynamicColor(prefix string, index int, terminator string)

	ClipboardLoad(clipboard byte, terminator string)
	ClipboardStore(clipboard byte, data []byte)

	SetHyperlink(hyperlink *Hyperlink)

	TextAreaSizeChars()
	TextAreaSizePixels()
	HorizontalTabSet()

	SetKeyboardMode(mode KeyboardMode, behavior KeyboardModeBehavior)
	PushKeyboardMode(mode KeyboardMode)
	PopKeyboardMode(n int)
	ReportKeyboardMode()

	SetModifyOtherKeys(modify ModifyOtherKeys)
	ReportModifyOtherKeys()

	ApplicationCommandReceived(data []byte)
	PrivacyMessageReceived(data []byte)
	StartOfStringReceived(data []byte)

	ShellIntegrationMark(mark ShellIntegrationMark, exitCode int)
	SetWorkingDirectory(uri string)

	SixelReceived(params [][]uint16, data []byte)
	DesktopNotification(payload *NotificationPayload)
	SetUserVar(name, value string)

	// ReportError delivers a non-fatal parser diagnostic. It is pure
	// observation: implementations must not feed the decoder from within
	// this call. kind classifies the condition; context is a short
	// human-readable description (e.g. the offending final byte or
	// parameter count).
	ReportError(kind ErrorKind, context string)
}

// ErrorKind classifies a non-fatal condition surfaced by the decoder or by
// a Handler implementation while applying an action. None of these abort
// decoding; they exist purely so a host can log or count them.
type ErrorKind int

const (
	// ErrorDecoding marks invalid or incomplete UTF-8 that was replaced
	// with U+FFFD.
	ErrorDecoding ErrorKind = iota
	// ErrorTruncatedSequence marks a sequence still open when the stream
	// ended (observable only when a host explicitly asks to drain).
	ErrorTruncatedSequence
	// ErrorOverflowIgnored marks a parameter list, intermediate run, or
	// OSC/DCS payload that exceeded its cap and was ignored past the limit.
	ErrorOverflowIgnored
	// ErrorUnknownSequence marks a well-formed but unrecognized final byte
	// or mode parameter.
	ErrorUnknownSequence
	// ErrorMalformedSemantics marks a recognized sequence with invalid
	// contents (e.g. SGR truecolor missing components).
	ErrorMalformedSemantics
	// ErrorResourceLimit marks an informational resource cap being hit
	// (e.g. scrollback eviction).
	ErrorResourceLimit
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorDecoding:
		return "DecodingError"
	case ErrorTruncatedSequence:
		return "TruncatedSequence"
	case ErrorOverflowIgnored:
		return "OverflowIgnored"
	case ErrorUnknownSequence:
		return "UnknownSequence"
	case ErrorMalformedSemantics:
		return "MalformedSemantics"
	case ErrorResourceLimit:
		return "ResourceLimit"
	default:
		return "UnknownErrorKind"
	}
}

// NotificationPayload is a parsed OSC 9 / 777 desktop notification request.
// The terminal package re-exports this as its own NotificationPayload type
// so callers never need to import ansicode directly to build one.
type NotificationPayload struct {
	ID          string
	Done        bool
	PayloadType string
	Encoding    string
	Actions     []string
	TrackClose  bool
	Timeout     int
	AppName     string
	Type        string
	IconName    string
	IconCacheID string
	Sound       string
	Urgency     int
	Occasion    string
	Data        []byte
}
