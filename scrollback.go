package vtgrid

import (
	"image/color"

	"github.com/rivo/uniseg"
)

// defaultMaxScrollbackBytes is spec's MAX_SCROLLBACK_BYTES: the ring never
// holds more than this many serialized bytes across all retained lines.
const defaultMaxScrollbackBytes = 50 * 1024 * 1024

// scrollbackRun is one run of consecutive, identically-styled clusters
// within a serialized scrollback line, letting a long stretch of
// same-colored text cost one run instead of one entry per cell.
type scrollbackRun struct {
	count          int
	width          int // 1 or 2; spacer cells are implied by width==2 and never stored
	fg, bg         color.Color
	underlineColor color.Color
	flags          CellFlags
	hyperlink      *Hyperlink
}

// scrollbackEntry is the compact, serialized form of one evicted row: the
// grapheme-cluster text of the line plus the attribute run-length encoding
// that reconstructs per-cell styling, rather than a raw []Cell slice. This
// is what makes MAX_SCROLLBACK_BYTES meaningful instead of proportional to
// a fixed per-cell struct size.
type scrollbackEntry struct {
	text  string
	runs  []scrollbackRun
	bytes int
}

// MemoryScrollback is the default in-memory [ScrollbackProvider]: a ring
// buffer capped by both a line count and a total serialized-byte budget
// (whichever is hit first evicts the oldest line). Lines are stored as
// grapheme text plus a run-length attribute encoding, not []Cell, per
// spec.md §3's scrollback storage note.
type MemoryScrollback struct {
	lines    []scrollbackEntry
	maxLines int
	maxBytes int
	used     int
}

// NewMemoryScrollback creates scrollback storage capped at maxLines lines
// and the default 50 MiB byte budget. maxLines <= 0 means no line-count cap
// (the byte budget alone governs eviction).
func NewMemoryScrollback(maxLines int) *MemoryScrollback {
	return NewMemoryScrollbackWithBudget(maxLines, defaultMaxScrollbackBytes)
}

// NewMemoryScrollbackWithBudget creates scrollback storage with an explicit
// line-count cap and byte budget. Either may be <= 0 to disable that cap.
func NewMemoryScrollbackWithBudget(maxLines, maxBytes int) *MemoryScrollback {
	return &MemoryScrollback{maxLines: maxLines, maxBytes: maxBytes}
}

// Push appends a line to scrollback, evicting the oldest lines first until
// both the line-count and byte caps are satisfied.
func (m *MemoryScrollback) Push(line []Cell) {
	entry := serializeLine(line)
	m.lines = append(m.lines, entry)
	m.used += entry.bytes
	m.evict()
}

func (m *MemoryScrollback) evict() {
	for len(m.lines) > 0 {
		overLines := m.maxLines > 0 && len(m.lines) > m.maxLines
		overBytes := m.maxBytes > 0 && m.used > m.maxBytes
		if !overLines && !overBytes {
			break
		}
		m.used -= m.lines[0].bytes
		m.lines = m.lines[1:]
	}
}

// Len returns the current number of stored lines.
func (m *MemoryScrollback) Len() int {
	return len(m.lines)
}

// Line reconstructs the cell slice for a stored line, where 0 is the
// oldest. Returns nil if index is out of range.
func (m *MemoryScrollback) Line(index int) []Cell {
	if index < 0 || index >= len(m.lines) {
		return nil
	}
	return deserializeLine(m.lines[index])
}

// Clear removes all stored lines and resets the byte accounting.
func (m *MemoryScrollback) Clear() {
	m.lines = nil
	m.used = 0
}

// SetMaxLines sets the maximum line-count capacity, evicting if necessary.
func (m *MemoryScrollback) SetMaxLines(max int) {
	m.maxLines = max
	m.evict()
}

// MaxLines returns the current line-count cap (0 means uncapped by line count).
func (m *MemoryScrollback) MaxLines() int {
	return m.maxLines
}

// SetMaxBytes sets the byte budget (spec's MAX_SCROLLBACK_BYTES), evicting
// the oldest lines if the new budget is smaller than current usage.
func (m *MemoryScrollback) SetMaxBytes(max int) {
	m.maxBytes = max
	m.evict()
}

// MaxBytes returns the configured byte budget.
func (m *MemoryScrollback) MaxBytes() int {
	return m.maxBytes
}

// Bytes returns the serialized bytes currently held across all lines,
// which never exceeds MaxBytes (invariant 4 in spec.md §3).
func (m *MemoryScrollback) Bytes() int {
	return m.used
}

var _ ScrollbackProvider = (*MemoryScrollback)(nil)

// serializeLine converts a row's cells into its compact scrollback form:
// concatenated grapheme text (spacer cells contribute nothing; their
// width is implied by the preceding run's width==2) plus a run-length
// attribute encoding.
func serializeLine(cells []Cell) scrollbackEntry {
	var text []byte
	var runs []scrollbackRun

	for i := 0; i < len(cells); i++ {
		c := &cells[i]
		if c.IsWideSpacer() {
			continue
		}
		width := 1
		if c.IsWide() {
			width = 2
		}
		text = append(text, []byte(c.Grapheme())...)

		if n := len(runs); n > 0 && sameStyle(&runs[n-1], c, width) {
			runs[n-1].count++
			continue
		}
		runs = append(runs, scrollbackRun{
			count:          1,
			width:          width,
			fg:             c.Fg,
			bg:             c.Bg,
			underlineColor: c.UnderlineColor,
			flags:          c.Flags &^ CellFlagDirty,
			hyperlink:      c.Hyperlink,
		})
	}

	entry := scrollbackEntry{text: string(text), runs: runs}
	entry.bytes = len(entry.text) + len(runs)*48 // text bytes + a rough per-run struct cost
	return entry
}

func sameStyle(run *scrollbackRun, c *Cell, width int) bool {
	if run.width != width || run.flags != c.Flags&^CellFlagDirty {
		return false
	}
	if !colorsEqual(run.fg, c.Fg) || !colorsEqual(run.bg, c.Bg) || !colorsEqual(run.underlineColor, c.UnderlineColor) {
		return false
	}
	return hyperlinkEqual(run.hyperlink, c.Hyperlink)
}

// colorsEqual compares two cell colors by value rather than pointer
// identity: cells routinely hold independently-allocated *NamedColor /
// *IndexedColor pointers for what is semantically the same color (e.g. two
// freshly-initialized blank cells), which would otherwise defeat run
// merging entirely.
func colorsEqual(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case *NamedColor:
		bv, ok := b.(*NamedColor)
		return ok && av.Name == bv.Name
	case *IndexedColor:
		bv, ok := b.(*IndexedColor)
		return ok && av.Index == bv.Index
	case color.RGBA:
		bv, ok := b.(color.RGBA)
		return ok && av == bv
	default:
		return a == b
	}
}

func hyperlinkEqual(a, b *Hyperlink) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// deserializeLine walks the run-length attribute list, pairing each run's
// cells with the next grapheme clusters from text (segmented via
// uniseg so multi-rune clusters - combining marks, ZWJ emoji - reattach
// as a single cell instead of splitting back into individual runes).
func deserializeLine(entry scrollbackEntry) []Cell {
	var cells []Cell
	gr := uniseg.NewGraphemes(entry.text)

	for _, run := range entry.runs {
		for i := 0; i < run.count; i++ {
			if !gr.Next() {
				break
			}
			runes := gr.Runes()
			cell := Cell{
				Fg:             run.fg,
				Bg:             run.bg,
				UnderlineColor: run.underlineColor,
				Flags:          run.flags,
				Hyperlink:      run.hyperlink,
			}
			if len(runes) > 0 {
				cell.Char = runes[0]
				if len(runes) > 1 {
					cell.Combining = string(runes[1:])
				}
			} else {
				cell.Char = ' '
			}
			cells = append(cells, cell)
			if run.width == 2 {
				spacer := Cell{
					Fg:    run.fg,
					Bg:    run.bg,
					Flags: run.flags,
				}
				spacer.SetFlag(CellFlagWideCharSpacer)
				cells = append(cells, spacer)
			}
		}
	}
	return cells
}
