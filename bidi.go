package vtgrid

import "golang.org/x/text/unicode/bidi"

// BidiDirection is the resolved writing direction of a BidiRun.
type BidiDirection int

const (
	// BidiLeftToRight is left-to-right text (Latin, CJK, digits, ...).
	BidiLeftToRight BidiDirection = iota
	// BidiRightToLeft is right-to-left text (Hebrew, Arabic, ...).
	BidiRightToLeft
)

// BidiRun is one maximal span of a line that shares a resolved direction,
// given in logical (storage) column order. The core never reorders cells
// for display - per spec.md's Non-goals it only detects and records these
// runs so a renderer can do the visual reordering itself.
type BidiRun struct {
	Start, End int // half-open column range [Start, End) in logical order
	Direction  BidiDirection
}

// LineBidiRuns computes the logical-order bidi runs for a row of the
// active buffer, classifying each column's base character via the
// Unicode bidi class table and merging consecutive columns that resolve
// to the same direction. Trailing blank cells belong to no run, so a blank
// line has none; a wide character's run also covers its spacer column. It
// is recomputed on demand rather than cached, since an edit anywhere on the
// line can change a run's boundaries.
func (t *Terminal) LineBidiRuns(row int) []BidiRun {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lineBidiRunsLocked(row)
}

func (t *Terminal) lineBidiRunsLocked(row int) []BidiRun {
	if row < 0 || row >= t.rows {
		return nil
	}

	end := t.cols
	for end > 0 {
		if c := t.activeBuffer.Cell(row, end-1); c != nil && c.Char != ' ' && c.Char != 0 && !c.IsWideSpacer() {
			break
		}
		end--
	}

	var runs []BidiRun
	for col := 0; col < end; col++ {
		cell := t.activeBuffer.Cell(row, col)
		if cell == nil || cell.IsWideSpacer() {
			continue
		}
		dir := columnDirection(cell.Char)
		next := col + 1
		if cell.IsWide() {
			next = col + 2
		}

		if n := len(runs); n > 0 && runs[n-1].Direction == dir && runs[n-1].End == col {
			runs[n-1].End = next
			continue
		}
		runs = append(runs, BidiRun{Start: col, End: next, Direction: dir})
	}
	return runs
}

// columnDirection classifies a single base rune's bidi class, treating the
// strong right-to-left classes (R, Arabic Letter) as BidiRightToLeft and
// everything else (including neutral/weak classes, which this
// detection-only contract does not resolve contextually) as
// BidiLeftToRight.
func columnDirection(r rune) BidiDirection {
	props, _ := bidi.LookupRune(r)
	switch props.Class() {
	case bidi.R, bidi.AL:
		return BidiRightToLeft
	default:
		return BidiLeftToRight
	}
}
