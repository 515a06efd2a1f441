package vtgrid

import (
	"strings"

	"github.com/coachfortner/vtgrid/ansicode"
)

// ShellIntegrationMark processes an OSC 133 shell integration mark,
// recording its position for prompt-based navigation in scrollback.
func (t *Terminal) ShellIntegrationMark(mark ansicode.ShellIntegrationMark, exitCode int) {
	if t.middleware != nil && t.middleware.SemanticPromptMark != nil {
		t.middleware.SemanticPromptMark(mark, exitCode, t.shellIntegrationMarkInternal)
		return
	}
	t.shellIntegrationMarkInternal(mark, exitCode)
}

func (t *Terminal) shellIntegrationMarkInternal(mark ansicode.ShellIntegrationMark, exitCode int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	scrollbackLen := t.primaryBuffer.ScrollbackLen()
	absoluteRow := t.cursor.Row + scrollbackLen

	t.promptMarks = append(t.promptMarks, PromptMark{
		Type:     mark,
		Row:      absoluteRow,
		ExitCode: exitCode,
	})

	if t.shellIntegrationProvider != nil {
		t.shellIntegrationProvider.OnMark(mark, exitCode)
	}
}

// PromptMarks returns a copy of all recorded prompt marks.
func (t *Terminal) PromptMarks() []PromptMark {
	t.mu.RLock()
	defer t.mu.RUnlock()

	marks := make([]PromptMark, len(t.promptMarks))
	copy(marks, t.promptMarks)
	return marks
}

// PromptMarkCount returns the number of recorded prompt marks.
func (t *Terminal) PromptMarkCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.promptMarks)
}

// ClearPromptMarks removes all recorded prompt marks.
func (t *Terminal) ClearPromptMarks() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promptMarks = nil
}

// NextPromptRow returns the absolute row of the next prompt mark after
// currentAbsRow, or -1 if none exists. markType of -1 matches any mark type.
func (t *Terminal) NextPromptRow(currentAbsRow int, markType ansicode.ShellIntegrationMark) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, mark := range t.promptMarks {
		if mark.Row > currentAbsRow && (markType == -1 || mark.Type == markType) {
			return mark.Row
		}
	}
	return -1
}

// PrevPromptRow returns the absolute row of the previous prompt mark before
// currentAbsRow, or -1 if none exists. markType of -1 matches any mark type.
func (t *Terminal) PrevPromptRow(currentAbsRow int, markType ansicode.ShellIntegrationMark) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := len(t.promptMarks) - 1; i >= 0; i-- {
		mark := t.promptMarks[i]
		if mark.Row < currentAbsRow && (markType == -1 || mark.Type == markType) {
			return mark.Row
		}
	}
	return -1
}

// GetPromptMarkAt returns the prompt mark recorded at the given absolute
// row, or nil if none exists there.
func (t *Terminal) GetPromptMarkAt(absRow int) *PromptMark {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.promptMarks {
		if t.promptMarks[i].Row == absRow {
			mark := t.promptMarks[i]
			return &mark
		}
	}
	return nil
}

// GetLastCommandOutput returns the text between the most recent matching
// CommandExecuted/CommandFinished mark pair, or "" if no complete pair
// exists.
func (t *Terminal) GetLastCommandOutput() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.promptMarks) == 0 {
		return ""
	}

	var lastExecuted, lastFinished *PromptMark
	for i := len(t.promptMarks) - 1; i >= 0; i-- {
		mark := &t.promptMarks[i]
		if lastFinished == nil && mark.Type == ansicode.CommandFinished {
			lastFinished = mark
		}
		if lastExecuted == nil && mark.Type == ansicode.CommandExecuted {
			lastExecuted = mark
		}
		if lastExecuted != nil && lastFinished != nil {
			if lastExecuted.Row < lastFinished.Row {
				break
			}
			lastExecuted, lastFinished = nil, nil
		}
	}

	if lastExecuted == nil || lastFinished == nil {
		return ""
	}
	return t.extractTextBetweenRows(lastExecuted.Row, lastFinished.Row)
}

// extractTextBetweenRows renders absolute rows [startRow, endRow) as text,
// pulling from scrollback or the active buffer as appropriate, with
// trailing empty lines trimmed.
func (t *Terminal) extractTextBetweenRows(startRow, endRow int) string {
	scrollbackLen := t.primaryBuffer.ScrollbackLen()

	var lines []string
	for absRow := startRow; absRow < endRow; absRow++ {
		var lineContent string
		if absRow < scrollbackLen {
			if line := t.primaryBuffer.ScrollbackLine(absRow); line != nil {
				lineContent = t.cellsToString(line)
			}
		} else if bufferRow := absRow - scrollbackLen; bufferRow >= 0 && bufferRow < t.rows {
			lineContent = t.activeBuffer.LineContent(bufferRow)
		}
		lines = append(lines, lineContent)
	}

	lastNonEmpty := -1
	for i, line := range lines {
		if line != "" {
			lastNonEmpty = i
		}
	}
	if lastNonEmpty < 0 {
		return ""
	}

	result := ""
	for i := 0; i <= lastNonEmpty; i++ {
		if i > 0 {
			result += "\n"
		}
		result += lines[i]
	}
	return result
}

// cellsToString renders a scrollback line as text, trimming trailing blanks
// and collapsing wide-character spacer cells.
func (t *Terminal) cellsToString(cells []Cell) string {
	lastNonSpace := -1
	for i := len(cells) - 1; i >= 0; i-- {
		cell := &cells[i]
		if cell.Char != ' ' && cell.Char != 0 && !cell.IsWideSpacer() {
			lastNonSpace = i
			break
		}
	}
	if lastNonSpace < 0 {
		return ""
	}

	var sb strings.Builder
	for i := 0; i <= lastNonSpace; i++ {
		cell := &cells[i]
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Char == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(cell.Grapheme())
		}
	}
	return sb.String()
}

// ViewportRowToAbsolute converts a visible-viewport row (0 at the top of
// the active buffer) to an absolute row that also counts scrollback lines.
func (t *Terminal) ViewportRowToAbsolute(viewportRow int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primaryBuffer.ScrollbackLen() + viewportRow
}

// AbsoluteRowToViewport converts an absolute row back to a viewport row.
// Returns -1 if the row is in scrollback or past the bottom of the
// viewport.
func (t *Terminal) AbsoluteRowToViewport(absRow int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	viewportRow := absRow - t.primaryBuffer.ScrollbackLen()
	if viewportRow < 0 || viewportRow >= t.rows {
		return -1
	}
	return viewportRow
}
