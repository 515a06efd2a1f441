package vtgrid

import "testing"

func makeTestLine(cols int) []Cell {
	cells := make([]Cell, cols)
	for i := range cells {
		cells[i] = NewCell()
		cells[i].Char = rune('a' + i%26)
	}
	return cells
}

func TestMemoryScrollbackRoundTrip(t *testing.T) {
	sb := NewMemoryScrollback(100)
	line := makeTestLine(10)
	sb.Push(line)

	if sb.Len() != 1 {
		t.Fatalf("expected 1 line, got %d", sb.Len())
	}

	got := sb.Line(0)
	if len(got) != 10 {
		t.Fatalf("expected 10 cells, got %d", len(got))
	}
	for i := range got {
		if got[i].Char != line[i].Char {
			t.Errorf("cell %d: expected %q, got %q", i, line[i].Char, got[i].Char)
		}
	}
}

func TestMemoryScrollbackEvictsByLineCount(t *testing.T) {
	sb := NewMemoryScrollback(2)
	sb.Push(makeTestLine(5))
	sb.Push(makeTestLine(5))
	sb.Push(makeTestLine(5))

	if sb.Len() != 2 {
		t.Fatalf("expected eviction down to 2 lines, got %d", sb.Len())
	}
}

func TestMemoryScrollbackEvictsByByteBudget(t *testing.T) {
	sb := NewMemoryScrollbackWithBudget(0, 200)
	for i := 0; i < 50; i++ {
		sb.Push(makeTestLine(80))
	}

	if sb.Bytes() > sb.MaxBytes() {
		t.Errorf("scrollback bytes %d exceed budget %d", sb.Bytes(), sb.MaxBytes())
	}
	if sb.Len() == 0 {
		t.Error("expected at least some lines retained")
	}
}

func TestMemoryScrollbackCombiningMarkRoundTrip(t *testing.T) {
	sb := NewMemoryScrollback(10)
	line := makeTestLine(3)
	line[1].Char = 'e'
	line[1].Combining = "́"
	sb.Push(line)

	got := sb.Line(0)
	if got[1].Grapheme() != "é" {
		t.Errorf("expected combining mark to round-trip, got %q", got[1].Grapheme())
	}
}

func TestMemoryScrollbackWideCharRoundTrip(t *testing.T) {
	sb := NewMemoryScrollback(10)
	line := makeTestLine(4)
	line[1].Char = '漢'
	line[1].SetFlag(CellFlagWideChar)
	line[2].Reset()
	line[2].SetFlag(CellFlagWideCharSpacer)

	sb.Push(line)
	got := sb.Line(0)

	if len(got) != 4 {
		t.Fatalf("expected 4 cells after round-trip, got %d", len(got))
	}
	if !got[1].IsWide() {
		t.Error("expected wide flag to round-trip")
	}
	if !got[2].IsWideSpacer() {
		t.Error("expected spacer cell to round-trip")
	}
}

func TestMemoryScrollbackClear(t *testing.T) {
	sb := NewMemoryScrollback(10)
	sb.Push(makeTestLine(5))
	sb.Clear()

	if sb.Len() != 0 || sb.Bytes() != 0 {
		t.Errorf("expected empty scrollback after Clear, got len=%d bytes=%d", sb.Len(), sb.Bytes())
	}
}
