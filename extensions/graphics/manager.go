package graphics

import "github.com/coachfortner/vtgrid"

// CursorContext is the minimal cursor/cell-geometry state HandleAPC needs
// from the host terminal to place an image. It is vtgrid.GraphicsCursor, so
// Manager's HandleAPC matches the vtgrid.GraphicsSink method set.
type CursorContext = vtgrid.GraphicsCursor

// Result is what the core terminal does in response to a graphics command:
// an optional reply to write back to the PTY, and how far to advance the
// cursor (for a non-suppressed display command). It is vtgrid.GraphicsResult.
type Result = vtgrid.GraphicsResult

// Manager implements vtgrid.GraphicsSink for the Kitty graphics protocol.
// Constructed with NewManager and attached via vtgrid.WithGraphics; a
// terminal with no Manager attached ignores Kitty APC sequences entirely.
type Manager struct {
	store *Store
}

// NewManager creates a Manager with an empty image store.
func NewManager() *Manager {
	return &Manager{store: NewStore()}
}

// Store exposes the underlying image/placement store for host introspection
// (e.g. serving decoded pixels back over the wire for a browser renderer).
func (m *Manager) Store() *Store {
	return m.store
}

// HandleAPC parses and executes one Kitty graphics command. data is the APC
// payload with its leading 'G' marker still attached; sequences that are not
// Kitty commands (no leading 'G') are ignored and return a zero Result.
func (m *Manager) HandleAPC(data []byte, cur CursorContext) Result {
	if len(data) == 0 || data[0] != 'G' {
		return Result{}
	}

	cmd, err := ParseCommand(data)
	if err != nil {
		return Result{}
	}

	switch cmd.Action {
	case ActionQuery:
		if cmd.Quiet < 2 {
			return Result{Response: FormatResponse(cmd.ImageID, "", false)}
		}
		return Result{}

	case ActionTransmit:
		return m.transmit(cmd)

	case ActionTransmitDisplay:
		res := m.transmit(cmd)
		if !cmd.More {
			disp := m.display(cmd, cur)
			disp.Response = res.Response
			if disp.Response == "" {
				disp.Response = res.Response
			}
			return disp
		}
		return res

	case ActionDisplay:
		return m.display(cmd, cur)

	case ActionDelete:
		m.delete(cmd, cur)
		return Result{}
	}

	return Result{}
}

// Clear wipes all stored images and placements. The terminal calls this on
// a full reset (RIS) or full-screen erase.
func (m *Manager) Clear() {
	m.store.Clear()
}

func (m *Manager) transmit(cmd *Command) Result {
	if cmd.More {
		m.store.mu.Lock()
		m.store.accumulator = append(m.store.accumulator, cmd.Payload...)
		m.store.accumulatorID = cmd.ImageID
		m.store.accumulatorMore = true
		m.store.mu.Unlock()
		return Result{}
	}

	var payload []byte
	m.store.mu.Lock()
	if m.store.accumulatorMore {
		payload = append(m.store.accumulator, cmd.Payload...)
		m.store.accumulator = nil
		m.store.accumulatorMore = false
	} else {
		payload = cmd.Payload
	}
	m.store.mu.Unlock()
	cmd.Payload = payload

	rgba, width, height, err := cmd.DecodeImageData()
	if err != nil || width == 0 || height == 0 {
		if cmd.Quiet < 2 {
			return Result{Response: FormatResponse(cmd.ImageID, "ENODATA", true)}
		}
		return Result{}
	}

	if cmd.ImageID > 0 {
		m.store.StoreImageWithID(cmd.ImageID, width, height, rgba)
	} else {
		cmd.ImageID = m.store.StoreImage(width, height, rgba)
	}

	if cmd.Quiet < 1 {
		return Result{Response: FormatResponse(cmd.ImageID, "", false)}
	}
	return Result{}
}

func (m *Manager) display(cmd *Command, cur CursorContext) Result {
	img := m.store.Image(cmd.ImageID)
	if img == nil {
		if cmd.Quiet < 2 {
			return Result{Response: FormatResponse(cmd.ImageID, "ENOENT", true)}
		}
		return Result{}
	}

	cellW, cellH := cur.CellWidth, cur.CellHeight
	if cellW <= 0 {
		cellW = 8
	}
	if cellH <= 0 {
		cellH = 16
	}

	srcW, srcH := cmd.SrcW, cmd.SrcH
	if srcW == 0 {
		srcW = img.Width - cmd.SrcX
	}
	if srcH == 0 {
		srcH = img.Height - cmd.SrcY
	}

	cols, rows := int(cmd.Cols), int(cmd.Rows)
	if cols == 0 {
		cols = int((srcW + uint32(cellW) - 1) / uint32(cellW))
	}
	if rows == 0 {
		rows = int((srcH + uint32(cellH) - 1) / uint32(cellH))
	}

	placement := &Placement{
		ImageID: cmd.ImageID,
		Row:     cur.Row,
		Col:     cur.Col,
		Cols:    cols,
		Rows:    rows,
		SrcX:    cmd.SrcX,
		SrcY:    cmd.SrcY,
		SrcW:    srcW,
		SrcH:    srcH,
		ZIndex:  cmd.ZIndex,
		OffsetX: cmd.CellOffsetX,
		OffsetY: cmd.CellOffsetY,
	}
	m.store.Place(placement)

	res := Result{}
	if !cmd.DoNotMoveCursor {
		res.AdvanceCols = cols
	}
	if cmd.Quiet < 1 {
		res.Response = FormatResponse(cmd.ImageID, "", false)
	}
	return res
}

func (m *Manager) delete(cmd *Command, cur CursorContext) {
	switch cmd.Delete {
	case DeleteAll, DeleteAllWithData:
		m.store.Clear()
	case DeleteByID, DeleteByIDWithData:
		m.store.RemovePlacementsForImage(cmd.ImageID)
		if cmd.Delete == DeleteByIDWithData {
			m.store.DeleteImage(cmd.ImageID)
		}
	case DeleteAtCursor, DeleteAtCursorData:
		m.store.DeletePlacementsByPosition(cur.Row, cur.Col)
	case DeleteByCol, DeleteByColData:
		m.store.DeletePlacementsInColumn(cur.Col)
	case DeleteByRow, DeleteByRowData:
		m.store.DeletePlacementsInRow(cur.Row)
	case DeleteByZIndex, DeleteByZIndexData:
		m.store.DeletePlacementsByZIndex(cmd.ZIndex)
	}
}
