// Package vtgrid provides a headless VT220-compatible terminal emulator.
//
// This package emulates a terminal without any display, making it ideal for:
//   - Testing terminal applications without a GUI
//   - Building terminal multiplexers and recorders
//   - Creating terminal-based web applications
//   - Automated testing of CLI tools
//   - Screen scraping and automation
//
// # Quick Start
//
// Create a terminal and write ANSI sequences to it:
//
//	term := vtgrid.New()
//	term.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	fmt.Println(term.String()) // "Hello World!"
//
// # Architecture
//
// The package is organized around these core types:
//
//   - [Terminal]: The main emulator that processes ANSI sequences
//   - [Buffer]: A 2D grid of cells with scrollback support
//   - [Cell]: A single grapheme cluster with colors and attributes
//   - [Cursor]: Tracks position and rendering style
//
// Escape sequence parsing itself lives in the sibling ansicode package
// ([Decoder] and its [ansicode.Handler] interface); Terminal implements that
// interface to update the grid.
//
// # Terminal
//
// Terminal is the main entry point. It implements [io.Writer] so you can write
// raw bytes containing ANSI escape sequences:
//
//	term := vtgrid.New(
//	    vtgrid.WithSize(24, 80),           // 24 rows, 80 columns
//	    vtgrid.WithScrollback(storage),    // Enable scrollback
//	    vtgrid.WithResponse(ptyWriter),    // Handle terminal responses (an io.Writer)
//	)
//
//	// Process output from a command
//	cmd := exec.Command("ls", "-la", "--color")
//	cmd.Stdout = term
//	cmd.Run()
//
//	// Read the result
//	for row := 0; row < term.Rows(); row++ {
//	    fmt.Println(term.LineContent(row))
//	}
//
// # Dual Buffers
//
// Terminal maintains two buffers:
//
//   - Primary buffer: Normal mode with optional scrollback storage
//   - Alternate buffer: Used by full-screen apps (vim, less, htop), no scrollback
//
// Applications switch buffers via ANSI sequences (CSI ?47h/?1047h/?1049h). The
// three modes differ in whether they clear the alternate screen on entry and
// whether they save/restore the cursor; check which buffer is active:
//
//	if term.IsAlternateScreen() {
//	    // Full-screen app is running
//	}
//
// # Cells and Grapheme Clusters
//
// Each cell stores a base rune plus any zero-width combining marks or joiners
// that attach to it (accents, ZWJ emoji sequences), along with styling
// information:
//
//	cell := term.Cell(row, col)
//	if cell != nil {
//	    fmt.Printf("Grapheme: %s\n", cell.Grapheme())
//	    fmt.Printf("Bold: %v\n", cell.HasFlag(vtgrid.CellFlagBold))
//	    fmt.Printf("FG: %v\n", cell.Fg)
//	    fmt.Printf("BG: %v\n", cell.Bg)
//	}
//
// Cell flags include: Bold, Dim, Italic, Underline, Blink, Reverse, Hidden, Strike.
//
// # Colors
//
// Colors are stored using Go's [image/color] interface. The package supports:
//
//   - Named colors (indices 0-15 for standard ANSI colors, plus default fg/bg)
//   - 256-color palette (indices 0-255)
//   - True color (24-bit RGB via [color.RGBA])
//
// Use [ResolveDefaultColor] to convert any color to RGBA:
//
//	rgba := vtgrid.ResolveDefaultColor(cell.Fg, true)
//
// # Scrollback
//
// Lines scrolled off the top of the primary buffer can be stored for later
// access. Implement [ScrollbackProvider] or use the built-in memory storage,
// which is capped by both a line count and a total serialized-byte budget:
//
//	// In-memory scrollback, 10000 lines and the default 50MB byte budget
//	storage := vtgrid.NewMemoryScrollback(10000)
//	term := vtgrid.New(vtgrid.WithScrollback(storage))
//
//	// Access scrollback
//	for i := 0; i < term.ScrollbackLen(); i++ {
//	    line := term.ScrollbackLine(i) // []Cell
//	}
//
// # Responses
//
// [ResponseProvider] is an alias for [io.Writer]; anything written to it is a
// reply the terminal wants sent back upstream (cursor position reports,
// device attributes, clipboard reads, and similar query responses):
//
//	term := vtgrid.New(vtgrid.WithResponse(os.Stdout))
//
// # Providers
//
// Providers handle terminal events and queries. All are optional with no-op defaults:
//
//   - [BellProvider]: Handles bell/beep events
//   - [TitleProvider]: Handles window title changes (OSC 0/1/2)
//   - [ClipboardProvider]: Handles clipboard operations (OSC 52)
//   - [ScrollbackProvider]: Stores lines scrolled off screen
//   - [RecordingProvider]: Captures raw input for replay
//   - [ShellIntegrationProvider]: Handles semantic prompt marks (OSC 133)
//   - [NotificationProvider]: Handles desktop notifications (OSC 9/777)
//   - [ErrorProvider]: Receives parser/handler error diagnostics
//   - [GraphicsSink]: Opt-in handler for Kitty-style APC graphics payloads
//
// Example with providers:
//
//	term := vtgrid.New(
//	    vtgrid.WithResponse(os.Stdout),
//	    vtgrid.WithBell(&MyBellHandler{}),
//	    vtgrid.WithTitle(&MyTitleHandler{}),
//	)
//
// # Middleware
//
// Middleware intercepts ANSI handler calls for custom behavior:
//
//	mw := &vtgrid.Middleware{
//	    Input: func(r rune, next func(rune)) {
//	        log.Printf("Input: %c", r)
//	        next(r) // Call default handler
//	    },
//	    Bell: func(next func()) {
//	        log.Println("Bell!")
//	        // Don't call next() to suppress the bell
//	    },
//	}
//	term := vtgrid.New(vtgrid.WithMiddleware(mw))
//
// # Terminal Modes
//
// Various terminal behaviors are controlled by mode flags:
//
//	term.HasMode(vtgrid.ModeLineWrap)       // Auto line wrap enabled?
//	term.HasMode(vtgrid.ModeShowCursor)     // Cursor visible?
//	term.HasMode(vtgrid.ModeBracketedPaste) // Bracketed paste enabled?
//
// See [TerminalMode] for all available modes.
//
// # Dirty Tracking
//
// Track which cells changed for efficient rendering:
//
//	if term.HasDirty() {
//	    for _, pos := range term.DirtyCells() {
//	        // Redraw cell at pos.Row, pos.Col
//	    }
//	    term.ClearDirty()
//	}
//
// # Selection
//
// Manage text selections for copy/paste. SetSelection selects exactly the
// given cell range; SetSelectionGranular additionally snaps the endpoints
// outward to the enclosing word or line:
//
//	term.SetSelection(
//	    vtgrid.Position{Row: 0, Col: 0},
//	    vtgrid.Position{Row: 2, Col: 10},
//	)
//	text := term.GetSelectedText()
//	term.ClearSelection()
//
//	// Double-click style word selection
//	term.SetSelectionGranular(pos, pos, vtgrid.SelectionWord)
//
// # Bidirectional Text
//
// LineBidiRuns reports the logical-order runs of left-to-right and
// right-to-left text on a row, classified from the Unicode bidi class table.
// The grid itself never reorders cells for display; a renderer uses the
// runs to do its own visual reordering:
//
//	for _, run := range term.LineBidiRuns(row) {
//	    fmt.Printf("cols [%d,%d) direction=%v\n", run.Start, run.End, run.Direction)
//	}
//
// # Search
//
// Find text in the visible screen or scrollback:
//
//	matches := term.Search("error")
//	for _, pos := range matches {
//	    fmt.Printf("Found at row %d, col %d\n", pos.Row, pos.Col)
//	}
//
//	// Search scrollback (returns negative row numbers)
//	scrollbackMatches := term.SearchScrollback("error")
//
// # Snapshots
//
// Capture the terminal state for serialization or rendering:
//
//	// Text only (smallest)
//	snap := term.Snapshot(vtgrid.SnapshotDetailText)
//
//	// With style segments (good for HTML rendering)
//	snap := term.Snapshot(vtgrid.SnapshotDetailStyled)
//
//	// Full cell data (complete state)
//	snap := term.Snapshot(vtgrid.SnapshotDetailFull)
//
//	// Convert to JSON
//	data, _ := json.Marshal(snap)
//
// Snapshots include detailed attribute information:
//   - Underline styles: "single", "double", "curly", "dotted", "dashed"
//   - Blink types: "slow", "fast"
//   - Underline color (separate from foreground)
//
// # Graphics
//
// The core grid never stores pixel data. Kitty graphics payloads (APC
// sequences starting with 'G') are routed to an optional [GraphicsSink]
// attached via [WithGraphics]; with no sink attached, those sequences are
// parsed but otherwise ignored. Sixel (DCS) payloads are parsed and
// discarded; they never reach the sink.
//
// # Shell Integration
//
// Track shell prompts and command output (OSC 133) via [ShellIntegrationProvider]:
//
//	term := vtgrid.New(
//	    vtgrid.WithShellIntegration(&MyShellIntegration{}),
//	)
//
//	// Navigate between prompts (uses absolute rows, including scrollback)
//	currentAbsRow := term.ViewportRowToAbsolute(0) // Convert viewport row to absolute
//	nextAbsRow := term.NextPromptRow(currentAbsRow, -1)
//	prevAbsRow := term.PrevPromptRow(currentAbsRow, -1)
//
//	// Convert absolute row back to viewport for display
//	viewportRow := term.AbsoluteRowToViewport(nextAbsRow) // -1 if in scrollback
//
//	// Get last command output
//	output := term.GetLastCommandOutput()
//
// # Auto-Resize Mode
//
// In auto-resize mode, the buffer grows instead of scrolling:
//
//	term := vtgrid.New(vtgrid.WithAutoResize())
//
//	// Capture complete output without truncation
//	cmd.Stdout = term
//	cmd.Run()
//
//	// Buffer has grown to fit all output
//	fmt.Printf("Total rows: %d\n", term.Rows())
//
// # Thread Safety
//
// All Terminal methods are safe for concurrent use. The terminal uses internal
// locking to protect state. However, if you need to perform multiple operations
// atomically, you should use your own synchronization.
//
// # Supported ANSI Sequences
//
// The terminal supports a comprehensive set of ANSI escape sequences including:
//
//   - Cursor movement (CUU, CUD, CUF, CUB, CUP, HVP, etc.)
//   - Cursor save/restore (DECSC, DECRC)
//   - Erase commands (ED, EL, ECH)
//   - Insert/delete (ICH, DCH, IL, DL)
//   - Scrolling (SU, SD, DECSTBM)
//   - Character attributes (SGR) with full color support
//   - Terminal modes (DECSET, DECRST), including 47/1047/1049 alt-screen variants
//   - Device status and device attribute reports (DSR, DA)
//   - Bracketed paste mode
//   - Window title (OSC 0/1/2)
//   - Clipboard (OSC 52)
//   - Hyperlinks (OSC 8)
//   - Shell integration (OSC 133)
//   - Kitty graphics (parsed; rendering is left to a GraphicsSink)
//   - Sixel (parsed and discarded)
//
// For the complete list of supported sequences, see the ansicode subpackage.
package vtgrid
