// Package session spawns PTY-backed shell processes and feeds their output
// into a vtgrid.Terminal so connected clients see a live character grid
// instead of a raw byte stream.
package session

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/coachfortner/vtgrid"
	"github.com/coachfortner/vtgrid/cmd/vtgridd/internal/config"
)

// Info describes a session for API/status responses.
type Info struct {
	ID        string    `json:"id"`
	Command   []string  `json:"command"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	StartedAt time.Time `json:"startedAt"`
	PID       int       `json:"pid,omitempty"`
	Exited    bool      `json:"exited"`
	ExitCode  int       `json:"exitCode,omitempty"`
}

// Session is one PTY-backed shell process and the grid tracking its output.
type Session struct {
	info Info

	term *vtgrid.Terminal
	pty  *os.File
	cmd  *exec.Cmd

	mu        sync.RWMutex
	listeners map[chan []byte]struct{}

	lastActivity time.Time
}

// Manager tracks all live sessions.
type Manager struct {
	cfg *config.Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager bound to cfg's terminal defaults.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg, sessions: make(map[string]*Session)}
}

// CreateOptions customizes a new session. Zero values fall back to the
// manager's configured defaults.
type CreateOptions struct {
	Command []string
	Rows    int
	Cols    int
	Term    string
}

// Create spawns command under a new PTY and starts copying its output into a
// fresh Terminal grid.
func (m *Manager) Create(opts CreateOptions) (*Session, error) {
	if len(opts.Command) == 0 {
		return nil, fmt.Errorf("command cannot be empty")
	}
	if opts.Rows == 0 {
		opts.Rows = m.cfg.DefaultRows
	}
	if opts.Cols == 0 {
		opts.Cols = m.cfg.DefaultCols
	}
	if opts.Term == "" {
		opts.Term = m.cfg.DefaultTerm
	}

	cmd := exec.Command(opts.Command[0], opts.Command[1:]...)
	cmd.Env = append(os.Environ(), "TERM="+opts.Term)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(opts.Rows),
		Cols: uint16(opts.Cols),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start pty: %v", err)
	}

	scrollback := vtgrid.NewMemoryScrollbackWithBudget(m.cfg.ScrollbackLines, m.cfg.ScrollbackBytes)
	term := vtgrid.New(
		vtgrid.WithSize(opts.Rows, opts.Cols),
		vtgrid.WithScrollback(scrollback),
		vtgrid.WithResponse(ptmx),
	)

	sess := &Session{
		info: Info{
			ID:        uuid.New().String(),
			Command:   opts.Command,
			Rows:      opts.Rows,
			Cols:      opts.Cols,
			StartedAt: time.Now(),
		},
		term:         term,
		pty:          ptmx,
		cmd:          cmd,
		listeners:    make(map[chan []byte]struct{}),
		lastActivity: time.Now(),
	}
	if cmd.Process != nil {
		sess.info.PID = cmd.Process.Pid
	}

	m.mu.Lock()
	m.sessions[sess.info.ID] = sess
	m.mu.Unlock()

	go m.pumpOutput(sess)
	go m.awaitExit(sess)

	return sess, nil
}

// pumpOutput copies PTY bytes into the terminal grid and fans them out to
// any attached websocket listeners.
func (m *Manager) pumpOutput(sess *Session) {
	buf := make([]byte, 4096)
	for {
		n, err := sess.pty.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			sess.term.Write(chunk)

			sess.mu.Lock()
			sess.lastActivity = time.Now()
			for ch := range sess.listeners {
				select {
				case ch <- chunk:
				default:
				}
			}
			sess.mu.Unlock()
		}
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "vtgridd: pty read error for %s: %v\n", sess.info.ID, err)
			}
			return
		}
	}
}

func (m *Manager) awaitExit(sess *Session) {
	err := sess.cmd.Wait()
	code := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
	}
	sess.mu.Lock()
	sess.info.Exited = true
	sess.info.ExitCode = code
	sess.mu.Unlock()
}

// Get returns the session with the given ID, if any.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// List returns info for every tracked session.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess.Info())
	}
	return out
}

// CleanupIdle kills and removes sessions that exited or went quiet past the
// configured idle timeout.
func (m *Manager) CleanupIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sess := range m.sessions {
		sess.mu.RLock()
		idle := time.Since(sess.lastActivity) > m.cfg.SessionIdleTimeout
		exited := sess.info.Exited
		sess.mu.RUnlock()

		if exited || idle {
			sess.pty.Close()
			delete(m.sessions, id)
		}
	}
}

// Info returns a snapshot of the session's status.
func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Terminal returns the grid backing this session.
func (s *Session) Terminal() *vtgrid.Terminal {
	return s.term
}

// Write sends client input (keystrokes, pastes) to the PTY.
func (s *Session) Write(data []byte) (int, error) {
	return s.pty.Write(data)
}

// Resize changes both the PTY window size and the grid dimensions.
func (s *Session) Resize(rows, cols int) error {
	if err := pty.Setsize(s.pty, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return err
	}
	s.term.Resize(rows, cols)

	s.mu.Lock()
	s.info.Rows, s.info.Cols = rows, cols
	s.mu.Unlock()
	return nil
}

// Subscribe registers a channel to receive raw PTY output chunks as they
// arrive, for streaming to a websocket client.
func (s *Session) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	s.mu.Lock()
	s.listeners[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes a previously subscribed channel.
func (s *Session) Unsubscribe(ch chan []byte) {
	s.mu.Lock()
	delete(s.listeners, ch)
	s.mu.Unlock()
	close(ch)
}
