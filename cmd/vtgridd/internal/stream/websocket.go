// Package stream exposes live session output over WebSocket connections.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/coachfortner/vtgrid/cmd/vtgridd/internal/config"
	"github.com/coachfortner/vtgrid/cmd/vtgridd/internal/session"
)

// Server upgrades HTTP connections to WebSockets and streams a session's PTY
// output to the client, relaying client messages back as PTY input.
type Server struct {
	cfg      *config.Config
	manager  *session.Manager
	upgrader websocket.Upgrader
}

// New creates a WebSocket stream server bound to manager.
func New(cfg *config.Config, manager *session.Manager) *Server {
	return &Server{
		cfg:     cfg,
		manager: manager,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// clientMessage is the envelope a browser client sends for input and resize
// requests; output chunks flow the other direction as raw binary frames.
type clientMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Rows int    `json:"rows,omitempty"`
	Cols int    `json:"cols,omitempty"`
}

// HandleSession upgrades the connection and pumps output for :id until the
// client connection ends (read error, missed pong, or failed write). The
// session exiting does not by itself end the stream: the subscription
// channel is only closed by Unsubscribe.
func (s *Server) HandleSession(c *gin.Context) {
	id := c.Param("id")
	sess, ok := s.manager.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("vtgridd: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	outbound := sess.Subscribe()
	defer sess.Unsubscribe(outbound)

	done := make(chan struct{})
	go s.pingLoop(conn, done)
	go s.readLoop(conn, sess, done)

	for {
		select {
		case chunk, ok := <-outbound:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) pingLoop(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(s.cfg.WebSocketPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				close(done)
				return
			}
		case <-done:
			return
		}
	}
}

// readLoop relays client input and resize requests to the session until the
// connection closes.
func (s *Server) readLoop(conn *websocket.Conn, sess *session.Session, done chan struct{}) {
	defer close(done)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "input":
			sess.Write([]byte(msg.Data))
		case "resize":
			if msg.Rows > 0 && msg.Cols > 0 {
				sess.Resize(msg.Rows, msg.Cols)
			}
		}
	}
}
