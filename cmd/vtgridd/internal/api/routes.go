// Package api registers the HTTP routes vtgridd exposes for creating
// sessions and inspecting grid state.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coachfortner/vtgrid"
	"github.com/coachfortner/vtgrid/cmd/vtgridd/internal/session"
)

// Handler groups the session manager dependencies the routes need.
type Handler struct {
	manager *session.Manager
}

// NewHandler creates a route handler bound to manager.
func NewHandler(manager *session.Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes wires session CRUD and snapshot endpoints onto group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/sessions", h.listSessions)
	group.POST("/sessions", h.createSession)
	group.GET("/sessions/:id", h.getSession)
	group.GET("/sessions/:id/snapshot", h.getSnapshot)
	group.POST("/sessions/:id/resize", h.resizeSession)
}

type createSessionRequest struct {
	Command []string `json:"command" binding:"required"`
	Rows    int      `json:"rows"`
	Cols    int      `json:"cols"`
	Term    string   `json:"term"`
}

func (h *Handler) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.manager.List()})
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.manager.Create(session.CreateOptions{
		Command: req.Command,
		Rows:    req.Rows,
		Cols:    req.Cols,
		Term:    req.Term,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sess.Info())
}

func (h *Handler) getSession(c *gin.Context) {
	sess, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sess.Info())
}

// getSnapshot returns the session's current grid as a styled snapshot,
// suitable for a client that just (re)connected and needs to paint the
// screen before streaming live deltas over the websocket.
func (h *Handler) getSnapshot(c *gin.Context) {
	sess, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	snap := sess.Terminal().Snapshot(vtgrid.SnapshotDetailStyled)
	c.JSON(http.StatusOK, snap)
}

type resizeRequest struct {
	Rows int `json:"rows" binding:"required"`
	Cols int `json:"cols" binding:"required"`
}

func (h *Handler) resizeSession(c *gin.Context) {
	sess, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sess.Resize(req.Rows, req.Cols); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess.Info())
}
