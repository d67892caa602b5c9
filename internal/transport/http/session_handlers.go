package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/trinetra/chatsim-server/internal/core"
)

// SessionHandlers exposes the live session registry.
type SessionHandlers struct {
	hub *core.Hub
}

// NewSessionHandlers creates session handlers.
func NewSessionHandlers(hub *core.Hub) *SessionHandlers {
	return &SessionHandlers{hub: hub}
}

// SessionInfo describes one live session.
type SessionInfo struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	LocalName string `json:"local_name"`
	OpenedAt  int64  `json:"opened_at"`
}

// SessionListResponse is the body of GET /api/sessions.
type SessionListResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// List returns the live sessions.
// GET /api/sessions
func (h *SessionHandlers) List(c *gin.Context) {
	infos := lo.Map(h.hub.List(), func(s core.SessionInfo, _ int) SessionInfo {
		return SessionInfo{
			ID:        s.ID,
			Kind:      string(s.Kind),
			LocalName: s.LocalName,
			OpenedAt:  s.OpenedAt.UnixMilli(),
		}
	})
	c.JSON(http.StatusOK, SessionListResponse{Sessions: infos})
}
