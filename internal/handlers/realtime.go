package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/middleware"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/realtime"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/response"
)

// RealtimeHandler upgrades HTTP connections into the session event channel.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Stream upgrades the request to a WebSocket. The connection starts outside
// any session; the client scopes itself by sending a join event.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	h.hub.Serve(userID, c.GetString(middleware.CtxUserNameKey), c.Writer, c.Request)
}
