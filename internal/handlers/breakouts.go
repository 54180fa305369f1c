package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/middleware"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/services"
	apperrors "github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/response"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/validator"
)

// BreakoutHandler exposes the host-only breakout assignment endpoint.
type BreakoutHandler struct {
	lifecycle *services.LifecycleService
}

// NewBreakoutHandler constructs a breakout handler.
func NewBreakoutHandler(lifecycle *services.LifecycleService) *BreakoutHandler {
	return &BreakoutHandler{lifecycle: lifecycle}
}

type createBreakoutsRequest struct {
	RoomCount int    `json:"room_count" validate:"required,min=1,max=50"`
	Policy    string `json:"policy" validate:"omitempty,oneof=random"`
}

// Create partitions the current roster into breakout rooms, replacing any
// previous assignment. Host only.
func (h *BreakoutHandler) Create(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionID"))
	if sessionID == "" {
		response.Error(c, apperrors.NewBadRequest("session id is required"))
		return
	}

	var payload createBreakoutsRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid breakout payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	policy := payload.Policy
	if policy == "" {
		policy = services.BreakoutPolicyRandom
	}

	rooms, err := h.lifecycle.CreateBreakoutRooms(
		sessionID,
		c.GetString(middleware.CtxUserIDKey),
		payload.RoomCount,
		policy,
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, rooms)
}
