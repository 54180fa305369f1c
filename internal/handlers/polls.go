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

// PollHandler exposes the host-only poll control endpoints.
type PollHandler struct {
	polls *services.PollService
}

// NewPollHandler constructs a poll handler.
func NewPollHandler(polls *services.PollService) *PollHandler {
	return &PollHandler{polls: polls}
}

type createPollRequest struct {
	Question        string   `json:"question" validate:"required,max=500"`
	Options         []string `json:"options" validate:"required,min=2,max=10"`
	DurationSeconds int      `json:"duration_seconds" validate:"required,min=1,max=3600"`
}

// Create starts a time-boxed poll in the session. Host only.
func (h *PollHandler) Create(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionID"))
	if sessionID == "" {
		response.Error(c, apperrors.NewBadRequest("session id is required"))
		return
	}

	var payload createPollRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid poll payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	poll, err := h.polls.CreatePoll(
		sessionID,
		c.GetString(middleware.CtxUserIDKey),
		payload.Question,
		payload.Options,
		payload.DurationSeconds,
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, toPollDTO(poll))
}

// End closes a poll ahead of its timer and returns the final tally. Host only.
func (h *PollHandler) End(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionID"))
	pollID := strings.TrimSpace(c.Param("pollID"))
	if sessionID == "" || pollID == "" {
		response.Error(c, apperrors.NewBadRequest("session id and poll id are required"))
		return
	}

	result, err := h.polls.EndPoll(sessionID, pollID, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
