package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/middleware"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/services"
	apperrors "github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/response"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/validator"
)

// SessionHandler exposes the control-plane session lifecycle endpoints.
type SessionHandler struct {
	lifecycle *services.LifecycleService
	polls     *services.PollService
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(lifecycle *services.LifecycleService, polls *services.PollService) *SessionHandler {
	return &SessionHandler{lifecycle: lifecycle, polls: polls}
}

type sessionSettingsPayload struct {
	AllowChat        *bool `json:"allow_chat"`
	AllowHandRaise   *bool `json:"allow_hand_raise"`
	AllowScreenShare *bool `json:"allow_screen_share"`
	MaxParticipants  int   `json:"max_participants" validate:"omitempty,min=1,max=1000"`
}

type createSessionRequest struct {
	Title     string                  `json:"title" validate:"required,max=200"`
	CourseRef string                  `json:"course_ref" validate:"omitempty,max=100"`
	LessonRef string                  `json:"lesson_ref" validate:"omitempty,max=100"`
	Settings  *sessionSettingsPayload `json:"settings"`
}

type joinByCodeRequest struct {
	Code string `json:"code" validate:"required,min=4,max=12,joincode"`
}

// Create registers a new waiting session owned by the caller.
func (h *SessionHandler) Create(c *gin.Context) {
	var payload createSessionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid session payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	params := services.CreateSessionParams{
		Title:     payload.Title,
		CourseRef: payload.CourseRef,
		LessonRef: payload.LessonRef,
		Settings:  resolveSettings(payload.Settings),
	}

	session, err := h.lifecycle.CreateSession(c.GetString(middleware.CtxUserIDKey), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"session_id": session.ID,
		"code":       session.Code,
	})
}

// Get returns a full snapshot of the session, poll tallies included for
// closed polls only.
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionID"))
	if sessionID == "" {
		response.Error(c, apperrors.NewBadRequest("session id is required"))
		return
	}

	session, err := h.lifecycle.GetSession(sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, toSessionDTO(session))
}

// JoinByCode resolves a live session by its join code and validates the
// caller could join it. The participant itself is appended when the client's
// event-channel connection sends its join event.
func (h *SessionHandler) JoinByCode(c *gin.Context) {
	var payload joinByCodeRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid join payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	session, err := h.lifecycle.ResolveByCode(payload.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session_id":    session.ID,
		"title":         session.Title,
		"host_identity": session.HostIdentity,
	})
}

// Start transitions the session from waiting to active. Host only.
func (h *SessionHandler) Start(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionID"))
	if sessionID == "" {
		response.Error(c, apperrors.NewBadRequest("session id is required"))
		return
	}

	session, err := h.lifecycle.StartSession(sessionID, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session_id": session.ID,
		"status":     session.Status,
		"started_at": session.StartedAt,
	})
}

// End transitions the session from active to ended and reports the summary.
// Host only.
func (h *SessionHandler) End(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionID"))
	if sessionID == "" {
		response.Error(c, apperrors.NewBadRequest("session id is required"))
		return
	}

	summary, err := h.lifecycle.EndSession(sessionID, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	// Open polls were finalized with the session; their timers must not
	// outlive it.
	h.polls.CancelSessionTimers(sessionID)

	response.Success(c, http.StatusOK, summary)
}

func resolveSettings(payload *sessionSettingsPayload) *models.SessionSettings {
	if payload == nil {
		return nil
	}

	settings := models.SessionSettings{
		AllowChat:        true,
		AllowHandRaise:   true,
		AllowScreenShare: true,
		MaxParticipants:  payload.MaxParticipants,
	}
	if payload.AllowChat != nil {
		settings.AllowChat = *payload.AllowChat
	}
	if payload.AllowHandRaise != nil {
		settings.AllowHandRaise = *payload.AllowHandRaise
	}
	if payload.AllowScreenShare != nil {
		settings.AllowScreenShare = *payload.AllowScreenShare
	}
	return &settings
}
