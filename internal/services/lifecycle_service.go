package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/realtime"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/store"
	apperrors "github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/logger"
)

// Join codes skip characters that read ambiguously on a projector.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	defaultCodeLength      = 6
	defaultMaxParticipants = 200
	codeGenerationAttempts = 10
)

// CreateSessionParams carries the payload for creating a session.
type CreateSessionParams struct {
	Title     string
	CourseRef string
	LessonRef string
	Settings  *models.SessionSettings
}

// EndSummary reports what a session amounted to once it ends.
type EndSummary struct {
	SessionID        string `json:"session_id"`
	DurationMs       int64  `json:"duration_ms"`
	ParticipantCount int    `json:"participant_count"`
}

// LifecycleOption customises the LifecycleService.
type LifecycleOption func(*LifecycleService)

// WithLifecycleClock overrides the clock, primarily for testing.
func WithLifecycleClock(now func() time.Time) LifecycleOption {
	return func(s *LifecycleService) {
		if now != nil {
			s.timeNow = now
		}
	}
}

// WithCodeLength overrides the generated join-code length.
func WithCodeLength(length int) LifecycleOption {
	return func(s *LifecycleService) {
		if length > 0 {
			s.codeLength = length
		}
	}
}

// WithDefaultMaxParticipants overrides the participant cap applied when a
// create call supplies no settings.
func WithDefaultMaxParticipants(limit int) LifecycleOption {
	return func(s *LifecycleService) {
		if limit > 0 {
			s.defaultMaxParticipants = limit
		}
	}
}

// LifecycleService validates and applies session state transitions and owns
// session creation, lookup, and breakout assignment.
type LifecycleService struct {
	store   *store.SessionStore
	hub     *realtime.Hub
	timeNow func() time.Time
	log     *zap.Logger

	codeLength             int
	defaultMaxParticipants int
}

// NewLifecycleService constructs a lifecycle service once its store and hub
// dependencies are supplied.
func NewLifecycleService(sessions *store.SessionStore, hub *realtime.Hub, opts ...LifecycleOption) (*LifecycleService, error) {
	if sessions == nil {
		return nil, errors.New("lifecycle service: session store is required")
	}
	if hub == nil {
		return nil, errors.New("lifecycle service: realtime hub is required")
	}

	svc := &LifecycleService{
		store:                  sessions,
		hub:                    hub,
		timeNow:                time.Now,
		log:                    logger.WithModule("lifecycle"),
		codeLength:             defaultCodeLength,
		defaultMaxParticipants: defaultMaxParticipants,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateSession registers a new session in waiting status owned by the caller.
func (s *LifecycleService) CreateSession(hostIdentity string, params CreateSessionParams) (*models.Session, error) {
	hostIdentity = strings.TrimSpace(hostIdentity)
	if hostIdentity == "" {
		return nil, apperrors.ErrUnauthorized
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("session title is required")
	}

	settings := models.SessionSettings{
		AllowChat:        true,
		AllowHandRaise:   true,
		AllowScreenShare: true,
		MaxParticipants:  s.defaultMaxParticipants,
	}
	if params.Settings != nil {
		settings = *params.Settings
		if settings.MaxParticipants <= 0 {
			settings.MaxParticipants = s.defaultMaxParticipants
		}
	}

	session := &models.Session{
		ID:           uuid.NewString(),
		Title:        title,
		CourseRef:    strings.TrimSpace(params.CourseRef),
		LessonRef:    strings.TrimSpace(params.LessonRef),
		HostIdentity: hostIdentity,
		Status:       models.SessionStatusWaiting,
		Settings:     settings,
		CreatedAt:    s.timeNow(),
	}

	// Codes are unique among live sessions only; retry on the rare collision.
	var lastErr error
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		code, err := generateJoinCode(s.codeLength)
		if err != nil {
			return nil, apperrors.Wrap(err, "unable to generate join code")
		}
		session.Code = code

		if lastErr = s.store.Create(session); lastErr == nil {
			s.log.Info("session created",
				zap.String("session_id", session.ID),
				zap.String("code", session.Code),
				zap.String("host", hostIdentity),
			)
			return session.Clone(), nil
		}
		if !errors.Is(lastErr, store.ErrDuplicateCode) {
			return nil, apperrors.Wrap(lastErr, "unable to register session")
		}
	}
	return nil, apperrors.Wrap(lastErr, "unable to allocate a unique join code")
}

// GetSession returns a snapshot of the session with the supplied id. Ended
// sessions remain readable by id until the retention cleaner removes them.
func (s *LifecycleService) GetSession(sessionID string) (*models.Session, error) {
	session, err := s.store.Get(sessionID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	return session, nil
}

// ResolveByCode locates a live session by join code and validates that the
// caller could join it. Ended sessions release their code immediately, so a
// stale code resolves to NotFound rather than SessionEnded.
func (s *LifecycleService) ResolveByCode(code string) (*models.Session, error) {
	session, err := s.store.FindByCode(code)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	if session.Status == models.SessionStatusEnded {
		return nil, apperrors.ErrSessionEnded
	}
	if len(session.Participants) >= session.Settings.MaxParticipants {
		return nil, apperrors.ErrSessionFull
	}
	return session, nil
}

// StartSession moves the session from waiting to active. Host only.
func (s *LifecycleService) StartSession(sessionID, callerIdentity string) (*models.Session, error) {
	snapshot, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		if session.HostIdentity != callerIdentity {
			return apperrors.ErrNotHost
		}
		if session.Status != models.SessionStatusWaiting {
			return apperrors.ErrInvalidTransition
		}
		now := s.timeNow()
		session.Status = models.SessionStatusActive
		session.StartedAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	s.hub.Broadcast(sessionID, realtime.Message{
		Event: realtime.EventSessionStarted,
		Data:  map[string]any{"session_id": sessionID, "started_at": snapshot.StartedAt},
	})
	return snapshot, nil
}

// EndSession moves the session from active to ended, releases its join code
// for reuse, and notifies every connected participant. Host only. The ended
// aggregate stays queryable by id for the retention window.
func (s *LifecycleService) EndSession(sessionID, callerIdentity string) (*EndSummary, error) {
	snapshot, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		if session.HostIdentity != callerIdentity {
			return apperrors.ErrNotHost
		}
		if session.Status != models.SessionStatusActive {
			return apperrors.ErrInvalidTransition
		}
		now := s.timeNow()
		session.Status = models.SessionStatusEnded
		session.EndedAt = &now
		// Any poll still open is finalized with the session; late timer
		// fires become no-ops against the inactive polls.
		for i := range session.Polls {
			session.Polls[i].IsActive = false
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	s.store.ReleaseCode(snapshot.Code)

	summary := &EndSummary{
		SessionID:        snapshot.ID,
		ParticipantCount: len(snapshot.Participants),
	}
	if snapshot.StartedAt != nil && snapshot.EndedAt != nil {
		summary.DurationMs = snapshot.EndedAt.Sub(*snapshot.StartedAt).Milliseconds()
	}

	s.hub.Broadcast(sessionID, realtime.Message{
		Event: realtime.EventSessionEnded,
		Data:  summary,
	})
	s.hub.CloseRoom(sessionID)

	s.log.Info("session ended",
		zap.String("session_id", sessionID),
		zap.Int64("duration_ms", summary.DurationMs),
		zap.Int("participants", summary.ParticipantCount),
	)
	return summary, nil
}

// CreateBreakoutRooms partitions the current roster into roomCount sub-rooms
// and replaces the session's breakout assignment wholesale. Host only.
func (s *LifecycleService) CreateBreakoutRooms(sessionID, callerIdentity string, roomCount int, policy string) ([]models.BreakoutRoom, error) {
	var rooms []models.BreakoutRoom
	_, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		if session.HostIdentity != callerIdentity {
			return apperrors.ErrNotHost
		}
		if session.Status == models.SessionStatusEnded {
			return apperrors.ErrSessionEnded
		}

		assigned, err := AssignBreakouts(session.Participants, roomCount, policy, s.timeNow().UnixNano())
		if err != nil {
			return err
		}
		session.Breakouts = assigned
		rooms = assigned
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	s.hub.Broadcast(sessionID, realtime.Message{
		Event: realtime.EventBreakoutAssigned,
		Data:  map[string]any{"session_id": sessionID, "rooms": rooms},
	})
	return rooms, nil
}

func generateJoinCode(length int) (string, error) {
	if length <= 0 {
		length = defaultCodeLength
	}

	code := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
