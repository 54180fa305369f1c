package services

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/realtime"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/store"
	apperrors "github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/logger"
)

// PresenceService maintains the participant roster per session and emits
// presence notifications to connected members.
type PresenceService struct {
	store   *store.SessionStore
	hub     *realtime.Hub
	timeNow func() time.Time
	log     *zap.Logger
}

// NewPresenceService constructs a presence tracker.
func NewPresenceService(sessions *store.SessionStore, hub *realtime.Hub) (*PresenceService, error) {
	if sessions == nil {
		return nil, errors.New("presence service: session store is required")
	}
	if hub == nil {
		return nil, errors.New("presence service: realtime hub is required")
	}
	return &PresenceService{
		store:   sessions,
		hub:     hub,
		timeNow: time.Now,
		log:     logger.WithModule("presence"),
	}, nil
}

// WithPresenceClock overrides the clock, primarily for testing.
func (s *PresenceService) WithPresenceClock(now func() time.Time) *PresenceService {
	if now != nil {
		s.timeNow = now
	}
	return s
}

// Join appends a participant to the session roster and broadcasts the full
// updated roster to every connection, the new arrival included, so all
// clients converge on one canonical list.
func (s *PresenceService) Join(sessionID, connectionID, identity, displayName string) (*models.Session, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, apperrors.ErrUnauthorized
	}

	snapshot, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		if session.Status == models.SessionStatusEnded {
			return apperrors.ErrSessionEnded
		}
		if len(session.Participants) >= session.Settings.MaxParticipants {
			return apperrors.ErrSessionFull
		}
		if session.FindParticipant(connectionID) != nil {
			// The transport guarantees one join per connection; treat a
			// repeat as idempotent.
			return nil
		}
		session.Participants = append(session.Participants, models.Participant{
			ConnectionID: connectionID,
			Identity:     identity,
			DisplayName:  strings.TrimSpace(displayName),
			JoinedAt:     s.timeNow(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	s.hub.Broadcast(sessionID, realtime.Message{
		Event: realtime.EventParticipants,
		Data:  map[string]any{"session_id": sessionID, "participants": snapshot.Participants},
	})

	s.log.Debug("participant joined",
		zap.String("session_id", sessionID),
		zap.String("connection_id", connectionID),
		zap.String("identity", identity),
	)
	return snapshot, nil
}

// Leave removes the participant identified by connection id. Removal of an
// unknown connection is a no-op so disconnect races stay quiet.
func (s *PresenceService) Leave(sessionID, connectionID string) {
	var removed *models.Participant
	_, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		for i := range session.Participants {
			if session.Participants[i].ConnectionID == connectionID {
				participant := session.Participants[i]
				removed = &participant
				session.Participants = append(session.Participants[:i], session.Participants[i+1:]...)
				break
			}
		}
		return nil
	})
	if err != nil || removed == nil {
		return
	}

	// The roster was already consistent, so the removal notice alone suffices.
	s.hub.Broadcast(sessionID, realtime.Message{
		Event: realtime.EventParticipantLeft,
		Data: map[string]any{
			"session_id":    sessionID,
			"connection_id": removed.ConnectionID,
			"identity":      removed.Identity,
		},
	})
}

// ToggleHand flips the hand-raised flag for the participant and notifies the
// other members of the session.
func (s *PresenceService) ToggleHand(sessionID, connectionID string, raised bool) error {
	var identity string
	_, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		if session.Status == models.SessionStatusEnded {
			return apperrors.ErrSessionEnded
		}
		if !session.Settings.AllowHandRaise {
			return apperrors.NewBadRequest("hand raising is disabled for this session")
		}
		participant := session.FindParticipant(connectionID)
		if participant == nil {
			return apperrors.ErrNotFound
		}
		participant.HandRaised = raised
		identity = participant.Identity
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return err
	}

	s.hub.BroadcastExcept(sessionID, connectionID, realtime.Message{
		Event: realtime.EventHandRaise,
		Data: map[string]any{
			"session_id":    sessionID,
			"connection_id": connectionID,
			"identity":      identity,
			"raised":        raised,
		},
	})
	return nil
}
