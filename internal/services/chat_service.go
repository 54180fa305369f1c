package services

import (
	"errors"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/realtime"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/store"
	apperrors "github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
)

const (
	maxChatMessageLength   = 4000
	defaultChatHistoryCap  = 500
	defaultChatMessageType = "text"
)

// ChatMessageParams carries the payload required to post a chat message.
type ChatMessageParams struct {
	SessionID    string
	ConnectionID string
	AuthorID     string
	Author       string
	Content      string
	Type         string
}

// ChatService owns the session chat log and the shared collaborative surface.
// Both are ephemeral: chat history lives only for replay to late joiners, and
// the surface is a single last-writer-wins blob.
type ChatService struct {
	store      *store.SessionStore
	hub        *realtime.Hub
	timeNow    func() time.Time
	historyCap int
}

// NewChatService constructs a chat service.
func NewChatService(sessions *store.SessionStore, hub *realtime.Hub) (*ChatService, error) {
	if sessions == nil {
		return nil, errors.New("chat service: session store is required")
	}
	if hub == nil {
		return nil, errors.New("chat service: realtime hub is required")
	}
	return &ChatService{
		store:      sessions,
		hub:        hub,
		timeNow:    time.Now,
		historyCap: defaultChatHistoryCap,
	}, nil
}

// WithChatClock overrides the clock, primarily for testing.
func (s *ChatService) WithChatClock(now func() time.Time) *ChatService {
	if now != nil {
		s.timeNow = now
	}
	return s
}

// WithHistoryCap bounds the in-memory chat log kept for late-joiner replay.
func (s *ChatService) WithHistoryCap(limit int) *ChatService {
	if limit > 0 {
		s.historyCap = limit
	}
	return s
}

// PostMessage sanitises the message, appends it to the session log with a
// server-assigned id and timestamp, and fans it out to every participant,
// sender included, so all clients render the authoritative copy.
func (s *ChatService) PostMessage(params ChatMessageParams) (*models.ChatMessage, error) {
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, apperrors.NewBadRequest("message content is required")
	}
	if utf8.RuneCountInString(content) > maxChatMessageLength {
		return nil, apperrors.NewBadRequest("message content exceeds maximum length")
	}

	msgType := strings.TrimSpace(params.Type)
	if msgType == "" {
		msgType = defaultChatMessageType
	}

	message := models.ChatMessage{
		ID:        uuid.NewString(),
		AuthorID:  strings.TrimSpace(params.AuthorID),
		Author:    strings.TrimSpace(params.Author),
		Content:   html.EscapeString(content),
		Type:      msgType,
		CreatedAt: s.timeNow(),
	}

	_, err := s.store.Mutate(params.SessionID, func(session *models.Session) error {
		if session.Status == models.SessionStatusEnded {
			return apperrors.ErrSessionEnded
		}
		if !session.Settings.AllowChat {
			return apperrors.NewBadRequest("chat is disabled for this session")
		}
		session.Messages = append(session.Messages, message)
		if len(session.Messages) > s.historyCap {
			session.Messages = session.Messages[len(session.Messages)-s.historyCap:]
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	s.hub.Broadcast(params.SessionID, realtime.Message{
		Event: realtime.EventChatMessage,
		Data:  message,
	})
	return &message, nil
}

// UpdateSurface overwrites the shared-surface state (last-writer-wins, no
// merge) and fans the new state out to everyone except the sender, who
// already holds the state it just produced.
func (s *ChatService) UpdateSurface(sessionID, connectionID string, state any) error {
	_, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		if session.Status == models.SessionStatusEnded {
			return apperrors.ErrSessionEnded
		}
		if !session.Settings.AllowScreenShare {
			return apperrors.NewBadRequest("screen sharing is disabled for this session")
		}
		session.SharedState = state
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return err
	}

	s.hub.BroadcastExcept(sessionID, connectionID, realtime.Message{
		Event: realtime.EventSurfaceUpdate,
		Data:  map[string]any{"session_id": sessionID, "state": state},
	})
	return nil
}
