package handlers

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/realtime"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/services"
	apperrors "github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/logger"
)

// EventDispatcher routes inbound event-channel messages to the session
// services. It runs on each connection's read goroutine, so events from one
// connection are handled strictly in receipt order; events from different
// connections may interleave.
type EventDispatcher struct {
	lifecycle *services.LifecycleService
	presence  *services.PresenceService
	chat      *services.ChatService
	polls     *services.PollService
	log       *zap.Logger
}

// NewEventDispatcher constructs the dispatcher backing the realtime hub.
func NewEventDispatcher(
	lifecycle *services.LifecycleService,
	presence *services.PresenceService,
	chat *services.ChatService,
	polls *services.PollService,
) *EventDispatcher {
	return &EventDispatcher{
		lifecycle: lifecycle,
		presence:  presence,
		chat:      chat,
		polls:     polls,
		log:       logger.WithModule("events"),
	}
}

type joinEventPayload struct {
	SessionID string `json:"session_id"`
}

type chatEventPayload struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
	Type      string `json:"type"`
}

type handRaiseEventPayload struct {
	SessionID string `json:"session_id"`
	Raised    bool   `json:"raised"`
}

type surfaceEventPayload struct {
	SessionID string          `json:"session_id"`
	State     json.RawMessage `json:"state"`
}

type voteEventPayload struct {
	SessionID   string `json:"session_id"`
	PollID      string `json:"poll_id"`
	OptionIndex int    `json:"option_index"`
}

// HandleEvent validates and applies one inbound client event. Failures are
// reported to the originating connection only.
func (d *EventDispatcher) HandleEvent(client *realtime.Client, event string, data json.RawMessage) {
	switch event {
	case realtime.EventJoin:
		d.handleJoin(client, data)
	case realtime.EventLeave:
		d.handleLeave(client)
	case realtime.EventChatMessage:
		d.handleChat(client, data)
	case realtime.EventHandRaise:
		d.handleHandRaise(client, data)
	case realtime.EventSurfaceUpdate:
		d.handleSurface(client, data)
	case realtime.EventVote:
		d.handleVote(client, data)
	default:
		client.SendError(apperrors.ErrBadRequest.Code, "unsupported event "+event)
	}
}

// HandleDisconnect treats a dropped connection as an implicit leave.
func (d *EventDispatcher) HandleDisconnect(client *realtime.Client) {
	if sessionID := client.SessionID(); sessionID != "" {
		d.presence.Leave(sessionID, client.ConnectionID())
	}
}

func (d *EventDispatcher) handleJoin(client *realtime.Client, data json.RawMessage) {
	var payload joinEventPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.SessionID == "" {
		client.SendError(apperrors.ErrBadRequest.Code, "join requires a session_id")
		return
	}

	// Register with the room first so the arrival receives its own roster
	// broadcast; back out on rejection.
	client.Hub().Join(client, payload.SessionID)

	snapshot, err := d.presence.Join(payload.SessionID, client.ConnectionID(), client.Identity(), client.DisplayName())
	if err != nil {
		client.Hub().Leave(client)
		d.sendError(client, err)
		return
	}

	// Late joiners get the roster and chat history replayed directly; the
	// shared surface and poll state come from an explicit snapshot fetch.
	client.Send(realtime.Message{
		Event: realtime.EventWelcome,
		Data: map[string]any{
			"session_id":    snapshot.ID,
			"title":         snapshot.Title,
			"status":        snapshot.Status,
			"settings":      snapshot.Settings,
			"host_identity": snapshot.HostIdentity,
			"connection_id": client.ConnectionID(),
			"participants":  snapshot.Participants,
			"messages":      snapshot.Messages,
		},
	})
}

func (d *EventDispatcher) handleLeave(client *realtime.Client) {
	sessionID := client.SessionID()
	if sessionID == "" {
		return
	}
	d.presence.Leave(sessionID, client.ConnectionID())
	client.Hub().Leave(client)
}

func (d *EventDispatcher) handleChat(client *realtime.Client, data json.RawMessage) {
	var payload chatEventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.SendError(apperrors.ErrBadRequest.Code, "invalid chat payload")
		return
	}
	if !d.requireJoined(client, payload.SessionID) {
		return
	}

	_, err := d.chat.PostMessage(services.ChatMessageParams{
		SessionID:    payload.SessionID,
		ConnectionID: client.ConnectionID(),
		AuthorID:     client.Identity(),
		Author:       client.DisplayName(),
		Content:      payload.Content,
		Type:         payload.Type,
	})
	if err != nil {
		d.sendError(client, err)
	}
}

func (d *EventDispatcher) handleHandRaise(client *realtime.Client, data json.RawMessage) {
	var payload handRaiseEventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.SendError(apperrors.ErrBadRequest.Code, "invalid hand-raise payload")
		return
	}
	if !d.requireJoined(client, payload.SessionID) {
		return
	}

	if err := d.presence.ToggleHand(payload.SessionID, client.ConnectionID(), payload.Raised); err != nil {
		d.sendError(client, err)
	}
}

func (d *EventDispatcher) handleSurface(client *realtime.Client, data json.RawMessage) {
	var payload surfaceEventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.SendError(apperrors.ErrBadRequest.Code, "invalid surface payload")
		return
	}
	if !d.requireJoined(client, payload.SessionID) {
		return
	}

	if err := d.chat.UpdateSurface(payload.SessionID, client.ConnectionID(), payload.State); err != nil {
		d.sendError(client, err)
	}
}

func (d *EventDispatcher) handleVote(client *realtime.Client, data json.RawMessage) {
	var payload voteEventPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.PollID == "" {
		client.SendError(apperrors.ErrBadRequest.Code, "invalid vote payload")
		return
	}
	if !d.requireJoined(client, payload.SessionID) {
		return
	}

	if err := d.polls.Vote(payload.SessionID, payload.PollID, client.ConnectionID(), payload.OptionIndex); err != nil {
		d.sendError(client, err)
	}
}

// requireJoined enforces that a connection only acts inside the one session
// it has joined.
func (d *EventDispatcher) requireJoined(client *realtime.Client, sessionID string) bool {
	if sessionID == "" || client.SessionID() != sessionID {
		client.SendError(apperrors.ErrBadRequest.Code, "connection has not joined this session")
		return false
	}
	return true
}

func (d *EventDispatcher) sendError(client *realtime.Client, err error) {
	appErr := apperrors.FromError(err)
	client.SendError(appErr.Code, appErr.Message)

	d.log.Debug("event rejected",
		zap.String("connection_id", client.ConnectionID()),
		zap.String("code", appErr.Code),
	)
}
