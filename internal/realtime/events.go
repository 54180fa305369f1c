package realtime

// Client to server events carried on the session event channel.
const (
	EventJoin          = "session.join"
	EventLeave         = "session.leave"
	EventChatMessage   = "chat.message"
	EventHandRaise     = "session.hand_raise"
	EventSurfaceUpdate = "surface.update"
	EventVote          = "poll.vote"
)

// Server to client events. Chat, hand-raise, and surface updates reuse the
// inbound event names on the way back out.
const (
	EventWelcome          = "session.welcome"
	EventParticipants     = "session.participants"
	EventParticipantLeft  = "session.participant_left"
	EventSessionStarted   = "session.started"
	EventSessionEnded     = "session.ended"
	EventPollStarted      = "session.poll_started"
	EventPollEnded        = "session.poll_ended"
	EventBreakoutAssigned = "session.breakout_assigned"
	EventError            = "error"
)
