package models

import "time"

// SessionStatus tracks where a session sits in its lifecycle.
type SessionStatus string

const (
	SessionStatusWaiting SessionStatus = "waiting"
	SessionStatusActive  SessionStatus = "active"
	SessionStatusEnded   SessionStatus = "ended"
)

// SessionSettings controls which interactions are permitted inside a session.
type SessionSettings struct {
	AllowChat        bool `json:"allow_chat"`
	AllowHandRaise   bool `json:"allow_hand_raise"`
	AllowScreenShare bool `json:"allow_screen_share"`
	MaxParticipants  int  `json:"max_participants"`
}

// Session is the central aggregate for one live classroom meeting.
//
// The store owns the authoritative copy; everything handed out of the store
// is a deep clone, so callers can read snapshots without holding any lock.
type Session struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Title        string          `json:"title"`
	CourseRef    string          `json:"course_ref,omitempty"`
	LessonRef    string          `json:"lesson_ref,omitempty"`
	HostIdentity string          `json:"host_identity"`
	Status       SessionStatus   `json:"status"`
	Settings     SessionSettings `json:"settings"`

	Participants []Participant  `json:"participants"`
	Messages     []ChatMessage  `json:"messages"`
	SharedState  any            `json:"shared_state,omitempty"`
	Polls        []Poll         `json:"polls"`
	Breakouts    []BreakoutRoom `json:"breakout_rooms"`

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Participant is one live connection inside a session. A user who reconnects
// arrives as a new Participant with a fresh ConnectionID.
type Participant struct {
	ConnectionID string    `json:"connection_id"`
	Identity     string    `json:"identity"`
	DisplayName  string    `json:"display_name,omitempty"`
	HandRaised   bool      `json:"hand_raised"`
	JoinedAt     time.Time `json:"joined_at"`
}

// ChatMessage is one entry in the session's append-only chat log. The server
// assigned ID and timestamp are authoritative regardless of arrival order.
type ChatMessage struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author,omitempty"`
	Content   string    `json:"content"`
	Type      string    `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Poll is a time-boxed multiple-choice question. Votes key on ConnectionID so
// re-voting while the poll is open overwrites the earlier choice.
type Poll struct {
	ID              string         `json:"id"`
	Question        string         `json:"question"`
	Options         []string       `json:"options"`
	Votes           map[string]int `json:"votes,omitempty"`
	DurationSeconds int            `json:"duration_seconds"`
	IsActive        bool           `json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Tally derives per-option vote counts, indexed like Options.
func (p *Poll) Tally() []int {
	counts := make([]int, len(p.Options))
	for _, option := range p.Votes {
		if option >= 0 && option < len(counts) {
			counts[option]++
		}
	}
	return counts
}

// BreakoutRoom is a snapshot partition of the parent session's roster at
// assignment time; it is not kept in sync with later joins or leaves.
type BreakoutRoom struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Participants []Participant `json:"participants"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	clone := *s
	clone.Participants = append([]Participant(nil), s.Participants...)
	clone.Messages = append([]ChatMessage(nil), s.Messages...)
	clone.Breakouts = make([]BreakoutRoom, len(s.Breakouts))
	for i, room := range s.Breakouts {
		clone.Breakouts[i] = room
		clone.Breakouts[i].Participants = append([]Participant(nil), room.Participants...)
	}
	clone.Polls = make([]Poll, len(s.Polls))
	for i, poll := range s.Polls {
		clone.Polls[i] = poll
		clone.Polls[i].Options = append([]string(nil), poll.Options...)
		if poll.Votes != nil {
			votes := make(map[string]int, len(poll.Votes))
			for conn, option := range poll.Votes {
				votes[conn] = option
			}
			clone.Polls[i].Votes = votes
		}
	}
	return &clone
}

// FindPoll locates a poll by id on the aggregate, or nil when absent.
func (s *Session) FindPoll(pollID string) *Poll {
	for i := range s.Polls {
		if s.Polls[i].ID == pollID {
			return &s.Polls[i]
		}
	}
	return nil
}

// FindParticipant locates a participant by connection id, or nil when absent.
func (s *Session) FindParticipant(connectionID string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ConnectionID == connectionID {
			return &s.Participants[i]
		}
	}
	return nil
}
