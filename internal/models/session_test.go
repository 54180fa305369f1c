package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionClone_DeepCopiesNestedState(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	original := &Session{
		ID:     "sess-1",
		Status: SessionStatusActive,
		Participants: []Participant{
			{ConnectionID: "conn-1", Identity: "student-1", JoinedAt: now},
		},
		Messages: []ChatMessage{
			{ID: "msg-1", Content: "hello", CreatedAt: now},
		},
		Polls: []Poll{
			{
				ID:       "poll-1",
				Options:  []string{"A", "B"},
				Votes:    map[string]int{"conn-1": 0},
				IsActive: true,
			},
		},
		Breakouts: []BreakoutRoom{
			{ID: "room-1", Name: "Room 1", Participants: []Participant{{ConnectionID: "conn-1"}}},
		},
	}

	clone := original.Clone()

	clone.Participants[0].Identity = "changed"
	clone.Messages[0].Content = "changed"
	clone.Polls[0].Options[0] = "changed"
	clone.Polls[0].Votes["conn-1"] = 1
	clone.Breakouts[0].Participants[0].ConnectionID = "changed"

	require.Equal(t, "student-1", original.Participants[0].Identity)
	require.Equal(t, "hello", original.Messages[0].Content)
	require.Equal(t, "A", original.Polls[0].Options[0])
	require.Equal(t, 0, original.Polls[0].Votes["conn-1"])
	require.Equal(t, "conn-1", original.Breakouts[0].Participants[0].ConnectionID)
}

func TestSessionClone_NilReceiver(t *testing.T) {
	var s *Session
	require.Nil(t, s.Clone())
}

func TestPollTally_CountsPerOption(t *testing.T) {
	poll := Poll{
		Options: []string{"Yes", "No", "Abstain"},
		Votes: map[string]int{
			"conn-1": 1,
			"conn-2": 1,
			"conn-3": 0,
			"conn-4": 99, // out-of-range entries are ignored
		},
	}

	require.Equal(t, []int{1, 2, 0}, poll.Tally())
}

func TestPollTally_NoVotes(t *testing.T) {
	poll := Poll{Options: []string{"A", "B"}}
	require.Equal(t, []int{0, 0}, poll.Tally())
}

func TestSessionFinders(t *testing.T) {
	session := &Session{
		Participants: []Participant{{ConnectionID: "conn-1"}},
		Polls:        []Poll{{ID: "poll-1"}},
	}

	require.NotNil(t, session.FindParticipant("conn-1"))
	require.Nil(t, session.FindParticipant("conn-2"))
	require.NotNil(t, session.FindPoll("poll-1"))
	require.Nil(t, session.FindPoll("poll-2"))

	// Finders return aggregate pointers, so edits land on the session itself.
	session.FindParticipant("conn-1").HandRaised = true
	require.True(t, session.Participants[0].HandRaised)
}
