package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
	apperrors "github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
)

func TestCreateSession_Defaults(t *testing.T) {
	env := newTestEnv(t)

	session, err := env.lifecycle.CreateSession("teacher-1", CreateSessionParams{
		Title:     "  Algebra Review  ",
		CourseRef: "course-7",
		LessonRef: "lesson-3",
	})
	require.NoError(t, err)

	require.NotEmpty(t, session.ID)
	require.Equal(t, "Algebra Review", session.Title)
	require.Equal(t, "course-7", session.CourseRef)
	require.Equal(t, "lesson-3", session.LessonRef)
	require.Equal(t, "teacher-1", session.HostIdentity)
	require.Equal(t, models.SessionStatusWaiting, session.Status)
	require.Equal(t, testClockStart, session.CreatedAt)
	require.Nil(t, session.StartedAt)

	require.True(t, session.Settings.AllowChat)
	require.True(t, session.Settings.AllowHandRaise)
	require.True(t, session.Settings.AllowScreenShare)
	require.Equal(t, 200, session.Settings.MaxParticipants)

	require.Len(t, session.Code, 6)
	for _, r := range session.Code {
		require.Contains(t, codeAlphabet, string(r))
	}

	// The code resolves back to the session.
	resolved, err := env.lifecycle.ResolveByCode(session.Code)
	require.NoError(t, err)
	require.Equal(t, session.ID, resolved.ID)
}

func TestCreateSession_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.lifecycle.CreateSession("", CreateSessionParams{Title: "x"})
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = env.lifecycle.CreateSession("teacher-1", CreateSessionParams{Title: "   "})
	appErr := apperrors.FromError(err)
	require.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestCreateSession_ExplicitSettings(t *testing.T) {
	env := newTestEnv(t)

	session := env.createSession(t, "teacher-1", &models.SessionSettings{
		AllowChat:        false,
		AllowHandRaise:   true,
		AllowScreenShare: false,
		MaxParticipants:  3,
	})
	require.False(t, session.Settings.AllowChat)
	require.Equal(t, 3, session.Settings.MaxParticipants)
}

func TestCreateSession_CodeLengthOption(t *testing.T) {
	env := newTestEnv(t)
	svc, err := NewLifecycleService(env.store, env.hub, WithCodeLength(10))
	require.NoError(t, err)

	session, err := svc.CreateSession("teacher-1", CreateSessionParams{Title: "Long Codes"})
	require.NoError(t, err)
	require.Len(t, session.Code, 10)
}

func TestStartSession_Transitions(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t, "teacher-1", nil)

	env.advance(5 * time.Minute)

	started, err := env.lifecycle.StartSession(session.ID, "teacher-1")
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusActive, started.Status)
	require.NotNil(t, started.StartedAt)
	require.Equal(t, env.now, *started.StartedAt)

	// Starting twice is an invalid transition.
	_, err = env.lifecycle.StartSession(session.ID, "teacher-1")
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestStartSession_HostOnly(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t, "teacher-1", nil)

	_, err := env.lifecycle.StartSession(session.ID, "student-1")
	require.ErrorIs(t, err, apperrors.ErrNotHost)

	snapshot, err := env.lifecycle.GetSession(session.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusWaiting, snapshot.Status)
}

func TestStartSession_UnknownSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.lifecycle.StartSession("missing", "teacher-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEndSession_SummaryAndCodeRelease(t *testing.T) {
	env := newTestEnv(t)
	session := env.createActiveSession(t, "teacher-1", nil)
	env.join(t, session.ID, "conn-1", "student-1")
	env.join(t, session.ID, "conn-2", "student-2")

	env.advance(45 * time.Minute)

	summary, err := env.lifecycle.EndSession(session.ID, "teacher-1")
	require.NoError(t, err)
	require.Equal(t, session.ID, summary.SessionID)
	require.Equal(t, (45 * time.Minute).Milliseconds(), summary.DurationMs)
	require.Equal(t, 2, summary.ParticipantCount)

	// The aggregate stays readable by id, but its code is gone.
	ended, err := env.lifecycle.GetSession(session.ID)
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusEnded, ended.Status)
	require.NotNil(t, ended.EndedAt)

	_, err = env.lifecycle.ResolveByCode(session.Code)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEndSession_RequiresActive(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t, "teacher-1", nil)

	_, err := env.lifecycle.EndSession(session.ID, "teacher-1")
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	started := env.createActiveSession(t, "teacher-1", nil)
	_, err = env.lifecycle.EndSession(started.ID, "student-1")
	require.ErrorIs(t, err, apperrors.ErrNotHost)

	_, err = env.lifecycle.EndSession(started.ID, "teacher-1")
	require.NoError(t, err)
	_, err = env.lifecycle.EndSession(started.ID, "teacher-1")
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestEndSession_ClosesOpenPolls(t *testing.T) {
	env := newTestEnv(t)
	session := env.createActiveSession(t, "teacher-1", nil)

	poll, err := env.polls.CreatePoll(session.ID, "teacher-1", "Ready?", []string{"Yes", "No"}, 600)
	require.NoError(t, err)

	_, err = env.lifecycle.EndSession(session.ID, "teacher-1")
	require.NoError(t, err)
	env.polls.CancelSessionTimers(session.ID)

	ended, err := env.lifecycle.GetSession(session.ID)
	require.NoError(t, err)
	require.False(t, ended.FindPoll(poll.ID).IsActive)
}

func TestResolveByCode_FullSession(t *testing.T) {
	env := newTestEnv(t)
	session := env.createActiveSession(t, "teacher-1", &models.SessionSettings{
		AllowChat:       true,
		AllowHandRaise:  true,
		MaxParticipants: 2,
	})
	env.join(t, session.ID, "conn-1", "student-1")
	env.join(t, session.ID, "conn-2", "student-2")

	_, err := env.lifecycle.ResolveByCode(session.Code)
	require.ErrorIs(t, err, apperrors.ErrSessionFull)
}

func TestResolveByCode_UnknownCode(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.lifecycle.ResolveByCode("NOPE22")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateBreakoutRooms_PartitionsRoster(t *testing.T) {
	env := newTestEnv(t)
	session := env.createActiveSession(t, "teacher-1", nil)
	for i := 0; i < 7; i++ {
		env.join(t, session.ID, connID(i), identityID(i))
	}

	rooms, err := env.lifecycle.CreateBreakoutRooms(session.ID, "teacher-1", 3, BreakoutPolicyRandom)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	require.Len(t, rooms[0].Participants, 3)
	require.Len(t, rooms[1].Participants, 2)
	require.Len(t, rooms[2].Participants, 2)

	snapshot, err := env.lifecycle.GetSession(session.ID)
	require.NoError(t, err)
	require.Len(t, snapshot.Breakouts, 3)

	// Re-assignment replaces the previous partition wholesale.
	rooms, err = env.lifecycle.CreateBreakoutRooms(session.ID, "teacher-1", 2, BreakoutPolicyRandom)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	snapshot, err = env.lifecycle.GetSession(session.ID)
	require.NoError(t, err)
	require.Len(t, snapshot.Breakouts, 2)
}

func TestCreateBreakoutRooms_Authorization(t *testing.T) {
	env := newTestEnv(t)
	session := env.createActiveSession(t, "teacher-1", nil)

	_, err := env.lifecycle.CreateBreakoutRooms(session.ID, "student-1", 2, BreakoutPolicyRandom)
	require.ErrorIs(t, err, apperrors.ErrNotHost)

	_, err = env.lifecycle.EndSession(session.ID, "teacher-1")
	require.NoError(t, err)

	_, err = env.lifecycle.CreateBreakoutRooms(session.ID, "teacher-1", 2, BreakoutPolicyRandom)
	require.ErrorIs(t, err, apperrors.ErrSessionEnded)
}
