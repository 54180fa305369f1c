package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/realtime"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/store"
)

var testClockStart = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// testEnv wires the in-memory store and an empty hub to every service, all
// sharing one advanceable clock.
type testEnv struct {
	store     *store.SessionStore
	hub       *realtime.Hub
	lifecycle *LifecycleService
	presence  *PresenceService
	chat      *ChatService
	polls     *PollService

	now time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store: store.New(),
		hub:   realtime.NewHub(),
		now:   testClockStart,
	}
	clock := func() time.Time { return env.now }

	var err error
	env.lifecycle, err = NewLifecycleService(env.store, env.hub, WithLifecycleClock(clock))
	require.NoError(t, err)

	env.presence, err = NewPresenceService(env.store, env.hub)
	require.NoError(t, err)
	env.presence.WithPresenceClock(clock)

	env.chat, err = NewChatService(env.store, env.hub)
	require.NoError(t, err)
	env.chat.WithChatClock(clock)

	env.polls, err = NewPollService(env.store, env.hub)
	require.NoError(t, err)
	env.polls.WithPollClock(clock)

	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.now = env.now.Add(d)
}

// createSession registers a waiting session owned by hostIdentity.
func (env *testEnv) createSession(t *testing.T, hostIdentity string, settings *models.SessionSettings) *models.Session {
	t.Helper()

	session, err := env.lifecycle.CreateSession(hostIdentity, CreateSessionParams{
		Title:    "Test Session",
		Settings: settings,
	})
	require.NoError(t, err)
	return session
}

// createActiveSession registers a session and moves it to active.
func (env *testEnv) createActiveSession(t *testing.T, hostIdentity string, settings *models.SessionSettings) *models.Session {
	t.Helper()

	session := env.createSession(t, hostIdentity, settings)
	started, err := env.lifecycle.StartSession(session.ID, hostIdentity)
	require.NoError(t, err)
	return started
}

func connID(i int) string     { return fmt.Sprintf("conn-%d", i) }
func identityID(i int) string { return fmt.Sprintf("student-%d", i) }

// join adds a participant over the presence service.
func (env *testEnv) join(t *testing.T, sessionID, connectionID, identity string) {
	t.Helper()

	_, err := env.presence.Join(sessionID, connectionID, identity, identity)
	require.NoError(t, err)
}
