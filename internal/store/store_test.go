package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
)

func newStoredSession(id, code string) *models.Session {
	return &models.Session{
		ID:           id,
		Code:         code,
		Title:        "Algebra Review",
		HostIdentity: "teacher-1",
		Status:       models.SessionStatusWaiting,
		Settings: models.SessionSettings{
			AllowChat:       true,
			AllowHandRaise:  true,
			MaxParticipants: 50,
		},
		CreatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	s := New()

	require.NoError(t, s.Create(newStoredSession("sess-1", "ABC234")))

	session, err := s.Get("sess-1")
	require.NoError(t, err)
	require.Equal(t, "sess-1", session.ID)
	require.Equal(t, "ABC234", session.Code)
	require.Equal(t, 1, s.Count())

	_, err = s.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_CreateRejectsDuplicateCode(t *testing.T) {
	s := New()

	require.NoError(t, s.Create(newStoredSession("sess-1", "ABC234")))
	require.ErrorIs(t, s.Create(newStoredSession("sess-2", "ABC234")), ErrDuplicateCode)
	// Codes are case-insensitive on the index.
	require.ErrorIs(t, s.Create(newStoredSession("sess-3", "abc234")), ErrDuplicateCode)
}

func TestStore_FindByCodeNormalizes(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newStoredSession("sess-1", "ABC234")))

	session, err := s.FindByCode("  abc234 ")
	require.NoError(t, err)
	require.Equal(t, "sess-1", session.ID)

	_, err = s.FindByCode("ZZZZZZ")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SnapshotsAreIsolated(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newStoredSession("sess-1", "ABC234")))

	first, err := s.Get("sess-1")
	require.NoError(t, err)
	first.Title = "mutated copy"
	first.Participants = append(first.Participants, models.Participant{ConnectionID: "conn-x"})

	second, err := s.Get("sess-1")
	require.NoError(t, err)
	require.Equal(t, "Algebra Review", second.Title)
	require.Empty(t, second.Participants)
}

func TestStore_MutateAppliesAndReturnsSnapshot(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newStoredSession("sess-1", "ABC234")))

	snapshot, err := s.Mutate("sess-1", func(session *models.Session) error {
		session.Status = models.SessionStatusActive
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusActive, snapshot.Status)

	stored, err := s.Get("sess-1")
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusActive, stored.Status)
}

func TestStore_MutateSurfacesClosureError(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newStoredSession("sess-1", "ABC234")))

	wantErr := ErrNotFound
	snapshot, err := s.Mutate("sess-1", func(session *models.Session) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.NotNil(t, snapshot)

	_, err = s.Mutate("missing", func(*models.Session) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ReleaseCodeKeepsSessionReadable(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newStoredSession("sess-1", "ABC234")))

	s.ReleaseCode("ABC234")

	_, err := s.FindByCode("ABC234")
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, s.HasCode("ABC234"))

	session, err := s.Get("sess-1")
	require.NoError(t, err)
	require.Equal(t, "sess-1", session.ID)

	// The released code is immediately reusable by a new session.
	require.NoError(t, s.Create(newStoredSession("sess-2", "ABC234")))
}

func TestStore_DeleteRemovesBothIndices(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newStoredSession("sess-1", "ABC234")))

	s.Delete("sess-1")

	_, err := s.Get("sess-1")
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, s.HasCode("ABC234"))
	require.Equal(t, 0, s.Count())

	// Deleting an absent session is a no-op.
	s.Delete("sess-1")
}

func TestStore_DeleteLeavesRecycledCodeAlone(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newStoredSession("sess-1", "ABC234")))

	// sess-1 ended and released its code, which sess-2 then claimed.
	s.ReleaseCode("ABC234")
	require.NoError(t, s.Create(newStoredSession("sess-2", "ABC234")))

	// Purging the ended sess-1 must not evict sess-2's live code.
	s.Delete("sess-1")
	require.True(t, s.HasCode("ABC234"))

	session, err := s.FindByCode("ABC234")
	require.NoError(t, err)
	require.Equal(t, "sess-2", session.ID)
}

func TestStore_ListReturnsAllSessions(t *testing.T) {
	s := New()
	require.NoError(t, s.Create(newStoredSession("sess-1", "AAA111")))
	require.NoError(t, s.Create(newStoredSession("sess-2", "BBB222")))

	sessions := s.List()
	require.Len(t, sessions, 2)

	ids := map[string]bool{}
	for _, session := range sessions {
		ids[session.ID] = true
	}
	require.True(t, ids["sess-1"])
	require.True(t, ids["sess-2"])
}
