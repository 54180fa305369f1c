package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/realtime"
	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/store"
	apperrors "github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/logger"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/metrics"
)

const maxPollDurationSeconds = 3600

// PollResult carries the final tally broadcast when a poll closes.
type PollResult struct {
	SessionID string   `json:"session_id"`
	PollID    string   `json:"poll_id"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	Tally     []int    `json:"tally"`
}

// PollService runs time-boxed polls: creation, vote collection, and
// exactly-once finalization whether the timer fires or the host closes early.
type PollService struct {
	store   *store.SessionStore
	hub     *realtime.Hub
	timeNow func() time.Time
	log     *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewPollService constructs a poll service.
func NewPollService(sessions *store.SessionStore, hub *realtime.Hub) (*PollService, error) {
	if sessions == nil {
		return nil, errors.New("poll service: session store is required")
	}
	if hub == nil {
		return nil, errors.New("poll service: realtime hub is required")
	}
	return &PollService{
		store:   sessions,
		hub:     hub,
		timeNow: time.Now,
		log:     logger.WithModule("polls"),
		timers:  make(map[string]*time.Timer),
	}, nil
}

// WithPollClock overrides the clock, primarily for testing.
func (s *PollService) WithPollClock(now func() time.Time) *PollService {
	if now != nil {
		s.timeNow = now
	}
	return s
}

// CreatePoll validates and appends a new active poll, broadcasts the poll to
// every participant, and schedules its expiry timer. Host only.
func (s *PollService) CreatePoll(sessionID, callerIdentity, question string, options []string, durationSeconds int) (*models.Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.NewBadRequest("poll question is required")
	}
	if durationSeconds <= 0 || durationSeconds > maxPollDurationSeconds {
		return nil, apperrors.ErrInvalidPoll
	}

	trimmed := make([]string, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for _, option := range options {
		option = strings.TrimSpace(option)
		if option == "" {
			return nil, apperrors.ErrInvalidPoll
		}
		if _, dup := seen[option]; dup {
			return nil, apperrors.ErrInvalidPoll
		}
		seen[option] = struct{}{}
		trimmed = append(trimmed, option)
	}
	if len(trimmed) < 2 {
		return nil, apperrors.ErrInvalidPoll
	}

	poll := models.Poll{
		ID:              uuid.NewString(),
		Question:        question,
		Options:         trimmed,
		Votes:           make(map[string]int),
		DurationSeconds: durationSeconds,
		IsActive:        true,
		CreatedAt:       s.timeNow(),
	}

	_, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		if session.HostIdentity != callerIdentity {
			return apperrors.ErrNotHost
		}
		if session.Status == models.SessionStatusEnded {
			return apperrors.ErrSessionEnded
		}
		session.Polls = append(session.Polls, poll)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	// Broadcast without votes; tallies stay hidden until close.
	s.hub.Broadcast(sessionID, realtime.Message{
		Event: realtime.EventPollStarted,
		Data: map[string]any{
			"session_id":       sessionID,
			"poll_id":          poll.ID,
			"question":         poll.Question,
			"options":          poll.Options,
			"duration_seconds": poll.DurationSeconds,
		},
	})

	s.scheduleExpiry(sessionID, poll.ID, time.Duration(durationSeconds)*time.Second)

	s.log.Info("poll created",
		zap.String("session_id", sessionID),
		zap.String("poll_id", poll.ID),
		zap.Int("duration_seconds", durationSeconds),
	)
	return &poll, nil
}

// Vote records the connection's choice. Re-voting while the poll is open
// overwrites the earlier choice, so each participant counts exactly once.
// Individual votes are never broadcast.
func (s *PollService) Vote(sessionID, pollID, connectionID string, optionIndex int) error {
	_, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		poll := session.FindPoll(pollID)
		if poll == nil {
			return apperrors.ErrNotFound
		}
		if !poll.IsActive {
			return apperrors.ErrPollClosed
		}
		if optionIndex < 0 || optionIndex >= len(poll.Options) {
			return apperrors.ErrInvalidOption
		}
		if poll.Votes == nil {
			poll.Votes = make(map[string]int)
		}
		poll.Votes[connectionID] = optionIndex
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return err
	}

	metrics.PollVotes.Inc()
	return nil
}

// EndPoll closes a poll ahead of its timer. Host only. The pending timer is
// cancelled and the final tally broadcast immediately.
func (s *PollService) EndPoll(sessionID, pollID, callerIdentity string) (*PollResult, error) {
	// Authority check first, then the shared finalize path; a timer racing
	// this call loses on the IsActive check-and-set inside finalize.
	_, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		if session.HostIdentity != callerIdentity {
			return apperrors.ErrNotHost
		}
		if session.FindPoll(pollID) == nil {
			return apperrors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	s.cancelTimer(timerKey(sessionID, pollID))

	result, closed := s.finalize(sessionID, pollID)
	if !closed {
		return nil, apperrors.ErrPollClosed
	}
	return result, nil
}

// CancelSessionTimers drops every pending expiry timer for the session. Used
// when a session ends so no timer outlives its aggregate.
func (s *PollService) CancelSessionTimers(sessionID string) {
	prefix := sessionID + ":"

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		if strings.HasPrefix(key, prefix) {
			timer.Stop()
			delete(s.timers, key)
		}
	}
}

func (s *PollService) scheduleExpiry(sessionID, pollID string, d time.Duration) {
	key := timerKey(sessionID, pollID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[key] = time.AfterFunc(d, func() {
		s.cancelTimer(key)
		s.finalize(sessionID, pollID)
	})
}

func (s *PollService) cancelTimer(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

// finalize deactivates the poll and computes its tally. The IsActive
// check-and-set happens inside a single Mutate step, so finalizing twice,
// timer and explicit close racing near expiry included, closes exactly once.
func (s *PollService) finalize(sessionID, pollID string) (*PollResult, bool) {
	var result *PollResult
	_, err := s.store.Mutate(sessionID, func(session *models.Session) error {
		poll := session.FindPoll(pollID)
		if poll == nil || !poll.IsActive {
			return nil
		}
		poll.IsActive = false
		result = &PollResult{
			SessionID: sessionID,
			PollID:    poll.ID,
			Question:  poll.Question,
			Options:   append([]string(nil), poll.Options...),
			Tally:     poll.Tally(),
		}
		return nil
	})
	if err != nil || result == nil {
		return nil, false
	}

	s.hub.Broadcast(sessionID, realtime.Message{
		Event: realtime.EventPollEnded,
		Data:  result,
	})

	s.log.Info("poll closed",
		zap.String("session_id", sessionID),
		zap.String("poll_id", pollID),
	)
	return result, true
}

func timerKey(sessionID, pollID string) string {
	return sessionID + ":" + pollID
}
