package handlers

import (
	"time"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
)

// Snapshot DTOs keep per-connection vote choices out of API responses;
// tallies surface only once a poll has closed.

type sessionDTO struct {
	ID           string                 `json:"id"`
	Code         string                 `json:"code"`
	Title        string                 `json:"title"`
	CourseRef    string                 `json:"course_ref,omitempty"`
	LessonRef    string                 `json:"lesson_ref,omitempty"`
	HostIdentity string                 `json:"host_identity"`
	Status       models.SessionStatus   `json:"status"`
	Settings     models.SessionSettings `json:"settings"`
	Participants []models.Participant   `json:"participants"`
	Messages     []models.ChatMessage   `json:"messages"`
	SharedState  any                    `json:"shared_state,omitempty"`
	Polls        []pollDTO              `json:"polls"`
	Breakouts    []models.BreakoutRoom  `json:"breakout_rooms"`
	CreatedAt    time.Time              `json:"created_at"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`
	EndedAt      *time.Time             `json:"ended_at,omitempty"`
}

type pollDTO struct {
	ID              string    `json:"id"`
	Question        string    `json:"question"`
	Options         []string  `json:"options"`
	DurationSeconds int       `json:"duration_seconds"`
	IsActive        bool      `json:"is_active"`
	VoteCount       int       `json:"vote_count"`
	Tally           []int     `json:"tally,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toSessionDTO(session *models.Session) sessionDTO {
	dto := sessionDTO{
		ID:           session.ID,
		Code:         session.Code,
		Title:        session.Title,
		CourseRef:    session.CourseRef,
		LessonRef:    session.LessonRef,
		HostIdentity: session.HostIdentity,
		Status:       session.Status,
		Settings:     session.Settings,
		Participants: session.Participants,
		Messages:     session.Messages,
		SharedState:  session.SharedState,
		Breakouts:    session.Breakouts,
		CreatedAt:    session.CreatedAt,
		StartedAt:    session.StartedAt,
		EndedAt:      session.EndedAt,
	}
	if dto.Participants == nil {
		dto.Participants = []models.Participant{}
	}
	if dto.Messages == nil {
		dto.Messages = []models.ChatMessage{}
	}
	if dto.Breakouts == nil {
		dto.Breakouts = []models.BreakoutRoom{}
	}

	dto.Polls = make([]pollDTO, 0, len(session.Polls))
	for i := range session.Polls {
		dto.Polls = append(dto.Polls, toPollDTO(&session.Polls[i]))
	}
	return dto
}

func toPollDTO(poll *models.Poll) pollDTO {
	dto := pollDTO{
		ID:              poll.ID,
		Question:        poll.Question,
		Options:         poll.Options,
		DurationSeconds: poll.DurationSeconds,
		IsActive:        poll.IsActive,
		VoteCount:       len(poll.Votes),
		CreatedAt:       poll.CreatedAt,
	}
	if !poll.IsActive {
		dto.Tally = poll.Tally()
	}
	return dto
}
