package services

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
	apperrors "github.com/akhilesheragolla2056/Vidhya-sub000/pkg/errors"
)

// BreakoutPolicyRandom shuffles participants uniformly before assignment.
const BreakoutPolicyRandom = "random"

// AssignBreakouts partitions the participant list into roomCount rooms. The
// random policy shuffles a copy of the input with the supplied seed and deals
// participants round-robin, so room sizes differ by at most one. Rooms beyond
// the participant count come back empty, which callers may want for spare
// rooms. The input slice is never modified.
func AssignBreakouts(participants []models.Participant, roomCount int, policy string, seed int64) ([]models.BreakoutRoom, error) {
	if roomCount < 1 {
		return nil, apperrors.NewBadRequest("room count must be at least 1")
	}
	if policy != BreakoutPolicyRandom {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unsupported assignment policy %q", policy))
	}

	shuffled := append([]models.Participant(nil), participants...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	rooms := make([]models.BreakoutRoom, roomCount)
	for i := range rooms {
		rooms[i] = models.BreakoutRoom{
			ID:           uuid.NewString(),
			Name:         fmt.Sprintf("Room %d", i+1),
			Participants: []models.Participant{},
		}
	}
	for i, participant := range shuffled {
		room := &rooms[i%roomCount]
		room.Participants = append(room.Participants, participant)
	}
	return rooms, nil
}
