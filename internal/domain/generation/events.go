package generation

import (
	"time"

	"github.com/google/uuid"
)

// GenerationCreatedEvent is raised when a new generation is created
type GenerationCreatedEvent struct {
	GenerationID uuid.UUID
	UserID       uuid.UUID
	ImageCount   int
	CreatedAt    time.Time
}

func (e GenerationCreatedEvent) EventName() string     { return "generation.created" }
func (e GenerationCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// GenerationLikedEvent is raised when a user likes a generation
type GenerationLikedEvent struct {
	GenerationID uuid.UUID
	UserID       uuid.UUID
	LikedAt      time.Time
}

func (e GenerationLikedEvent) EventName() string     { return "generation.liked" }
func (e GenerationLikedEvent) OccurredAt() time.Time { return e.LikedAt }

// GenerationUnlikedEvent is raised when a user removes a like
type GenerationUnlikedEvent struct {
	GenerationID uuid.UUID
	UserID       uuid.UUID
	UnlikedAt    time.Time
}

func (e GenerationUnlikedEvent) EventName() string     { return "generation.unliked" }
func (e GenerationUnlikedEvent) OccurredAt() time.Time { return e.UnlikedAt }
