package gorm

import (
	"context"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/ports/outbound"
	"gorm.io/gorm"
)

// LikeRepository implements like lookups using GORM
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) outbound.LikeRepository {
	return &LikeRepository{db: db}
}

// LikedGenerationIDs returns which of the given generation ids the user has liked
func (r *LikeRepository) LikedGenerationIDs(ctx context.Context, userID uuid.UUID, generationIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool, len(generationIDs))
	if len(generationIDs) == 0 {
		return liked, nil
	}

	var ids []uuid.UUID
	result := r.db.WithContext(ctx).
		Model(&LikeModel{}).
		Where("user_id = ? AND generation_id IN ?", userID, generationIDs).
		Pluck("generation_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}

	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// Exists reports whether the user has liked the generation
func (r *LikeRepository) Exists(ctx context.Context, generationID, userID uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&LikeModel{}).
		Where("generation_id = ? AND user_id = ?", generationID, userID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
