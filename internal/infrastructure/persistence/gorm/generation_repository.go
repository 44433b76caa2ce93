// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/generation"
	"github.com/pictura/v1/internal/ports/outbound"
	"gorm.io/gorm"
)

// GenerationRepository implements the generation repository interface using GORM
type GenerationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new generation repository
func NewGenerationRepository(db *gorm.DB) outbound.GenerationRepository {
	return &GenerationRepository{db: db}
}

// Create creates a new generation
func (r *GenerationRepository) Create(ctx context.Context, gen *generation.Generation) error {
	model := GenerationToModel(gen)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// Update updates an existing generation
func (r *GenerationRepository) Update(ctx context.Context, gen *generation.Generation) error {
	model := GenerationToModel(gen)

	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return generation.ErrNotFound
	}

	return nil
}

// Delete deletes a generation by ID (soft delete)
func (r *GenerationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&GenerationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return generation.ErrNotFound
	}

	return nil
}

// FindByID finds a generation by ID. A missing row returns (nil, nil).
func (r *GenerationRepository) FindByID(ctx context.Context, id uuid.UUID) (*generation.Generation, error) {
	var model GenerationModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return ModelToGeneration(&model), nil
}

// Query returns generations matching the criteria. Ordering always carries a
// created_at DESC tiebreaker so pages are stable when like counts collide.
func (r *GenerationRepository) Query(ctx context.Context, criteria outbound.QueryCriteria) ([]*generation.Generation, error) {
	if err := criteria.OrderBy.Validate(); err != nil {
		return nil, err
	}

	direction := "DESC"
	if criteria.Ascending {
		direction = "ASC"
	}
	order := fmt.Sprintf("%s %s", criteria.OrderBy, direction)
	if criteria.OrderBy != generation.OrderByCreatedAt {
		order += ", created_at DESC"
	}

	query := r.db.WithContext(ctx).
		Model(&GenerationModel{}).
		Where("visibility = ?", string(generation.VisibilityPublic)).
		Order(order).
		Offset(criteria.Offset).
		Limit(criteria.Limit)

	if criteria.UserID != nil {
		query = query.Where("user_id = ?", *criteria.UserID)
	}
	if criteria.Model != nil {
		query = query.Where("model = ?", *criteria.Model)
	}

	var models []GenerationModel
	if result := query.Find(&models); result.Error != nil {
		return nil, result.Error
	}

	generations := make([]*generation.Generation, len(models))
	for i := range models {
		generations[i] = ModelToGeneration(&models[i])
	}

	return generations, nil
}

// AddLike inserts a like row and increments the count in one transaction.
// Inserting a like that already exists leaves the count unchanged.
func (r *GenerationRepository) AddLike(ctx context.Context, generationID, userID uuid.UUID) (int, error) {
	var count int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := LikeModel{GenerationID: generationID, UserID: userID}
		result := tx.Where(&like).FirstOrCreate(&like)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			update := tx.Model(&GenerationModel{}).
				Where("id = ?", generationID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1"))
			if update.Error != nil {
				return update.Error
			}
		}

		return tx.Model(&GenerationModel{}).
			Select("like_count").
			Where("id = ?", generationID).
			Scan(&count).Error
	})

	return count, err
}

// RemoveLike deletes a like row and decrements the count in one transaction.
// The count never drops below zero.
func (r *GenerationRepository) RemoveLike(ctx context.Context, generationID, userID uuid.UUID) (int, error) {
	var count int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&LikeModel{}, "generation_id = ? AND user_id = ?", generationID, userID)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			update := tx.Model(&GenerationModel{}).
				Where("id = ? AND like_count > 0", generationID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1"))
			if update.Error != nil {
				return update.Error
			}
		}

		return tx.Model(&GenerationModel{}).
			Select("like_count").
			Where("id = ?", generationID).
			Scan(&count).Error
	})

	return count, err
}
