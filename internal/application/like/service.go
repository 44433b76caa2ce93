// Package like provides the application layer for liking generations
package like

import (
	"context"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/internal/ports/outbound"
	"github.com/pictura/v1/pkg/errors"
	"go.uber.org/zap"
)

// LikeService implements the like use cases
type LikeService struct {
	generationRepo outbound.GenerationRepository
	likeRepo       outbound.LikeRepository
	logger         *zap.Logger
}

// NewLikeService creates a new like service
func NewLikeService(
	generationRepo outbound.GenerationRepository,
	likeRepo outbound.LikeRepository,
	logger *zap.Logger,
) inbound.LikeService {
	return &LikeService{
		generationRepo: generationRepo,
		likeRepo:       likeRepo,
		logger:         logger.Named("like-service"),
	}
}

// Toggle flips the viewer's like on a generation. Presence of a like row
// decides the direction: an existing like is removed, a missing one is
// added. The repository performs the row change and the count update in one
// transaction.
func (s *LikeService) Toggle(ctx context.Context, generationID, userID uuid.UUID) (*inbound.LikeState, error) {
	gen, err := s.generationRepo.FindByID(ctx, generationID)
	if err != nil {
		return nil, errors.NewDatabaseError("find generation", err)
	}
	if gen == nil {
		return nil, errors.NewGenerationNotFoundError(generationID.String())
	}

	liked, err := s.likeRepo.Exists(ctx, generationID, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("check like", err)
	}

	var count int
	if liked {
		count, err = s.generationRepo.RemoveLike(ctx, generationID, userID)
		if err != nil {
			return nil, errors.NewDatabaseError("remove like", err)
		}
	} else {
		count, err = s.generationRepo.AddLike(ctx, generationID, userID)
		if err != nil {
			return nil, errors.NewDatabaseError("add like", err)
		}
	}

	s.logger.Debug("Like toggled",
		zap.String("generation_id", generationID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("liked", !liked),
		zap.Int("like_count", count),
	)

	return &inbound.LikeState{Liked: !liked, LikeCount: count}, nil
}

// Get returns the viewer's current like state for a generation
func (s *LikeService) Get(ctx context.Context, generationID, userID uuid.UUID) (*inbound.LikeState, error) {
	gen, err := s.generationRepo.FindByID(ctx, generationID)
	if err != nil {
		return nil, errors.NewDatabaseError("find generation", err)
	}
	if gen == nil {
		return nil, errors.NewGenerationNotFoundError(generationID.String())
	}

	liked, err := s.likeRepo.Exists(ctx, generationID, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("check like", err)
	}

	return &inbound.LikeState{Liked: liked, LikeCount: gen.LikeCount()}, nil
}
