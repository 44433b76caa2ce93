// Package feed provides the read side of the image feed
package feed

import (
	"context"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/generation"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/internal/ports/outbound"
	"github.com/pictura/v1/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultLimit is the feed window size when the query leaves it unset.
	DefaultLimit = 20
	maxLimit     = 100
)

// FeedService implements the feed use cases
type FeedService struct {
	generationRepo outbound.GenerationRepository
	likeRepo       outbound.LikeRepository
	logger         *zap.Logger
}

// NewFeedService creates a new feed service
func NewFeedService(
	generationRepo outbound.GenerationRepository,
	likeRepo outbound.LikeRepository,
	logger *zap.Logger,
) inbound.FeedService {
	return &FeedService{
		generationRepo: generationRepo,
		likeRepo:       likeRepo,
		logger:         logger.Named("feed-service"),
	}
}

// Fetch returns one window of the feed. The limit counts stored generations,
// not display records: a generation holding several image URLs expands to
// several items, so a page may hold more items than the limit.
func (s *FeedService) Fetch(ctx context.Context, query inbound.FeedQuery) (*inbound.FeedPage, error) {
	orderBy := query.OrderBy
	if orderBy == "" {
		orderBy = generation.OrderByCreatedAt
	}
	if err := orderBy.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	generations, err := s.generationRepo.Query(ctx, outbound.QueryCriteria{
		UserID:    query.UserID,
		Model:     query.Model,
		OrderBy:   orderBy,
		Ascending: query.Ascending,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, errors.NewDatabaseError("query feed", err)
	}

	liked := map[uuid.UUID]bool{}
	if query.ViewerID != nil && len(generations) > 0 {
		ids := make([]uuid.UUID, len(generations))
		for i, g := range generations {
			ids[i] = g.ID()
		}
		liked, err = s.likeRepo.LikedGenerationIDs(ctx, *query.ViewerID, ids)
		if err != nil {
			// The feed still renders without like decoration.
			s.logger.Warn("Failed to load viewer likes",
				zap.String("viewer_id", query.ViewerID.String()),
				zap.Error(err),
			)
			liked = map[uuid.UUID]bool{}
		}
	}

	items := make([]inbound.FeedItem, 0, len(generations))
	for _, g := range generations {
		for _, record := range g.DisplayRecords() {
			items = append(items, inbound.FeedItem{
				DisplayRecord: record,
				UserLiked:     liked[g.ID()],
			})
		}
	}

	return &inbound.FeedPage{Items: items}, nil
}
