package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/generation"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/internal/ports/outbound"
	apperrors "github.com/pictura/v1/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockGenerationRepository is a mock implementation of the generation repository
type MockGenerationRepository struct {
	mock.Mock
}

func (m *MockGenerationRepository) Create(ctx context.Context, gen *generation.Generation) error {
	args := m.Called(ctx, gen)
	return args.Error(0)
}

func (m *MockGenerationRepository) Update(ctx context.Context, gen *generation.Generation) error {
	args := m.Called(ctx, gen)
	return args.Error(0)
}

func (m *MockGenerationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGenerationRepository) FindByID(ctx context.Context, id uuid.UUID) (*generation.Generation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generation.Generation), args.Error(1)
}

func (m *MockGenerationRepository) Query(ctx context.Context, criteria outbound.QueryCriteria) ([]*generation.Generation, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*generation.Generation), args.Error(1)
}

func (m *MockGenerationRepository) AddLike(ctx context.Context, generationID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, generationID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockGenerationRepository) RemoveLike(ctx context.Context, generationID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, generationID, userID)
	return args.Int(0), args.Error(1)
}

// MockLikeRepository is a mock implementation of the like repository
type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) LikedGenerationIDs(ctx context.Context, userID uuid.UUID, generationIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, userID, generationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

func (m *MockLikeRepository) Exists(ctx context.Context, generationID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, generationID, userID)
	return args.Bool(0), args.Error(1)
}

func newTestService(t *testing.T) (inbound.FeedService, *MockGenerationRepository, *MockLikeRepository) {
	genRepo := &MockGenerationRepository{}
	likeRepo := &MockLikeRepository{}
	svc := NewFeedService(genRepo, likeRepo, zaptest.NewLogger(t))
	return svc, genRepo, likeRepo
}

func newStoredGeneration(t *testing.T, urls ...string) *generation.Generation {
	t.Helper()
	g, err := generation.NewGeneration(uuid.New(), "test prompt", "img-model-1", generation.AspectSquare, urls)
	require.NoError(t, err)
	return g
}

func TestFetchExpandsMultiImageGenerations(t *testing.T) {
	svc, genRepo, _ := newTestService(t)

	g1 := newStoredGeneration(t, "a.png", "b.png", "c.png")
	g2 := newStoredGeneration(t, "d.png")

	genRepo.On("Query", mock.Anything, mock.Anything).Return([]*generation.Generation{g1, g2}, nil)

	page, err := svc.Fetch(context.Background(), inbound.FeedQuery{Limit: 20})
	require.NoError(t, err)
	require.Len(t, page.Items, 4)

	assert.Equal(t, g1.ID(), page.Items[0].ID)
	assert.Equal(t, g1.ID(), page.Items[1].ID)
	assert.Equal(t, g1.ID(), page.Items[2].ID)
	assert.Equal(t, g2.ID(), page.Items[3].ID)
	assert.Equal(t, "a.png", page.Items[0].ImagePath)
	assert.Equal(t, "d.png", page.Items[3].ImagePath)
}

func TestFetchDefaultsApplied(t *testing.T) {
	svc, genRepo, _ := newTestService(t)

	genRepo.On("Query", mock.Anything, outbound.QueryCriteria{
		OrderBy:   generation.OrderByCreatedAt,
		Ascending: false,
		Offset:    0,
		Limit:     DefaultLimit,
	}).Return([]*generation.Generation{}, nil)

	page, err := svc.Fetch(context.Background(), inbound.FeedQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	genRepo.AssertExpectations(t)
}

func TestFetchPassesRangeThrough(t *testing.T) {
	svc, genRepo, _ := newTestService(t)

	genRepo.On("Query", mock.Anything, mock.MatchedBy(func(c outbound.QueryCriteria) bool {
		return c.Offset == 40 && c.Limit == 20 && c.OrderBy == generation.OrderByLikeCount && c.Ascending
	})).Return([]*generation.Generation{}, nil)

	_, err := svc.Fetch(context.Background(), inbound.FeedQuery{
		OrderBy:   generation.OrderByLikeCount,
		Ascending: true,
		Limit:     20,
		Offset:    40,
	})
	require.NoError(t, err)
	genRepo.AssertExpectations(t)
}

func TestFetchRejectsUnknownOrderColumn(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Fetch(context.Background(), inbound.FeedQuery{OrderBy: "password_hash"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.GetCode(err))
}

func TestFetchFiltersByUserAndModel(t *testing.T) {
	svc, genRepo, _ := newTestService(t)

	owner := uuid.New()
	model := "img-model-1"

	genRepo.On("Query", mock.Anything, mock.MatchedBy(func(c outbound.QueryCriteria) bool {
		return c.UserID != nil && *c.UserID == owner && c.Model != nil && *c.Model == model
	})).Return([]*generation.Generation{}, nil)

	_, err := svc.Fetch(context.Background(), inbound.FeedQuery{UserID: &owner, Model: &model})
	require.NoError(t, err)
	genRepo.AssertExpectations(t)
}

func TestFetchDecoratesViewerLikes(t *testing.T) {
	svc, genRepo, likeRepo := newTestService(t)

	viewer := uuid.New()
	g1 := newStoredGeneration(t, "a.png", "b.png")
	g2 := newStoredGeneration(t, "c.png")

	genRepo.On("Query", mock.Anything, mock.Anything).Return([]*generation.Generation{g1, g2}, nil)
	likeRepo.On("LikedGenerationIDs", mock.Anything, viewer, []uuid.UUID{g1.ID(), g2.ID()}).
		Return(map[uuid.UUID]bool{g1.ID(): true}, nil)

	page, err := svc.Fetch(context.Background(), inbound.FeedQuery{ViewerID: &viewer})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)

	// The liked flag follows the generation, so both derived records of g1
	// carry it.
	assert.True(t, page.Items[0].UserLiked)
	assert.True(t, page.Items[1].UserLiked)
	assert.False(t, page.Items[2].UserLiked)
}

func TestFetchAnonymousViewerSkipsLikeLookup(t *testing.T) {
	svc, genRepo, likeRepo := newTestService(t)

	g := newStoredGeneration(t, "a.png")
	genRepo.On("Query", mock.Anything, mock.Anything).Return([]*generation.Generation{g}, nil)

	page, err := svc.Fetch(context.Background(), inbound.FeedQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.Items[0].UserLiked)
	likeRepo.AssertNotCalled(t, "LikedGenerationIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestFetchToleratesLikeLookupFailure(t *testing.T) {
	svc, genRepo, likeRepo := newTestService(t)

	viewer := uuid.New()
	g := newStoredGeneration(t, "a.png")

	genRepo.On("Query", mock.Anything, mock.Anything).Return([]*generation.Generation{g}, nil)
	likeRepo.On("LikedGenerationIDs", mock.Anything, viewer, mock.Anything).
		Return(nil, errors.New("redis down"))

	page, err := svc.Fetch(context.Background(), inbound.FeedQuery{ViewerID: &viewer})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.Items[0].UserLiked)
}

func TestFetchQueryFailure(t *testing.T) {
	svc, genRepo, _ := newTestService(t)

	genRepo.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := svc.Fetch(context.Background(), inbound.FeedQuery{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}
