// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/generation"
	"github.com/pictura/v1/internal/domain/user"
)

// GenerationRepository defines the interface for generation persistence
type GenerationRepository interface {
	Create(ctx context.Context, gen *generation.Generation) error
	Update(ctx context.Context, gen *generation.Generation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*generation.Generation, error)

	// Query returns generations matching the criteria, ordered and windowed
	// by [Offset, Offset+Limit).
	Query(ctx context.Context, criteria QueryCriteria) ([]*generation.Generation, error)

	// Like toggling, executed transactionally with the count update.
	AddLike(ctx context.Context, generationID, userID uuid.UUID) (likeCount int, err error)
	RemoveLike(ctx context.Context, generationID, userID uuid.UUID) (likeCount int, err error)
}

// QueryCriteria defines filter, order and range parameters for feed queries.
// Filters are optional; nil means no restriction.
type QueryCriteria struct {
	UserID    *uuid.UUID
	Model     *string
	OrderBy   generation.OrderBy
	Ascending bool
	Offset    int
	Limit     int
}

// LikeRepository defines the interface for like lookups
type LikeRepository interface {
	// LikedGenerationIDs returns which of the given generation ids the user
	// has liked.
	LikedGenerationIDs(ctx context.Context, userID uuid.UUID, generationIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	Exists(ctx context.Context, generationID, userID uuid.UUID) (bool, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	Update(ctx context.Context, user *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Counter operations
	Increment(ctx context.Context, key string) (int64, error)
	Decrement(ctx context.Context, key string) (int64, error)
}

// StorageService defines the interface for file storage
type StorageService interface {
	// Upload stores data under key and returns its public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// AIService defines the interface for AI operations
type AIService interface {
	// EnhancePrompt rewrites a user prompt into a richer image prompt.
	EnhancePrompt(ctx context.Context, prompt string) (string, error)

	// GenerateImage produces one image for the prompt at the given aspect
	// ratio, optionally guided by reference images. Callers request
	// multiple variations by calling it repeatedly.
	GenerateImage(ctx context.Context, prompt string, aspectRatio generation.AspectRatio, refs []ReferenceImage) (*GeneratedImage, error)

	// GenerateRecipe produces food-mode recipe text for a dish prompt.
	GenerateRecipe(ctx context.Context, prompt string) (*AIRecipeResponse, error)
}

// GeneratedImage is raw image output from the AI service
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// ReferenceImage is caller-supplied image data guiding generation
type ReferenceImage struct {
	Data     []byte
	MIMEType string
}

// AIRecipeResponse from AI recipe generation
type AIRecipeResponse struct {
	Ingredients string
	Recipe      string
	Cuisine     string
}

// EmailService defines the interface for sending emails
type EmailService interface {
	SendOTP(ctx context.Context, to string, code string) error
	SendWelcome(ctx context.Context, to string, name string) error
}

// TokenService defines the interface for issuing and validating auth tokens
type TokenService interface {
	Issue(userID uuid.UUID, email string) (string, error)
	Validate(ctx context.Context, token string) (*TokenClaims, error)
	Revoke(ctx context.Context, token string) error
}

// TokenClaims are the validated contents of an auth token
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}
