// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/generation"
)

// GenerationService defines the use cases for creating image generations
type GenerationService interface {
	Generate(ctx context.Context, cmd GenerateCommand) (*GenerationDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*GenerationDTO, error)
}

// GenerateCommand contains data for one image generation request.
// ReferenceImages are data URLs; entries that aren't inline image data
// are dropped.
type GenerateCommand struct {
	UserID          uuid.UUID
	Prompt          string
	DishName        string
	AspectRatio     generation.AspectRatio
	NumVariations   int
	EnhancePrompt   bool
	FoodMode        bool
	CuisineType     string
	ReferenceImages []string
}

// GenerationDTO is the data transfer object for a stored generation
type GenerationDTO struct {
	ID             uuid.UUID              `json:"id"`
	UserID         uuid.UUID              `json:"user_id"`
	Title          string                 `json:"title,omitempty"`
	OriginalPrompt string                 `json:"original_prompt"`
	EnhancedPrompt string                 `json:"enhanced_prompt,omitempty"`
	Model          string                 `json:"model"`
	AspectRatio    generation.AspectRatio `json:"aspect_ratio"`
	ImageURLs      []string               `json:"image_urls"`
	Recipe         string                 `json:"recipe,omitempty"`
	Ingredients    string                 `json:"ingredients,omitempty"`
	Cuisine        generation.CuisineType `json:"cuisine,omitempty"`
	LikeCount      int                    `json:"like_count"`
	CreatedAt      string                 `json:"created_at"`
}

// FeedService defines the read-side use cases for the image feed
type FeedService interface {
	// Fetch returns one window of display records. ViewerID, when set,
	// decorates each record with whether that viewer has liked it.
	Fetch(ctx context.Context, query FeedQuery) (*FeedPage, error)
}

// FeedQuery defines filter, order and range parameters for one feed window
type FeedQuery struct {
	OrderBy   generation.OrderBy
	Ascending bool
	Limit     int
	Offset    int
	UserID    *uuid.UUID
	Model     *string
	ViewerID  *uuid.UUID
}

// FeedItem is one display record plus viewer-specific decoration
type FeedItem struct {
	generation.DisplayRecord
	UserLiked bool `json:"user_liked"`
}

// FeedPage is one window of the feed
type FeedPage struct {
	Items []FeedItem `json:"items"`
}

// LikeService defines the use cases for liking generations
type LikeService interface {
	// Toggle flips the viewer's like on a generation and returns the new state.
	Toggle(ctx context.Context, generationID, userID uuid.UUID) (*LikeState, error)
	// Get returns the viewer's current like state for a generation.
	Get(ctx context.Context, generationID, userID uuid.UUID) (*LikeState, error)
}

// LikeState reports whether the viewer likes a generation and its total count
type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// AccountService defines the use cases for authentication and registration
type AccountService interface {
	// CheckEmail reports whether an account exists for the email.
	CheckEmail(ctx context.Context, email string) (exists bool, err error)

	// SendOTP issues a one-time code to the email for signup verification.
	SendOTP(ctx context.Context, email string) error

	// VerifyOTP checks a one-time code. A successful check marks the email
	// verified for a subsequent Register call.
	VerifyOTP(ctx context.Context, email, code string) error

	// Register creates a new account for a verified email.
	Register(ctx context.Context, cmd RegisterCommand) (*AuthResult, error)

	// Login authenticates an existing account.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Logout revokes the presented token.
	Logout(ctx context.Context, token string) error
}

// RegisterCommand contains data for creating an account
type RegisterCommand struct {
	Email    string
	Name     string
	Password string
}

// AuthResult is returned on successful login or registration
type AuthResult struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Token  string    `json:"token"`
}
