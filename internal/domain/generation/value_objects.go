package generation

import (
	"time"

	"github.com/google/uuid"
)

// AspectRatio is the requested output shape for generated images.
type AspectRatio string

const (
	AspectSquare        AspectRatio = "1:1"
	AspectPortrait      AspectRatio = "3:4"
	AspectLandscape     AspectRatio = "4:3"
	AspectTallPortrait  AspectRatio = "9:16"
	AspectWideLandscape AspectRatio = "16:9"
)

// Validate checks the aspect ratio against the supported set.
func (a AspectRatio) Validate() error {
	switch a {
	case AspectSquare, AspectPortrait, AspectLandscape, AspectTallPortrait, AspectWideLandscape:
		return nil
	}
	return ErrInvalidAspectRatio
}

// OrderBy names a sortable column for feed queries.
type OrderBy string

const (
	OrderByCreatedAt OrderBy = "created_at"
	OrderByLikeCount OrderBy = "like_count"
)

// Validate checks the order column against the sortable set.
func (o OrderBy) Validate() error {
	switch o {
	case OrderByCreatedAt, OrderByLikeCount:
		return nil
	}
	return ErrInvalidOrderBy
}

// CuisineType categorizes food-mode generations.
type CuisineType string

const (
	CuisineUnspecified   CuisineType = ""
	CuisineItalian       CuisineType = "italian"
	CuisineFrench        CuisineType = "french"
	CuisineChinese       CuisineType = "chinese"
	CuisineJapanese      CuisineType = "japanese"
	CuisineIndian        CuisineType = "indian"
	CuisineMexican       CuisineType = "mexican"
	CuisineMediterranean CuisineType = "mediterranean"
	CuisineAmerican      CuisineType = "american"
	CuisineOther         CuisineType = "other"
)

// DisplayRecord is one feed entry derived from a generation. A generation
// holding N image URLs yields N display records that share its id, so ids
// are not unique across a feed page.
type DisplayRecord struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	ImagePath      string      `json:"image_path"`
	Title          string      `json:"title,omitempty"`
	OriginalPrompt string      `json:"original_prompt"`
	EnhancedPrompt string      `json:"enhanced_prompt,omitempty"`
	Model          string      `json:"model,omitempty"`
	AspectRatio    AspectRatio `json:"aspect_ratio,omitempty"`
	LikeCount      int         `json:"like_count"`
	CreatedAt      time.Time   `json:"created_at"`
}
