// Package generation contains the core domain logic for image generations.
// A generation is the stored result of one image-generation request and may
// carry several image URLs joined into a single path field.
package generation

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/shared"
)

// PathDelimiter joins multiple image URLs inside a single stored record.
const PathDelimiter = ","

// Visibility controls who can see a generation in the public feed.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// Generation represents the core generation entity in our domain.
type Generation struct {
	id      uuid.UUID
	version int64

	userID uuid.UUID
	title  string

	originalPrompt string
	enhancedPrompt string
	model          string
	aspectRatio    AspectRatio

	// Comma-joined public image URLs.
	imagePath string

	// Food mode extras
	recipe      string
	ingredients string
	cuisine     CuisineType

	likeCount  int
	visibility Visibility

	createdAt time.Time
	updatedAt time.Time

	events []shared.DomainEvent
}

// NewGeneration creates a new Generation with validation.
func NewGeneration(userID uuid.UUID, originalPrompt, model string, aspectRatio AspectRatio, imageURLs []string) (*Generation, error) {
	if strings.TrimSpace(originalPrompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if err := aspectRatio.Validate(); err != nil {
		return nil, err
	}
	if len(imageURLs) == 0 {
		return nil, ErrNoImages
	}

	now := time.Now()
	g := &Generation{
		id:             uuid.New(),
		version:        1,
		userID:         userID,
		originalPrompt: originalPrompt,
		model:          model,
		aspectRatio:    aspectRatio,
		imagePath:      strings.Join(imageURLs, PathDelimiter),
		visibility:     VisibilityPrivate,
		createdAt:      now,
		updatedAt:      now,
		events:         []shared.DomainEvent{},
	}

	g.addEvent(GenerationCreatedEvent{
		GenerationID: g.id,
		UserID:       userID,
		ImageCount:   len(imageURLs),
		CreatedAt:    now,
	})

	return g, nil
}

// Reconstruct rebuilds a generation from persisted state without validation
// and without raising events.
func Reconstruct(
	id uuid.UUID,
	version int64,
	userID uuid.UUID,
	title, originalPrompt, enhancedPrompt, model string,
	aspectRatio AspectRatio,
	imagePath string,
	recipe, ingredients string,
	cuisine CuisineType,
	likeCount int,
	visibility Visibility,
	createdAt, updatedAt time.Time,
) *Generation {
	return &Generation{
		id:             id,
		version:        version,
		userID:         userID,
		title:          title,
		originalPrompt: originalPrompt,
		enhancedPrompt: enhancedPrompt,
		model:          model,
		aspectRatio:    aspectRatio,
		imagePath:      imagePath,
		recipe:         recipe,
		ingredients:    ingredients,
		cuisine:        cuisine,
		likeCount:      likeCount,
		visibility:     visibility,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		events:         []shared.DomainEvent{},
	}
}

// ID returns the generation's unique identifier
func (g *Generation) ID() uuid.UUID {
	return g.id
}

// UserID returns the owning user's identifier
func (g *Generation) UserID() uuid.UUID {
	return g.userID
}

// Version returns the generation's version
func (g *Generation) Version() int64 {
	return g.version
}

// Title returns the generation's title
func (g *Generation) Title() string {
	return g.title
}

// OriginalPrompt returns the prompt as the user entered it
func (g *Generation) OriginalPrompt() string {
	return g.originalPrompt
}

// EnhancedPrompt returns the AI-enhanced prompt, if any
func (g *Generation) EnhancedPrompt() string {
	return g.enhancedPrompt
}

// Model returns the AI model that produced the images
func (g *Generation) Model() string {
	return g.model
}

// AspectRatio returns the requested aspect ratio
func (g *Generation) AspectRatio() AspectRatio {
	return g.aspectRatio
}

// ImagePath returns the raw comma-joined image URL field
func (g *Generation) ImagePath() string {
	return g.imagePath
}

// Recipe returns the food-mode recipe text, if any
func (g *Generation) Recipe() string {
	return g.recipe
}

// Ingredients returns the food-mode ingredient list text, if any
func (g *Generation) Ingredients() string {
	return g.ingredients
}

// Cuisine returns the food-mode cuisine type
func (g *Generation) Cuisine() CuisineType {
	return g.cuisine
}

// LikeCount returns the number of likes
func (g *Generation) LikeCount() int {
	return g.likeCount
}

// Visibility returns the generation's visibility
func (g *Generation) Visibility() Visibility {
	return g.visibility
}

// CreatedAt returns when the generation was created
func (g *Generation) CreatedAt() time.Time {
	return g.createdAt
}

// UpdatedAt returns when the generation was last updated
func (g *Generation) UpdatedAt() time.Time {
	return g.updatedAt
}

// SetTitle sets the display title
func (g *Generation) SetTitle(title string) {
	g.title = title
	g.updatedAt = time.Now()
}

// SetEnhancedPrompt records the AI-enhanced prompt used for generation
func (g *Generation) SetEnhancedPrompt(prompt string) {
	g.enhancedPrompt = prompt
	g.updatedAt = time.Now()
}

// AttachRecipe attaches food-mode recipe content
func (g *Generation) AttachRecipe(recipe, ingredients string, cuisine CuisineType) {
	g.recipe = recipe
	g.ingredients = ingredients
	g.cuisine = cuisine
	g.updatedAt = time.Now()
}

// Publish makes the generation visible in the public feed
func (g *Generation) Publish() {
	g.visibility = VisibilityPublic
	g.updatedAt = time.Now()
}

// Like increments the like count
func (g *Generation) Like(userID uuid.UUID) {
	g.likeCount++
	g.addEvent(GenerationLikedEvent{
		GenerationID: g.id,
		UserID:       userID,
		LikedAt:      time.Now(),
	})
}

// Unlike decrements the like count, floored at zero
func (g *Generation) Unlike(userID uuid.UUID) {
	if g.likeCount > 0 {
		g.likeCount--
	}
	g.addEvent(GenerationUnlikedEvent{
		GenerationID: g.id,
		UserID:       userID,
		UnlikedAt:    time.Now(),
	})
}

// DisplayRecords expands the comma-joined image path into one record per
// URL. Every derived record shares the generation's fields and id; only the
// image URL differs. Empty segments are skipped.
func (g *Generation) DisplayRecords() []DisplayRecord {
	urls := strings.Split(g.imagePath, PathDelimiter)
	records := make([]DisplayRecord, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		records = append(records, DisplayRecord{
			ID:             g.id,
			UserID:         g.userID,
			ImagePath:      u,
			Title:          g.title,
			OriginalPrompt: g.originalPrompt,
			EnhancedPrompt: g.enhancedPrompt,
			Model:          g.model,
			AspectRatio:    g.aspectRatio,
			LikeCount:      g.likeCount,
			CreatedAt:      g.createdAt,
		})
	}
	return records
}

// addEvent adds a domain event to be dispatched
func (g *Generation) addEvent(event shared.DomainEvent) {
	g.events = append(g.events, event)
}

// Events returns and clears pending domain events
func (g *Generation) Events() []shared.DomainEvent {
	events := g.events
	g.events = []shared.DomainEvent{}
	return events
}
