// Package generation provides the application layer for creating image generations
// This implements the use cases defined in the inbound ports
package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/generation"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/internal/ports/outbound"
	"github.com/pictura/v1/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultVariations = 1
	maxVariations     = 4
)

// GenerationService implements the generation use cases
type GenerationService struct {
	generationRepo outbound.GenerationRepository
	userRepo       outbound.UserRepository
	aiService      outbound.AIService
	storage        outbound.StorageService
	logger         *zap.Logger
}

// NewGenerationService creates a new generation service
func NewGenerationService(
	generationRepo outbound.GenerationRepository,
	userRepo outbound.UserRepository,
	aiService outbound.AIService,
	storage outbound.StorageService,
	logger *zap.Logger,
) inbound.GenerationService {
	return &GenerationService{
		generationRepo: generationRepo,
		userRepo:       userRepo,
		aiService:      aiService,
		storage:        storage,
		logger:         logger.Named("generation-service"),
	}
}

// Generate runs the full image generation pipeline: optional prompt
// enhancement, one AI call per requested variation, storage uploads, and
// food-mode recipe generation. Enhancement, individual image failures, and
// recipe failures are tolerated; the request only fails when no image at all
// could be produced and stored.
func (s *GenerationService) Generate(ctx context.Context, cmd inbound.GenerateCommand) (*inbound.GenerationDTO, error) {
	if strings.TrimSpace(cmd.Prompt) == "" {
		return nil, errors.NewValidationError("prompt is required")
	}

	aspectRatio := cmd.AspectRatio
	if aspectRatio == "" {
		aspectRatio = generation.AspectSquare
	}
	if err := aspectRatio.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	variations := cmd.NumVariations
	if variations <= 0 {
		variations = defaultVariations
	}
	if variations > maxVariations {
		variations = maxVariations
	}

	s.logger.Info("Starting image generation",
		zap.String("user_id", cmd.UserID.String()),
		zap.Int("variations", variations),
		zap.Bool("food_mode", cmd.FoodMode),
	)

	if _, err := s.userRepo.FindByID(ctx, cmd.UserID); err != nil {
		return nil, errors.NewUserNotFoundError(cmd.UserID.String())
	}

	prompt := cmd.Prompt
	enhanced := ""
	if cmd.EnhancePrompt {
		if better, err := s.aiService.EnhancePrompt(ctx, cmd.Prompt); err != nil {
			s.logger.Warn("Prompt enhancement failed, using original prompt",
				zap.Error(err),
			)
		} else if strings.TrimSpace(better) != "" {
			prompt = better
			enhanced = better
		}
	}

	// Food mode frames the image prompt as restaurant photography of the dish.
	imagePrompt := prompt
	if cmd.FoodMode {
		dish := strings.TrimSpace(cmd.DishName)
		if dish == "" {
			dish = "a dish"
		}
		imagePrompt = fmt.Sprintf("Restaurant-style photograph of %s, %s", dish, prompt)
	}

	refs := s.decodeReferenceImages(cmd.ReferenceImages)

	urls := s.generateAndStore(ctx, cmd.UserID, imagePrompt, aspectRatio, variations, refs)
	if len(urls) == 0 {
		return nil, errors.NewGenerationFailedError(
			fmt.Errorf("no images produced for %d requested variations", variations),
		)
	}

	gen, err := generation.NewGeneration(cmd.UserID, cmd.Prompt, s.modelName(), aspectRatio, urls)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create generation")
	}
	if enhanced != "" {
		gen.SetEnhancedPrompt(enhanced)
	}
	gen.Publish()

	if cmd.FoodMode {
		dish := strings.TrimSpace(cmd.DishName)
		if dish == "" {
			dish = cmd.Prompt
		}
		s.attachRecipe(ctx, gen, dish, cmd.CuisineType)
	}

	// A persistence failure after images were produced is logged, not
	// surfaced. The user already has their images.
	if err := s.generationRepo.Create(ctx, gen); err != nil {
		s.logger.Error("Failed to persist generation",
			zap.String("generation_id", gen.ID().String()),
			zap.Error(err),
		)
	}

	for _, event := range gen.Events() {
		s.logger.Debug("Domain event",
			zap.String("event", event.EventName()),
			zap.String("generation_id", gen.ID().String()),
		)
	}

	s.logger.Info("Image generation completed",
		zap.String("generation_id", gen.ID().String()),
		zap.Int("images", len(urls)),
	)

	return s.entityToDTO(gen), nil
}

// GetByID retrieves a generation by ID
func (s *GenerationService) GetByID(ctx context.Context, id uuid.UUID) (*inbound.GenerationDTO, error) {
	gen, err := s.generationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("find generation", err)
	}
	if gen == nil {
		return nil, errors.NewGenerationNotFoundError(id.String())
	}
	return s.entityToDTO(gen), nil
}

// decodeReferenceImages turns inline image data URLs into raw bytes for
// the AI service. Entries that aren't data URLs or don't decode are
// dropped, not fatal.
func (s *GenerationService) decodeReferenceImages(dataURLs []string) []outbound.ReferenceImage {
	refs := make([]outbound.ReferenceImage, 0, len(dataURLs))
	for _, raw := range dataURLs {
		if !strings.HasPrefix(raw, "data:image/") {
			continue
		}
		meta, payload, found := strings.Cut(raw, ",")
		if !found {
			continue
		}
		mimeType := strings.TrimPrefix(meta, "data:")
		mimeType = strings.TrimSuffix(mimeType, ";base64")

		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			s.logger.Warn("Skipping undecodable reference image", zap.Error(err))
			continue
		}
		refs = append(refs, outbound.ReferenceImage{Data: data, MIMEType: mimeType})
	}
	return refs
}

// generateAndStore produces up to n images and uploads each one. A failed
// generation or upload skips that variation only.
func (s *GenerationService) generateAndStore(ctx context.Context, userID uuid.UUID, prompt string, ratio generation.AspectRatio, n int, refs []outbound.ReferenceImage) []string {
	urls := make([]string, 0, n)
	ts := time.Now().UnixMilli()

	for i := 0; i < n; i++ {
		img, err := s.aiService.GenerateImage(ctx, prompt, ratio, refs)
		if err != nil {
			s.logger.Warn("Image variation failed",
				zap.Int("variation", i),
				zap.Error(err),
			)
			continue
		}

		key := fmt.Sprintf("%s/%d_%d.png", userID.String(), ts, i)
		url, err := s.storage.Upload(ctx, key, img.Data, img.MIMEType)
		if err != nil {
			s.logger.Warn("Image upload failed",
				zap.Int("variation", i),
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

// attachRecipe asks the AI for food-mode recipe content. Failures leave the
// generation without a recipe. A caller-supplied cuisine stands in when
// the model output names none.
func (s *GenerationService) attachRecipe(ctx context.Context, gen *generation.Generation, dish, cuisine string) {
	resp, err := s.aiService.GenerateRecipe(ctx, dish)
	if err != nil {
		s.logger.Warn("Recipe generation failed",
			zap.String("generation_id", gen.ID().String()),
			zap.Error(err),
		)
		return
	}
	if resp.Cuisine == "" {
		resp.Cuisine = cuisine
	}
	gen.AttachRecipe(resp.Recipe, resp.Ingredients, generation.CuisineType(resp.Cuisine))
}

func (s *GenerationService) modelName() string {
	return "gemini-2.5-flash-image"
}

// entityToDTO converts domain entity to DTO
func (s *GenerationService) entityToDTO(gen *generation.Generation) *inbound.GenerationDTO {
	records := gen.DisplayRecords()
	urls := make([]string, len(records))
	for i, r := range records {
		urls[i] = r.ImagePath
	}

	return &inbound.GenerationDTO{
		ID:             gen.ID(),
		UserID:         gen.UserID(),
		Title:          gen.Title(),
		OriginalPrompt: gen.OriginalPrompt(),
		EnhancedPrompt: gen.EnhancedPrompt(),
		Model:          gen.Model(),
		AspectRatio:    gen.AspectRatio(),
		ImageURLs:      urls,
		Recipe:         gen.Recipe(),
		Ingredients:    gen.Ingredients(),
		Cuisine:        gen.Cuisine(),
		LikeCount:      gen.LikeCount(),
		CreatedAt:      gen.CreatedAt().Format(time.RFC3339),
	}
}
