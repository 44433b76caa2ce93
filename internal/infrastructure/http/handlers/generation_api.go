package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/generation"
	"github.com/pictura/v1/internal/infrastructure/http/middleware"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/pkg/errors"
	"go.uber.org/zap"
)

// GenerationHandlers handles image generation API requests
type GenerationHandlers struct {
	generationService inbound.GenerationService
	validate          *validator.Validate
	logger            *zap.Logger
}

// NewGenerationHandlers creates a new generation handlers instance
func NewGenerationHandlers(generationService inbound.GenerationService, logger *zap.Logger) *GenerationHandlers {
	return &GenerationHandlers{
		generationService: generationService,
		validate:          validator.New(),
		logger:            logger,
	}
}

// GenerateRequest represents one image generation request
type GenerateRequest struct {
	Prompt          string   `json:"prompt" validate:"required"`
	DishName        string   `json:"dish_name" validate:"max=200"`
	NumberOfImages  int      `json:"number_of_images" validate:"min=0,max=4"`
	AspectRatio     string   `json:"aspect_ratio"`
	FoodMode        bool     `json:"food_mode"`
	EnhancePrompt   *bool    `json:"enhance_prompt"`
	CuisineType     string   `json:"cuisine_type" validate:"max=100"`
	ReferenceImages []string `json:"reference_images" validate:"max=4"`
}

// GenerateResponse represents the generation pipeline result
type GenerateResponse struct {
	Success        bool     `json:"success"`
	Images         []string `json:"images"`
	EnhancedPrompt string   `json:"enhanced_prompt,omitempty"`
	Recipe         string   `json:"recipe,omitempty"`
	Ingredients    string   `json:"ingredients,omitempty"`
	Message        string   `json:"message,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Generate handles POST /api/v1/generate
func (h *GenerationHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(h.logger, w, r, errors.NewUnauthorizedError(""))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeGenerateError(w, errors.NewBadRequestError("Invalid JSON payload"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeGenerateError(w, errors.NewValidationError(err.Error()))
		return
	}

	// Enhancement defaults on when the field is omitted.
	enhance := true
	if req.EnhancePrompt != nil {
		enhance = *req.EnhancePrompt
	}

	dto, err := h.generationService.Generate(r.Context(), inbound.GenerateCommand{
		UserID:          userID,
		Prompt:          req.Prompt,
		DishName:        req.DishName,
		AspectRatio:     generation.AspectRatio(req.AspectRatio),
		NumVariations:   req.NumberOfImages,
		EnhancePrompt:   enhance,
		FoodMode:        req.FoodMode,
		CuisineType:     req.CuisineType,
		ReferenceImages: req.ReferenceImages,
	})
	if err != nil {
		h.logger.Error("Generation request failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		h.writeGenerateError(w, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, GenerateResponse{
		Success:        true,
		Images:         dto.ImageURLs,
		EnhancedPrompt: dto.EnhancedPrompt,
		Recipe:         dto.Recipe,
		Ingredients:    dto.Ingredients,
		Message:        generatedMessage(len(dto.ImageURLs)),
	})
}

// GetByID handles GET /api/v1/generations/{id}
func (h *GenerationHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(h.logger, w, r, errors.NewValidationError("id must be a UUID"))
		return
	}

	dto, err := h.generationService.GetByID(r.Context(), id)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, APIResponse{
		Success: true,
		Data:    dto,
	})
}

func (h *GenerationHandlers) writeGenerateError(w http.ResponseWriter, err error) {
	appErr := errors.Wrap(err, "generation failed")
	writeJSON(h.logger, w, appErr.StatusCode(), GenerateResponse{
		Success: false,
		Images:  []string{},
		Error:   appErr.Message,
	})
}

func generatedMessage(count int) string {
	return fmt.Sprintf("Generated %d image(s) successfully.", count)
}
