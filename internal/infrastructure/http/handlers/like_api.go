package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/infrastructure/http/middleware"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/pkg/errors"
	"go.uber.org/zap"
)

// LikeHandlers handles like API requests
type LikeHandlers struct {
	likeService inbound.LikeService
	logger      *zap.Logger
}

// NewLikeHandlers creates a new like handlers instance
func NewLikeHandlers(likeService inbound.LikeService, logger *zap.Logger) *LikeHandlers {
	return &LikeHandlers{
		likeService: likeService,
		logger:      logger,
	}
}

// ToggleRequest identifies the generation whose like state to flip
type ToggleRequest struct {
	GenerationID uuid.UUID `json:"generation_id"`
}

// Get handles GET /api/v1/likes?generation_id=
// Anonymous viewers get liked:false plus the aggregate count.
func (h *LikeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	generationID, err := uuid.Parse(r.URL.Query().Get("generation_id"))
	if err != nil {
		writeError(h.logger, w, r, errors.NewValidationError("generation_id must be a UUID"))
		return
	}

	// uuid.Nil never matches a likes row, so anonymous viewers see the
	// count with liked set to false.
	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	state, err := h.likeService.Get(r.Context(), generationID, viewerID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, state)
}

// Toggle handles POST /api/v1/likes
func (h *LikeHandlers) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(h.logger, w, r, errors.NewUnauthorizedError(""))
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, r, errors.NewBadRequestError("Invalid JSON payload"))
		return
	}
	if req.GenerationID == uuid.Nil {
		writeError(h.logger, w, r, errors.NewValidationError("generation_id is required"))
		return
	}

	state, err := h.likeService.Toggle(r.Context(), req.GenerationID, userID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, state)
}
