package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/generation"
	"github.com/pictura/v1/internal/infrastructure/http/middleware"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/pkg/errors"
	"go.uber.org/zap"
)

// FeedHandlers handles feed API requests
type FeedHandlers struct {
	feedService inbound.FeedService
	logger      *zap.Logger
}

// NewFeedHandlers creates a new feed handlers instance
func NewFeedHandlers(feedService inbound.FeedService, logger *zap.Logger) *FeedHandlers {
	return &FeedHandlers{
		feedService: feedService,
		logger:      logger,
	}
}

// FeedResponse carries one window of display records. Error is null on
// success and a message string on failure, with Data always present.
type FeedResponse struct {
	Data  []inbound.FeedItem `json:"data"`
	Error *string            `json:"error"`
}

// Fetch handles GET /api/v1/feed
func (h *FeedHandlers) Fetch(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		h.writeFeedError(w, err)
		return
	}

	if viewerID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		query.ViewerID = &viewerID
	}

	page, err := h.feedService.Fetch(r.Context(), *query)
	if err != nil {
		h.logger.Error("Feed fetch failed", zap.Error(err))
		h.writeFeedError(w, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, FeedResponse{
		Data:  page.Items,
		Error: nil,
	})
}

func (h *FeedHandlers) parseQuery(r *http.Request) (*inbound.FeedQuery, error) {
	q := r.URL.Query()
	query := &inbound.FeedQuery{
		OrderBy:   generation.OrderBy(q.Get("order_by")),
		Ascending: q.Get("ascending") == "true",
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewValidationError("limit must be an integer")
		}
		query.Limit = limit
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewValidationError("offset must be an integer")
		}
		query.Offset = offset
	}

	if raw := q.Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.NewValidationError("user_id must be a UUID")
		}
		query.UserID = &userID
	}

	if model := q.Get("model"); model != "" {
		query.Model = &model
	}

	return query, nil
}

// writeFeedError keeps the feed envelope shape on failure: an empty data
// slice plus the error message.
func (h *FeedHandlers) writeFeedError(w http.ResponseWriter, err error) {
	appErr := errors.Wrap(err, "feed fetch failed")
	msg := appErr.Message
	writeJSON(h.logger, w, appErr.StatusCode(), FeedResponse{
		Data:  []inbound.FeedItem{},
		Error: &msg,
	})
}
