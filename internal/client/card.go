package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LikeDebounce is the quiet period after the last click before the
// toggle request is sent. Clicks inside the window collapse into one
// network call reflecting the final state.
const LikeDebounce = 600 * time.Millisecond

// LikeAPI is the card's view of the like endpoints
type LikeAPI interface {
	Lookup(ctx context.Context, generationID uuid.UUID) (*LikeState, error)
	Toggle(ctx context.Context, generationID uuid.UUID) (*LikeState, error)
}

// likeClient binds the API client's like endpoints to a viewer token
type likeClient struct {
	api   *APIClient
	token string
}

// NewLikeClient creates a LikeAPI bound to a viewer token
func NewLikeClient(api *APIClient, token string) LikeAPI {
	return &likeClient{api: api, token: token}
}

func (c *likeClient) Lookup(ctx context.Context, generationID uuid.UUID) (*LikeState, error) {
	return c.api.GetLike(ctx, c.token, generationID)
}

func (c *likeClient) Toggle(ctx context.Context, generationID uuid.UUID) (*LikeState, error) {
	return c.api.ToggleLike(ctx, c.token, generationID)
}

// Card is one gallery entry. It renders a placeholder until its element
// first nears the viewport; only then does it mount the image and the
// like control, and look up the viewer's like state.
//
// The like toggle is optimistic: a click flips the displayed state
// immediately and arms a debounce timer; the server request goes out
// only after the window passes quiet. On failure the display rolls back
// to the last state a successful commit (or the initial lookup)
// confirmed.
type Card struct {
	record   GenerationRecord
	likes    LikeAPI
	policy   VisibilityPolicy
	debounce time.Duration
	onBurst  func()
	logger   *zap.Logger

	mu        sync.Mutex
	visible   bool
	committed LikeState
	pending   LikeState
	timer     *time.Timer
	closed    bool
}

// CardOption configures a card
type CardOption func(*Card)

// WithDebounce overrides the commit debounce window
func WithDebounce(d time.Duration) CardOption {
	return func(c *Card) { c.debounce = d }
}

// WithBurst installs the hook fired when a click transitions to liked,
// driving the one-shot heart animation.
func WithBurst(fn func()) CardOption {
	return func(c *Card) { c.onBurst = fn }
}

// NewCard creates a card for one display record. A nil LikeAPI means no
// viewer identity: the like lookup is skipped and clicks are ignored.
func NewCard(record GenerationRecord, likes LikeAPI, policy VisibilityPolicy, logger *zap.Logger, opts ...CardOption) *Card {
	c := &Card{
		record:   record,
		likes:    likes,
		policy:   policy,
		debounce: LikeDebounce,
		logger:   logger.Named("card"),
		committed: LikeState{
			Liked:     record.UserLiked,
			LikeCount: record.LikeCount,
		},
	}
	c.pending = c.committed

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Watch consumes the visibility stream until the element first becomes
// visible, then stops watching. Run it on its own goroutine; it returns
// when visibility fires, the stream closes, or ctx is done.
func (c *Card) Watch(ctx context.Context) {
	stream := c.policy.Observe()
	for {
		select {
		case visible, ok := <-stream:
			if !ok {
				return
			}
			if visible {
				c.HandleVisibility(ctx)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// HandleVisibility mounts the card's content on first intersection.
// Later calls are no-ops; the gate never re-arms.
func (c *Card) HandleVisibility(ctx context.Context) {
	c.mu.Lock()
	if c.visible || c.closed {
		c.mu.Unlock()
		return
	}
	c.visible = true
	c.mu.Unlock()

	if c.likes == nil {
		return
	}

	state, err := c.likes.Lookup(ctx, c.record.ID)
	if err != nil {
		// The record's own count still renders; liked stays false.
		c.logger.Debug("Like lookup failed",
			zap.String("generation_id", c.record.ID.String()),
			zap.Error(err),
		)
		return
	}

	c.mu.Lock()
	c.committed = *state
	c.pending = *state
	c.mu.Unlock()
}

// Click flips the like state optimistically and resets the debounce
// timer. The view updates before any network traffic; the commit fires
// after the window passes without another click.
func (c *Card) Click(ctx context.Context) {
	c.mu.Lock()

	if !c.visible || c.closed || c.likes == nil {
		c.mu.Unlock()
		return
	}

	c.pending.Liked = !c.pending.Liked
	burst := c.pending.Liked
	if c.pending.Liked {
		c.pending.LikeCount++
	} else if c.pending.LikeCount > 0 {
		c.pending.LikeCount--
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.commit(ctx)
	})
	c.mu.Unlock()

	if burst && c.onBurst != nil {
		c.onBurst()
	}
}

// commit sends the toggle. Only the record id goes over the wire; the
// server derives the direction from its stored rows and replies with
// the authoritative state.
func (c *Card) commit(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	id := c.record.ID
	c.mu.Unlock()

	state, err := c.likes.Toggle(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Error("Like commit failed",
			zap.String("generation_id", id.String()),
			zap.Error(err),
		)
		c.pending = c.committed
		return
	}

	c.committed = *state
	if c.timer == nil {
		// No clicks arrived while the request was in flight, so the
		// view resyncs to server truth.
		c.pending = c.committed
	}
}

// Close cancels any pending commit timer. Call on unmount; a card must
// not act after its element is gone.
func (c *Card) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Visible reports whether the card has mounted its content
func (c *Card) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// ImageURL returns the image source, or empty while the placeholder
// still renders.
func (c *Card) ImageURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.visible {
		return ""
	}
	return c.record.ImagePath
}

// Liked reports the displayed like state
func (c *Card) Liked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Liked
}

// LikeCount reports the displayed like count
func (c *Card) LikeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.LikeCount
}
