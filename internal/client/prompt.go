package client

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// EmptyPromptMessage is shown when the user submits without a prompt.
// The check is local; no request goes out.
const EmptyPromptMessage = "Please describe your image"

// GenerateAPI is the prompt controller's view of the generation endpoint
type GenerateAPI interface {
	Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error)
}

// generateClient binds the API client's generate endpoint to a token
type generateClient struct {
	api   *APIClient
	token string
}

// NewGenerateClient creates a GenerateAPI bound to a viewer token
func NewGenerateClient(api *APIClient, token string) GenerateAPI {
	return &generateClient{api: api, token: token}
}

func (c *generateClient) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	return c.api.Generate(ctx, c.token, params)
}

// PromptController collects generation parameters, runs the request and
// reflects the outcome into view state. One generation runs at a time;
// a submit while one is in flight is dropped.
type PromptController struct {
	api    GenerateAPI
	logger *zap.Logger

	mu             sync.Mutex
	inFlight       bool
	images         []string
	enhancedPrompt string
	recipe         string
	ingredients    string
	errMsg         string
}

// NewPromptController creates a prompt controller
func NewPromptController(api GenerateAPI, logger *zap.Logger) *PromptController {
	return &PromptController{
		api:    api,
		logger: logger.Named("prompt"),
	}
}

// Submit runs one generation request. An empty prompt is rejected
// locally before any network call.
func (p *PromptController) Submit(ctx context.Context, params GenerateParams) {
	if strings.TrimSpace(params.Prompt) == "" {
		p.mu.Lock()
		p.errMsg = EmptyPromptMessage
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.errMsg = ""
	p.mu.Unlock()

	result, err := p.api.Generate(ctx, params)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false

	if err != nil {
		p.logger.Error("Generation failed", zap.Error(err))
		p.errMsg = ErrorCode(err)
		return
	}

	p.images = result.Images
	p.enhancedPrompt = result.EnhancedPrompt
	p.recipe = result.Recipe
	p.ingredients = result.Ingredients
}

// Images returns the URLs of the last successful generation
func (p *PromptController) Images() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.images
}

// EnhancedPrompt returns the rewritten prompt of the last generation
func (p *PromptController) EnhancedPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enhancedPrompt
}

// Recipe returns the food-mode recipe text, if any
func (p *PromptController) Recipe() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recipe
}

// Ingredients returns the food-mode ingredient list, if any
func (p *PromptController) Ingredients() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ingredients
}

// Err returns the user-visible error of the last submit, or empty
func (p *PromptController) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// InFlight reports whether a generation is currently running
func (p *PromptController) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}
