// Package gemini implements AI operations on Google's Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pictura/v1/internal/domain/generation"
	"github.com/pictura/v1/internal/infrastructure/config"
	"github.com/pictura/v1/internal/ports/outbound"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const enhancementInstruction = `You are an image-prompt enhancement engine.

RULES:
1. Output ONLY the enhanced prompt text.
2. No explanations, no bullet points, no markdown.
3. No assistant-style tone.
4. No commentary.
5. 200-800 characters only.
6. Pure descriptive visual prompt.
7. Must NOT wrap the output in quotes.
8. Must NOT say "Here is your enhanced prompt".

CONTEXT:
Enhance this prompt for high-quality, visually detailed, photorealistic imagery.

USER PROMPT:
%q

RETURN ONLY THE ENHANCED PROMPT:`

const recipeInstruction = `Create a professional & highly detailed recipe for %s.
Format exactly as:
Cuisine: cuisine name
Ingredients:
- item 1
- item 2
Recipe:
1. step 1
2. step 2`

// Client calls the Gemini API for prompt enhancement, image generation
// and recipe generation.
type Client struct {
	client     *genai.Client
	textModel  string
	imageModel string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient creates a new Gemini AI client
func NewClient(cfg *config.Config, logger *zap.Logger) (outbound.AIService, error) {
	if cfg.AI.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.AI.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client:     client,
		textModel:  cfg.AI.TextModel,
		imageModel: cfg.AI.ImageModel,
		timeout:    cfg.AI.RequestTimeout,
		logger:     logger.Named("gemini"),
	}, nil
}

// EnhancePrompt rewrites a user prompt into a richer image prompt
func (c *Client) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	instruction := fmt.Sprintf(enhancementInstruction, prompt)

	result, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(instruction), nil)
	if err != nil {
		return "", fmt.Errorf("prompt enhancement failed: %w", err)
	}

	enhanced := strings.TrimSpace(result.Text())
	if enhanced == "" {
		return "", fmt.Errorf("prompt enhancement returned empty response")
	}

	c.logger.Debug("Prompt enhanced",
		zap.Int("original_length", len(prompt)),
		zap.Int("enhanced_length", len(enhanced)),
		zap.Duration("duration", time.Since(start)),
	)

	return enhanced, nil
}

// GenerateImage produces one image for the prompt at the given aspect
// ratio. Reference images ride along as inline parts of the request.
func (c *Client) GenerateImage(ctx context.Context, prompt string, aspectRatio generation.AspectRatio, refs []outbound.ReferenceImage) (*outbound.GeneratedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: string(aspectRatio),
		},
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, ref := range refs {
		parts = append(parts, genai.NewPartFromBytes(ref.Data, ref.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := c.client.Models.GenerateContent(ctx, c.imageModel, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				c.logger.Debug("Image generated",
					zap.String("mime_type", part.InlineData.MIMEType),
					zap.Int("size_bytes", len(part.InlineData.Data)),
					zap.Duration("duration", time.Since(start)),
				)
				return &outbound.GeneratedImage{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	return nil, fmt.Errorf("image generation returned no image data")
}

// GenerateRecipe produces recipe text for a dish prompt
func (c *Client) GenerateRecipe(ctx context.Context, prompt string) (*outbound.AIRecipeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	instruction := fmt.Sprintf(recipeInstruction, prompt)

	result, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(instruction), nil)
	if err != nil {
		return nil, fmt.Errorf("recipe generation failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("recipe generation returned empty response")
	}

	return parseRecipe(text), nil
}

// parseRecipe splits model output into cuisine, ingredients and recipe
// sections. Output that doesn't follow the requested format is kept
// whole in the recipe field.
func parseRecipe(text string) *outbound.AIRecipeResponse {
	resp := &outbound.AIRecipeResponse{Recipe: text}

	cuisineStart := strings.Index(text, "Cuisine:")
	ingredientsStart := strings.Index(text, "Ingredients:")
	recipeStart := strings.Index(text, "Recipe:")

	if cuisineStart >= 0 {
		end := len(text)
		if ingredientsStart > cuisineStart {
			end = ingredientsStart
		} else if recipeStart > cuisineStart {
			end = recipeStart
		}
		resp.Cuisine = strings.TrimSpace(text[cuisineStart+len("Cuisine:") : end])
	}

	if ingredientsStart >= 0 {
		end := len(text)
		if recipeStart > ingredientsStart {
			end = recipeStart
		}
		resp.Ingredients = strings.TrimSpace(text[ingredientsStart+len("Ingredients:") : end])
	}

	if recipeStart >= 0 {
		resp.Recipe = strings.TrimSpace(text[recipeStart+len("Recipe:"):])
	}

	return resp
}
