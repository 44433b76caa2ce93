// Package client provides the front-end core of Pictura as a plain Go
// library: an HTTP API client plus the gallery, card, prompt and auth
// controllers that drive the UI state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIClient handles communication with the backend API
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAPIClient creates a new API client instance
func NewAPIClient(baseURL string, logger *zap.Logger) *APIClient {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.Named("api-client"),
	}
}

// APIError is a non-2xx response carrying the server's machine-readable
// error code so callers can branch on it.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: %s (status %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

// ErrorCode extracts the machine code from an APIError, or falls back to
// the error's message.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := err.(*APIError); ok && apiErr.Code != "" {
		return apiErr.Code
	}
	return err.Error()
}

// GenerationRecord is one display entry in the gallery. A stored
// generation with several image URLs appears as several records sharing
// the same ID.
type GenerationRecord struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	ImagePath      string    `json:"image_path"`
	Title          string    `json:"title,omitempty"`
	OriginalPrompt string    `json:"original_prompt"`
	EnhancedPrompt string    `json:"enhanced_prompt,omitempty"`
	Model          string    `json:"model,omitempty"`
	AspectRatio    string    `json:"aspect_ratio,omitempty"`
	LikeCount      int       `json:"like_count"`
	CreatedAt      time.Time `json:"created_at"`
	UserLiked      bool      `json:"user_liked"`
}

// LikeState reports whether the viewer likes a generation and its count
type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// FeedQuery defines filter, order and range parameters for one feed page
type FeedQuery struct {
	OrderBy   string
	Ascending bool
	Limit     int
	Offset    int
	UserID    string
	Model     string
}

type feedEnvelope struct {
	Data  []GenerationRecord `json:"data"`
	Error *string            `json:"error"`
}

// FetchFeed fetches one page of the gallery feed. Token is optional;
// when present, records carry the viewer's like decoration.
func (c *APIClient) FetchFeed(ctx context.Context, token string, query FeedQuery) ([]GenerationRecord, error) {
	params := url.Values{}
	if query.OrderBy != "" {
		params.Set("order_by", query.OrderBy)
	}
	if query.Ascending {
		params.Set("ascending", "true")
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}
	if query.UserID != "" {
		params.Set("user_id", query.UserID)
	}
	if query.Model != "" {
		params.Set("model", query.Model)
	}

	path := "/api/v1/feed"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp feedEnvelope
	status, err := c.get(ctx, path, token, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, &APIError{Status: status, Code: *resp.Error}
	}
	if status >= 400 {
		return nil, &APIError{Status: status}
	}

	return resp.Data, nil
}

// Likes

// GetLike returns the viewer's like state for a generation
func (c *APIClient) GetLike(ctx context.Context, token string, generationID uuid.UUID) (*LikeState, error) {
	var resp LikeState
	path := "/api/v1/likes?generation_id=" + generationID.String()
	status, err := c.get(ctx, path, token, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &APIError{Status: status}
	}
	return &resp, nil
}

// ToggleLike flips the viewer's like on a generation. The server decides
// the direction from the stored rows; the request carries only the id.
func (c *APIClient) ToggleLike(ctx context.Context, token string, generationID uuid.UUID) (*LikeState, error) {
	req := map[string]string{"generation_id": generationID.String()}

	var resp LikeState
	status, err := c.post(ctx, "/api/v1/likes", token, req, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &APIError{Status: status}
	}
	return &resp, nil
}

// Generation

// GenerateParams carries one image generation request. ReferenceImages
// are inline data URLs.
type GenerateParams struct {
	Prompt          string   `json:"prompt"`
	DishName        string   `json:"dish_name,omitempty"`
	NumberOfImages  int      `json:"number_of_images,omitempty"`
	AspectRatio     string   `json:"aspect_ratio,omitempty"`
	FoodMode        bool     `json:"food_mode,omitempty"`
	EnhancePrompt   *bool    `json:"enhance_prompt,omitempty"`
	CuisineType     string   `json:"cuisine_type,omitempty"`
	ReferenceImages []string `json:"reference_images,omitempty"`
}

// GenerateResult is the generation pipeline outcome
type GenerateResult struct {
	Success        bool     `json:"success"`
	Images         []string `json:"images"`
	EnhancedPrompt string   `json:"enhanced_prompt,omitempty"`
	Recipe         string   `json:"recipe,omitempty"`
	Ingredients    string   `json:"ingredients,omitempty"`
	Message        string   `json:"message,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Generate runs one image generation request
func (c *APIClient) Generate(ctx context.Context, token string, params GenerateParams) (*GenerateResult, error) {
	var resp GenerateResult
	status, err := c.post(ctx, "/api/v1/generate", token, params, &resp)
	if err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, &APIError{Status: status, Code: resp.Error}
	}

	return &resp, nil
}

// Authentication

// AuthSession is the authenticated identity returned by login or signup
type AuthSession struct {
	UserID string
	Email  string
	Name   string
	Token  string
}

type authEnvelope struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
	Error string `json:"error"`
}

// CheckEmail reports whether an account exists for the email
func (c *APIClient) CheckEmail(ctx context.Context, email string) (bool, error) {
	req := map[string]string{"email": email}

	var resp struct {
		Exists bool   `json:"exists"`
		Error  string `json:"error"`
	}
	status, err := c.post(ctx, "/api/v1/auth/check", "", req, &resp)
	if err != nil {
		return false, err
	}
	if status >= 400 {
		return false, &APIError{Status: status, Code: resp.Error}
	}
	return resp.Exists, nil
}

// SendOTP asks the server to email a verification code
func (c *APIClient) SendOTP(ctx context.Context, email string) error {
	req := map[string]string{"email": email}

	var resp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	status, err := c.post(ctx, "/api/v1/auth/send-otp", "", req, &resp)
	if err != nil {
		return err
	}
	if status >= 400 {
		return &APIError{Status: status, Code: resp.Error}
	}
	return nil
}

// VerifyOTP checks a verification code
func (c *APIClient) VerifyOTP(ctx context.Context, email, code string) error {
	req := map[string]string{"email": email, "code": code}

	var resp struct {
		Verified bool   `json:"verified"`
		Error    string `json:"error"`
	}
	status, err := c.post(ctx, "/api/v1/auth/verify-otp", "", req, &resp)
	if err != nil {
		return err
	}
	if status >= 400 {
		return &APIError{Status: status, Code: resp.Error}
	}
	return nil
}

// Register creates an account for a verified email
func (c *APIClient) Register(ctx context.Context, email, name, password string) (*AuthSession, error) {
	req := map[string]string{"email": email, "name": name, "password": password}

	var resp authEnvelope
	status, err := c.post(ctx, "/api/v1/auth/register", "", req, &resp)
	if err != nil {
		return nil, err
	}

	return sessionFrom(&resp, status)
}

// Login authenticates an existing account
func (c *APIClient) Login(ctx context.Context, email, password string) (*AuthSession, error) {
	req := map[string]string{"email": email, "password": password}

	var resp authEnvelope
	status, err := c.post(ctx, "/api/v1/auth/login", "", req, &resp)
	if err != nil {
		return nil, err
	}

	return sessionFrom(&resp, status)
}

// Logout revokes the presented token
func (c *APIClient) Logout(ctx context.Context, token string) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	status, err := c.post(ctx, "/api/v1/auth/logout", token, struct{}{}, &resp)
	if err != nil {
		return err
	}
	if status >= 400 {
		return &APIError{Status: status, Code: resp.Error}
	}
	return nil
}

func sessionFrom(resp *authEnvelope, status int) (*AuthSession, error) {
	if !resp.Success || resp.User == nil {
		return nil, &APIError{Status: status, Code: resp.Error}
	}
	return &AuthSession{
		UserID: resp.User.ID,
		Email:  resp.User.Email,
		Name:   resp.User.Name,
		Token:  resp.Token,
	}, nil
}

// Helper methods

func (c *APIClient) post(ctx context.Context, path, token string, body interface{}, response interface{}) (int, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.doRequest(req, response)
}

func (c *APIClient) get(ctx context.Context, path, token string, response interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.doRequest(req, response)
}

// doRequest executes the request and decodes the body into response.
// Error statuses still decode: the server keeps its envelope shape on
// failure, and callers need the machine code it carries.
func (c *APIClient) doRequest(req *http.Request, response interface{}) (int, error) {
	c.logger.Debug("API request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Debug("API error response",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
	}

	if response != nil && len(body) > 0 {
		if err := json.Unmarshal(body, response); err != nil {
			if resp.StatusCode >= 400 {
				return resp.StatusCode, &APIError{Status: resp.StatusCode}
			}
			return resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return resp.StatusCode, nil
}
