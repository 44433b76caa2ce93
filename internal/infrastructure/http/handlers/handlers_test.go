package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/generation"
	"github.com/pictura/v1/internal/infrastructure/http/middleware"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Mock inbound services

type MockFeedService struct {
	mock.Mock
}

func (m *MockFeedService) Fetch(ctx context.Context, query inbound.FeedQuery) (*inbound.FeedPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.FeedPage), args.Error(1)
}

type MockLikeService struct {
	mock.Mock
}

func (m *MockLikeService) Toggle(ctx context.Context, generationID, userID uuid.UUID) (*inbound.LikeState, error) {
	args := m.Called(ctx, generationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.LikeState), args.Error(1)
}

func (m *MockLikeService) Get(ctx context.Context, generationID, userID uuid.UUID) (*inbound.LikeState, error) {
	args := m.Called(ctx, generationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.LikeState), args.Error(1)
}

type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Generate(ctx context.Context, cmd inbound.GenerateCommand) (*inbound.GenerationDTO, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.GenerationDTO), args.Error(1)
}

func (m *MockGenerationService) GetByID(ctx context.Context, id uuid.UUID) (*inbound.GenerationDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.GenerationDTO), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CheckEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountService) SendOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAccountService) VerifyOTP(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *MockAccountService) Register(ctx context.Context, cmd inbound.RegisterCommand) (*inbound.AuthResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.AuthResult), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, email, password string) (*inbound.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.AuthResult), args.Error(1)
}

func (m *MockAccountService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// Helpers

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authenticated(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), userID, "user@example.com"))
}

func displayRecord(id uuid.UUID, url string) generation.DisplayRecord {
	return generation.DisplayRecord{ID: id, ImagePath: url}
}

// Feed handler

func TestFeedFetchSuccess(t *testing.T) {
	svc := new(MockFeedService)
	h := NewFeedHandlers(svc, zaptest.NewLogger(t))

	genID := uuid.New()
	svc.On("Fetch", mock.Anything, mock.Anything).Return(&inbound.FeedPage{
		Items: []inbound.FeedItem{
			{DisplayRecord: displayRecord(genID, "https://cdn.example.com/a.png")},
			{DisplayRecord: displayRecord(genID, "https://cdn.example.com/b.png"), UserLiked: true},
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.Fetch(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp FeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Error)
	assert.Len(t, resp.Data, 2)
	assert.True(t, resp.Data[1].UserLiked)
}

func TestFeedFetchPassesQueryParams(t *testing.T) {
	svc := new(MockFeedService)
	h := NewFeedHandlers(svc, zaptest.NewLogger(t))

	userID := uuid.New()
	svc.On("Fetch", mock.Anything, mock.MatchedBy(func(q inbound.FeedQuery) bool {
		return q.OrderBy == generation.OrderByLikeCount &&
			q.Limit == 20 && q.Offset == 40 &&
			q.UserID != nil && *q.UserID == userID &&
			q.Model != nil && *q.Model == "gemini-2.5-flash-image"
	})).Return(&inbound.FeedPage{Items: []inbound.FeedItem{}}, nil)

	target := "/api/v1/feed?order_by=like_count&limit=20&offset=40&user_id=" +
		userID.String() + "&model=gemini-2.5-flash-image"
	rec := httptest.NewRecorder()
	h.Fetch(rec, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestFeedFetchViewerIdentityForwarded(t *testing.T) {
	svc := new(MockFeedService)
	h := NewFeedHandlers(svc, zaptest.NewLogger(t))

	viewerID := uuid.New()
	svc.On("Fetch", mock.Anything, mock.MatchedBy(func(q inbound.FeedQuery) bool {
		return q.ViewerID != nil && *q.ViewerID == viewerID
	})).Return(&inbound.FeedPage{Items: []inbound.FeedItem{}}, nil)

	rec := httptest.NewRecorder()
	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil), viewerID)
	h.Fetch(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestFeedFetchFailureKeepsEnvelopeShape(t *testing.T) {
	svc := new(MockFeedService)
	h := NewFeedHandlers(svc, zaptest.NewLogger(t))

	svc.On("Fetch", mock.Anything, mock.Anything).
		Return(nil, errors.NewDatabaseError("query feed", assert.AnError))

	rec := httptest.NewRecorder()
	h.Fetch(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp FeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, *resp.Error)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestFeedFetchRejectsBadLimit(t *testing.T) {
	svc := new(MockFeedService)
	h := NewFeedHandlers(svc, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.Fetch(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed?limit=soon", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

// Like handlers

func TestLikeGetAnonymousUsesNilViewer(t *testing.T) {
	svc := new(MockLikeService)
	h := NewLikeHandlers(svc, zaptest.NewLogger(t))

	genID := uuid.New()
	svc.On("Get", mock.Anything, genID, uuid.Nil).
		Return(&inbound.LikeState{Liked: false, LikeCount: 7}, nil)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/likes?generation_id="+genID.String(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var state inbound.LikeState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.False(t, state.Liked)
	assert.Equal(t, 7, state.LikeCount)
}

func TestLikeGetRejectsMissingGenerationID(t *testing.T) {
	svc := new(MockLikeService)
	h := NewLikeHandlers(svc, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/likes", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLikeToggleRequiresAuth(t *testing.T) {
	svc := new(MockLikeService)
	h := NewLikeHandlers(svc, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.Toggle(rec, jsonRequest(t, http.MethodPost, "/api/v1/likes", ToggleRequest{GenerationID: uuid.New()}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
}

func TestLikeToggleSuccess(t *testing.T) {
	svc := new(MockLikeService)
	h := NewLikeHandlers(svc, zaptest.NewLogger(t))

	genID := uuid.New()
	userID := uuid.New()
	svc.On("Toggle", mock.Anything, genID, userID).
		Return(&inbound.LikeState{Liked: true, LikeCount: 8}, nil)

	rec := httptest.NewRecorder()
	req := authenticated(jsonRequest(t, http.MethodPost, "/api/v1/likes", ToggleRequest{GenerationID: genID}), userID)
	h.Toggle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var state inbound.LikeState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.Liked)
	assert.Equal(t, 8, state.LikeCount)
}

func TestLikeToggleUnknownGeneration(t *testing.T) {
	svc := new(MockLikeService)
	h := NewLikeHandlers(svc, zaptest.NewLogger(t))

	genID := uuid.New()
	userID := uuid.New()
	svc.On("Toggle", mock.Anything, genID, userID).
		Return(nil, errors.NewGenerationNotFoundError(genID.String()))

	rec := httptest.NewRecorder()
	req := authenticated(jsonRequest(t, http.MethodPost, "/api/v1/likes", ToggleRequest{GenerationID: genID}), userID)
	h.Toggle(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// Generation handlers

func TestGenerateRequiresAuth(t *testing.T) {
	svc := new(MockGenerationService)
	h := NewGenerationHandlers(svc, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.Generate(rec, jsonRequest(t, http.MethodPost, "/api/v1/generate", GenerateRequest{Prompt: "a castle"}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	svc := new(MockGenerationService)
	h := NewGenerationHandlers(svc, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	req := authenticated(jsonRequest(t, http.MethodPost, "/api/v1/generate", GenerateRequest{}), uuid.New())
	h.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateSuccess(t *testing.T) {
	svc := new(MockGenerationService)
	h := NewGenerationHandlers(svc, zaptest.NewLogger(t))

	userID := uuid.New()
	svc.On("Generate", mock.Anything, mock.MatchedBy(func(cmd inbound.GenerateCommand) bool {
		// Enhancement defaults on when the field is omitted.
		return cmd.UserID == userID && cmd.Prompt == "a castle" && cmd.EnhancePrompt
	})).Return(&inbound.GenerationDTO{
		ID:             uuid.New(),
		UserID:         userID,
		OriginalPrompt: "a castle",
		EnhancedPrompt: "a majestic castle at golden hour",
		ImageURLs:      []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"},
	}, nil)

	rec := httptest.NewRecorder()
	req := authenticated(jsonRequest(t, http.MethodPost, "/api/v1/generate", GenerateRequest{
		Prompt:         "a castle",
		NumberOfImages: 2,
	}), userID)
	h.Generate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Images, 2)
	assert.Equal(t, "a majestic castle at golden hour", resp.EnhancedPrompt)
	assert.Equal(t, "Generated 2 image(s) successfully.", resp.Message)
}

func TestGenerateEnhancementOptOut(t *testing.T) {
	svc := new(MockGenerationService)
	h := NewGenerationHandlers(svc, zaptest.NewLogger(t))

	userID := uuid.New()
	off := false
	svc.On("Generate", mock.Anything, mock.MatchedBy(func(cmd inbound.GenerateCommand) bool {
		return !cmd.EnhancePrompt
	})).Return(&inbound.GenerationDTO{ImageURLs: []string{"https://cdn.example.com/a.png"}}, nil)

	rec := httptest.NewRecorder()
	req := authenticated(jsonRequest(t, http.MethodPost, "/api/v1/generate", GenerateRequest{
		Prompt:        "a castle",
		EnhancePrompt: &off,
	}), userID)
	h.Generate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGenerateFailure(t *testing.T) {
	svc := new(MockGenerationService)
	h := NewGenerationHandlers(svc, zaptest.NewLogger(t))

	svc.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.NewGenerationFailedError(assert.AnError))

	rec := httptest.NewRecorder()
	req := authenticated(jsonRequest(t, http.MethodPost, "/api/v1/generate", GenerateRequest{Prompt: "a castle"}), uuid.New())
	h.Generate(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Image generation failed", resp.Error)
}

// Auth handlers

func TestCheckEmail(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandlers(svc, zaptest.NewLogger(t))

	svc.On("CheckEmail", mock.Anything, "user@example.com").Return(true, nil)

	rec := httptest.NewRecorder()
	h.CheckEmail(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/check", CheckEmailRequest{Email: "user@example.com"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"exists":true}`, rec.Body.String())
}

func TestCheckEmailRejectsMissingEmail(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandlers(svc, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.CheckEmail(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/check", CheckEmailRequest{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "missing_fields", resp.Error)
	svc.AssertNotCalled(t, "CheckEmail", mock.Anything, mock.Anything)
}

func TestVerifyOTPErrorCodeSurfaced(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandlers(svc, zaptest.NewLogger(t))

	svc.On("VerifyOTP", mock.Anything, "user@example.com", "123456").
		Return(errors.NewOTPInvalidError("no_otp"))

	rec := httptest.NewRecorder()
	h.VerifyOTP(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/verify-otp", VerifyOTPRequest{
		Email: "user@example.com",
		Code:  "123456",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no_otp", resp.Error)
}

func TestRegisterVerifiesInlineCode(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandlers(svc, zaptest.NewLogger(t))

	result := &inbound.AuthResult{
		UserID: uuid.New(),
		Email:  "user@example.com",
		Name:   "Ada",
		Token:  "jwt-token",
	}
	svc.On("VerifyOTP", mock.Anything, "user@example.com", "123456").Return(nil)
	svc.On("Register", mock.Anything, inbound.RegisterCommand{
		Email:    "user@example.com",
		Name:     "Ada",
		Password: "s3cret-password",
	}).Return(result, nil)

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", RegisterRequest{
		Email:    "user@example.com",
		Name:     "Ada",
		Password: "s3cret-password",
		Code:     "123456",
	}))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "jwt-token", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ada", resp.User.Name)
	svc.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandlers(svc, zaptest.NewLogger(t))

	svc.On("Login", mock.Anything, "user@example.com", "wrong").
		Return(nil, errors.NewInvalidCredentialsError())

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "wrong",
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_password", resp.Error)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandlers(svc, zaptest.NewLogger(t))

	svc.On("Login", mock.Anything, "ghost@example.com", "s3cret-password").
		Return(nil, errors.NewUserNotFoundError("ghost@example.com"))

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{
		Email:    "ghost@example.com",
		Password: "s3cret-password",
	}))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user_not_found", resp.Error)
}

func TestLogout(t *testing.T) {
	svc := new(MockAccountService)
	h := NewAuthHandlers(svc, zaptest.NewLogger(t))

	svc.On("Logout", mock.Anything, "jwt-token").Return(nil)

	rec := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer jwt-token")
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
