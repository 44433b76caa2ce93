package account

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/domain/user"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/internal/ports/outbound"
	apperrors "github.com/pictura/v1/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockUserRepository is a mock implementation of the user repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEmailService is a mock implementation of the email service
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendOTP(ctx context.Context, to string, code string) error {
	args := m.Called(ctx, to, code)
	return args.Error(0)
}

func (m *MockEmailService) SendWelcome(ctx context.Context, to string, name string) error {
	args := m.Called(ctx, to, name)
	return args.Error(0)
}

// MockTokenService is a mock implementation of the token service
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(userID uuid.UUID, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(ctx context.Context, token string) (*outbound.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.TokenClaims), args.Error(1)
}

func (m *MockTokenService) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// memoryCache is an in-memory cache for exercising the stateful OTP flow
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok, nil
}

func (c *memoryCache) Increment(ctx context.Context, key string) (int64, error) { return 0, nil }
func (c *memoryCache) Decrement(ctx context.Context, key string) (int64, error) { return 0, nil }

type accountMocks struct {
	userRepo *MockUserRepository
	cache    *memoryCache
	email    *MockEmailService
	tokens   *MockTokenService
}

func newService(t *testing.T) (inbound.AccountService, *accountMocks) {
	m := &accountMocks{
		userRepo: &MockUserRepository{},
		cache:    newMemoryCache(),
		email:    &MockEmailService{},
		tokens:   &MockTokenService{},
	}
	svc := NewAccountService(m.userRepo, m.cache, m.email, m.tokens, zaptest.NewLogger(t))
	return svc, m
}

func TestCheckEmail(t *testing.T) {
	svc, m := newService(t)

	m.userRepo.On("ExistsByEmail", mock.Anything, "known@example.com").Return(true, nil)
	m.userRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)

	exists, err := svc.CheckEmail(context.Background(), "Known@Example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.CheckEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCheckEmailRequired(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CheckEmail(context.Background(), "  ")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, DetailEmailRequired, appErr.Details)
}

func TestSendAndVerifyOTP(t *testing.T) {
	svc, m := newService(t)

	var sentCode string
	m.email.On("SendOTP", mock.Anything, "new@example.com", mock.Anything).
		Run(func(args mock.Arguments) { sentCode = args.String(2) }).
		Return(nil)

	require.NoError(t, svc.SendOTP(context.Background(), "new@example.com"))
	require.Len(t, sentCode, otpLength)

	require.NoError(t, svc.VerifyOTP(context.Background(), "new@example.com", sentCode))

	// The code is single use.
	err := svc.VerifyOTP(context.Background(), "new@example.com", sentCode)
	require.Error(t, err)
	assert.Equal(t, DetailNoOTP, err.(*apperrors.AppError).Details)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc, m := newService(t)

	m.email.On("SendOTP", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	require.NoError(t, svc.SendOTP(context.Background(), "new@example.com"))

	err := svc.VerifyOTP(context.Background(), "new@example.com", "000000x")
	require.Error(t, err)
	assert.Equal(t, DetailInvalidOTP, err.(*apperrors.AppError).Details)
}

func TestVerifyOTPNeverSent(t *testing.T) {
	svc, _ := newService(t)

	err := svc.VerifyOTP(context.Background(), "new@example.com", "123456")
	require.Error(t, err)
	assert.Equal(t, DetailNoOTP, err.(*apperrors.AppError).Details)
}

func TestVerifyOTPExpired(t *testing.T) {
	svc, m := newService(t)

	payload, err := json.Marshal(storedOTP{
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)
	require.NoError(t, m.cache.Set(context.Background(), otpKey("new@example.com"), payload, otpTTL))

	err = svc.VerifyOTP(context.Background(), "new@example.com", "123456")
	require.Error(t, err)
	assert.Equal(t, DetailExpiredOTP, err.(*apperrors.AppError).Details)
}

func TestVerifyOTPMissingFields(t *testing.T) {
	svc, _ := newService(t)

	err := svc.VerifyOTP(context.Background(), "new@example.com", "")
	require.Error(t, err)
	assert.Equal(t, DetailMissingFields, err.(*apperrors.AppError).Details)
}

func TestRegisterRequiresVerifiedEmail(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Register(context.Background(), inbound.RegisterCommand{
		Email:    "new@example.com",
		Name:     "New User",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, DetailNotVerified, err.(*apperrors.AppError).Details)
}

func TestRegisterAfterVerification(t *testing.T) {
	svc, m := newService(t)

	var sentCode string
	m.email.On("SendOTP", mock.Anything, "new@example.com", mock.Anything).
		Run(func(args mock.Arguments) { sentCode = args.String(2) }).
		Return(nil)
	m.email.On("SendWelcome", mock.Anything, "new@example.com", "New User").Return(nil)
	m.userRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	m.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.tokens.On("Issue", mock.Anything, "new@example.com").Return("token-abc", nil)

	require.NoError(t, svc.SendOTP(context.Background(), "new@example.com"))
	require.NoError(t, svc.VerifyOTP(context.Background(), "new@example.com", sentCode))

	result, err := svc.Register(context.Background(), inbound.RegisterCommand{
		Email:    "New@Example.com",
		Name:     "New User",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", result.Email)
	assert.Equal(t, "token-abc", result.Token)

	// The verification flag is consumed; a second registration needs a new OTP.
	_, err = svc.Register(context.Background(), inbound.RegisterCommand{
		Email:    "new@example.com",
		Name:     "New User",
		Password: "correct-horse",
	})
	require.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, m := newService(t)

	var sentCode string
	m.email.On("SendOTP", mock.Anything, "taken@example.com", mock.Anything).
		Run(func(args mock.Arguments) { sentCode = args.String(2) }).
		Return(nil)
	m.userRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	require.NoError(t, svc.SendOTP(context.Background(), "taken@example.com"))
	require.NoError(t, svc.VerifyOTP(context.Background(), "taken@example.com", sentCode))

	_, err := svc.Register(context.Background(), inbound.RegisterCommand{
		Email:    "taken@example.com",
		Name:     "Dup",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmailAlreadyExists, apperrors.GetCode(err))
}

func TestLogin(t *testing.T) {
	svc, m := newService(t)

	u, err := user.NewUser("painter@example.com", "Painter", "correct-horse")
	require.NoError(t, err)

	m.userRepo.On("FindByEmail", mock.Anything, "painter@example.com").Return(u, nil)
	m.userRepo.On("UpdateLastLogin", mock.Anything, u.ID()).Return(nil)
	m.tokens.On("Issue", u.ID(), "painter@example.com").Return("token-abc", nil)

	result, err := svc.Login(context.Background(), "Painter@Example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID(), result.UserID)
	assert.Equal(t, "token-abc", result.Token)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, m := newService(t)

	m.userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUserNotFound, apperrors.GetCode(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, m := newService(t)

	u, err := user.NewUser("painter@example.com", "Painter", "correct-horse")
	require.NoError(t, err)

	m.userRepo.On("FindByEmail", mock.Anything, "painter@example.com").Return(u, nil)

	_, err = svc.Login(context.Background(), "painter@example.com", "wrong-horse")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidCredentials, apperrors.GetCode(err))
	m.tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestLogout(t *testing.T) {
	svc, m := newService(t)

	m.tokens.On("Revoke", mock.Anything, "token-abc").Return(nil)

	require.NoError(t, svc.Logout(context.Background(), "token-abc"))
	m.tokens.AssertExpectations(t)
}
