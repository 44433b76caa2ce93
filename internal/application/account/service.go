// Package account provides the application layer for authentication and signup
package account

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/pictura/v1/internal/domain/user"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/internal/ports/outbound"
	"github.com/pictura/v1/pkg/errors"
	"go.uber.org/zap"
)

const (
	otpLength    = 6
	otpTTL       = 10 * time.Minute
	verifiedTTL  = 15 * time.Minute
	otpKeyPrefix = "otp:"
)

// OTP failure detail codes, surfaced to clients in the error details field.
const (
	DetailEmailRequired   = "email_required"
	DetailMissingFields   = "missing_fields"
	DetailNoOTP           = "no_otp"
	DetailInvalidOTP      = "invalid_otp"
	DetailExpiredOTP      = "expired_otp"
	DetailNotVerified     = "email_not_verified"
	DetailInvalidPassword = "invalid_password"
)

// storedOTP is the cached one-time code. The cache entry outlives the code's
// validity so an expired code can be reported as expired rather than missing.
type storedOTP struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountService implements the authentication use cases
type AccountService struct {
	userRepo outbound.UserRepository
	cache    outbound.CacheRepository
	email    outbound.EmailService
	tokens   outbound.TokenService
	logger   *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	userRepo outbound.UserRepository,
	cache outbound.CacheRepository,
	email outbound.EmailService,
	tokens outbound.TokenService,
	logger *zap.Logger,
) inbound.AccountService {
	return &AccountService{
		userRepo: userRepo,
		cache:    cache,
		email:    email,
		tokens:   tokens,
		logger:   logger.Named("account-service"),
	}
}

// CheckEmail reports whether an account exists for the email
func (s *AccountService) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, errors.NewAppError(errors.CodeBadRequest, "Email is required", DetailEmailRequired)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, errors.NewDatabaseError("check email", err)
	}
	return exists, nil
}

// SendOTP issues a one-time code to the email for signup verification
func (s *AccountService) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return errors.NewAppError(errors.CodeBadRequest, "Email is required", DetailEmailRequired)
	}

	code, err := generateOTP()
	if err != nil {
		return errors.NewInternalError("failed to generate code")
	}

	payload, err := json.Marshal(storedOTP{
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	})
	if err != nil {
		return errors.NewInternalError("failed to encode code")
	}

	// Kept past expiry so verification can distinguish expired from missing.
	if err := s.cache.Set(ctx, otpKey(email), payload, otpTTL+verifiedTTL); err != nil {
		return errors.NewDatabaseError("store otp", err)
	}

	if err := s.email.SendOTP(ctx, email, code); err != nil {
		return errors.NewExternalServiceError("email", err)
	}

	s.logger.Info("OTP sent", zap.String("email", email))
	return nil
}

// VerifyOTP checks a one-time code and marks the email verified on success
func (s *AccountService) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return errors.NewAppError(errors.CodeBadRequest, "Email and code are required", DetailMissingFields)
	}

	raw, err := s.cache.Get(ctx, otpKey(email))
	if err != nil || len(raw) == 0 {
		return errors.NewOTPInvalidError(DetailNoOTP)
	}

	var stored storedOTP
	if err := json.Unmarshal(raw, &stored); err != nil {
		return errors.NewOTPInvalidError(DetailNoOTP)
	}

	if time.Now().After(stored.ExpiresAt) {
		return errors.NewOTPInvalidError(DetailExpiredOTP)
	}
	if stored.Code != code {
		return errors.NewOTPInvalidError(DetailInvalidOTP)
	}

	if err := s.cache.Delete(ctx, otpKey(email)); err != nil {
		s.logger.Warn("Failed to delete used OTP", zap.String("email", email), zap.Error(err))
	}
	if err := s.cache.Set(ctx, verifiedKey(email), []byte("1"), verifiedTTL); err != nil {
		return errors.NewDatabaseError("mark email verified", err)
	}

	s.logger.Info("Email verified", zap.String("email", email))
	return nil
}

// Register creates a new account for a verified email
func (s *AccountService) Register(ctx context.Context, cmd inbound.RegisterCommand) (*inbound.AuthResult, error) {
	email := normalizeEmail(cmd.Email)
	if email == "" || cmd.Password == "" {
		return nil, errors.NewAppError(errors.CodeBadRequest, "Email and password are required", DetailMissingFields)
	}

	verified, err := s.cache.Exists(ctx, verifiedKey(email))
	if err != nil {
		return nil, errors.NewDatabaseError("check verification", err)
	}
	if !verified {
		return nil, errors.NewOTPInvalidError(DetailNotVerified)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewDatabaseError("check email", err)
	}
	if exists {
		return nil, errors.NewEmailAlreadyExistsError(email)
	}

	newUser, err := user.NewUser(email, cmd.Name, cmd.Password)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, errors.NewDatabaseError("create user", err)
	}

	if err := s.cache.Delete(ctx, verifiedKey(email)); err != nil {
		s.logger.Warn("Failed to clear verification flag", zap.String("email", email), zap.Error(err))
	}

	token, err := s.tokens.Issue(newUser.ID(), newUser.Email())
	if err != nil {
		return nil, errors.NewInternalError("failed to issue token")
	}

	if err := s.email.SendWelcome(ctx, newUser.Email(), newUser.Name()); err != nil {
		s.logger.Warn("Failed to send welcome email", zap.String("email", email), zap.Error(err))
	}

	s.logger.Info("User registered",
		zap.String("user_id", newUser.ID().String()),
		zap.String("email", newUser.Email()),
	)

	return &inbound.AuthResult{
		UserID: newUser.ID(),
		Email:  newUser.Email(),
		Name:   newUser.Name(),
		Token:  token,
	}, nil
}

// Login authenticates an existing account
func (s *AccountService) Login(ctx context.Context, email, password string) (*inbound.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.NewAppError(errors.CodeBadRequest, "Email and password are required", DetailMissingFields)
	}

	userEntity, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewDatabaseError("find user", err)
	}
	if userEntity == nil {
		return nil, errors.NewUserNotFoundError(email)
	}

	if err := userEntity.CheckPassword(password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("email", email))
		return nil, errors.NewInvalidCredentialsError()
	}

	if !userEntity.IsActive() {
		return nil, errors.NewUnauthorizedError("Account is deactivated")
	}

	userEntity.RecordLogin()
	if err := s.userRepo.UpdateLastLogin(ctx, userEntity.ID()); err != nil {
		s.logger.Error("Failed to update last login", zap.Error(err))
	}

	token, err := s.tokens.Issue(userEntity.ID(), userEntity.Email())
	if err != nil {
		return nil, errors.NewInternalError("failed to issue token")
	}

	s.logger.Info("User logged in",
		zap.String("user_id", userEntity.ID().String()),
		zap.String("email", userEntity.Email()),
	)

	return &inbound.AuthResult{
		UserID: userEntity.ID(),
		Email:  userEntity.Email(),
		Name:   userEntity.Name(),
		Token:  token,
	}, nil
}

// Logout revokes the presented token
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return errors.NewInternalError("failed to revoke token")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func otpKey(email string) string {
	return otpKeyPrefix + email
}

func verifiedKey(email string) string {
	return otpKeyPrefix + "verified:" + email
}

// generateOTP returns a random numeric code of otpLength digits
func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpLength, n), nil
}
