// Package handlers provides HTTP handlers for authentication API endpoints
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pictura/v1/internal/infrastructure/http/middleware"
	"github.com/pictura/v1/internal/ports/inbound"
	"github.com/pictura/v1/pkg/errors"
	"go.uber.org/zap"
)

// AuthHandlers handles authentication API requests
type AuthHandlers struct {
	accountService inbound.AccountService
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewAuthHandlers creates a new authentication handlers instance
func NewAuthHandlers(accountService inbound.AccountService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		accountService: accountService,
		validate:       validator.New(),
		logger:         logger,
	}
}

// CheckEmailRequest asks whether an account exists for the email
type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendOTPRequest asks for a verification code
type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest carries a verification code check
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// RegisterRequest represents account creation for a verified email
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Code     string `json:"code"`
}

// LoginRequest represents user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents authentication response with token
type AuthResponse struct {
	Success bool          `json:"success"`
	Token   string        `json:"token,omitempty"`
	User    *UserResponse `json:"user,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CheckEmail handles POST /api/v1/auth/check
func (h *AuthHandlers) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req CheckEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	exists, err := h.accountService.CheckEmail(r.Context(), req.Email)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, map[string]bool{"exists": exists})
}

// SendOTP handles POST /api/v1/auth/send-otp
func (h *AuthHandlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.accountService.SendOTP(r.Context(), req.Email); err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, map[string]bool{"ok": true})
}

// VerifyOTP handles POST /api/v1/auth/verify-otp
func (h *AuthHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.accountService.VerifyOTP(r.Context(), req.Email, req.Code); err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, map[string]bool{"verified": true})
}

// Register handles POST /api/v1/auth/register
// A code in the payload is verified first, so clients can verify and
// register in one request.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Code != "" {
		if err := h.accountService.VerifyOTP(r.Context(), req.Email, req.Code); err != nil {
			h.writeAuthError(w, err)
			return
		}
	}

	result, err := h.accountService.Register(r.Context(), inbound.RegisterCommand{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.logger.Info("User registered", zap.String("user_id", result.UserID.String()))
	writeJSON(h.logger, w, http.StatusCreated, h.authResponse(result))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.accountService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, h.authResponse(result))
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		h.writeAuthError(w, errors.NewUnauthorizedError(""))
		return
	}

	if err := h.accountService.Logout(r.Context(), token); err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Logout successful",
	})
}

func (h *AuthHandlers) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeAuthError(w, errors.NewBadRequestError("Invalid JSON payload"))
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeAuthError(w, errors.NewValidationError("missing_fields"))
		return false
	}
	return true
}

// writeAuthError surfaces a short machine code clients can branch on.
func (h *AuthHandlers) writeAuthError(w http.ResponseWriter, err error) {
	appErr := errors.Wrap(err, "authentication failed")

	var code string
	switch appErr.Code {
	case errors.CodeUserNotFound:
		code = "user_not_found"
	case errors.CodeInvalidCredentials:
		code = "invalid_password"
	case errors.CodeEmailAlreadyExists:
		code = "email_exists"
	default:
		// OTP and validation errors carry their machine code in the details.
		code = appErr.Details
		if code == "" {
			code = appErr.Message
		}
	}

	writeJSON(h.logger, w, appErr.StatusCode(), AuthResponse{
		Success: false,
		Error:   code,
	})
}

func (h *AuthHandlers) authResponse(result *inbound.AuthResult) AuthResponse {
	return AuthResponse{
		Success: true,
		Token:   result.Token,
		User: &UserResponse{
			ID:    result.UserID.String(),
			Email: result.Email,
			Name:  result.Name,
		},
	}
}
