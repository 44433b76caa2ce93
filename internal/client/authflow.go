package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Stage is one step of the sign-in flow
type Stage string

const (
	// StageEmail collects the address and decides login vs signup
	StageEmail Stage = "email"
	// StageLogin asks a known account for its password
	StageLogin Stage = "login"
	// StageVerifyOTP waits for the emailed verification code
	StageVerifyOTP Stage = "verify-otp"
	// StageSignup collects name and password for a verified email
	StageSignup Stage = "signup"
	// StageDone holds an authenticated session
	StageDone Stage = "done"
)

// AuthAPI is the flow's view of the auth endpoints
type AuthAPI interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	Register(ctx context.Context, email, name, password string) (*AuthSession, error)
	Login(ctx context.Context, email, password string) (*AuthSession, error)
}

// AuthFlow drives the linear sign-in state machine: email, then either
// password login or OTP verification followed by signup. The only way
// back is ChangeEmail, which resets to the email stage; signup is
// unreachable until the code verifies.
type AuthFlow struct {
	api    AuthAPI
	logger *zap.Logger

	mu          sync.Mutex
	stage       Stage
	email       string
	otpVerified bool
	session     *AuthSession
	errCode     string
}

// NewAuthFlow creates a flow at the email stage
func NewAuthFlow(api AuthAPI, logger *zap.Logger) *AuthFlow {
	return &AuthFlow{
		api:    api,
		logger: logger.Named("auth-flow"),
		stage:  StageEmail,
	}
}

// SubmitEmail routes a known address to login and a new one to OTP
// verification, sending the code on the way.
func (f *AuthFlow) SubmitEmail(ctx context.Context, email string) {
	f.mu.Lock()
	if f.stage != StageEmail {
		f.mu.Unlock()
		return
	}
	f.errCode = ""
	f.mu.Unlock()

	exists, err := f.api.CheckEmail(ctx, email)
	if err != nil {
		f.fail(err)
		return
	}

	if exists {
		f.mu.Lock()
		f.email = email
		f.stage = StageLogin
		f.mu.Unlock()
		return
	}

	if err := f.api.SendOTP(ctx, email); err != nil {
		f.fail(err)
		return
	}

	f.mu.Lock()
	f.email = email
	f.stage = StageVerifyOTP
	f.mu.Unlock()
}

// SubmitPassword attempts login for a known account
func (f *AuthFlow) SubmitPassword(ctx context.Context, password string) {
	f.mu.Lock()
	if f.stage != StageLogin {
		f.mu.Unlock()
		return
	}
	email := f.email
	f.errCode = ""
	f.mu.Unlock()

	session, err := f.api.Login(ctx, email, password)
	if err != nil {
		f.fail(err)
		return
	}

	f.complete(session)
}

// SubmitOTP checks the emailed code. Success opens the signup stage.
func (f *AuthFlow) SubmitOTP(ctx context.Context, code string) {
	f.mu.Lock()
	if f.stage != StageVerifyOTP {
		f.mu.Unlock()
		return
	}
	email := f.email
	f.errCode = ""
	f.mu.Unlock()

	if err := f.api.VerifyOTP(ctx, email, code); err != nil {
		f.fail(err)
		return
	}

	f.mu.Lock()
	f.otpVerified = true
	f.stage = StageSignup
	f.mu.Unlock()
}

// SubmitSignup creates the account. It only runs after the OTP stage
// verified the email.
func (f *AuthFlow) SubmitSignup(ctx context.Context, name, password string) {
	f.mu.Lock()
	if f.stage != StageSignup || !f.otpVerified {
		f.mu.Unlock()
		return
	}
	email := f.email
	f.errCode = ""
	f.mu.Unlock()

	session, err := f.api.Register(ctx, email, name, password)
	if err != nil {
		f.fail(err)
		return
	}

	f.complete(session)
}

// ChangeEmail is the flow's only back edge: it drops all progress and
// returns to the email stage.
func (f *AuthFlow) ChangeEmail() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stage = StageEmail
	f.email = ""
	f.otpVerified = false
	f.session = nil
	f.errCode = ""
}

func (f *AuthFlow) fail(err error) {
	code := ErrorCode(err)
	f.logger.Debug("Auth step failed", zap.String("code", code))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.errCode = code
}

func (f *AuthFlow) complete(session *AuthSession) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.session = session
	f.stage = StageDone
}

// Stage returns the current stage
func (f *AuthFlow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

// Email returns the address entered at the email stage
func (f *AuthFlow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Session returns the authenticated session once the flow completes
func (f *AuthFlow) Session() *AuthSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Err returns the machine code of the last failed step, or empty
func (f *AuthFlow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errCode
}
