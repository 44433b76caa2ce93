package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/pictura/v1/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
)

type stubTokenService struct {
	claims *outbound.TokenClaims
	err    error
}

func (s *stubTokenService) Issue(userID uuid.UUID, email string) (string, error) {
	return "stub-token", nil
}

func (s *stubTokenService) Validate(ctx context.Context, token string) (*outbound.TokenClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func (s *stubTokenService) Revoke(ctx context.Context, token string) error {
	return nil
}

func identityEcho(t *testing.T, got *uuid.UUID, found *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserIDFromContext(r.Context())
		*got = id
		*found = ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateAPIRejectsMissingHeader(t *testing.T) {
	var got uuid.UUID
	var found bool
	handler := AuthenticateAPI(&stubTokenService{})(identityEcho(t, &got, &found))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, found)
}

func TestAuthenticateAPIRejectsInvalidToken(t *testing.T) {
	var got uuid.UUID
	var found bool
	svc := &stubTokenService{err: errors.New("expired")}
	handler := AuthenticateAPI(svc)(identityEcho(t, &got, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateAPISetsIdentity(t *testing.T) {
	userID := uuid.New()
	var got uuid.UUID
	var found bool
	svc := &stubTokenService{claims: &outbound.TokenClaims{UserID: userID, Email: "user@example.com"}}
	handler := AuthenticateAPI(svc)(identityEcho(t, &got, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, userID, got)
}

func TestOptionalAuthenticateAllowsAnonymous(t *testing.T) {
	var got uuid.UUID
	var found bool
	handler := OptionalAuthenticate(&stubTokenService{})(identityEcho(t, &got, &found))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, found)
}

func TestOptionalAuthenticateIgnoresBadToken(t *testing.T) {
	var got uuid.UUID
	var found bool
	svc := &stubTokenService{err: errors.New("expired")}
	handler := OptionalAuthenticate(svc)(identityEcho(t, &got, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, found)
}

func TestOptionalAuthenticateSetsIdentity(t *testing.T) {
	userID := uuid.New()
	var got uuid.UUID
	var found bool
	svc := &stubTokenService{claims: &outbound.TokenClaims{UserID: userID, Email: "user@example.com"}}
	handler := OptionalAuthenticate(svc)(identityEcho(t, &got, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, userID, got)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer jwt-token")
	assert.Equal(t, "jwt-token", BearerToken(req))
}
