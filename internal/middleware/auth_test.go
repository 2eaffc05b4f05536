package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *models.JWTClaims) string {
	t.Helper()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestAuthRequiresBearerToken(t *testing.T) {
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsBadSignature(t *testing.T) {
	claims := &models.JWTClaims{UserID: uuid.New(), ClinicID: uuid.New(), Role: "doctor"}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	claims := &models.JWTClaims{UserID: uuid.New(), ClinicID: uuid.New(), Role: "doctor"}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthPutsActorInContext(t *testing.T) {
	userID := uuid.New()
	clinicID := uuid.New()
	signed := signToken(t, &models.JWTClaims{UserID: userID, ClinicID: clinicID, Role: "nurse"})

	var actor models.Actor
	var ok bool
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok = GetActor(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok)
	assert.Equal(t, userID, actor.UserID)
	assert.Equal(t, clinicID, actor.ClinicID)
	assert.Equal(t, "nurse", actor.Role)
}

func TestAuthRejectsCrossClinicToken(t *testing.T) {
	tokenClinic := uuid.New()
	headerClinic := uuid.New()
	signed := signToken(t, &models.JWTClaims{UserID: uuid.New(), ClinicID: tokenClinic, Role: "admin"})

	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	req = req.WithContext(context.WithValue(req.Context(), ClinicIDKey, headerClinic))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthAcceptsMatchingClinic(t *testing.T) {
	clinicID := uuid.New()
	signed := signToken(t, &models.JWTClaims{UserID: uuid.New(), ClinicID: clinicID, Role: "admin"})

	called := false
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	req = req.WithContext(context.WithValue(req.Context(), ClinicIDKey, clinicID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
