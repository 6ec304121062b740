package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(now time.Time) *JWTService {
	s := NewJWTService(&config.JWTConfig{Secret: "test-secret-key", ExpirationHours: 24})
	s.now = func() time.Time { return now }
	return s
}

func TestJWTService_RoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestJWTService(now)
	userID := uuid.New()

	token, err := s.GenerateToken(userID)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())
	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, now.Add(24*time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestJWTService_GenerateRejectsNilUser(t *testing.T) {
	_, err := newTestJWTService(time.Now()).GenerateToken(uuid.Nil)
	assert.Error(t, err)
}

func TestJWTService_ValidateFailures(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := newTestJWTService(now)
	userID := uuid.New()

	valid, err := s.GenerateToken(userID)
	require.NoError(t, err)

	otherSecret := NewJWTService(&config.JWTConfig{Secret: "different", ExpirationHours: 24})
	otherSecret.now = s.now
	forged, err := otherSecret.GenerateToken(userID)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: TokenIssuer},
	}).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		svc   *JWTService
	}{
		{name: "empty", token: "", svc: s},
		{name: "garbage", token: "not.a.token", svc: s},
		{name: "wrong secret", token: forged, svc: s},
		{name: "expired", token: valid, svc: newTestJWTService(now.Add(25 * time.Hour))},
		{name: "missing expiry", token: noExpiry, svc: s},
		{name: "wrong issuer", token: wrongIssuer, svc: s},
		{name: "missing user id", token: noUser, svc: s},
		{name: "none algorithm", token: unsigned, svc: s},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	s := newTestJWTService(time.Now())
	userID := uuid.New()
	token, err := s.GenerateToken(userID)
	require.NoError(t, err)

	claims, err := s.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())

	_, err = s.AsTokenValidator().ValidateToken("bad")
	assert.Error(t, err)
}
