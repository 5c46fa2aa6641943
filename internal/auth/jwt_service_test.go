package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftopia/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: uuid.New(), Email: "jane@example.com", Role: model.RoleAdmin}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "", time.Hour)
	user := testUser()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestAccessTokenExpired(t *testing.T) {
	svc := NewJWTService("test-secret", "", time.Hour)
	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedSignatureRejected(t *testing.T) {
	svc := NewJWTService("test-secret", "", time.Hour)
	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.ValidateAccessToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTService("other-secret", "", time.Hour)
	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService("test-secret", "", time.Hour)
	user := testUser()

	access, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	tokenID, refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, tokenID, claims.ID)
	assert.WithinDuration(t, time.Now().Add(RefreshTokenExpiry), claims.ExpiresAt.Time, time.Minute)
}

func TestSeparateRefreshSecret(t *testing.T) {
	svc := NewJWTService("access", "refresh", time.Hour)
	_, refresh, err := svc.GenerateRefreshToken(testUser())
	require.NoError(t, err)

	_, err = NewJWTService("access", "", time.Hour).ValidateRefreshToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(refresh)
	assert.NoError(t, err)
}

func TestDefaultExpiry(t *testing.T) {
	assert.Equal(t, DefaultAccessTokenExpiry, NewJWTService("s", "", 0).AccessExpiry())
}
