package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	for _, plain := range []string{"password123", "", "ünïcødé-päss", "  spaces  "} {
		hash, err := HashPassword(plain)
		require.NoError(t, err)

		assert.NotEqual(t, plain, hash)
		assert.True(t, CheckPassword(plain, hash))
		assert.False(t, CheckPassword(plain+"x", hash))
	}
}

func TestHashPasswordCost(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("password123", "not-a-hash"))
}
