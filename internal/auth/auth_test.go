package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("user-1", secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, err := UserIDFromToken(token, secret)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestUserIDFromToken_Errors(t *testing.T) {
	secret := []byte("test-secret")

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken("user-1", secret, time.Hour)
		require.NoError(t, err)

		_, err = UserIDFromToken(token, []byte("other-secret"))
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken("user-1", secret, -time.Minute)
		require.NoError(t, err)

		_, err = UserIDFromToken(token, secret)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := UserIDFromToken("not-a-token", secret)
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password")
	require.NoError(t, err)
	assert.NotEqual(t, "password", hash)

	assert.True(t, CheckPassword(hash, "password"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
