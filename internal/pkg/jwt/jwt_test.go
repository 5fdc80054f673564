package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func TestGenerateToken(t *testing.T) {
	t.Run("generate valid token", func(t *testing.T) {
		userID := "u-123"
		token, err := GenerateToken(userID, testSecret, 24)

		require.NoError(t, err)
		assert.NotEmpty(t, token)

		// Token should be parseable
		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	})

	t.Run("generate token with different user IDs", func(t *testing.T) {
		token1, err := GenerateToken("u-1", testSecret, 24)
		require.NoError(t, err)

		token2, err := GenerateToken("u-2", testSecret, 24)
		require.NoError(t, err)

		// Different users should have different tokens
		assert.NotEqual(t, token1, token2)
	})

	t.Run("generate token with empty user ID", func(t *testing.T) {
		token, err := GenerateToken("", testSecret, 24)

		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "", claims.UserID)
	})

	t.Run("generate token with different expire hours", func(t *testing.T) {
		token1, err := GenerateToken("u-1", testSecret, 1)
		require.NoError(t, err)

		token24, err := GenerateToken("u-1", testSecret, 24)
		require.NoError(t, err)

		token168, err := GenerateToken("u-1", testSecret, 168) // 1 week
		require.NoError(t, err)

		// All should be valid and different
		assert.NotEmpty(t, token1)
		assert.NotEmpty(t, token24)
		assert.NotEmpty(t, token168)
	})

	t.Run("generate token with empty secret", func(t *testing.T) {
		token, err := GenerateToken("u-123", "", 24)

		// Empty secret should still work (not recommended in production)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})
}

func TestParseToken(t *testing.T) {
	t.Run("parse valid token", func(t *testing.T) {
		userID := "u-456"
		token, _ := GenerateToken(userID, testSecret, 24)

		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, userID, claims.Subject)
	})

	t.Run("parse with wrong secret", func(t *testing.T) {
		token, _ := GenerateToken("u-123", testSecret, 24)

		_, err := ParseToken(token, "wrong-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("parse malformed token", func(t *testing.T) {
		_, err := ParseToken("not-a-jwt", testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("parse expired token", func(t *testing.T) {
		// 手工构造已过期的令牌
		claims := &Claims{
			UserID: "u-123",
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = ParseToken(tokenString, testSecret)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("parse token signed with wrong method", func(t *testing.T) {
		// none 算法必须被拒绝
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-123"})
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ParseToken(tokenString, testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	userID := "8400a32b-7f5a-4c9d-9d0e-2f6f1a9b3c4d"
	token, err := GenerateToken(userID, testSecret, 24)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}
