package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", 2)

	signed, err := m.GenerateToken("ops", "ADMIN")
	require.NoError(t, err)

	claims, err := m.VerifyToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestVerifyRejects(t *testing.T) {
	m := NewJWTManager("secret", 1)
	signed, err := m.GenerateToken("ops", "USER")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other", 1).VerifyToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("secret", 1)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.VerifyToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.VerifyToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
