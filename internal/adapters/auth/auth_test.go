package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour, "cu-clubs")

	token, expiresAt, err := manager.Generate("user-1", entity.RoleClubAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "CLUB_ADMIN", claims.Role)

	t.Run("other secret", func(t *testing.T) {
		_, err := NewJWTManager("other", time.Hour, "cu-clubs").Validate(token)
		assert.ErrorIs(t, err, errorz.ErrUnauthorized)
	})

	t.Run("other issuer", func(t *testing.T) {
		_, err := NewJWTManager("secret", time.Hour, "someone-else").Validate(token)
		assert.ErrorIs(t, err, errorz.ErrInvalidCredentials)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager("secret", -time.Minute, "cu-clubs")
		token, _, err := expired.Generate("user-1", entity.RoleStudent)
		require.NoError(t, err)

		_, err = expired.Validate(token)
		assert.ErrorIs(t, err, errorz.ErrInvalidCredentials)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := manager.Validate("not.a.token")
		assert.Error(t, err)
		_, err = manager.Validate(" ")
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, _, err := manager.Generate("user-1", entity.Role("ROOT"))
		assert.Error(t, err)
	})
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := TokenFromHeader(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.NoError(t, hasher.Compare(hash, "secret123"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong"), errorz.ErrInvalidCredentials)

	_, err = hasher.Hash(strings.Repeat("x", 80))
	assert.ErrorIs(t, err, errorz.ErrInvalidInput)
}
