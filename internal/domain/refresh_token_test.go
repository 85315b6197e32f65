package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	expiry := time.Now().Add(7 * 24 * time.Hour)

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()

		rt, err := NewRefreshToken("signed-token", userID, expiry)
		require.NoError(t, err)
		assert.Equal(t, "signed-token", rt.Token)
		assert.Equal(t, userID, rt.UserID)
		assert.Equal(t, expiry, rt.ExpiresAt)
		assert.False(t, rt.CreatedAt.IsZero())
	})

	t.Run("empty token string", func(t *testing.T) {
		t.Parallel()

		_, err := NewRefreshToken("", userID, expiry)
		assert.ErrorIs(t, err, ErrEmptyToken)
	})

	t.Run("missing owner", func(t *testing.T) {
		t.Parallel()

		_, err := NewRefreshToken("signed-token", uuid.Nil, expiry)
		assert.ErrorIs(t, err, ErrEmptyTokenOwner)
	})

	t.Run("missing expiry", func(t *testing.T) {
		t.Parallel()

		_, err := NewRefreshToken("signed-token", userID, time.Time{})
		assert.ErrorIs(t, err, ErrEmptyTokenExpiry)
	})
}

func TestRefreshTokenExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rt := &RefreshToken{
		Token:     "signed-token",
		UserID:    uuid.New(),
		ExpiresAt: now.Add(time.Hour),
	}

	assert.False(t, rt.Expired(now))
	assert.False(t, rt.Expired(now.Add(time.Hour)))
	assert.True(t, rt.Expired(now.Add(time.Hour+time.Second)))
}
