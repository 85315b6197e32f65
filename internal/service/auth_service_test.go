package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavinrs01/task-manager-server/internal/service/auth"
	"github.com/kavinrs01/task-manager-server/internal/store"
)

func newTestAuthService(t *testing.T) (*AuthServiceImpl, *fakeUserStore, *fakeTokenStore) {
	t.Helper()
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	svc := NewAuthService(users, tokens, newStubJWTService(), stubHasher{}, nil, slog.Default())
	svc.runInTx = passthroughTx
	return svc, users, tokens
}

func TestAuthServiceRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates account and issues tokens", func(t *testing.T) {
		t.Parallel()
		svc, users, tokens := newTestAuthService(t)

		result, err := svc.Register(ctx, "Sam Doe", "sam@example.com", "password123")
		require.NoError(t, err)

		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "hashed:password123", result.User.HashedPassword)
		assert.Empty(t, result.User.Password, "plaintext password should not survive registration")

		stored, err := users.GetByEmail(ctx, "sam@example.com")
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, stored.ID)
		assert.Equal(t, 1, tokens.count(), "refresh token should be persisted")
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestAuthService(t)

		_, err := svc.Register(ctx, "Sam Doe", "sam@example.com", "password123")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "Other Sam", "sam@example.com", "password456")
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("rejects short password", func(t *testing.T) {
		t.Parallel()
		svc, _, tokens := newTestAuthService(t)

		_, err := svc.Register(ctx, "Sam Doe", "sam@example.com", "short")
		require.Error(t, err)
		assert.Equal(t, 0, tokens.count())
	})
}

func TestAuthServiceLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues tokens for valid credentials", func(t *testing.T) {
		t.Parallel()
		svc, _, tokens := newTestAuthService(t)
		_, err := svc.Register(ctx, "Sam Doe", "sam@example.com", "password123")
		require.NoError(t, err)

		result, err := svc.Login(ctx, "sam@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, 2, tokens.count(), "login should add a second session")
	})

	t.Run("reports unknown email distinctly from wrong password", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestAuthService(t)
		_, err := svc.Register(ctx, "Sam Doe", "sam@example.com", "password123")
		require.NoError(t, err)

		_, err = svc.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = svc.Login(ctx, "sam@example.com", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthServiceRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rotates the token", func(t *testing.T) {
		t.Parallel()
		svc, _, tokens := newTestAuthService(t)
		reg, err := svc.Register(ctx, "Sam Doe", "sam@example.com", "password123")
		require.NoError(t, err)

		result, err := svc.Refresh(ctx, reg.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, reg.RefreshToken, result.RefreshToken, "refresh should issue a new token")
		assert.Equal(t, reg.User.ID, result.User.ID)
		assert.Equal(t, 1, tokens.count(), "old token should be consumed")

		// The consumed token cannot be exchanged again.
		_, err = svc.Refresh(ctx, reg.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("rejects unknown token", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestAuthService(t)

		_, err := svc.Refresh(ctx, "never-issued")
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("rejects and removes expired token", func(t *testing.T) {
		t.Parallel()
		svc, _, tokens := newTestAuthService(t)
		reg, err := svc.Register(ctx, "Sam Doe", "sam@example.com", "password123")
		require.NoError(t, err)

		// Move the service clock past the stored expiry.
		svc.timeFunc = func() time.Time { return time.Now().Add(48 * time.Hour) }

		_, err = svc.Refresh(ctx, reg.RefreshToken)
		assert.ErrorIs(t, err, ErrRefreshTokenExpired)
		assert.Equal(t, 0, tokens.count(), "expired token should be removed on sight")
	})
}

func TestAuthServiceLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, tokens := newTestAuthService(t)
	reg, err := svc.Register(ctx, "Sam Doe", "sam@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, reg.RefreshToken))
	assert.Equal(t, 0, tokens.count())

	// Logging out twice is a no-op.
	assert.NoError(t, svc.Logout(ctx, reg.RefreshToken))
}

func TestAuthServiceGetMe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newTestAuthService(t)
	reg, err := svc.Register(ctx, "Sam Doe", "sam@example.com", "password123")
	require.NoError(t, err)

	user, err := svc.GetMe(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", user.Email)
}

func TestAuthServiceTeamMembers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newTestAuthService(t)
	_, err := svc.Register(ctx, "Zoe Lane", "zoe@example.com", "password123")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Avery Ray", "avery@example.com", "password123")
	require.NoError(t, err)

	members, err := svc.TeamMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Avery Ray", members[0].Name, "members should be ordered by name")
	assert.Equal(t, "Zoe Lane", members[1].Name)
}
