package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavinrs01/task-manager-server/internal/config"
	"github.com/kavinrs01/task-manager-server/internal/domain"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

// defaultAuthConfig is a valid auth configuration for constructor tests.
func defaultAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 7 * 24 * 60,
		BcryptCost:                  10,
	}
}

// newTestService creates an hmacJWTService with a fixed time function for
// predictable expiry testing.
func newTestService(secret string, lifetime, refreshLifetime time.Duration, timeFunc func() time.Time) *hmacJWTService {
	return &hmacJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        lifetime,
		refreshTokenLifetime: refreshLifetime,
		timeFunc:             timeFunc,
		clockSkew:            0,
	}
}

func testUser() *domain.User {
	return &domain.User{
		ID:    uuid.New(),
		Name:  "Jordan Blake",
		Email: "jordan@example.com",
		Role:  domain.RoleAdmin,
	}
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	user := testUser()

	svc := newTestService(testSecret, tokenLifetime, 24*time.Hour, func() time.Time {
		return fixedTime
	})

	t.Run("generates valid token", func(t *testing.T) {
		t.Parallel()
		token, err := svc.GenerateToken(context.Background(), user)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)

		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Role, claims.Role)
		assert.Equal(t, user.Name, claims.Name)
		assert.Equal(t, user.Email, claims.Email)
		assert.Equal(t, "access", claims.TokenType)
		assert.Equal(t, user.ID.String(), claims.Subject)
		// Compare Unix timestamps to avoid timezone issues
		assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, fixedTime.Add(tokenLifetime).Unix(), claims.ExpiresAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})
}

func TestGenerateRefreshToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	refreshLifetime := 7 * 24 * time.Hour
	user := testUser()

	svc := newTestService(testSecret, time.Hour, refreshLifetime, func() time.Time {
		return fixedTime
	})

	token, expiresAt, err := svc.GenerateRefreshToken(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, fixedTime.Add(refreshLifetime), expiresAt)

	claims, err := svc.ValidateRefreshToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "refresh", claims.TokenType)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	user := testUser()

	makeService := func(secret string, now time.Time) *hmacJWTService {
		return newTestService(secret, tokenLifetime, 24*time.Hour, func() time.Time {
			return now
		})
	}

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()
		issuer := makeService(testSecret, fixedTime)
		token, err := issuer.GenerateToken(context.Background(), user)
		require.NoError(t, err)

		// Validate two hours after issuance, past the one hour lifetime.
		validator := makeService(testSecret, fixedTime.Add(2*time.Hour))
		_, err = validator.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects token signed with different secret", func(t *testing.T) {
		t.Parallel()
		issuer := makeService("wrong-secret-that-is-long-enough-for-testing", fixedTime)
		token, err := issuer.GenerateToken(context.Background(), user)
		require.NoError(t, err)

		validator := makeService(testSecret, fixedTime)
		_, err = validator.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		t.Parallel()
		validator := makeService(testSecret, fixedTime)
		_, err := validator.ValidateToken(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects refresh token used as access token", func(t *testing.T) {
		t.Parallel()
		svc := makeService(testSecret, fixedTime)
		refreshToken, _, err := svc.GenerateRefreshToken(context.Background(), user)
		require.NoError(t, err)

		_, err = svc.ValidateToken(context.Background(), refreshToken)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	user := testUser()

	makeService := func(now time.Time) *hmacJWTService {
		return newTestService(testSecret, time.Hour, 24*time.Hour, func() time.Time {
			return now
		})
	}

	t.Run("rejects expired refresh token", func(t *testing.T) {
		t.Parallel()
		issuer := makeService(fixedTime)
		token, _, err := issuer.GenerateRefreshToken(context.Background(), user)
		require.NoError(t, err)

		validator := makeService(fixedTime.Add(25 * time.Hour))
		_, err = validator.ValidateRefreshToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredRefreshToken)
	})

	t.Run("rejects access token used as refresh token", func(t *testing.T) {
		t.Parallel()
		svc := makeService(fixedTime)
		accessToken, err := svc.GenerateToken(context.Background(), user)
		require.NoError(t, err)

		_, err = svc.ValidateRefreshToken(context.Background(), accessToken)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("rejects malformed refresh token", func(t *testing.T) {
		t.Parallel()
		svc := makeService(fixedTime)
		_, err := svc.ValidateRefreshToken(context.Background(), "garbage")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	cfg := defaultAuthConfig()
	cfg.JWTSecret = "short"

	_, err := NewJWTService(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(4) // minimum cost keeps the test fast

	hashed, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hashed)

	assert.NoError(t, hasher.Compare(hashed, "correct horse battery staple"))
	assert.Error(t, hasher.Compare(hashed, "wrong password"))
}
