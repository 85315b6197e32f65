package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kavinrs01/task-manager-server/internal/domain"
	"github.com/kavinrs01/task-manager-server/internal/service/auth"
	"github.com/kavinrs01/task-manager-server/internal/store"
)

// AuthResult carries the outcome of an authentication operation: the
// account and a freshly issued token pair.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// AuthService provides account and session operations.
type AuthService interface {
	// Register creates a new account and signs it in. Returns
	// store.ErrEmailExists if the email is already taken.
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)

	// Login verifies credentials and issues a token pair. Returns
	// store.ErrUserNotFound when no account exists for the email and
	// ErrInvalidCredentials when the password does not match.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Refresh exchanges a refresh token for a new token pair,
	// consuming the old token. A token can be exchanged at most once;
	// reuse after rotation fails with auth.ErrInvalidRefreshToken.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)

	// Logout revokes a refresh token. Revoking an unknown token is a
	// no-op.
	Logout(ctx context.Context, refreshToken string) error

	// GetMe retrieves the authenticated user's account.
	GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// TeamMembers lists all accounts with only public fields, for
	// assignee pickers.
	TeamMembers(ctx context.Context) ([]domain.PublicUser, error)
}

// AuthServiceImpl implements the AuthService interface
type AuthServiceImpl struct {
	userStore  store.UserStore
	tokenStore store.RefreshTokenStore
	jwtService auth.JWTService
	hasher     auth.PasswordHasher
	db         *sql.DB
	logger     *slog.Logger
	timeFunc   func() time.Time // Injectable for testing
	runInTx    func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userStore store.UserStore,
	tokenStore store.RefreshTokenStore,
	jwtService auth.JWTService,
	hasher auth.PasswordHasher,
	db *sql.DB,
	logger *slog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userStore:  userStore,
		tokenStore: tokenStore,
		jwtService: jwtService,
		hasher:     hasher,
		db:         db,
		logger:     logger.With("component", "auth_service"),
		timeFunc:   time.Now,
		runInTx:    store.RunInTransaction,
	}
}

var _ AuthService = (*AuthServiceImpl)(nil)

// issueTokens generates an access/refresh pair for the user and
// persists the refresh token through the given store, which may be
// transaction-scoped.
func (s *AuthServiceImpl) issueTokens(
	ctx context.Context,
	user *domain.User,
	tokenStore store.RefreshTokenStore,
) (accessToken, refreshToken string, err error) {
	accessToken, err = s.jwtService.GenerateToken(ctx, user)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, expiresAt, err := s.jwtService.GenerateRefreshToken(ctx, user)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	record, err := domain.NewRefreshToken(refreshToken, user.ID, expiresAt)
	if err != nil {
		return "", "", fmt.Errorf("failed to build refresh token record: %w", err)
	}

	if err := tokenStore.Create(ctx, record); err != nil {
		return "", "", fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// Register creates a new account and signs it in.
// Uses a transaction so the account and its first session appear together.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	user, err := domain.NewUser(name, email, password)
	if err != nil {
		s.logger.Debug("rejected invalid registration",
			"error", err,
			"email", email)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password",
			"error", err,
			"email", email)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	result := &AuthResult{User: user}
	err = s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.userStore.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}

		access, refresh, err := s.issueTokens(ctx, user, s.tokenStore.WithTx(tx))
		if err != nil {
			return err
		}
		result.AccessToken = access
		result.RefreshToken = refresh
		return nil
	})

	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to register with existing email",
				"email", email)
		} else {
			s.logger.Error("failed to register user",
				"error", err,
				"email", email)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered successfully",
		"user_id", user.ID,
		"email", user.Email)

	return result, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login attempt for unknown email",
				"email", email)
		} else {
			s.logger.Error("failed to retrieve user for login",
				"error", err,
				"email", email)
		}
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login attempt with wrong password",
			"user_id", user.ID)
		return nil, fmt.Errorf("failed to log in: %w", ErrInvalidCredentials)
	}

	result := &AuthResult{User: user}
	err = s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		access, refresh, err := s.issueTokens(ctx, user, s.tokenStore.WithTx(tx))
		if err != nil {
			return err
		}
		result.AccessToken = access
		result.RefreshToken = refresh
		return nil
	})
	if err != nil {
		s.logger.Error("failed to issue tokens on login",
			"error", err,
			"user_id", user.ID)
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	s.logger.Info("user logged in successfully",
		"user_id", user.ID)

	return result, nil
}

// Refresh exchanges a refresh token for a new pair, rotating the old
// token out. The lookup, deletion, and replacement run in a single
// transaction so a token can never be exchanged twice.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Debug("refresh token failed validation",
			"error", err)
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	result := &AuthResult{}
	err = s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		tokenStore := s.tokenStore.WithTx(tx)

		record, err := tokenStore.GetByToken(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, store.ErrRefreshTokenNotFound) {
				// Signature was valid but the token is not on record:
				// already rotated or revoked.
				return auth.ErrInvalidRefreshToken
			}
			return err
		}

		if record.Expired(s.timeFunc()) {
			// Expired tokens are removed on sight rather than waiting
			// for the periodic cleanup.
			if err := tokenStore.Delete(ctx, refreshToken); err != nil {
				return err
			}
			return ErrRefreshTokenExpired
		}

		user, err := s.userStore.WithTx(tx).GetByID(ctx, record.UserID)
		if err != nil {
			return err
		}

		if err := tokenStore.Delete(ctx, refreshToken); err != nil {
			return err
		}

		access, refresh, err := s.issueTokens(ctx, user, tokenStore)
		if err != nil {
			return err
		}

		result.User = user
		result.AccessToken = access
		result.RefreshToken = refresh
		return nil
	})

	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) || errors.Is(err, ErrRefreshTokenExpired) {
			s.logger.Debug("rejected refresh token exchange",
				"error", err,
				"user_id", claims.UserID)
		} else {
			s.logger.Error("failed to rotate refresh token",
				"error", err,
				"user_id", claims.UserID)
		}
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	s.logger.Info("refresh token rotated successfully",
		"user_id", result.User.ID)

	return result, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored so the
// operation is idempotent.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokenStore.Delete(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrRefreshTokenNotFound) {
			s.logger.Debug("logout for unknown refresh token")
			return nil
		}
		s.logger.Error("failed to revoke refresh token",
			"error", err)
		return fmt.Errorf("failed to log out: %w", err)
	}

	s.logger.Info("refresh token revoked")
	return nil
}

// GetMe retrieves the authenticated user's account.
func (s *AuthServiceImpl) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to retrieve user",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// TeamMembers lists all accounts with only public fields exposed.
func (s *AuthServiceImpl) TeamMembers(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		s.logger.Error("failed to list team members",
			"error", err)
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	members := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		members = append(members, u.Public())
	}
	return members, nil
}
