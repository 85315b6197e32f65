package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kavinrs01/task-manager-server/internal/domain"
	"github.com/kavinrs01/task-manager-server/internal/platform/logger"
	"github.com/kavinrs01/task-manager-server/internal/store"
)

// PostgresRefreshTokenStore implements the store.RefreshTokenStore
// interface using a PostgreSQL database as the storage backend.
type PostgresRefreshTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRefreshTokenStore creates a new PostgreSQL implementation
// of the RefreshTokenStore interface.
func NewPostgresRefreshTokenStore(db store.DBTX, logger *slog.Logger) *PostgresRefreshTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRefreshTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "refresh_token_store")),
	}
}

// Ensure PostgresRefreshTokenStore implements store.RefreshTokenStore interface
var _ store.RefreshTokenStore = (*PostgresRefreshTokenStore)(nil)

// Create implements store.RefreshTokenStore.Create
func (s *PostgresRefreshTokenStore) Create(ctx context.Context, token *domain.RefreshToken) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := token.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, token.Token, token.UserID, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user %s not found", store.ErrInvalidEntity, token.UserID)
		}
		log.Error("failed to create refresh token",
			slog.String("error", err.Error()),
			slog.String("user_id", token.UserID.String()))
		return err
	}

	return nil
}

// GetByToken implements store.RefreshTokenStore.GetByToken
func (s *PostgresRefreshTokenStore) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `
		SELECT token, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`
	var rt domain.RefreshToken
	err := s.db.QueryRowContext(ctx, query, token).
		Scan(&rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// Delete implements store.RefreshTokenStore.Delete
func (s *PostgresRefreshTokenStore) Delete(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete refresh token",
			slog.String("error", err.Error()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrRefreshTokenNotFound
	}

	return nil
}

// DeleteExpired implements store.RefreshTokenStore.DeleteExpired
func (s *PostgresRefreshTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// WithTx implements store.RefreshTokenStore.WithTx
func (s *PostgresRefreshTokenStore) WithTx(tx *sql.Tx) store.RefreshTokenStore {
	return &PostgresRefreshTokenStore{db: tx, logger: s.logger}
}
