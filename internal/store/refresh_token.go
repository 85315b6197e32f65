package store

import (
	"context"
	"database/sql"

	"github.com/kavinrs01/task-manager-server/internal/domain"
)

// RefreshTokenStore defines the interface for refresh token persistence.
//
// Rotation (delete old + insert new) must run inside a single
// transaction via WithTx so a token can never be exchanged twice.
type RefreshTokenStore interface {
	// Create saves a new refresh token record.
	Create(ctx context.Context, token *domain.RefreshToken) error

	// GetByToken retrieves a refresh token record by its opaque value.
	// Returns ErrRefreshTokenNotFound if the token does not exist.
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)

	// Delete removes a refresh token record, consuming it.
	// Returns ErrRefreshTokenNotFound if the token does not exist.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all token records past their expiry and
	// returns how many were deleted. Used for periodic cleanup.
	DeleteExpired(ctx context.Context) (int64, error)

	// WithTx returns a new RefreshTokenStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) RefreshTokenStore
}
