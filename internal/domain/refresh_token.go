package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RefreshToken validation errors
var (
	ErrEmptyToken       = errors.New("refresh token cannot be empty")
	ErrEmptyTokenOwner  = errors.New("refresh token must belong to a user")
	ErrEmptyTokenExpiry = errors.New("refresh token must have an expiry")
)

// RefreshToken is a stored, single-use credential for obtaining a new
// token pair. A token is consumed (deleted) exactly once when
// exchanged; reuse after rotation fails.
type RefreshToken struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRefreshToken records the given signed token string for the user
// with the given expiry.
func NewRefreshToken(token string, userID uuid.UUID, expiresAt time.Time) (*RefreshToken, error) {
	rt := &RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}

	if err := rt.Validate(); err != nil {
		return nil, err
	}

	return rt, nil
}

// Validate checks if the RefreshToken has valid data.
func (t *RefreshToken) Validate() error {
	if t.Token == "" {
		return ErrEmptyToken
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTokenOwner
	}
	if t.ExpiresAt.IsZero() {
		return ErrEmptyTokenExpiry
	}
	return nil
}

// Expired reports whether the token is past its expiry at the given time.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
