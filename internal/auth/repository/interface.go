package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserReader provides read access to accounts.
type UserReader interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
}

// AuthRepository defines the interface for authentication data operations.
type AuthRepository interface {
	UserReader

	CreateUser(ctx context.Context, params CreateUserParams) (User, error)

	// Refresh token operations
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

// Ensure Repository implements AuthRepository
var _ AuthRepository = (*Repository)(nil)
