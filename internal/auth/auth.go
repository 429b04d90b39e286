// Package auth provides authentication for the app: email/password accounts,
// short-lived access JWTs and rotating refresh tokens.
// This file defines the public API of the auth bounded context.
// Only types and interfaces defined here should be imported by other domains.
package auth

import (
	"context"

	"evntly_backend/internal/auth/service"

	"github.com/google/uuid"
)

// Profile represents user information that can be shared with other domains.
type Profile = service.Profile

// ProfileReader is what other domains may use to look users up.
type ProfileReader interface {
	// CurrentProfile returns the profile of the user with the given ID.
	CurrentProfile(ctx context.Context, userID uuid.UUID) (Profile, error)
}

var _ ProfileReader = (*service.Service)(nil)
