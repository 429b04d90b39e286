package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"evntly_backend/internal/auth/password"
	"evntly_backend/internal/auth/repository"
	"evntly_backend/internal/auth/token"
	"evntly_backend/internal/events"
	"evntly_backend/platform/apperr"
	"evntly_backend/platform/config"
	"evntly_backend/platform/logger"
	"evntly_backend/platform/sanitize"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
	ErrTokenExpired       = apperr.Unauthorized("token expired")
	ErrTokenInvalid       = apperr.Unauthorized("token invalid")
	ErrEmailTaken         = apperr.Conflict("email already registered")
)

const refreshTokenBytes = 48

// Profile is the public view of an account.
type Profile struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
	Gender      string
	CreatedAt   time.Time
}

// Tokens is the result of a sign-in or refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Profile      Profile
}

type Service struct {
	repo repository.AuthRepository
	cfg  config.AuthServiceConfig
	bus  events.Bus
	log  *logger.Logger
	now  func() time.Time
}

func New(repo repository.AuthRepository, cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus, log: log, now: time.Now}
}

// SignUp creates an account and signs the new user in.
func (s *Service) SignUp(ctx context.Context, displayName, email, plainPassword, gender string) (Tokens, error) {
	email = normalizeEmail(email)
	displayName = sanitize.Line(displayName)
	if displayName == "" {
		return Tokens{}, apperr.Validation("display name is required")
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return Tokens{}, err
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Gender:       sanitize.Line(gender),
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			s.log.AuthEvent("sign_up", email, false, "email taken")
			return Tokens{}, ErrEmailTaken
		}
		return Tokens{}, err
	}

	s.log.AuthEvent("sign_up", email, true, "")
	s.bus.Publish(ctx, events.UserSignedUp{
		BaseEvent:   events.NewBaseEvent(),
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})

	return s.issueTokens(ctx, user)
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (Tokens, error) {
	email = normalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return Tokens{}, err
		}
		s.log.AuthEvent("sign_in", email, false, "unknown email")
		return Tokens{}, ErrInvalidCredentials
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "wrong password")
		return Tokens{}, ErrInvalidCredentials
	}

	s.log.AuthEvent("sign_in", email, true, "")
	s.bus.Publish(ctx, events.UserSignedIn{BaseEvent: events.NewBaseEvent(), UserID: user.ID})

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Tokens{}, ErrTokenInvalid
		}
		return Tokens{}, err
	}

	_ = s.repo.RevokeRefreshToken(ctx, hash)
	if s.now().After(expiresAt) {
		return Tokens{}, ErrTokenExpired
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Tokens{}, ErrTokenInvalid
		}
		return Tokens{}, err
	}

	return s.issueTokens(ctx, user)
}

// SignOut revokes the refresh token. Unknown tokens are ignored.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

// CurrentProfile returns the signed-in user's profile.
func (s *Service) CurrentProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Profile{}, apperr.NotFound("user not found")
		}
		return Profile{}, err
	}
	return toProfile(user), nil
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (Tokens, error) {
	now := s.now()
	accessToken, err := token.SignAccessToken(user.ID, now, s.cfg.GetAccessTokenTTL(), s.cfg.GetJWTAccessSecret())
	if err != nil {
		return Tokens{}, err
	}

	refreshToken, err := token.GenerateRandomToken(refreshTokenBytes)
	if err != nil {
		return Tokens{}, err
	}

	expiresAt := now.Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, token.HashSHA256(refreshToken), expiresAt); err != nil {
		return Tokens{}, err
	}

	return Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.cfg.GetAccessTokenTTL()),
		Profile:      toProfile(user),
	}, nil
}

func toProfile(user repository.User) Profile {
	return Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Gender:      user.Gender,
		CreatedAt:   user.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
