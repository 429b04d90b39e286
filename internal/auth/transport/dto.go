package transport

import "time"

type SignUpRequest struct {
	DisplayName string `json:"displayName" validate:"notblank,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Gender      string `json:"gender" validate:"max=50"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token for refresh and sign-out. Mobile
// clients keep it in secure storage rather than a cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	Profile      ProfileResponse `json:"profile"`
}

type ProfileResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Gender      string    `json:"gender"`
	CreatedAt   time.Time `json:"createdAt"`
}
