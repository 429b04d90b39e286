package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"evntly_backend/internal/auth/repository"
	"evntly_backend/internal/auth/service"
	"evntly_backend/internal/auth/transport"
	"evntly_backend/internal/events"
	"evntly_backend/platform/config"
	"evntly_backend/platform/httpkit"
	"evntly_backend/platform/logger"
	"evntly_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// memoryRepo is a minimal in-memory AuthRepository.
type memoryRepo struct {
	users   map[string]repository.User
	refresh map[string]uuid.UUID
}

func (m *memoryRepo) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return repository.User{}, repository.ErrNotFound
}

func (m *memoryRepo) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

func (m *memoryRepo) CreateUser(_ context.Context, p repository.CreateUserParams) (repository.User, error) {
	if _, ok := m.users[p.Email]; ok {
		return repository.User{}, repository.ErrEmailTaken
	}
	u := repository.User{ID: uuid.New(), Email: p.Email, PasswordHash: p.PasswordHash, DisplayName: p.DisplayName, Gender: p.Gender}
	m.users[p.Email] = u
	return u, nil
}

func (m *memoryRepo) CreateRefreshToken(_ context.Context, userID uuid.UUID, hash string, _ time.Time) error {
	m.refresh[hash] = userID
	return nil
}

func (m *memoryRepo) GetRefreshToken(_ context.Context, hash string) (uuid.UUID, time.Time, error) {
	id, ok := m.refresh[hash]
	if !ok {
		return uuid.Nil, time.Time{}, repository.ErrNotFound
	}
	return id, time.Now().Add(time.Hour), nil
}

func (m *memoryRepo) RevokeRefreshToken(_ context.Context, hash string) error {
	delete(m.refresh, hash)
	return nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event)           {}
func (nopBus) PublishSync(context.Context, events.Event) error { return nil }
func (nopBus) Subscribe(string, events.Handler)                {}

const testSecret = "handler-secret"

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := &memoryRepo{users: map[string]repository.User{}, refresh: map[string]uuid.UUID{}}
	cfg := &config.Config{JWTAccessSecret: testSecret, AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour}
	h := New(service.New(repo, cfg, nopBus{}, logger.Discard()), validator.New())

	r := gin.New()
	h.RegisterRoutes(r.Group("/auth"))
	r.GET("/users/me", httpkit.AuthRequired(cfg), h.GetMe)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSignUpValidation(t *testing.T) {
	r := newTestEngine()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{`},
		{name: "bad email", body: `{"displayName":"Mari","email":"nope","password":"supersecret"}`},
		{name: "short password", body: `{"displayName":"Mari","email":"mari@example.com","password":"short"}`},
		{name: "blank name", body: `{"displayName":"   ","email":"mari@example.com","password":"supersecret"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := postJSON(r, "/auth/sign-up", tt.body); rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}
		})
	}
}

func TestSignUpThenMe(t *testing.T) {
	r := newTestEngine()

	rec := postJSON(r, "/auth/sign-up", `{"displayName":"Mari","email":"mari@example.com","password":"supersecret","gender":"female"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("sign up: status %d body %s", rec.Code, rec.Body.String())
	}
	var auth transport.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &auth); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if rec := postJSON(r, "/auth/sign-up", `{"displayName":"Other","email":"mari@example.com","password":"supersecret"}`); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: status %d", rec.Code)
	}
	if rec := postJSON(r, "/auth/sign-in", `{"email":"mari@example.com","password":"wrongpassword"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+auth.AccessToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d", rec.Code)
	}
	var profile transport.ProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Email != "mari@example.com" || profile.DisplayName != "Mari" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if rec := postJSON(r, "/auth/sign-out", `{"refreshToken":"`+auth.RefreshToken+`"}`); rec.Code != http.StatusOK {
		t.Fatalf("sign out: status %d", rec.Code)
	}
	if rec := postJSON(r, "/auth/refresh", `{"refreshToken":"`+auth.RefreshToken+`"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after sign out: status %d", rec.Code)
	}
}
