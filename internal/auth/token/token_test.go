package token

import (
	"testing"
	"time"

	"evntly_backend/platform/httpkit"

	"github.com/google/uuid"
)

func TestSignAccessTokenIsAcceptedByMiddleware(t *testing.T) {
	userID := uuid.New()
	raw, err := SignAccessToken(userID, time.Now(), time.Minute, "secret")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := httpkit.ParseAccessToken(raw, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != userID {
		t.Fatalf("subject = %s, want %s", got, userID)
	}
}

func TestSignAccessTokenRejectedWithOtherSecret(t *testing.T) {
	raw, err := SignAccessToken(uuid.New(), time.Now(), time.Minute, "secret")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := httpkit.ParseAccessToken(raw, "other"); err == nil {
		t.Fatal("expected signature failure")
	}
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	raw, err := SignAccessToken(uuid.New(), time.Now().Add(-time.Hour), time.Minute, "secret")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := httpkit.ParseAccessToken(raw, "secret"); err == nil {
		t.Fatal("expected expiry failure")
	}
}

func TestRandomTokensAreUniqueAndHashStable(t *testing.T) {
	a, err := GenerateRandomToken(48)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := GenerateRandomToken(48)
	if a == b {
		t.Fatal("expected distinct tokens")
	}
	if HashSHA256(a) != HashSHA256(a) || HashSHA256(a) == HashSHA256(b) {
		t.Fatal("hash must be deterministic and distinguish tokens")
	}
	if len(HashSHA256(a)) != 64 {
		t.Fatalf("unexpected hash length %d", len(HashSHA256(a)))
	}
}
