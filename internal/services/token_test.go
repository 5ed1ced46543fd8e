package services

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := MakeAccessToken("user-123", "therapist", testSecret)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}

	claims, err := ParseAccessToken(tok, testSecret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("uid mismatch: %s", claims.UserID)
	}
	if claims.Role != "therapist" {
		t.Errorf("role mismatch: %s", claims.Role)
	}

	// verify expiry is ~15 min from now
	diff := time.Until(claims.ExpiresAt.Time)
	if diff < 14*time.Minute || diff > 16*time.Minute {
		t.Errorf("expected ~15min expiry, got %v", diff)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, _ := MakeAccessToken("uid", "user", testSecret)

	_, err := ParseAccessToken(tok, "wrong-secret")
	if err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestAccessTokenGarbage(t *testing.T) {
	_, err := ParseAccessToken("not.a.token", testSecret)
	if err == nil {
		t.Fatal("expected error for garbage token")
	}
}

func TestRefreshTokenGeneration(t *testing.T) {
	raw, hash, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(raw) != 64 { // 32 bytes hex = 64 chars
		t.Errorf("expected 64 char raw token, got %d", len(raw))
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}
	if raw == hash {
		t.Error("raw token must not equal its hash")
	}

	if HashRefreshToken(raw) != hash {
		t.Error("hash mismatch")
	}
}

func TestRefreshTokensAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		raw, _, err := GenerateRefreshToken()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if seen[raw] {
			t.Fatal("duplicate refresh token generated")
		}
		seen[raw] = true
	}
}

func TestRefreshTokenUsable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		rt   RefreshToken
		want bool
	}{
		{"valid", RefreshToken{ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", RefreshToken{ExpiresAt: now.Add(-time.Hour)}, false},
		{"revoked", RefreshToken{ExpiresAt: now.Add(time.Hour), Revoked: true}, false},
		{"revoked and expired", RefreshToken{ExpiresAt: now.Add(-time.Hour), Revoked: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rt.Usable(); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}
