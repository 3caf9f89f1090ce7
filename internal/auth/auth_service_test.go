package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	s, err := NewAuthService("test-secret", 8*time.Hour)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	token, err := s.GenerateToken("admin@tce.edu")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Email != "admin@tce.edu" {
		t.Fatalf("email claim: got %q", claims.Email)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 7*time.Hour || remaining > 8*time.Hour {
		t.Fatalf("expiry not ~8h out: %v", remaining)
	}
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	s, err := NewAuthService("test-secret", time.Nanosecond)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	token, err := s.GenerateToken("admin@tce.edu")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := s.ValidateToken(token); err == nil {
		t.Fatal("expired token must not validate")
	}
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	issuer, _ := NewAuthService("secret-a", time.Hour)
	verifier, _ := NewAuthService("secret-b", time.Hour)

	token, err := issuer.GenerateToken("admin@tce.edu")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	s, _ := NewAuthService("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := s.ValidateToken(token); err == nil {
			t.Fatalf("garbage token %q must not validate", token)
		}
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("StrongAdminPass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("StrongAdminPass123", hash) {
		t.Fatal("correct password must match")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatal("wrong password must not match")
	}
}
