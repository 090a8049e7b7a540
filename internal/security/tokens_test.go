package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenCodec_IssueAndVerifyRoundTrip(t *testing.T) {
	c := NewTokenCodec("test-secret", 15*time.Minute)

	token, exp, err := c.IssueAccess("u1", "ada@example.com", "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	claims, err := c.VerifyAccess(token)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "ada@example.com" || claims.Role != "user" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Error("iat/exp not set")
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	c := NewTokenCodec("test-secret", -time.Second)
	token, _, err := c.IssueAccess("u1", "ada@example.com", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	_, err = c.VerifyAccess(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("want ErrTokenExpired, got %v", err)
	}
}

func TestTokenCodec_NotYetExpired(t *testing.T) {
	c := NewTokenCodec("test-secret", 2*time.Second)
	token, _, err := c.IssueAccess("u1", "ada@example.com", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := c.VerifyAccess(token); err != nil {
		t.Errorf("token should still verify just after issuance: %v", err)
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	c := NewTokenCodec("test-secret", 15*time.Minute)
	other := NewTokenCodec("other-secret", 15*time.Minute)

	token, _, err := c.IssueAccess("u1", "ada@example.com", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	_, err = other.VerifyAccess(token)
	if !errors.Is(err, ErrTokenSignature) {
		t.Errorf("want ErrTokenSignature, got %v", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	c := NewTokenCodec("test-secret", 15*time.Minute)
	for _, bad := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := c.VerifyAccess(bad); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("VerifyAccess(%q): want ErrTokenMalformed, got %v", bad, err)
		}
	}
}

func TestTokenCodec_ClaimsMissing(t *testing.T) {
	c := NewTokenCodec("test-secret", 15*time.Minute)
	token, _, err := c.IssueAccess("", "", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	_, err = c.VerifyAccess(token)
	if !errors.Is(err, ErrClaimsMissing) {
		t.Errorf("want ErrClaimsMissing, got %v", err)
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := GenerateRefreshToken()
		if err != nil {
			t.Fatalf("GenerateRefreshToken: %v", err)
		}
		if len(tok) != 64 {
			t.Fatalf("token length = %d, want 64 hex chars", len(tok))
		}
		if seen[tok] {
			t.Fatal("duplicate refresh token generated")
		}
		seen[tok] = true
	}
}
