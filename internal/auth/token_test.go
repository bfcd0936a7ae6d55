package auth

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-0123456789abcdef"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short", time.Hour); err == nil {
		t.Error("NewTokenService() should reject secrets under 16 characters")
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	svc, err := NewTokenService(testSecret, 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	if svc.TTL() != 7*24*time.Hour {
		t.Errorf("TTL() = %v, want the 7-day default", svc.TTL())
	}
}

func TestTokenGenerateAndValidate(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	userID, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Validate() userID = %q, want user-123", userID)
	}
}

func TestTokenValidate_Expired(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateWithDuration("user-123", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := svc.Validate(token); err == nil {
		t.Error("Validate() should reject an expired token")
	}
}

func TestTokenValidate_Tampered(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := svc.Validate(tampered); err == nil {
		t.Error("Validate() should reject a tampered token")
	}
}

func TestTokenValidate_WrongSecret(t *testing.T) {
	svc := newTestTokenService(t)

	other, err := NewTokenService("another-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, err := other.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := svc.Validate(token); err == nil {
		t.Error("Validate() should reject a token signed with a different secret")
	}
}

func TestTokenValidate_Garbage(t *testing.T) {
	svc := newTestTokenService(t)

	for _, bad := range []string{"", "abc", "a.b.c"} {
		if _, err := svc.Validate(bad); err == nil {
			t.Errorf("Validate(%q) should fail", bad)
		}
	}
}
