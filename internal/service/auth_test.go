package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/item-shop/internal/apperror"
	"github.com/sakif/item-shop/internal/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo, *auth.TokenService) {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	users := newMockUserRepo()

	return NewAuthService(users, tokens, passwords, discardLogger()), users, tokens
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{"username too short", "ab", "password1", "username"},
		{"username only whitespace", "   ", "password1", "username"},
		{"username too long", "abcdefghijklmnopqrstuvwxyz0123456789", "password1", "username"},
		{"password too short", "alice", "12345", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Register() err = %v, want ErrValidation", err)
			}

			var appErr *apperror.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("Register() err is not an AppError: %v", err)
			}
			if appErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.field)
			}
		})
	}
}

func TestRegister_Success(t *testing.T) {
	svc, users, tokens := newTestAuthService(t)
	ctx := context.Background()

	// Surrounding whitespace is trimmed before validation.
	result, err := svc.Register(ctx, "  alice  ", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.User.Username != "alice" {
		t.Errorf("Username = %q, want trimmed alice", result.User.Username)
	}
	if result.User.PasswordHash == "" || result.User.PasswordHash == "secret1" {
		t.Error("stored password should be a hash")
	}

	userID, err := tokens.Validate(result.Token)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if userID != result.User.ID {
		t.Errorf("token subject = %q, want %q", userID, result.User.ID)
	}

	if _, err := users.GetByUsername(ctx, "alice"); err != nil {
		t.Errorf("registered user not stored: %v", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(ctx, "alice", "different1")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Register() err = %v, want ErrConflict", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _, tokens := newTestAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != reg.User.ID {
		t.Errorf("Login() user ID = %q, want %q", result.User.ID, reg.User.ID)
	}

	if _, err := tokens.Validate(result.Token); err != nil {
		t.Errorf("login token failed validation: %v", err)
	}
}

func TestLogin_GenericErrorHidesCause(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// An OAuth-only account has no password hash.
	gh, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 99, Login: "ghonly"})
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	if _, err := users.GetByID(ctx, gh.User.ID); err != nil {
		t.Fatalf("GitHub user not stored: %v", err)
	}

	messages := map[string]string{}
	for name, creds := range map[string][2]string{
		"unknown username": {"nobody", "secret1"},
		"wrong password":   {"alice", "wrong00"},
		"oauth only":       {"ghonly", "secret1"},
	} {
		_, err := svc.Login(ctx, creds[0], creds[1])
		if !errors.Is(err, apperror.ErrUnauthorized) {
			t.Fatalf("%s: err = %v, want ErrUnauthorized", name, err)
		}
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			t.Fatalf("%s: err is not an AppError: %v", name, err)
		}
		messages[name] = appErr.Message
	}

	// All three failures carry the identical message: the login form cannot be
	// used to probe which usernames exist.
	for name, msg := range messages {
		if msg != messages["unknown username"] {
			t.Errorf("%s message = %q, differs from unknown-username message %q",
				name, msg, messages["unknown username"])
		}
	}
}

func TestLoginOrRegisterGitHub_KeepsInternalID(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 583231, Login: "octocat"})
	if err != nil {
		t.Fatalf("first sign-in error = %v", err)
	}

	second, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 583231, Login: "octocat"})
	if err != nil {
		t.Fatalf("second sign-in error = %v", err)
	}

	if second.User.ID != first.User.ID {
		t.Errorf("repeat sign-in ID = %q, want %q", second.User.ID, first.User.ID)
	}
}

func TestGetUserByID_EmptyID(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	if _, err := svc.GetUserByID(context.Background(), ""); err == nil {
		t.Error("GetUserByID(\"\") should fail")
	}
}
