package services

import (
	"context"
	"testing"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven/mocks"
)

func newTestAuthService() (*mocks.MockUserStore, *mocks.MockSessionStore, *authService) {
	userStore := mocks.NewMockUserStore()
	sessionStore := mocks.NewMockSessionStore()
	authAdapter := mocks.NewMockAuthAdapter()
	svc := NewAuthService(userStore, sessionStore, authAdapter).(*authService)
	return userStore, sessionStore, svc
}

func seedUser(t *testing.T, userStore *mocks.MockUserStore, email, password string, active bool) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:           generateID(),
		Email:        email,
		PasswordHash: password, // Mock adapter compares plain text
		Name:         "Test User",
		Role:         domain.RoleMember,
		Active:       active,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := userStore.Save(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestAuthService_Authenticate(t *testing.T) {
	userStore, _, svc := newTestAuthService()
	seedUser(t, userStore, "member@example.com", "password123", true)
	seedUser(t, userStore, "inactive@example.com", "password123", false)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "member@example.com", "password123", nil},
		{"wrong password", "member@example.com", "nope", domain.ErrInvalidCredentials},
		{"unknown email", "ghost@example.com", "password123", domain.ErrInvalidCredentials},
		{"inactive user", "inactive@example.com", "password123", domain.ErrUnauthorized},
		{"empty email", "", "password123", domain.ErrInvalidInput},
		{"empty password", "member@example.com", "", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Authenticate(context.Background(), domain.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			})

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Token == "" {
				t.Error("expected token")
			}
			if resp.RefreshToken == "" {
				t.Error("expected refresh token")
			}
			if resp.User == nil || resp.User.Email != tt.email {
				t.Errorf("expected user summary for %s", tt.email)
			}
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	userStore, sessionStore, svc := newTestAuthService()
	user := seedUser(t, userStore, "member@example.com", "password123", true)

	resp, err := svc.Authenticate(context.Background(), domain.LoginRequest{
		Email:    "member@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	authCtx, err := svc.ValidateToken(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if authCtx.UserID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, authCtx.UserID)
	}
	if authCtx.Role != domain.RoleMember {
		t.Errorf("expected member role, got %s", authCtx.Role)
	}

	// Logout kills the session; the token must stop validating
	if err := svc.Logout(context.Background(), resp.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), resp.Token); err != domain.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}

	if _, err := svc.ValidateToken(context.Background(), ""); err != domain.ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for empty token, got %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), "garbage"); err != domain.ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for garbage token, got %v", err)
	}

	_ = sessionStore
}

func TestAuthService_RefreshToken(t *testing.T) {
	userStore, sessionStore, svc := newTestAuthService()
	seedUser(t, userStore, "member@example.com", "password123", true)

	resp, err := svc.Authenticate(context.Background(), domain.LoginRequest{
		Email:    "member@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), domain.RefreshRequest{
		RefreshToken: resp.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.Token == resp.Token {
		t.Error("expected a new token after refresh")
	}
	if refreshed.RefreshToken == resp.RefreshToken {
		t.Error("expected refresh token rotation")
	}

	// Only the rotated session remains
	if sessionStore.Count() != 1 {
		t.Errorf("expected 1 session after rotation, got %d", sessionStore.Count())
	}

	if _, err := svc.RefreshToken(context.Background(), domain.RefreshRequest{RefreshToken: "bogus"}); err != domain.ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	userStore, sessionStore, svc := newTestAuthService()
	user := seedUser(t, userStore, "member@example.com", "oldpass", true)

	resp, err := svc.Authenticate(context.Background(), domain.LoginRequest{
		Email:    "member@example.com",
		Password: "oldpass",
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	err = svc.ChangePassword(context.Background(), user.ID, domain.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpass",
	})
	if err != domain.ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	err = svc.ChangePassword(context.Background(), user.ID, domain.ChangePasswordRequest{
		CurrentPassword: "oldpass",
		NewPassword:     "newpass",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	// All sessions invalidated
	if sessionStore.Count() != 0 {
		t.Errorf("expected sessions cleared, got %d", sessionStore.Count())
	}
	_ = resp

	// New password works, old does not
	if _, err := svc.Authenticate(context.Background(), domain.LoginRequest{Email: "member@example.com", Password: "newpass"}); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), domain.LoginRequest{Email: "member@example.com", Password: "oldpass"}); err != domain.ErrInvalidCredentials {
		t.Errorf("expected old password rejected, got %v", err)
	}
}
