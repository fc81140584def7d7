package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamefilter/internal/config"
	"gamefilter/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("rcon-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return NewService(&config.AuthConfig{
		Enabled:           true,
		JWTSecret:         "test-secret",
		AdminPasswordHash: string(hash),
		TokenTTL:          time.Hour,
	})
}

func TestService_LoginAndValidate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	token, exp, err := s.Login(ctx, "ops", "rcon-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("Expected expiry in the future, got %v", exp)
	}

	p, err := s.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if p.Subject != "ops" || !p.IsAdministrator() {
		t.Errorf("Unexpected principal %+v", p)
	}
}

func TestService_LoginWrongPassword(t *testing.T) {
	s := newTestService(t)
	if _, _, err := s.Login(context.Background(), "ops", "nope"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_ValidateToken_Rejects(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	expired := NewService(s.config)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Login(ctx, "ops", "rcon-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role: auth.RoleAdministrator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"expired", old},
		{"wrong secret", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.ValidateToken(ctx, tt.token); !errors.Is(err, auth.ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestService_Disabled(t *testing.T) {
	s := NewService(&config.AuthConfig{})
	if _, _, err := s.Login(context.Background(), "", "x"); !errors.Is(err, auth.ErrAuthDisabled) {
		t.Errorf("Expected ErrAuthDisabled, got %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		pw     string
		want   bool
	}{
		{"plain match", "secret", "secret", true},
		{"plain mismatch", "secret", "Secret", false},
		{"empty stored", "", "x", false},
		{"empty password", "secret", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := verifyPassword(tt.stored, tt.pw); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
