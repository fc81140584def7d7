package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"gamefilter/internal/config"
	"gamefilter/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "gamefilter"

// AdminClaims are the claims carried by admin API tokens.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and validates HS256 admin tokens.
type Service struct {
	config *config.AuthConfig
	now    func() time.Time
}

// NewService creates a new authentication service
func NewService(cfg *config.AuthConfig) *Service {
	return &Service{config: cfg, now: time.Now}
}

// Enabled reports whether requests must carry a token.
func (s *Service) Enabled() bool { return s.config.Enabled }

// Login checks the admin password and returns a signed token with its expiry.
func (s *Service) Login(_ context.Context, username, password string) (string, time.Time, error) {
	if !s.config.Enabled {
		return "", time.Time{}, auth.ErrAuthDisabled
	}
	if !verifyPassword(s.config.AdminPasswordHash, password) {
		return "", time.Time{}, auth.ErrInvalidCredentials
	}
	if username == "" {
		username = "admin"
	}
	now := s.now()
	exp := now.Add(s.config.TokenTTL)
	claims := AdminClaims{
		Role: auth.RoleAdministrator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ValidateToken parses and verifies a bearer token.
func (s *Service) ValidateToken(_ context.Context, tokenString string) (*auth.Principal, error) {
	if !s.config.Enabled {
		return nil, auth.ErrAuthDisabled
	}
	var claims AdminClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, auth.ErrInvalidToken
	}
	p := &auth.Principal{Subject: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// verifyPassword accepts a bcrypt hash or, for local setups, a plain value.
func verifyPassword(stored, pw string) bool {
	if stored == "" || pw == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pw)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(pw)) == 1
}

func isBcryptHash(v string) bool {
	if len(v) < 4 {
		return false
	}
	switch v[:4] {
	case "$2a$", "$2b$", "$2y$":
		return true
	}
	return false
}
