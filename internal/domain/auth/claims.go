package auth

import (
	"errors"
	"time"
)

// RoleAdministrator is the only role: anyone holding a valid token may run
// every filter command.
const RoleAdministrator = "administrator"

// Principal is the authenticated caller of the admin API.
type Principal struct {
	Subject   string    `json:"sub"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdministrator reports whether p may change the filter list.
func (p *Principal) IsAdministrator() bool { return p != nil && p.Role == RoleAdministrator }

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAuthDisabled       = errors.New("authentication is not enabled")
)
