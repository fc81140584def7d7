package filter

import "errors"

// Store errors
var (
	ErrFull           = errors.New("IP filter list is full")
	ErrNotFound       = errors.New("filter entry not found")
	ErrInvalidPattern = errors.New("invalid filter address")
	ErrZeroIdentity   = errors.New("identity must be non-zero")
	ErrInvalidMinutes = errors.New("minutes must be a finite number within range")
)

// Parse errors
var (
	ErrInvalidOctet = errors.New("bad filter address octet")
)
