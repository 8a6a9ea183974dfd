package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

const (
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

type AccessClaims struct {
	UserID    int64
	Role      string
	ExpiresAt time.Time
}
