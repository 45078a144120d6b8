package user

import (
	"errors"
	"time"
)

const (
	RoleOwner  = "OWNER"
	RoleViewer = "VIEWER" // doctor / family member
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already used")
)

// check to see if the role is a known constant

func IsValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleViewer:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
