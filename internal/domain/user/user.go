package user

import (
	"errors"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

var (
	ErrNotFound     = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
	ErrHasContracts = errors.New("user has contracts")
)

type CreateUserRequest struct {
	Name         string
	Email        string
	PasswordHash string
}

// pointer fields: nil means the field was not supplied and must be left as is
type UpdateUserRequest struct {
	Name  *string
	Email *string
}
