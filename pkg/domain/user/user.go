// Package user contains the platform user entity.
package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUsernameRequired is returned when the username is empty.
	ErrUsernameRequired = errors.New("username is required")
	// ErrEmailRequired is returned when the email is empty.
	ErrEmailRequired = errors.New("email is required")
)

// User is a registered platform user. Password holds the bcrypt hash, never
// the plain text.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Password  string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a user with the given credentials. hashedPassword must already
// be a bcrypt hash.
func New(username, email, hashedPassword string) (*User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
