package repository

import (
	"context"
	"errors"

	"github.com/eaglebank/auth-api/shared/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
)

// UserStore is the source of truth for user accounts.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// Update overwrites name, email and role of an existing user.
	Update(ctx context.Context, user *models.User) error
	Remove(ctx context.Context, id int64) error
}

// UserCreator inserts users. Only seeding uses it; the API has no sign-up.
type UserCreator interface {
	Create(ctx context.Context, user *models.User) error
}
