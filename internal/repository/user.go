package repository

import (
	"context"

	"kyccase/internal/model"
)

// UserRepository defines data access for users.
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicate when the email or
	// username is already taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email, or sql.ErrNoRows.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
