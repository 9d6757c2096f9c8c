package repository

import (
	"context"

	"github.com/mwarzecha/authgate/internal/domain"
)

// UserRepository defines the interface for user record persistence.
type UserRepository interface {
	// Create inserts a new user record into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user record by the provider-assigned subject id.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user record by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Delete removes a user record from the store by its identifier.
	Delete(ctx context.Context, id string) error
}
