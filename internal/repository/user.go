package repository

import (
	"context"

	"github.com/ErlanBelekov/pharmacy-auth/internal/domain"
)

// UserRepository is the user store. Lookups return domain.ErrUserNotFound when nothing matches.
type UserRepository interface {
	// FindByEmailOrPhoneOrCIN returns any user sharing at least one of the identity keys.
	FindByEmailOrPhoneOrCIN(ctx context.Context, email, phoneNumber, cinNumber string) (*domain.User, error)
	// Create returns domain.ErrDuplicateUser when a unique key is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Save persists password, verified_at and agents of a previously fetched user.
	Save(ctx context.Context, user *domain.User) error
}
