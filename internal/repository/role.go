package repository

import (
	"context"

	"github.com/ErlanBelekov/pharmacy-auth/internal/domain"
)

type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Role, error)
}
