// Package identity provides login, token validation and user directory
// lookups for assignment resolution.
package identity

import (
	"context"

	"github.com/opswatch/opswatch/internal/domain"
)

// Repository defines the interface for user storage.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}
