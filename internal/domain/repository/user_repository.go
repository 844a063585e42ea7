package repository

import (
	"context"

	"chitchat/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error

	// ListExcluding returns users other than the given IDs, newest first,
	// capped at limit (0 = no cap).
	ListExcluding(ctx context.Context, excludeIDs []string, limit int) ([]*entity.User, error)
}
