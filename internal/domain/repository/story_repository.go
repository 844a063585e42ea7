package repository

import (
	"context"

	"chitchat/internal/domain/entity"
)

type StoryRepository interface {
	Create(ctx context.Context, story *entity.Story) error
	GetByID(ctx context.Context, id string) (*entity.Story, error)
	Update(ctx context.Context, story *entity.Story) error
	Delete(ctx context.Context, id string) error

	// ListActiveByUsers returns unexpired stories for the given users,
	// newest first.
	ListActiveByUsers(ctx context.Context, userIDs []string) ([]*entity.Story, error)

	// ListActiveByUser returns one user's unexpired stories, oldest first.
	ListActiveByUser(ctx context.Context, userID string) ([]*entity.Story, error)
}
