package repository

import (
	"context"

	"chitchat/internal/domain/entity"
)

type ConversationRepository interface {
	// GetOrCreate resolves the conversation for a pair of users, creating
	// it under its pair-key document ID if absent. The deterministic ID
	// makes concurrent first-messages converge on one record.
	GetOrCreate(ctx context.Context, userA, userB string) (*entity.Conversation, error)

	GetByID(ctx context.Context, id string) (*entity.Conversation, error)

	// SetLastMessage updates the denormalized last-message pointer.
	SetLastMessage(ctx context.Context, conversationID string, message *entity.Message) error

	// ListByUserID returns the user's conversations, most recent first.
	ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error)
}
