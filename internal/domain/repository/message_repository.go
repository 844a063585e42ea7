package repository

import (
	"context"

	"chitchat/internal/domain/entity"
)

// StatusEntry is the authoritative status of a single message, returned
// by the reconciliation fetch.
type StatusEntry struct {
	MessageID string               `json:"messageId"`
	Status    entity.MessageStatus `json:"status"`
}

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	GetByID(ctx context.Context, id string) (*entity.Message, error)
	Update(ctx context.Context, message *entity.Message) error

	// ListByConversation returns messages newest-first.
	ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)

	// AdvanceStatus moves a message's status forward, skipping the write
	// when the transition would not advance it. Returns true if the status
	// actually changed.
	AdvanceStatus(ctx context.Context, messageID string, status entity.MessageStatus) (bool, error)

	// ListPendingForReceiver returns all messages addressed to receiverID
	// still in "sent" status, ascending by creation time.
	ListPendingForReceiver(ctx context.Context, receiverID string) ([]*entity.Message, error)

	// ListStatuses returns the status of every message in a conversation.
	ListStatuses(ctx context.Context, conversationID string) ([]StatusEntry, error)

	// CountUnseen counts messages from senderID to receiverID not yet seen.
	CountUnseen(ctx context.Context, senderID, receiverID string) (int64, error)
}
