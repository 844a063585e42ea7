package usecase

import (
	"context"
	"log"
	"time"

	"chitchat/internal/domain/entity"
	"chitchat/internal/domain/repository"
)

const suggestedContactLimit = 5

type ContactUseCase struct {
	userRepo    repository.UserRepository
	convRepo    repository.ConversationRepository
	messageRepo repository.MessageRepository
}

func NewContactUseCase(
	userRepo repository.UserRepository,
	convRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
) *ContactUseCase {
	return &ContactUseCase{
		userRepo:    userRepo,
		convRepo:    convRepo,
		messageRepo: messageRepo,
	}
}

// LastMessagePreview is the denormalized pointer surfaced in chat lists.
type LastMessagePreview struct {
	MessageID string    `json:"messageId"`
	Text      string    `json:"text"`
	SenderID  string    `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChattedContact struct {
	*entity.User
	LastMessage *LastMessagePreview `json:"lastMessage,omitempty"`
	UnreadCount int64               `json:"unreadCount"`
}

// AllContacts returns every user except the caller.
func (uc *ContactUseCase) AllContacts(ctx context.Context, userID string) ([]*entity.User, error) {
	return uc.userRepo.ListExcluding(ctx, []string{userID}, 0)
}

// ChattedContacts returns the users the caller has a conversation with,
// most recent first, each with the last message and unread count.
func (uc *ContactUseCase) ChattedContacts(ctx context.Context, userID string) ([]*ChattedContact, error) {
	conversations, err := uc.convRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	contacts := make([]*ChattedContact, 0, len(conversations))
	for _, conversation := range conversations {
		otherID := conversation.OtherParticipant(userID)
		if otherID == "" {
			continue
		}

		user, err := uc.userRepo.GetByID(ctx, otherID)
		if err != nil {
			log.Printf("ChattedContacts: skipping missing user %s: %v", otherID, err)
			continue
		}

		unread, err := uc.messageRepo.CountUnseen(ctx, otherID, userID)
		if err != nil {
			return nil, err
		}

		contact := &ChattedContact{
			User:        user,
			UnreadCount: unread,
		}
		if conversation.LastMessageID != "" {
			contact.LastMessage = &LastMessagePreview{
				MessageID: conversation.LastMessageID,
				Text:      conversation.LastMessageText,
				SenderID:  conversation.LastSenderID,
				CreatedAt: conversation.LastMessageAt,
			}
		}
		contacts = append(contacts, contact)
	}

	return contacts, nil
}

// SuggestedContacts returns recent users the caller has not chatted with.
func (uc *ContactUseCase) SuggestedContacts(ctx context.Context, userID string) ([]*entity.User, error) {
	conversations, err := uc.convRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	exclude := []string{userID}
	for _, conversation := range conversations {
		if other := conversation.OtherParticipant(userID); other != "" {
			exclude = append(exclude, other)
		}
	}

	return uc.userRepo.ListExcluding(ctx, exclude, suggestedContactLimit)
}
