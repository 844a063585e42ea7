package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chitchat/internal/domain/entity"
	"chitchat/internal/domain/repository"
	"chitchat/pkg/errors"
)

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

// GetOrCreate uses the pair key as the document ID, so two concurrent
// first-messages between the same pair race on Create and the loser just
// reads back the winner's document.
func (r *firestoreConversationRepository) GetOrCreate(ctx context.Context, userA, userB string) (*entity.Conversation, error) {
	id := entity.PairKey(userA, userB)
	docRef := r.client.Collection("conversations").Doc(id)

	doc, err := docRef.Get(ctx)
	if err == nil {
		var conversation entity.Conversation
		if err := doc.DataTo(&conversation); err != nil {
			return nil, errors.Internal("Failed to parse conversation data", err)
		}
		return &conversation, nil
	}
	if status.Code(err) != codes.NotFound {
		return nil, errors.Internal("Failed to get conversation", err)
	}

	now := time.Now()
	conversation := &entity.Conversation{
		ID:           id,
		Participants: []string{userA, userB},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = docRef.Create(ctx, conversation)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			// Lost the race; the other writer's record is authoritative.
			doc, err := docRef.Get(ctx)
			if err != nil {
				return nil, errors.Internal("Failed to get conversation after conflict", err)
			}
			var existing entity.Conversation
			if err := doc.DataTo(&existing); err != nil {
				return nil, errors.Internal("Failed to parse conversation data", err)
			}
			return &existing, nil
		}
		return nil, errors.Internal("Failed to create conversation", err)
	}

	return conversation, nil
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection("conversations").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}
	return &conversation, nil
}

func (r *firestoreConversationRepository) SetLastMessage(ctx context.Context, conversationID string, message *entity.Message) error {
	text := message.Text
	if text == "" && len(message.Attachments) > 0 {
		text = "[attachment]"
	}

	_, err := r.client.Collection("conversations").Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "lastMessageId", Value: message.ID},
		{Path: "lastMessageText", Value: text},
		{Path: "lastSenderId", Value: message.SenderID},
		{Path: "lastMessageAt", Value: message.CreatedAt},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update last message pointer", err)
	}
	return nil
}

func (r *firestoreConversationRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	docs, err := r.client.Collection("conversations").
		Where("participants", "array-contains", userID).
		OrderBy("lastMessageAt", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch conversations", err)
	}

	conversations := make([]*entity.Conversation, 0, len(docs))
	for _, doc := range docs {
		var conversation entity.Conversation
		if err := doc.DataTo(&conversation); err != nil {
			return nil, errors.Internal("Failed to parse conversation data", err)
		}
		conversations = append(conversations, &conversation)
	}

	return conversations, nil
}
