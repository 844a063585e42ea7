package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chitchat/internal/domain/entity"
	"chitchat/internal/domain/repository"
	"chitchat/pkg/errors"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	now := time.Now()
	message.CreatedAt = now
	message.UpdatedAt = now
	if message.Status == "" {
		message.Status = entity.StatusSent
	}

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	doc, err := r.client.Collection("messages").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreMessageRepository) Update(ctx context.Context, message *entity.Message) error {
	message.UpdatedAt = time.Now()

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to update message", err)
	}
	return nil
}

func (r *firestoreMessageRepository) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("messages").
		Where("conversationId", "==", conversationID).
		OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while counting messages for conversation %s: %v", conversationID, err)
		return nil, 0, errors.Internal("Failed to count messages", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages for conversation %s: %v", conversationID, err)
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreMessageRepository) AdvanceStatus(ctx context.Context, messageID string, next entity.MessageStatus) (bool, error) {
	docRef := r.client.Collection("messages").Doc(messageID)
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// Silently skip ids that no longer exist; the batch carries on.
			log.Printf("AdvanceStatus: message %s not found", messageID)
			return false, nil
		}
		return false, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return false, errors.Internal("Failed to parse message data", err)
	}

	if message.IsDeleted || !message.Status.CanAdvanceTo(next) {
		return false, nil
	}

	_, err = docRef.Update(ctx, []firestore.Update{
		{Path: "status", Value: string(next)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return false, errors.Internal("Failed to update message status", err)
	}

	return true, nil
}

func (r *firestoreMessageRepository) ListPendingForReceiver(ctx context.Context, receiverID string) ([]*entity.Message, error) {
	iter := r.client.Collection("messages").
		Where("receiverId", "==", receiverID).
		Where("status", "==", string(entity.StatusSent)).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list pending messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreMessageRepository) ListStatuses(ctx context.Context, conversationID string) ([]repository.StatusEntry, error) {
	iter := r.client.Collection("messages").
		Where("conversationId", "==", conversationID).
		Documents(ctx)

	var entries []repository.StatusEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list message statuses", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		entries = append(entries, repository.StatusEntry{
			MessageID: message.ID,
			Status:    message.Status,
		})
	}

	return entries, nil
}

func (r *firestoreMessageRepository) CountUnseen(ctx context.Context, senderID, receiverID string) (int64, error) {
	docs, err := r.client.Collection("messages").
		Where("senderId", "==", senderID).
		Where("receiverId", "==", receiverID).
		Where("status", "in", []string{string(entity.StatusSent), string(entity.StatusDelivered)}).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count unseen messages", err)
	}

	return int64(len(docs)), nil
}
