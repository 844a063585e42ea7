package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"chitchat/internal/domain/entity"
	"chitchat/internal/domain/repository"
	"chitchat/internal/infrastructure/ratelimit"
	ws "chitchat/internal/infrastructure/websocket"
	"chitchat/pkg/errors"
)

// MessageUseCase is the dispatch service: it owns message creation, the
// delivery-status transitions and the pushes that accompany them. Every
// state change is persisted first and notified best-effort after.
type MessageUseCase struct {
	messageRepo repository.MessageRepository
	convRepo    repository.ConversationRepository
	userRepo    repository.UserRepository
	presence    PresenceReader
	pusher      EventPusher
	uploader    MediaUploader
	rateLimiter *ratelimit.RateLimiter
	pageSize    int
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	presence PresenceReader,
	pusher EventPusher,
	uploader MediaUploader,
	pageSize int,
) *MessageUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	if pageSize <= 0 {
		pageSize = 8
	}

	return &MessageUseCase{
		messageRepo: messageRepo,
		convRepo:    convRepo,
		userRepo:    userRepo,
		presence:    presence,
		pusher:      pusher,
		uploader:    uploader,
		rateLimiter: rateLimiter,
		pageSize:    pageSize,
	}
}

// AttachmentUpload is raw media handed to the media collaborator before
// the message is persisted.
type AttachmentUpload struct {
	Data []byte
	Kind string // "image", "video", "file"
	Name string
}

type SendMessageInput struct {
	Text        string
	Attachments []AttachmentUpload
}

// SendMessage persists a new message with its presence-derived initial
// status and pushes it to the recipient if reachable. Any upload or
// persistence failure aborts the whole operation; no partial message is
// ever created.
func (uc *MessageUseCase) SendMessage(ctx context.Context, senderID, receiverID string, input SendMessageInput) (*entity.Message, error) {
	if senderID == receiverID {
		return nil, errors.BadRequest("You cannot message yourself", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		log.Printf("SendMessage rate limited: user %s must wait %v", senderID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message")
	}

	if input.Text == "" && len(input.Attachments) == 0 {
		return nil, errors.BadRequest("Message must contain text or attachments", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, errors.NotFound("Recipient", err)
	}

	attachments := make([]entity.Attachment, 0, len(input.Attachments))
	for _, a := range input.Attachments {
		url, size, err := uc.uploader.Upload(ctx, bytes.NewReader(a.Data), a.Kind, fmt.Sprintf("messages/%ss", a.Kind))
		if err != nil {
			log.Printf("SendMessage: attachment upload failed for %s: %v", senderID, err)
			return nil, errors.Internal("Failed to upload attachment", err)
		}
		attachments = append(attachments, entity.Attachment{
			URL:  url,
			Kind: a.Kind,
			Name: a.Name,
			Size: size,
		})
	}

	conversation, err := uc.convRepo.GetOrCreate(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	online := uc.presence.IsOnline(receiverID)
	viewing := online && uc.presence.IsViewing(receiverID, senderID)

	message := &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           input.Text,
		Attachments:    attachments,
		Status:         entity.InitialStatus(online, viewing),
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	// The message exists from here on; pointer updates and pushes are
	// best-effort.
	if err := uc.convRepo.SetLastMessage(ctx, conversation.ID, message); err != nil {
		log.Printf("SendMessage: failed to update last-message pointer for %s: %v", conversation.ID, err)
	}

	if online {
		uc.pusher.SendToUser(receiverID, ws.EventNewMessage, message)
	}

	switch message.Status {
	case entity.StatusDelivered:
		uc.pusher.SendToUser(senderID, ws.EventMessageDelivered, ws.MessageDeliveredPayload{MessageID: message.ID})
	case entity.StatusSeen:
		uc.pusher.SendToUser(senderID, ws.EventMessagesSeen, ws.MessagesSeenPayload{MessageIDs: []string{message.ID}})
	}

	return message, nil
}

// GetMessagesWithUser returns one newest-first page of the conversation
// between userID and otherID.
func (uc *MessageUseCase) GetMessagesWithUser(ctx context.Context, userID, otherID string, page int) ([]*entity.Message, int64, bool, error) {
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * uc.pageSize

	conversationID := entity.PairKey(userID, otherID)
	messages, total, err := uc.messageRepo.ListByConversation(ctx, conversationID, uc.pageSize, offset)
	if err != nil {
		return nil, 0, false, err
	}

	hasMore := int64(offset+len(messages)) < total
	return messages, total, hasMore, nil
}

// MessagesSeen marks the rendered ids as seen and acknowledges each
// original sender with one batch event. Ids that cannot advance (already
// seen, deleted, unknown, or not addressed to the viewer) are skipped.
func (uc *MessageUseCase) MessagesSeen(ctx context.Context, viewerID, senderID string, messageIDs []string) error {
	seenBySender := map[string][]string{}

	for _, id := range messageIDs {
		message, err := uc.messageRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, "NOT_FOUND") {
				continue
			}
			return err
		}
		if message.ReceiverID != viewerID {
			continue
		}

		changed, err := uc.messageRepo.AdvanceStatus(ctx, id, entity.StatusSeen)
		if err != nil {
			log.Printf("MessagesSeen: failed to advance %s: %v", id, err)
			continue
		}
		if changed {
			seenBySender[message.SenderID] = append(seenBySender[message.SenderID], id)
		}
	}

	for sender, ids := range seenBySender {
		uc.pusher.SendToUser(sender, ws.EventMessagesSeen, ws.MessagesSeenPayload{
			MessageIDs: ids,
			ViewerID:   viewerID,
		})
	}

	_ = senderID // the hint is advisory; grouping above is authoritative
	return nil
}

// UserOnline redelivers every message still in "sent" status addressed to
// the reconnected user, in ascending creation-time order, flipping each to
// delivered and notifying its original sender when reachable.
func (uc *MessageUseCase) UserOnline(ctx context.Context, userID string) error {
	pending, err := uc.messageRepo.ListPendingForReceiver(ctx, userID)
	if err != nil {
		return err
	}

	for _, message := range pending {
		uc.pusher.SendToUser(userID, ws.EventNewMessage, message)

		changed, err := uc.messageRepo.AdvanceStatus(ctx, message.ID, entity.StatusDelivered)
		if err != nil {
			log.Printf("UserOnline: failed to mark %s delivered: %v", message.ID, err)
			continue
		}
		if changed && uc.presence.IsOnline(message.SenderID) {
			uc.pusher.SendToUser(message.SenderID, ws.EventMessageDelivered, ws.MessageDeliveredPayload{MessageID: message.ID})
		}
	}

	return nil
}

// ConversationStatuses is the reconciliation fetch: the authoritative
// status of every message between the two users, so a client can close
// any gap left by missed best-effort pushes.
func (uc *MessageUseCase) ConversationStatuses(ctx context.Context, userID, otherID string) ([]repository.StatusEntry, error) {
	conversationID := entity.PairKey(userID, otherID)
	return uc.messageRepo.ListStatuses(ctx, conversationID)
}
