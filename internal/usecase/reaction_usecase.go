package usecase

import (
	"context"
	"log"

	"chitchat/internal/domain/entity"
	"chitchat/internal/domain/repository"
	"chitchat/internal/infrastructure/ratelimit"
	ws "chitchat/internal/infrastructure/websocket"
	"chitchat/pkg/errors"
)

var reactionKinds = map[string]bool{
	"like":  true,
	"love":  true,
	"haha":  true,
	"wow":   true,
	"sad":   true,
	"angry": true,
}

type ReactionUseCase struct {
	messageRepo repository.MessageRepository
	pusher      EventPusher
	rateLimiter *ratelimit.RateLimiter
}

func NewReactionUseCase(messageRepo repository.MessageRepository, pusher EventPusher) *ReactionUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ReactionUseCase{
		messageRepo: messageRepo,
		pusher:      pusher,
		rateLimiter: rateLimiter,
	}
}

type ReactionResult struct {
	MessageID string            `json:"messageId"`
	Reactions []entity.Reaction `json:"reactions"`
}

// Toggle adds, moves or removes the user's reaction on a message. A user
// holds at most one reaction per message: reacting with a new kind moves
// the reaction, reacting with the current kind removes it.
func (uc *ReactionUseCase) Toggle(ctx context.Context, userID, messageID, kind string) (*ReactionResult, error) {
	if !reactionKinds[kind] {
		return nil, errors.BadRequest("Unknown reaction type", nil)
	}

	allowed, _ := uc.rateLimiter.Allow(userID, "react")
	if !allowed {
		return nil, errors.TooManyRequests("Too many reactions. Please slow down")
	}

	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if message.SenderID != userID && message.ReceiverID != userID {
		return nil, errors.Forbidden("You are not part of this conversation", nil)
	}

	message.Reactions = mergeReaction(message.Reactions, userID, kind)

	if err := uc.messageRepo.Update(ctx, message); err != nil {
		return nil, err
	}

	result := &ReactionResult{
		MessageID: message.ID,
		Reactions: message.Reactions,
	}

	// Notify the other participant; best-effort.
	other := message.ReceiverID
	if other == userID {
		other = message.SenderID
	}
	if !uc.pusher.SendToUser(other, ws.EventMessageReaction, ws.MessageReactionPayload{
		MessageID: message.ID,
		Reactions: message.Reactions,
	}) {
		log.Printf("Toggle: reaction push to %s skipped (unreachable)", other)
	}

	return result, nil
}

func (uc *ReactionUseCase) Reactions(ctx context.Context, messageID string) ([]entity.Reaction, error) {
	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return message.Reactions, nil
}

// mergeReaction applies the toggle-with-exclusivity rules and drops any
// reaction kind left with no users.
func mergeReaction(reactions []entity.Reaction, userID, kind string) []entity.Reaction {
	found := false

	for i := range reactions {
		if reactions[i].Kind != kind {
			continue
		}
		found = true

		if idx := indexOf(reactions[i].Users, userID); idx != -1 {
			// Same kind again: toggle off.
			reactions[i].Users = append(reactions[i].Users[:idx], reactions[i].Users[idx+1:]...)
			reactions[i].Count--
		} else {
			reactions[i].Users = append(reactions[i].Users, userID)
			reactions[i].Count++
		}
	}

	if !found {
		reactions = append(reactions, entity.Reaction{
			Kind:  kind,
			Count: 1,
			Users: []string{userID},
		})
	}

	// One reaction per user: strip the user from every other kind.
	for i := range reactions {
		if reactions[i].Kind == kind {
			continue
		}
		if idx := indexOf(reactions[i].Users, userID); idx != -1 {
			reactions[i].Users = append(reactions[i].Users[:idx], reactions[i].Users[idx+1:]...)
			reactions[i].Count--
		}
	}

	kept := reactions[:0]
	for _, r := range reactions {
		if r.Count > 0 {
			kept = append(kept, r)
		}
	}
	return kept
}

func indexOf(users []string, userID string) int {
	for i, u := range users {
		if u == userID {
			return i
		}
	}
	return -1
}
