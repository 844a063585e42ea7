package entity

import (
	"sort"
	"strings"
	"time"
)

// Conversation groups all messages between a fixed pair of users. Its ID
// is the deterministic pair key, so the same two users always resolve to
// the same document and the storage layer enforces uniqueness.
type Conversation struct {
	ID              string    `json:"id" firestore:"id"`
	Participants    []string  `json:"participants" firestore:"participants"`
	LastMessageID   string    `json:"lastMessageId,omitempty" firestore:"lastMessageId,omitempty"`
	LastMessageText string    `json:"lastMessageText,omitempty" firestore:"lastMessageText,omitempty"`
	LastSenderID    string    `json:"lastSenderId,omitempty" firestore:"lastSenderId,omitempty"`
	LastMessageAt   time.Time `json:"lastMessageAt" firestore:"lastMessageAt"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// PairKey builds the conversation ID for an unordered pair of user IDs.
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
