package entity

import "time"

type Attachment struct {
	URL  string `json:"url" firestore:"url"`
	Kind string `json:"type" firestore:"type"` // "image", "video", "file"
	Name string `json:"name,omitempty" firestore:"name,omitempty"`
	Size int64  `json:"size,omitempty" firestore:"size,omitempty"`
}

// Reaction aggregates all users who reacted with one kind. A user appears
// in at most one reaction's Users list per message.
type Reaction struct {
	Kind  string   `json:"type" firestore:"type"` // "like", "love", "haha", "wow", "sad", "angry"
	Count int      `json:"count" firestore:"count"`
	Users []string `json:"users" firestore:"users"`
}

type Message struct {
	ID             string        `json:"id" firestore:"id"`
	ConversationID string        `json:"conversationId" firestore:"conversationId"`
	SenderID       string        `json:"senderId" firestore:"senderId"`
	ReceiverID     string        `json:"receiverId" firestore:"receiverId"`
	Text           string        `json:"text" firestore:"text"`
	Attachments    []Attachment  `json:"attachments,omitempty" firestore:"attachments,omitempty"`
	Reactions      []Reaction    `json:"reactions,omitempty" firestore:"reactions,omitempty"`
	Status         MessageStatus `json:"status" firestore:"status"`
	IsEdited       bool          `json:"isEdited,omitempty" firestore:"isEdited,omitempty"`
	IsDeleted      bool          `json:"isDeleted,omitempty" firestore:"isDeleted,omitempty"`
	CreatedAt      time.Time     `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt" firestore:"updatedAt"`
}

// HasContent reports whether the message carries anything worth sending.
func (m *Message) HasContent() bool {
	return m.Text != "" || len(m.Attachments) > 0
}

// ReactorCount returns the number of distinct users reacting to the message.
func (m *Message) ReactorCount() int {
	seen := map[string]bool{}
	for _, r := range m.Reactions {
		for _, u := range r.Users {
			seen[u] = true
		}
	}
	return len(seen)
}
