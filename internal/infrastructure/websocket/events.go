package websocket

import (
	"encoding/json"
	"time"

	"chitchat/internal/domain/entity"
)

// Wire event names. These are part of the client protocol and must not
// be renamed.
const (
	// Server -> client
	EventNewMessage       = "newMessage"
	EventMessageDelivered = "message_delivered"
	EventMessageReaction  = "messageReaction"
	EventGetOnlineUsers   = "getOnlineUsers"
	EventNewStoryCreated  = "new_story_created"
	EventStoryViewed      = "story_viewed"
	EventStoryDeleted     = "story_deleted"
	EventError            = "error"

	// Client -> server
	EventChatOpen   = "chat_open"
	EventChatClose  = "chat_close"
	EventUserOnline = "user_online"

	// Both directions: client reports rendered ids, server fans the
	// batch acknowledgement out to the original sender.
	EventMessagesSeen = "messages_seen"
)

// Envelope is the frame carried on the channel in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func marshalEvent(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

type MessageDeliveredPayload struct {
	MessageID string `json:"messageId"`
}

type MessagesSeenPayload struct {
	MessageIDs []string `json:"messageIds"`
	SenderID   string   `json:"senderId,omitempty"`
	ViewerID   string   `json:"viewerId,omitempty"`
}

type MessageReactionPayload struct {
	MessageID string            `json:"messageId"`
	Reactions []entity.Reaction `json:"reactions"`
}

type ChatOpenPayload struct {
	WithUserID string `json:"withUserId"`
}

type OnlineUsersPayload struct {
	UserIDs []string `json:"userIds"`
}

type StoryOwner struct {
	ID             string `json:"_id"`
	FullName       string `json:"fullName"`
	Username       string `json:"userName"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type StoryCreatedPayload struct {
	User  StoryOwner    `json:"user"`
	Story *entity.Story `json:"story"`
}

type StoryViewedPayload struct {
	StoryID  string     `json:"storyId"`
	Viewer   StoryOwner `json:"viewer"`
	ViewedAt time.Time  `json:"viewedAt"`
}

type StoryDeletedPayload struct {
	StoryID string `json:"storyId"`
	UserID  string `json:"userId"`
}
