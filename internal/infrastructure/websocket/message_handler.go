package websocket

import (
	"context"
	"encoding/json"
	"log"
)

// SignalHandler receives the client signals that touch the message store.
// Implemented by the message dispatch use case; the indirection keeps this
// package free of a dependency on usecase.
type SignalHandler interface {
	// MessagesSeen marks the batch of rendered message ids as seen and
	// acknowledges the original sender.
	MessagesSeen(ctx context.Context, viewerID, senderID string, messageIDs []string) error

	// UserOnline redelivers every message still in "sent" status for the
	// reconnected user.
	UserOnline(ctx context.Context, userID string) error
}

// handleClientEvent processes one inbound frame from a client.
func (m *Manager) handleClientEvent(client *Client, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		log.Printf("WebSocket: bad frame from %s: %v", client.UserID, err)
		m.sendErrorToClient(client, "Invalid message format")
		return
	}

	switch env.Event {
	case EventChatOpen:
		var payload ChatOpenPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.WithUserID == "" {
			m.sendErrorToClient(client, "Invalid chat_open payload")
			return
		}
		m.registry.SetViewing(client.UserID, payload.WithUserID)

	case EventChatClose:
		m.registry.ClearViewing(client.UserID)

	case EventMessagesSeen:
		var payload MessagesSeenPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			m.sendErrorToClient(client, "Invalid messages_seen payload")
			return
		}
		if m.signals == nil || len(payload.MessageIDs) == 0 {
			return
		}
		if err := m.signals.MessagesSeen(context.Background(), client.UserID, payload.SenderID, payload.MessageIDs); err != nil {
			log.Printf("WebSocket: messages_seen from %s failed: %v", client.UserID, err)
		}

	case EventUserOnline:
		if m.signals == nil {
			return
		}
		if err := m.signals.UserOnline(context.Background(), client.UserID); err != nil {
			log.Printf("WebSocket: user_online redelivery for %s failed: %v", client.UserID, err)
		}

	default:
		log.Printf("WebSocket: unknown event %q from %s", env.Event, client.UserID)
	}
}

func (m *Manager) sendErrorToClient(client *Client, message string) {
	frame, err := marshalEvent(EventError, map[string]string{"error": message})
	if err != nil {
		return
	}
	select {
	case client.Send <- frame:
	default:
	}
}
