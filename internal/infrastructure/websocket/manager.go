package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"chitchat/internal/infrastructure/presence"
)

// Client represents one user's live WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	closeOnce sync.Once
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// Manager owns the connection lifecycle and is the per-user-addressable
// push channel. Reachability itself lives in the injected presence
// registry; the manager only moves bytes.
type Manager struct {
	registry   *presence.Registry
	Register   chan *Client
	Unregister chan *Client
	signals    SignalHandler
}

func NewManager(registry *presence.Registry) *Manager {
	return &Manager{
		registry:   registry,
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// SetSignalHandler wires the store-touching client signals (messages_seen,
// user_online) to their handler. Set once at startup, before Start.
func (m *Manager) SetSignalHandler(h SignalHandler) {
	m.signals = h
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				if prior, ok := m.registry.Lookup(client.UserID); ok {
					// Last writer wins; shut the replaced connection down.
					if pc, ok := prior.(*Client); ok && pc != client {
						pc.closeSend()
					}
				}
				m.registry.Register(client.UserID, client)
				log.Printf("Client registered: %s", client.UserID)
				m.broadcastPresence()

			case client := <-m.Unregister:
				if m.registry.UnregisterConn(client.UserID, client) {
					client.closeSend()
					log.Printf("Client unregistered: %s", client.UserID)
					m.broadcastPresence()
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// broadcastPresence pushes the full set of reachable user ids to every
// connected client. Full-set on every change, no diffing.
func (m *Manager) broadcastPresence() {
	m.Broadcast(EventGetOnlineUsers, OnlineUsersPayload{UserIDs: m.registry.OnlineUserIDs()})
}

// SendToUser pushes one event to a specific user. Returns false if the
// user is unreachable or the frame was dropped; callers treat that as
// best-effort and never roll anything back.
func (m *Manager) SendToUser(userID string, event string, payload interface{}) bool {
	handle, ok := m.registry.Lookup(userID)
	if !ok {
		return false
	}
	client, ok := handle.(*Client)
	if !ok {
		return false
	}

	frame, err := marshalEvent(event, payload)
	if err != nil {
		log.Printf("WebSocket: failed to marshal %s for %s: %v", event, userID, err)
		return false
	}

	select {
	case client.Send <- frame:
		return true
	default:
		log.Printf("WebSocket: send buffer full for %s, dropping %s", userID, event)
		return false
	}
}

// Broadcast pushes one event to every connected client.
func (m *Manager) Broadcast(event string, payload interface{}) {
	frame, err := marshalEvent(event, payload)
	if err != nil {
		log.Printf("WebSocket: failed to marshal broadcast %s: %v", event, err)
		return
	}

	for userID, handle := range m.registry.Connections() {
		client, ok := handle.(*Client)
		if !ok {
			continue
		}
		select {
		case client.Send <- frame:
		default:
			log.Printf("WebSocket: send buffer full for %s, dropping broadcast %s", userID, event)
		}
	}
}

// BroadcastExcept pushes one event to every connected client but one,
// typically the originator.
func (m *Manager) BroadcastExcept(exceptUserID string, event string, payload interface{}) {
	frame, err := marshalEvent(event, payload)
	if err != nil {
		log.Printf("WebSocket: failed to marshal broadcast %s: %v", event, err)
		return
	}

	for userID, handle := range m.registry.Connections() {
		if userID == exceptUserID {
			continue
		}
		client, ok := handle.(*Client)
		if !ok {
			continue
		}
		select {
		case client.Send <- frame:
		default:
			log.Printf("WebSocket: send buffer full for %s, dropping broadcast %s", userID, event)
		}
	}
}

// ReadPump reads frames from the connection until it dies, dispatching
// client signals along the way.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for %s: %v", c.UserID, err)
			}
			break
		}

		m.handleClientEvent(c, frame)
	}
}

// WritePump drains the Send channel onto the wire.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		frame, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			log.Printf("WebSocket write error for %s: %v", c.UserID, err)
			return
		}
	}
}
