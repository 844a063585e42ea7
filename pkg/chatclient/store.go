// Package chatclient is the client-side conversation store: it keeps an
// optimistic local view of one open conversation and reconciles it
// against the server through pushes, acknowledgements and fetches.
package chatclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"chitchat/internal/domain/entity"
)

// ErrNoOpenConversation is returned by Send when no conversation is open.
var ErrNoOpenConversation = errors.New("chatclient: no open conversation")

// StatusSending is the local-only placeholder status an optimistic entry
// carries until the server acknowledges the send. It never appears on
// the wire.
const StatusSending entity.MessageStatus = "sending"

// DefaultSendTimeout bounds how long a send waits for the server before
// the optimistic entry is rolled back.
const DefaultSendTimeout = 15 * time.Second

// API is the server boundary the store talks to.
type API interface {
	SendMessage(ctx context.Context, receiverID, text string) (*entity.Message, error)
	MessagesWith(ctx context.Context, otherID string, page int) (messages []*entity.Message, hasMore bool, err error)
}

// Store holds the messages of the currently open conversation in display
// order (oldest first). All methods are safe for concurrent use; the
// push reader and the UI typically run on different goroutines.
type Store struct {
	api         API
	selfID      string
	sendTimeout time.Duration

	mu       sync.Mutex
	openWith string
	messages []*entity.Message
	page     int
	hasMore  bool

	// onListUpdate fires for pushes that belong to a conversation other
	// than the open one, so the contact list can bump its unread badge.
	onListUpdate func(senderID string)
}

type Option func(*Store)

// WithSendTimeout overrides the default send timeout.
func WithSendTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

// WithListUpdateHandler installs the callback for pushes outside the
// open conversation.
func WithListUpdateHandler(fn func(senderID string)) Option {
	return func(s *Store) {
		s.onListUpdate = fn
	}
}

func NewStore(api API, selfID string, opts ...Option) *Store {
	s := &Store{
		api:         api,
		selfID:      selfID,
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the first page of the conversation with otherID and makes
// it the active one. The server returns pages newest-first; the store
// keeps display order.
func (s *Store) Open(ctx context.Context, otherID string) error {
	messages, hasMore, err := s.api.MessagesWith(ctx, otherID, 1)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.openWith = otherID
	s.messages = reverse(messages)
	s.page = 1
	s.hasMore = hasMore
	return nil
}

// Close forgets the active conversation. Pushes received while no
// conversation is open are routed to the list-update callback.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openWith = ""
	s.messages = nil
	s.page = 0
	s.hasMore = false
}

// LoadOlder fetches the next page and prepends it. Messages already
// present are skipped so a send that raced the pagination cannot
// duplicate an entry.
func (s *Store) LoadOlder(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.openWith == "" || !s.hasMore {
		s.mu.Unlock()
		return false, nil
	}
	otherID := s.openWith
	nextPage := s.page + 1
	s.mu.Unlock()

	messages, hasMore, err := s.api.MessagesWith(ctx, otherID, nextPage)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openWith != otherID {
		// Conversation switched while the fetch was in flight.
		return s.hasMore, nil
	}

	older := make([]*entity.Message, 0, len(messages))
	for _, m := range reverse(messages) {
		if s.indexOf(m.ID) == -1 {
			older = append(older, m)
		}
	}
	s.messages = append(older, s.messages...)
	s.page = nextPage
	s.hasMore = hasMore
	return hasMore, nil
}

// Send appends an optimistic entry immediately, then reconciles it with
// the server's persisted message, replacing the entry in place so the
// rendered position never jumps. On failure the entry is removed.
func (s *Store) Send(ctx context.Context, text string) (*entity.Message, error) {
	s.mu.Lock()
	if s.openWith == "" {
		s.mu.Unlock()
		return nil, ErrNoOpenConversation
	}
	receiverID := s.openWith

	temp := &entity.Message{
		ID:             "temp-" + uuid.New().String(),
		ConversationID: entity.PairKey(s.selfID, receiverID),
		SenderID:       s.selfID,
		ReceiverID:     receiverID,
		Text:           text,
		Status:         StatusSending,
		CreatedAt:      time.Now(),
	}
	s.messages = append(s.messages, temp)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	persisted, err := s.api.SendMessage(ctx, receiverID, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(temp.ID)

	if err != nil {
		if idx != -1 {
			s.messages = append(s.messages[:idx], s.messages[idx+1:]...)
		}
		return nil, err
	}

	if idx != -1 {
		s.messages[idx] = persisted
	} else if s.openWith == receiverID {
		// The conversation was reopened mid-send; fall back to append.
		s.messages = append(s.messages, persisted)
	}
	return persisted, nil
}

// ReceivePush routes an incoming message. It lands in the open
// conversation when it belongs there (deduplicated by ID); anything else
// goes to the list-update callback.
func (s *Store) ReceivePush(message *entity.Message) {
	s.mu.Lock()

	belongs := s.openWith != "" &&
		(message.SenderID == s.openWith || (message.SenderID == s.selfID && message.ReceiverID == s.openWith))

	if !belongs {
		fn := s.onListUpdate
		s.mu.Unlock()
		if fn != nil && message.SenderID != s.selfID {
			fn(message.SenderID)
		}
		return
	}

	if s.indexOf(message.ID) == -1 {
		s.messages = append(s.messages, message)
	}
	s.mu.Unlock()
}

// ApplyStatus patches the status of the given messages in place. Unknown
// ids are ignored; applying the same update twice is harmless. The
// server only ever reports forward transitions, so no ordering check is
// done here.
func (s *Store) ApplyStatus(messageIDs []string, status entity.MessageStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range messageIDs {
		if idx := s.indexOf(id); idx != -1 {
			updated := *s.messages[idx]
			updated.Status = status
			s.messages[idx] = &updated
		}
	}
}

// ApplyReactions replaces the reaction set of one message.
func (s *Store) ApplyReactions(messageID string, reactions []entity.Reaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(messageID); idx != -1 {
		updated := *s.messages[idx]
		updated.Reactions = reactions
		s.messages[idx] = &updated
	}
}

// Messages returns a snapshot of the open conversation in display order.
func (s *Store) Messages() []*entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// OpenWith returns the id of the open conversation's partner, or "".
func (s *Store) OpenWith() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openWith
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(messageID string) int {
	for i, m := range s.messages {
		if m.ID == messageID {
			return i
		}
	}
	return -1
}

func reverse(messages []*entity.Message) []*entity.Message {
	out := make([]*entity.Message, len(messages))
	for i, m := range messages {
		out[len(messages)-1-i] = m
	}
	return out
}
