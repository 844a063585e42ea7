package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitchat/internal/domain/entity"
	"chitchat/internal/domain/repository"
	"chitchat/internal/infrastructure/presence"
	ws "chitchat/internal/infrastructure/websocket"
	"chitchat/pkg/errors"
)

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string]*entity.Message
	order    []string
	seq      int
	failNext error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: map[string]*entity.Message{}}
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.seq++
	if m.ID == "" {
		m.ID = fmt.Sprintf("msg-%d", r.seq)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	}
	if m.Status == "" {
		m.Status = entity.StatusSent
	}
	copied := *m
	r.messages[m.ID] = &copied
	r.order = append(r.order, m.ID)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, notFoundErr("Message")
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMessageRepo) Update(ctx context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[m.ID]; !ok {
		return notFoundErr("Message")
	}
	copied := *m
	r.messages[m.ID] = &copied
	return nil
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*entity.Message
	for _, id := range r.order {
		if m := r.messages[id]; m.ConversationID == conversationID {
			copied := *m
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeMessageRepo) AdvanceStatus(ctx context.Context, messageID string, status entity.MessageStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return false, nil
	}
	if m.IsDeleted || !m.Status.CanAdvanceTo(status) {
		return false, nil
	}
	m.Status = status
	return true, nil
}

func (r *fakeMessageRepo) ListPendingForReceiver(ctx context.Context, receiverID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*entity.Message
	for _, id := range r.order {
		if m := r.messages[id]; m.ReceiverID == receiverID && m.Status == entity.StatusSent {
			copied := *m
			pending = append(pending, &copied)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

func (r *fakeMessageRepo) ListStatuses(ctx context.Context, conversationID string) ([]repository.StatusEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []repository.StatusEntry
	for _, id := range r.order {
		if m := r.messages[id]; m.ConversationID == conversationID {
			entries = append(entries, repository.StatusEntry{MessageID: m.ID, Status: m.Status})
		}
	}
	return entries, nil
}

func (r *fakeMessageRepo) CountUnseen(ctx context.Context, senderID, receiverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && m.Status != entity.StatusSeen {
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) status(t *testing.T, id string) entity.MessageStatus {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	require.True(t, ok, "message %s not stored", id)
	return m.Status
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: map[string]*entity.Conversation{}}
}

func (r *fakeConversationRepo) GetOrCreate(ctx context.Context, userA, userB string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entity.PairKey(userA, userB)
	if c, ok := r.conversations[key]; ok {
		copied := *c
		return &copied, nil
	}
	c := &entity.Conversation{
		ID:           key,
		Participants: []string{userA, userB},
		CreatedAt:    time.Now(),
	}
	r.conversations[key] = c
	copied := *c
	return &copied, nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return nil, notFoundErr("Conversation")
	}
	copied := *c
	return &copied, nil
}

func (r *fakeConversationRepo) SetLastMessage(ctx context.Context, conversationID string, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok {
		return notFoundErr("Conversation")
	}
	c.LastMessageID = message.ID
	c.LastMessageText = message.Text
	c.LastSenderID = message.SenderID
	c.LastMessageAt = message.CreatedAt
	return nil
}

func (r *fakeConversationRepo) ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Conversation
	for _, c := range r.conversations {
		for _, p := range c.Participants {
			if p == userID {
				copied := *c
				out = append(out, &copied)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, id := range ids {
		r.users[id] = &entity.User{ID: id, Username: id, FullName: id, Email: id + "@example.com"}
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, notFoundErr("User")
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, notFoundErr("User")
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, notFoundErr("User")
}

func (r *fakeUserRepo) Update(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return notFoundErr("User")
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *fakeUserRepo) ListExcluding(ctx context.Context, excludeIDs []string, limit int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	excluded := map[string]bool{}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var out []*entity.User
	for _, u := range r.users {
		if excluded[u.ID] {
			continue
		}
		copied := *u
		out = append(out, &copied)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type pushedEvent struct {
	UserID  string
	Event   string
	Payload interface{}
}

type fakePusher struct {
	mu     sync.Mutex
	events []pushedEvent
	// unreachable ids refuse SendToUser even when marked online in the
	// presence registry, mimicking a dropped frame.
	unreachable map[string]bool
}

func newFakePusher() *fakePusher {
	return &fakePusher{unreachable: map[string]bool{}}
}

func (p *fakePusher) SendToUser(userID, event string, payload interface{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unreachable[userID] {
		return false
	}
	p.events = append(p.events, pushedEvent{UserID: userID, Event: event, Payload: payload})
	return true
}

func (p *fakePusher) Broadcast(event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushedEvent{Event: event, Payload: payload})
}

func (p *fakePusher) BroadcastExcept(userID, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushedEvent{UserID: "!" + userID, Event: event, Payload: payload})
}

func (p *fakePusher) eventsFor(userID, event string) []pushedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pushedEvent
	for _, e := range p.events {
		if e.UserID == userID && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// fakeUploader records uploads and can be told to fail, exercising the
// abort-on-upload-failure path.
type fakeUploader struct {
	mu      sync.Mutex
	fail    bool
	uploads int
	deleted []string
}

func (u *fakeUploader) Upload(ctx context.Context, data io.Reader, kind, folder string) (string, int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fail {
		return "", 0, fmt.Errorf("upload refused")
	}
	u.uploads++
	n, _ := io.Copy(io.Discard, data)
	return fmt.Sprintf("https://cdn.example.com/%s/%d", folder, u.uploads), n, nil
}

func (u *fakeUploader) Delete(ctx context.Context, url string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, url)
	return nil
}

func notFoundErr(resource string) error {
	return errors.NotFound(resource, nil)
}

func newTestFixture(t *testing.T, users ...string) (*MessageUseCase, *fakeMessageRepo, *fakeConversationRepo, *presence.Registry, *fakePusher) {
	t.Helper()
	messageRepo := newFakeMessageRepo()
	convRepo := newFakeConversationRepo()
	userRepo := newFakeUserRepo(users...)
	registry := presence.NewRegistry()
	pusher := newFakePusher()
	uc := NewMessageUseCase(messageRepo, convRepo, userRepo, registry, pusher, &fakeUploader{}, 8)
	return uc, messageRepo, convRepo, registry, pusher
}

func TestSendMessageUploadFailureAborts(t *testing.T) {
	ctx := context.Background()
	messageRepo := newFakeMessageRepo()
	convRepo := newFakeConversationRepo()
	userRepo := newFakeUserRepo("alice", "bob")
	registry := presence.NewRegistry()
	pusher := newFakePusher()
	uploader := &fakeUploader{fail: true}
	uc := NewMessageUseCase(messageRepo, convRepo, userRepo, registry, pusher, uploader, 8)

	_, err := uc.SendMessage(ctx, "alice", "bob", SendMessageInput{
		Attachments: []AttachmentUpload{{Data: []byte("png bytes"), Kind: "image", Name: "photo.png"}},
	})
	require.Error(t, err)

	messageRepo.mu.Lock()
	assert.Empty(t, messageRepo.messages, "a failed upload must not leave a partial message")
	messageRepo.mu.Unlock()
	assert.Empty(t, pusher.events)
}

func TestSendMessageInitialStatusFollowsPresence(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		online  bool
		viewing bool
		want    entity.MessageStatus
	}{
		{"recipient offline", false, false, entity.StatusSent},
		{"recipient online", true, false, entity.StatusDelivered},
		{"recipient viewing sender", true, true, entity.StatusSeen},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, repo, _, registry, pusher := newTestFixture(t, "alice", "bob")
			if tc.online {
				registry.Register("bob", struct{}{})
			}
			if tc.viewing {
				registry.SetViewing("bob", "alice")
			}

			msg, err := uc.SendMessage(ctx, "alice", "bob", SendMessageInput{Text: "hi"})
			require.NoError(t, err)
			assert.Equal(t, tc.want, msg.Status)
			assert.Equal(t, tc.want, repo.status(t, msg.ID))

			delivered := pusher.eventsFor("bob", ws.EventNewMessage)
			if tc.online {
				assert.Len(t, delivered, 1, "online recipient should get the push")
			} else {
				assert.Empty(t, delivered, "offline recipient gets nothing")
			}
		})
	}
}

func TestSendMessageSenderAck(t *testing.T) {
	ctx := context.Background()
	uc, _, _, registry, pusher := newTestFixture(t, "alice", "bob")

	registry.Register("alice", struct{}{})
	registry.Register("bob", struct{}{})
	registry.SetViewing("bob", "alice")

	msg, err := uc.SendMessage(ctx, "alice", "bob", SendMessageInput{Text: "hi"})
	require.NoError(t, err)

	acks := pusher.eventsFor("alice", ws.EventMessagesSeen)
	require.Len(t, acks, 1)
	payload := acks[0].Payload.(ws.MessagesSeenPayload)
	assert.Equal(t, []string{msg.ID}, payload.MessageIDs)
}

func TestSendMessageRejectsSelfAndEmpty(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _, _ := newTestFixture(t, "alice", "bob")

	_, err := uc.SendMessage(ctx, "alice", "alice", SendMessageInput{Text: "hi"})
	assert.Error(t, err)

	_, err = uc.SendMessage(ctx, "alice", "bob", SendMessageInput{})
	assert.Error(t, err)

	_, err = uc.SendMessage(ctx, "alice", "ghost", SendMessageInput{Text: "hi"})
	assert.Error(t, err)
}

func TestSendMessageSharesOneConversation(t *testing.T) {
	ctx := context.Background()
	uc, _, convRepo, _, _ := newTestFixture(t, "alice", "bob")

	first, err := uc.SendMessage(ctx, "alice", "bob", SendMessageInput{Text: "one"})
	require.NoError(t, err)
	second, err := uc.SendMessage(ctx, "bob", "alice", SendMessageInput{Text: "two"})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Equal(t, entity.PairKey("alice", "bob"), first.ConversationID)

	convRepo.mu.Lock()
	assert.Len(t, convRepo.conversations, 1)
	convRepo.mu.Unlock()
}

func TestMessagesSeenAdvancesOnlyAddressedIDs(t *testing.T) {
	ctx := context.Background()
	uc, repo, _, registry, pusher := newTestFixture(t, "alice", "bob", "carol")
	registry.Register("alice", struct{}{})

	toBob, err := uc.SendMessage(ctx, "alice", "bob", SendMessageInput{Text: "for bob"})
	require.NoError(t, err)
	toCarol, err := uc.SendMessage(ctx, "alice", "carol", SendMessageInput{Text: "for carol"})
	require.NoError(t, err)

	err = uc.MessagesSeen(ctx, "bob", "alice", []string{toBob.ID, toCarol.ID, "missing-id"})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusSeen, repo.status(t, toBob.ID))
	assert.Equal(t, entity.StatusSent, repo.status(t, toCarol.ID), "a message addressed to someone else must not advance")

	acks := pusher.eventsFor("alice", ws.EventMessagesSeen)
	require.Len(t, acks, 1)
	payload := acks[0].Payload.(ws.MessagesSeenPayload)
	assert.Equal(t, []string{toBob.ID}, payload.MessageIDs)
	assert.Equal(t, "bob", payload.ViewerID)
}

func TestMessagesSeenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	uc, repo, _, _, pusher := newTestFixture(t, "alice", "bob")

	msg, err := uc.SendMessage(ctx, "alice", "bob", SendMessageInput{Text: "hi"})
	require.NoError(t, err)

	require.NoError(t, uc.MessagesSeen(ctx, "bob", "alice", []string{msg.ID}))
	require.NoError(t, uc.MessagesSeen(ctx, "bob", "alice", []string{msg.ID}))

	assert.Equal(t, entity.StatusSeen, repo.status(t, msg.ID))
	// Second call advanced nothing, so no second acknowledgement.
	assert.Len(t, pusher.eventsFor("alice", ws.EventMessagesSeen), 1)
}

func TestUserOnlineRedeliversPendingAscending(t *testing.T) {
	ctx := context.Background()
	uc, repo, _, registry, pusher := newTestFixture(t, "alice", "bob")

	var sent []string
	for i := 0; i < 3; i++ {
		msg, err := uc.SendMessage(ctx, "alice", "bob", SendMessageInput{Text: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
		sent = append(sent, msg.ID)
	}

	registry.Register("alice", struct{}{})
	registry.Register("bob", struct{}{})
	require.NoError(t, uc.UserOnline(ctx, "bob"))

	redelivered := pusher.eventsFor("bob", ws.EventNewMessage)
	require.Len(t, redelivered, 3)
	for i, e := range redelivered {
		assert.Equal(t, sent[i], e.Payload.(*entity.Message).ID, "redelivery must preserve send order")
	}

	for _, id := range sent {
		assert.Equal(t, entity.StatusDelivered, repo.status(t, id))
	}

	receipts := pusher.eventsFor("alice", ws.EventMessageDelivered)
	assert.Len(t, receipts, 3)
}

func TestUserOnlineSkipsOfflineSenderReceipts(t *testing.T) {
	ctx := context.Background()
	uc, repo, _, registry, pusher := newTestFixture(t, "alice", "bob")

	msg, err := uc.SendMessage(ctx, "alice", "bob", SendMessageInput{Text: "hi"})
	require.NoError(t, err)

	registry.Register("bob", struct{}{})
	require.NoError(t, uc.UserOnline(ctx, "bob"))

	assert.Equal(t, entity.StatusDelivered, repo.status(t, msg.ID))
	assert.Empty(t, pusher.eventsFor("alice", ws.EventMessageDelivered), "no receipt for an offline sender")
}

func TestConversationStatusesCoversEveryMessage(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _, _ := newTestFixture(t, "alice", "bob")

	first, err := uc.SendMessage(ctx, "alice", "bob", SendMessageInput{Text: "one"})
	require.NoError(t, err)
	second, err := uc.SendMessage(ctx, "bob", "alice", SendMessageInput{Text: "two"})
	require.NoError(t, err)

	require.NoError(t, uc.MessagesSeen(ctx, "bob", "alice", []string{first.ID}))

	entries, err := uc.ConversationStatuses(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[string]entity.MessageStatus{}
	for _, e := range entries {
		byID[e.MessageID] = e.Status
	}
	assert.Equal(t, entity.StatusSeen, byID[first.ID])
	assert.Equal(t, entity.StatusSent, byID[second.ID])
}

func TestGetMessagesWithUserPagination(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _, _ := newTestFixture(t, "alice", "bob")

	for i := 0; i < 10; i++ {
		_, err := uc.SendMessage(ctx, "alice", "bob", SendMessageInput{Text: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}

	page1, total, hasMore, err := uc.GetMessagesWithUser(ctx, "bob", "alice", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 10, total)
	assert.Len(t, page1, 8)
	assert.True(t, hasMore)
	assert.Equal(t, "m9", page1[0].Text, "first page starts at the newest message")

	page2, _, hasMore, err := uc.GetMessagesWithUser(ctx, "bob", "alice", 2)
	require.NoError(t, err)
	assert.Len(t, page2, 2)
	assert.False(t, hasMore)
}
