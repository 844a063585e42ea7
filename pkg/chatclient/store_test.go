package chatclient

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitchat/internal/domain/entity"
)

// fakeAPI serves canned pages and lets tests fail or block sends.
type fakeAPI struct {
	mu       sync.Mutex
	pages    map[int][]*entity.Message // newest-first, as the server returns them
	morePast map[int]bool
	sendErr  error
	sendSeq  int
	blockFor time.Duration
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{pages: map[int][]*entity.Message{}, morePast: map[int]bool{}}
}

func (a *fakeAPI) SendMessage(ctx context.Context, receiverID, text string) (*entity.Message, error) {
	a.mu.Lock()
	blockFor := a.blockFor
	a.mu.Unlock()

	if blockFor > 0 {
		select {
		case <-time.After(blockFor):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sendErr != nil {
		return nil, a.sendErr
	}
	a.sendSeq++
	return &entity.Message{
		ID:             fmt.Sprintf("srv-%d", a.sendSeq),
		ConversationID: entity.PairKey("alice", receiverID),
		SenderID:       "alice",
		ReceiverID:     receiverID,
		Text:           text,
		Status:         entity.StatusSent,
		CreatedAt:      time.Now(),
	}, nil
}

func (a *fakeAPI) MessagesWith(ctx context.Context, otherID string, page int) ([]*entity.Message, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pages[page], a.morePast[page], nil
}

func serverMessage(id, sender, receiver, text string) *entity.Message {
	return &entity.Message{
		ID:             id,
		ConversationID: entity.PairKey(sender, receiver),
		SenderID:       sender,
		ReceiverID:     receiver,
		Text:           text,
		Status:         entity.StatusSeen,
		CreatedAt:      time.Now(),
	}
}

func TestOpenReversesToDisplayOrder(t *testing.T) {
	api := newFakeAPI()
	api.pages[1] = []*entity.Message{
		serverMessage("m3", "bob", "alice", "newest"),
		serverMessage("m2", "alice", "bob", "middle"),
		serverMessage("m1", "bob", "alice", "oldest"),
	}
	store := NewStore(api, "alice")

	require.NoError(t, store.Open(context.Background(), "bob"))

	msgs := store.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m3", msgs[2].ID)
}

func TestSendReconcilesOptimisticEntryInPlace(t *testing.T) {
	api := newFakeAPI()
	store := NewStore(api, "alice")
	require.NoError(t, store.Open(context.Background(), "bob"))

	msg, err := store.Send(context.Background(), "hello")
	require.NoError(t, err)

	msgs := store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, msg.ID, msgs[0].ID)
	assert.Equal(t, "srv-1", msgs[0].ID, "the optimistic entry is replaced by the persisted message")
	assert.Equal(t, entity.StatusSent, msgs[0].Status)
}

func TestSendShowsOptimisticEntryImmediately(t *testing.T) {
	api := newFakeAPI()
	api.blockFor = 200 * time.Millisecond
	store := NewStore(api, "alice")
	require.NoError(t, store.Open(context.Background(), "bob"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.Send(context.Background(), "slow")
	}()

	require.Eventually(t, func() bool {
		msgs := store.Messages()
		return len(msgs) == 1 && msgs[0].Status == StatusSending
	}, time.Second, 5*time.Millisecond, "the entry must be visible before the server responds")

	<-done
	msgs := store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.StatusSent, msgs[0].Status)
}

func TestSendFailureRollsBack(t *testing.T) {
	api := newFakeAPI()
	api.sendErr = fmt.Errorf("server rejected")
	store := NewStore(api, "alice")
	require.NoError(t, store.Open(context.Background(), "bob"))

	_, err := store.Send(context.Background(), "doomed")
	require.Error(t, err)
	assert.Empty(t, store.Messages(), "a failed send leaves no trace")
}

func TestSendTimeoutRollsBack(t *testing.T) {
	api := newFakeAPI()
	api.blockFor = time.Second
	store := NewStore(api, "alice", WithSendTimeout(20*time.Millisecond))
	require.NoError(t, store.Open(context.Background(), "bob"))

	_, err := store.Send(context.Background(), "too slow")
	require.Error(t, err)
	assert.Empty(t, store.Messages())
}

func TestSendRequiresOpenConversation(t *testing.T) {
	store := NewStore(newFakeAPI(), "alice")

	_, err := store.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoOpenConversation)
}

func TestReceivePushRoutesByConversation(t *testing.T) {
	api := newFakeAPI()
	var unreadFrom []string
	store := NewStore(api, "alice", WithListUpdateHandler(func(senderID string) {
		unreadFrom = append(unreadFrom, senderID)
	}))
	require.NoError(t, store.Open(context.Background(), "bob"))

	store.ReceivePush(serverMessage("m1", "bob", "alice", "for the open chat"))
	store.ReceivePush(serverMessage("m2", "carol", "alice", "for the list"))

	msgs := store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, []string{"carol"}, unreadFrom)
}

func TestReceivePushDeduplicatesByID(t *testing.T) {
	store := NewStore(newFakeAPI(), "alice")
	require.NoError(t, store.Open(context.Background(), "bob"))

	push := serverMessage("m1", "bob", "alice", "hi")
	store.ReceivePush(push)
	store.ReceivePush(push)

	assert.Len(t, store.Messages(), 1)
}

func TestApplyStatusPatchesInPlace(t *testing.T) {
	store := NewStore(newFakeAPI(), "alice")
	require.NoError(t, store.Open(context.Background(), "bob"))

	_, err := store.Send(context.Background(), "one")
	require.NoError(t, err)
	_, err = store.Send(context.Background(), "two")
	require.NoError(t, err)

	store.ApplyStatus([]string{"srv-1", "srv-2", "unknown"}, entity.StatusDelivered)
	store.ApplyStatus([]string{"srv-1"}, entity.StatusSeen)
	// A repeated update must be harmless.
	store.ApplyStatus([]string{"srv-1"}, entity.StatusSeen)

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, entity.StatusSeen, msgs[0].Status)
	assert.Equal(t, entity.StatusDelivered, msgs[1].Status)
}

func TestLoadOlderPrependsWithoutDuplicates(t *testing.T) {
	api := newFakeAPI()
	api.pages[1] = []*entity.Message{
		serverMessage("m4", "bob", "alice", "newest"),
		serverMessage("m3", "alice", "bob", ""),
	}
	api.morePast[1] = true
	api.pages[2] = []*entity.Message{
		serverMessage("m2", "bob", "alice", ""),
		serverMessage("m1", "alice", "bob", "oldest"),
	}
	api.morePast[2] = false

	store := NewStore(api, "alice")
	require.NoError(t, store.Open(context.Background(), "bob"))

	hasMore, err := store.LoadOlder(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)

	msgs := store.Messages()
	require.Len(t, msgs, 4)
	for i, want := range []string{"m1", "m2", "m3", "m4"} {
		assert.Equal(t, want, msgs[i].ID)
	}

	// Exhausted history: another call is a no-op.
	hasMore, err = store.LoadOlder(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)
	assert.Len(t, store.Messages(), 4)
}

func TestApplyReactionsReplacesSet(t *testing.T) {
	store := NewStore(newFakeAPI(), "alice")
	require.NoError(t, store.Open(context.Background(), "bob"))
	store.ReceivePush(serverMessage("m1", "bob", "alice", "hi"))

	store.ApplyReactions("m1", []entity.Reaction{{Kind: "love", Count: 1, Users: []string{"alice"}}})

	msgs := store.Messages()
	require.Len(t, msgs[0].Reactions, 1)
	assert.Equal(t, "love", msgs[0].Reactions[0].Kind)
}
