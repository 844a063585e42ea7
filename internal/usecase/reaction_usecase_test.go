package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitchat/internal/domain/entity"
	ws "chitchat/internal/infrastructure/websocket"
)

func newReactionFixture(t *testing.T) (*ReactionUseCase, *fakeMessageRepo, *fakePusher, *entity.Message) {
	t.Helper()
	repo := newFakeMessageRepo()
	pusher := newFakePusher()
	uc := NewReactionUseCase(repo, pusher)

	msg := &entity.Message{
		ConversationID: entity.PairKey("alice", "bob"),
		SenderID:       "alice",
		ReceiverID:     "bob",
		Text:           "hello",
	}
	require.NoError(t, repo.Create(context.Background(), msg))
	return uc, repo, pusher, msg
}

func reactionByKind(reactions []entity.Reaction, kind string) *entity.Reaction {
	for i := range reactions {
		if reactions[i].Kind == kind {
			return &reactions[i]
		}
	}
	return nil
}

func TestToggleAddsReaction(t *testing.T) {
	uc, _, pusher, msg := newReactionFixture(t)

	result, err := uc.Toggle(context.Background(), "bob", msg.ID, "love")
	require.NoError(t, err)

	require.Len(t, result.Reactions, 1)
	assert.Equal(t, "love", result.Reactions[0].Kind)
	assert.Equal(t, 1, result.Reactions[0].Count)
	assert.Equal(t, []string{"bob"}, result.Reactions[0].Users)

	// The other participant hears about it.
	pushes := pusher.eventsFor("alice", ws.EventMessageReaction)
	require.Len(t, pushes, 1)
	payload := pushes[0].Payload.(ws.MessageReactionPayload)
	assert.Equal(t, msg.ID, payload.MessageID)
}

func TestToggleSameKindRemoves(t *testing.T) {
	uc, repo, _, msg := newReactionFixture(t)
	ctx := context.Background()

	_, err := uc.Toggle(ctx, "bob", msg.ID, "like")
	require.NoError(t, err)
	result, err := uc.Toggle(ctx, "bob", msg.ID, "like")
	require.NoError(t, err)

	assert.Empty(t, result.Reactions, "re-reacting with the same kind toggles it off")

	stored, err := repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Reactions)
}

func TestToggleMovesReactionBetweenKinds(t *testing.T) {
	uc, _, _, msg := newReactionFixture(t)
	ctx := context.Background()

	_, err := uc.Toggle(ctx, "bob", msg.ID, "like")
	require.NoError(t, err)
	result, err := uc.Toggle(ctx, "bob", msg.ID, "wow")
	require.NoError(t, err)

	require.Len(t, result.Reactions, 1, "a user holds at most one reaction per message")
	assert.Equal(t, "wow", result.Reactions[0].Kind)
	assert.Equal(t, []string{"bob"}, result.Reactions[0].Users)
}

func TestToggleKeepsOtherUsersReactions(t *testing.T) {
	uc, _, _, msg := newReactionFixture(t)
	ctx := context.Background()

	_, err := uc.Toggle(ctx, "alice", msg.ID, "like")
	require.NoError(t, err)
	_, err = uc.Toggle(ctx, "bob", msg.ID, "like")
	require.NoError(t, err)

	// Bob moving to "sad" must not disturb Alice's "like".
	result, err := uc.Toggle(ctx, "bob", msg.ID, "sad")
	require.NoError(t, err)

	like := reactionByKind(result.Reactions, "like")
	require.NotNil(t, like)
	assert.Equal(t, 1, like.Count)
	assert.Equal(t, []string{"alice"}, like.Users)

	sad := reactionByKind(result.Reactions, "sad")
	require.NotNil(t, sad)
	assert.Equal(t, []string{"bob"}, sad.Users)
}

func TestToggleRejectsOutsiders(t *testing.T) {
	uc, _, _, msg := newReactionFixture(t)

	_, err := uc.Toggle(context.Background(), "mallory", msg.ID, "like")
	assert.Error(t, err)
}

func TestToggleRejectsUnknownKind(t *testing.T) {
	uc, _, _, msg := newReactionFixture(t)

	_, err := uc.Toggle(context.Background(), "bob", msg.ID, "sparkle")
	assert.Error(t, err)
}

func TestReactorCountBoundedByParticipants(t *testing.T) {
	uc, _, _, msg := newReactionFixture(t)
	ctx := context.Background()

	for _, kind := range []string{"like", "love", "haha", "wow"} {
		_, err := uc.Toggle(ctx, "alice", msg.ID, kind)
		require.NoError(t, err)
		_, err = uc.Toggle(ctx, "bob", msg.ID, kind)
		require.NoError(t, err)
	}

	stored, err := uc.messageRepo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, stored.ReactorCount(), 2, "never more distinct reactors than participants")
}
