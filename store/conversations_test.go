package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innova/models"
)

func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	return NewConversationStore(filepath.Join(t.TempDir(), "conversations.json"))
}

func TestCreateAndListRoundTrip(t *testing.T) {
	s := newTestStore(t)
	userID := uuid.New()

	conv, err := s.CreateConversation(userID, "T")
	require.NoError(t, err)
	assert.Equal(t, "T", conv.Title)
	assert.Equal(t, userID, conv.UserID)
	assert.Empty(t, conv.Messages)
	assert.Equal(t, conv.CreatedAt, conv.UpdatedAt)

	listed := s.Conversations(userID)
	require.Len(t, listed, 1)
	assert.Equal(t, conv.ID, listed[0].ID)
	assert.Equal(t, "T", listed[0].Title)
	assert.Empty(t, listed[0].Messages)
}

func TestConversationsFiltersByUser(t *testing.T) {
	s := newTestStore(t)
	alice := uuid.New()
	bob := uuid.New()

	_, err := s.CreateConversation(alice, "alice 1")
	require.NoError(t, err)
	_, err = s.CreateConversation(bob, "bob 1")
	require.NoError(t, err)
	_, err = s.CreateConversation(alice, "alice 2")
	require.NoError(t, err)

	for _, conv := range s.Conversations(alice) {
		assert.Equal(t, alice, conv.UserID)
	}
	assert.Len(t, s.Conversations(alice), 2)
	assert.Len(t, s.Conversations(bob), 1)
}

func TestConversationsSortedByUpdatedAtDescending(t *testing.T) {
	s := newTestStore(t)
	userID := uuid.New()

	first, err := s.CreateConversation(userID, "first")
	require.NoError(t, err)
	second, err := s.CreateConversation(userID, "second")
	require.NoError(t, err)

	// Touching the older conversation moves it to the front.
	time.Sleep(5 * time.Millisecond)
	_, err = s.AppendMessage(first.ID, models.RoleUser, "bump")
	require.NoError(t, err)

	listed := s.Conversations(userID)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)
}

func TestAppendMessageGrowsInOrder(t *testing.T) {
	s := newTestStore(t)
	userID := uuid.New()
	conv, err := s.CreateConversation(userID, "chat")
	require.NoError(t, err)

	contents := []string{"one", "two", "three"}
	var lastUpdated time.Time
	for i, content := range contents {
		msg, err := s.AppendMessage(conv.ID, models.RoleUser, content)
		require.NoError(t, err)
		assert.Equal(t, content, msg.Content)

		msgs := s.Messages(conv.ID)
		require.Len(t, msgs, i+1)

		updated := s.Conversations(userID)[0].UpdatedAt
		assert.False(t, updated.Before(lastUpdated))
		lastUpdated = updated
	}

	msgs := s.Messages(conv.ID)
	for i, content := range contents {
		assert.Equal(t, content, msgs[i].Content)
	}
}

func TestAppendMessageUnknownConversation(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AppendMessage(uuid.New(), models.RoleUser, "hello")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestMessagesUnknownConversationIsEmpty(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, s.Messages(uuid.New()))
}

func TestDeleteConversationCascades(t *testing.T) {
	s := newTestStore(t)
	userID := uuid.New()
	conv, err := s.CreateConversation(userID, "doomed")
	require.NoError(t, err)
	_, err = s.AppendMessage(conv.ID, models.RoleAssistant, "welcome")
	require.NoError(t, err)

	require.NoError(t, s.DeleteConversation(conv.ID))
	assert.Empty(t, s.Conversations(userID))
	assert.Empty(t, s.Messages(conv.ID))
}

func TestDeleteAbsentConversationIsNoOp(t *testing.T) {
	s := newTestStore(t)
	userID := uuid.New()
	_, err := s.CreateConversation(userID, "keep")
	require.NoError(t, err)

	require.NoError(t, s.DeleteConversation(uuid.New()))
	assert.Len(t, s.Conversations(userID), 1)
}

func TestCorruptDocumentTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := NewConversationStore(path)
	userID := uuid.New()
	assert.Empty(t, s.Conversations(userID))

	// The store recovers by starting over.
	_, err := s.CreateConversation(userID, "fresh")
	require.NoError(t, err)
	assert.Len(t, s.Conversations(userID), 1)
}

func TestClearUserConversations(t *testing.T) {
	s := newTestStore(t)
	alice := uuid.New()
	bob := uuid.New()

	_, err := s.CreateConversation(alice, "a")
	require.NoError(t, err)
	_, err = s.CreateConversation(bob, "b")
	require.NoError(t, err)

	require.NoError(t, s.ClearUserConversations(alice))
	assert.Empty(t, s.Conversations(alice))
	assert.Len(t, s.Conversations(bob), 1)
}
