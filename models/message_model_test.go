package models

import (
	"testing"
	"time"

	"github.com/azmhq/mentor_platform/apperrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMessage(created time.Time) *Message {
	return &Message{
		ID:          uuid.New(),
		SenderID:    uuid.New(),
		ReceiverID:  uuid.New(),
		Content:     "hello there",
		MessageType: "text",
		Status:      MessageSent,
		CreatedAt:   created,
	}
}

func TestMarkDelivered(t *testing.T) {
	now := time.Now()
	m := newTestMessage(now.Add(-time.Minute))

	assert.False(t, m.MarkDelivered(m.SenderID, now), "sender cannot deliver")
	assert.Equal(t, MessageSent, m.Status)

	assert.True(t, m.MarkDelivered(m.ReceiverID, now))
	assert.Equal(t, MessageDelivered, m.Status)
	require.NotNil(t, m.DeliveredAt)

	assert.False(t, m.MarkDelivered(m.ReceiverID, now), "already delivered")
}

func TestMarkDeliveredNeverRegresses(t *testing.T) {
	now := time.Now()
	m := newTestMessage(now.Add(-time.Minute))
	require.True(t, m.MarkRead(m.ReceiverID, now))

	assert.False(t, m.MarkDelivered(m.ReceiverID, now))
	assert.Equal(t, MessageRead, m.Status)
}

func TestMarkReadSkipsDelivered(t *testing.T) {
	now := time.Now()
	m := newTestMessage(now.Add(-time.Minute))

	assert.True(t, m.MarkRead(m.ReceiverID, now))
	assert.Equal(t, MessageRead, m.Status)
	require.NotNil(t, m.ReadAt)
	assert.Nil(t, m.DeliveredAt, "skipping delivered leaves DeliveredAt unset")

	assert.False(t, m.MarkRead(m.ReceiverID, now), "second read is a no-op")
}

func TestMarkReadOnlyReceiver(t *testing.T) {
	now := time.Now()
	m := newTestMessage(now.Add(-time.Minute))

	assert.False(t, m.MarkRead(m.SenderID, now))
	assert.False(t, m.MarkRead(uuid.New(), now))
	assert.Equal(t, MessageSent, m.Status)
}

func TestEdit(t *testing.T) {
	now := time.Now()
	m := newTestMessage(now.Add(-time.Hour))

	require.NoError(t, m.Edit(m.SenderID, "hello again", now))
	assert.Equal(t, "hello again", m.Content)
	require.NotNil(t, m.OriginalContent)
	assert.Equal(t, "hello there", *m.OriginalContent)
	assert.True(t, m.IsEdited)
	assert.NotNil(t, m.EditedAt)
}

func TestEditKeepsOnlyPriorContent(t *testing.T) {
	now := time.Now()
	m := newTestMessage(now.Add(-time.Hour))

	require.NoError(t, m.Edit(m.SenderID, "second", now))
	require.NoError(t, m.Edit(m.SenderID, "third", now))

	assert.Equal(t, "third", m.Content)
	require.NotNil(t, m.OriginalContent)
	assert.Equal(t, "second", *m.OriginalContent, "only the immediately prior content survives")
}

func TestEditGuards(t *testing.T) {
	now := time.Now()

	m := newTestMessage(now.Add(-time.Hour))
	err := m.Edit(m.ReceiverID, "hijack", now)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, "hello there", m.Content)

	old := newTestMessage(now.Add(-25 * time.Hour))
	err = old.Edit(old.SenderID, "too old", now)
	assert.ErrorIs(t, err, apperrors.ErrTooLate)

	deleted := newTestMessage(now.Add(-time.Hour))
	require.NoError(t, deleted.Delete(deleted.SenderID, now))
	err = deleted.Edit(deleted.SenderID, "back from the dead", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestDelete(t *testing.T) {
	now := time.Now()
	m := newTestMessage(now.Add(-time.Hour))

	err := m.Delete(m.ReceiverID, now)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, m.Delete(m.SenderID, now))
	assert.True(t, m.IsDeleted)
	assert.Equal(t, DeletedPlaceholder, m.Content)
	require.NotNil(t, m.DeletedBy)
	assert.Equal(t, m.SenderID, *m.DeletedBy)
	assert.NotNil(t, m.DeletedAt)
}

func TestReactLastWriteWins(t *testing.T) {
	now := time.Now()
	m := newTestMessage(now.Add(-time.Minute))

	require.NoError(t, m.React(m.ReceiverID, "👍", now))
	require.NoError(t, m.React(m.SenderID, "❤️", now))
	require.Len(t, m.Reactions, 2)

	require.NoError(t, m.React(m.ReceiverID, "🎉", now))
	require.Len(t, m.Reactions, 2, "one reaction per user")

	var receiverEmoji string
	for _, r := range m.Reactions {
		if r.UserID == m.ReceiverID {
			receiverEmoji = r.Emoji
		}
	}
	assert.Equal(t, "🎉", receiverEmoji)
}

func TestReactOutsider(t *testing.T) {
	now := time.Now()
	m := newTestMessage(now.Add(-time.Minute))

	err := m.React(uuid.New(), "👀", now)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, m.Reactions)
}

func TestRemoveReaction(t *testing.T) {
	now := time.Now()
	m := newTestMessage(now.Add(-time.Minute))
	require.NoError(t, m.React(m.SenderID, "👍", now))
	require.NoError(t, m.React(m.ReceiverID, "❤️", now))

	m.RemoveReaction(m.SenderID)
	require.Len(t, m.Reactions, 1)
	assert.Equal(t, m.ReceiverID, m.Reactions[0].UserID)

	m.RemoveReaction(m.SenderID)
	assert.Len(t, m.Reactions, 1, "removing a missing reaction is a no-op")
}
