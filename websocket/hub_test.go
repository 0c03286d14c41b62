package websocket

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	written  []Event
	writeErr error
	closed   bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, v.(Event))
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestRegisterAndLookup(t *testing.T) {
	h := NewHub()
	userID := uuid.New()
	conn := &fakeConn{}

	_, ok := h.Lookup(userID)
	assert.False(t, ok)

	h.Register(userID, conn)
	got, ok := h.Lookup(userID)
	require.True(t, ok)
	assert.Same(t, conn, got.(*fakeConn))
}

func TestRegisterReplacesAndClosesOld(t *testing.T) {
	h := NewHub()
	userID := uuid.New()
	old := &fakeConn{}
	fresh := &fakeConn{}

	h.Register(userID, old)
	h.Register(userID, fresh)

	assert.True(t, old.closed)
	got, ok := h.Lookup(userID)
	require.True(t, ok)
	assert.Same(t, fresh, got.(*fakeConn))
}

func TestRemoveOnlyMatchingConn(t *testing.T) {
	h := NewHub()
	userID := uuid.New()
	old := &fakeConn{}
	fresh := &fakeConn{}

	h.Register(userID, old)
	h.Register(userID, fresh)

	// stale disconnect must not drop the fresh registration
	h.Remove(userID, old)
	_, ok := h.Lookup(userID)
	assert.True(t, ok)

	h.Remove(userID, fresh)
	_, ok = h.Lookup(userID)
	assert.False(t, ok)
}

func TestNotify(t *testing.T) {
	h := NewHub()
	userID := uuid.New()
	conn := &fakeConn{}
	h.Register(userID, conn)

	h.Notify(userID, "new-message", map[string]string{"id": "abc"})

	require.Len(t, conn.written, 1)
	assert.Equal(t, "new-message", conn.written[0].Event)
}

func TestNotifyOfflineIsNoop(t *testing.T) {
	h := NewHub()
	h.Notify(uuid.New(), "new-message", nil)
}

func TestNotifyEvictsOnWriteFailure(t *testing.T) {
	h := NewHub()
	userID := uuid.New()
	conn := &fakeConn{writeErr: errors.New("broken pipe")}
	h.Register(userID, conn)

	h.Notify(userID, "new-message", nil)

	assert.True(t, conn.closed)
	_, ok := h.Lookup(userID)
	assert.False(t, ok)
}
