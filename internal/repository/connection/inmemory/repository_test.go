package inmemory

import (
	"log/slog"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndLookup(t *testing.T) {
	r := NewRepo(slog.Default())
	conn := &websocket.Conn{}

	require.NoError(t, r.Add(conn, "conn-a"))
	assert.ErrorIs(t, r.Add(conn, "conn-a"), ErrAlreadyExists)

	got, err := r.GetConn("conn-a")
	require.NoError(t, err)
	assert.Same(t, conn, got)

	id, err := r.GetConnID(conn)
	require.NoError(t, err)
	assert.Equal(t, "conn-a", id)
}

func TestRoomGroups(t *testing.T) {
	r := NewRepo(slog.Default())
	connA, connB := &websocket.Conn{}, &websocket.Conn{}
	require.NoError(t, r.Add(connA, "conn-a"))
	require.NoError(t, r.Add(connB, "conn-b"))

	require.NoError(t, r.AddToRoom("ROOM1", "conn-a"))
	require.NoError(t, r.AddToRoom("ROOM1", "conn-b"))
	require.NoError(t, r.AddToRoom("ROOM2", "conn-a"))

	assert.Len(t, r.GetRoomConns("ROOM1"), 2)
	assert.Len(t, r.GetRoomConns("ROOM2"), 1)
	assert.ElementsMatch(t, []string{"ROOM1", "ROOM2"}, r.GetConnRooms("conn-a"))

	r.RemoveFromRoom("ROOM1", "conn-b")
	assert.Len(t, r.GetRoomConns("ROOM1"), 1)
	assert.Empty(t, r.GetConnRooms("conn-b"))
}

func TestAddToRoomUnknownConn(t *testing.T) {
	r := NewRepo(slog.Default())
	assert.ErrorIs(t, r.AddToRoom("ROOM1", "conn-z"), ErrNotFound)
}

func TestRemoveReturnsRooms(t *testing.T) {
	r := NewRepo(slog.Default())
	conn := &websocket.Conn{}
	require.NoError(t, r.Add(conn, "conn-a"))
	require.NoError(t, r.AddToRoom("ROOM1", "conn-a"))
	require.NoError(t, r.AddToRoom("ROOM2", "conn-a"))

	rooms, err := r.Remove("conn-a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ROOM1", "ROOM2"}, rooms)

	_, err = r.GetConn("conn-a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, r.GetRoomConns("ROOM1"))

	_, err = r.Remove("conn-a")
	assert.ErrorIs(t, err, ErrNotFound)
}
