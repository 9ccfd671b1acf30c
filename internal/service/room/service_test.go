package room

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/internal/domain"
	connInmemory "github.com/watchroom/server/internal/repository/connection/inmemory"
	roomInmemory "github.com/watchroom/server/internal/repository/room/inmemory"
)

func newTestService(t *testing.T) *service {
	t.Helper()
	roomRepo := roomInmemory.NewRepo(roomInmemory.Config{
		CodeLength:   6,
		MembersLimit: 9,
		QueueLimit:   25,
	}, slog.Default())
	connRepo := connInmemory.NewRepo(slog.Default())
	return NewService(roomRepo, connRepo, slog.Default())
}

func connect(t *testing.T, s *service, connID string) {
	t.Helper()
	require.NoError(t, s.Connect(&websocket.Conn{}, connID))
}

func TestWatchPartyScenario(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	// A creates a room and is its host
	connect(t, s, "conn-a")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{ConnID: "conn-a", DisplayName: "A"})
	require.NoError(t, err)
	require.NotEmpty(t, createResp.RoomCode)
	assert.Equal(t, "conn-a", createResp.State.HostID)
	assert.Equal(t, []domain.User{{ConnectionID: "conn-a", DisplayName: "A"}}, createResp.State.Users)

	// B joins and gets a snapshot of the empty room
	connect(t, s, "conn-b")
	joinResp, err := s.JoinRoom(ctx, &JoinRoomParams{RoomCode: createResp.RoomCode, ConnID: "conn-b", DisplayName: "B"})
	require.NoError(t, err)
	assert.Nil(t, joinResp.State.Media)
	assert.Empty(t, joinResp.State.Queue)
	assert.Equal(t, "conn-a", joinResp.State.HostID)
	assert.Len(t, joinResp.State.Users, 2)
	assert.Len(t, joinResp.Conns, 1, "join notice goes to existing members only")

	// A loads media, replacing the queue
	loadResp, err := s.LoadMedia(ctx, &LoadMediaParams{
		RoomCode: createResp.RoomCode,
		SenderID: "conn-a",
		Media:    domain.MediaRef{Type: "youtube", ID: "xyz"},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.MediaRef{{Type: "youtube", ID: "xyz"}}, loadResp.Queue)
	assert.Equal(t, 0, loadResp.CurrentIndex)
	assert.Len(t, loadResp.Conns, 2, "media update reaches the whole room")

	// A starts playback at 5.0s
	playResp, err := s.Play(ctx, &PlayParams{RoomCode: createResp.RoomCode, SenderID: "conn-a", CurrentTime: 5.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, playResp.CurrentTime)
	assert.Positive(t, playResp.Timestamp)
	assert.Len(t, playResp.Conns, 2, "sync-play reaches the host too")

	// A disconnects; B is promoted and can now seek
	left, err := s.Disconnect(ctx, "conn-a")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "conn-b", left[0].NewHostID)
	assert.False(t, left[0].IsRoomDeleted)
	assert.Len(t, left[0].Users, 1)

	seekResp, err := s.Seek(ctx, &SeekParams{RoomCode: createResp.RoomCode, SenderID: "conn-b", NewTime: 12})
	require.NoError(t, err)
	assert.Equal(t, 12.0, seekResp.NewTime)

	// B leaves; the room is gone
	left, err = s.Disconnect(ctx, "conn-b")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.True(t, left[0].IsRoomDeleted)
	assert.False(t, s.RoomExists(createResp.RoomCode))
}

func createRoomWithMember(t *testing.T, s *service) (string, string, string) {
	t.Helper()
	ctx := context.Background()
	connect(t, s, "conn-host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{ConnID: "conn-host", DisplayName: "host"})
	require.NoError(t, err)
	connect(t, s, "conn-guest")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{RoomCode: createResp.RoomCode, ConnID: "conn-guest", DisplayName: "guest"})
	require.NoError(t, err)
	return createResp.RoomCode, "conn-host", "conn-guest"
}

func (s *service) snapshot(t *testing.T, roomCode string) domain.State {
	t.Helper()
	room, err := s.lockRoom(roomCode)
	require.NoError(t, err)
	defer room.Unlock()
	return room.State()
}

func TestNonHostCannotMutate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	roomCode, hostID, guestID := createRoomWithMember(t, s)

	_, err := s.LoadMedia(ctx, &LoadMediaParams{
		RoomCode: roomCode, SenderID: hostID,
		Media: domain.MediaRef{Type: "youtube", ID: "v1"}, AddToQueue: true,
	})
	require.NoError(t, err)

	before := s.snapshot(t, roomCode)

	_, err = s.Play(ctx, &PlayParams{RoomCode: roomCode, SenderID: guestID, CurrentTime: 3})
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = s.Pause(ctx, &PauseParams{RoomCode: roomCode, SenderID: guestID})
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = s.Seek(ctx, &SeekParams{RoomCode: roomCode, SenderID: guestID, NewTime: 9})
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = s.LoadMedia(ctx, &LoadMediaParams{RoomCode: roomCode, SenderID: guestID, Media: domain.MediaRef{ID: "v2"}})
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = s.NextMedia(ctx, &ChangeMediaParams{RoomCode: roomCode, SenderID: guestID})
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = s.PrevMedia(ctx, &ChangeMediaParams{RoomCode: roomCode, SenderID: guestID})
	assert.ErrorIs(t, err, ErrNotHost)

	assert.Equal(t, before, s.snapshot(t, roomCode), "rejected requests must not change room state")
}

func TestNonMemberIsRejected(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	roomCode, _, _ := createRoomWithMember(t, s)
	connect(t, s, "conn-outsider")

	_, err := s.Play(ctx, &PlayParams{RoomCode: roomCode, SenderID: "conn-outsider", CurrentTime: 1})
	assert.ErrorIs(t, err, ErrNotAMember)
	_, err = s.SendChat(ctx, &SendChatParams{RoomCode: roomCode, SenderID: "conn-outsider", Message: "hi"})
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestUnknownRoom(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	connect(t, s, "conn-a")

	_, err := s.JoinRoom(ctx, &JoinRoomParams{RoomCode: "NOPE42", ConnID: "conn-a", DisplayName: "A"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = s.Pause(ctx, &PauseParams{RoomCode: "NOPE42", SenderID: "conn-a"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestNavigationWraparound(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	roomCode, hostID, _ := createRoomWithMember(t, s)

	for _, id := range []string{"v0", "v1", "v2"} {
		_, err := s.LoadMedia(ctx, &LoadMediaParams{
			RoomCode: roomCode, SenderID: hostID,
			Media: domain.MediaRef{Type: "youtube", ID: id}, AddToQueue: true,
		})
		require.NoError(t, err)
	}

	// move to index 2
	for i := 0; i < 2; i++ {
		_, err := s.NextMedia(ctx, &ChangeMediaParams{RoomCode: roomCode, SenderID: hostID})
		require.NoError(t, err)
	}

	// advancing past the end wraps to 0 and resets playback
	resp, err := s.NextMedia(ctx, &ChangeMediaParams{RoomCode: roomCode, SenderID: hostID})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.CurrentIndex)
	assert.Equal(t, &domain.MediaRef{Type: "youtube", ID: "v0"}, resp.Media)
	assert.Positive(t, resp.Timestamp, "a synthetic seek-to-zero must carry a fresh stamp")

	state := s.snapshot(t, roomCode)
	assert.Equal(t, 0.0, state.CurrentTime)
	assert.False(t, state.IsPlaying)

	// retreating before the start wraps to the end
	resp, err = s.PrevMedia(ctx, &ChangeMediaParams{RoomCode: roomCode, SenderID: hostID})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.CurrentIndex)
}

func TestNavigationOnEmptyQueue(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	roomCode, hostID, _ := createRoomWithMember(t, s)

	_, err := s.NextMedia(ctx, &ChangeMediaParams{RoomCode: roomCode, SenderID: hostID})
	assert.ErrorIs(t, err, domain.ErrEmptyQueue)
	_, err = s.PrevMedia(ctx, &ChangeMediaParams{RoomCode: roomCode, SenderID: hostID})
	assert.ErrorIs(t, err, domain.ErrEmptyQueue)
}

func TestChatUsesStoredDisplayName(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	roomCode, _, guestID := createRoomWithMember(t, s)

	resp, err := s.SendChat(ctx, &SendChatParams{RoomCode: roomCode, SenderID: guestID, Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "guest", resp.SenderName, "sender name comes from room state, not the payload")
	assert.Equal(t, "hello", resp.Message)
	assert.Positive(t, resp.Timestamp)
	assert.Len(t, resp.Conns, 2)
}

func TestRelaySignalTargetsOnePeer(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	roomCode, hostID, guestID := createRoomWithMember(t, s)

	payload := json.RawMessage(`{"sdp":"v=0..."}`)
	resp, err := s.RelaySignal(ctx, &RelaySignalParams{
		RoomCode: roomCode,
		SenderID: hostID,
		TargetID: guestID,
		Payload:  payload,
	})
	require.NoError(t, err)
	assert.Equal(t, hostID, resp.SenderID)
	assert.Equal(t, payload, resp.Payload)
	assert.NotNil(t, resp.TargetConn)

	// targets outside the room are rejected
	connect(t, s, "conn-outsider")
	_, err = s.RelaySignal(ctx, &RelaySignalParams{
		RoomCode: roomCode,
		SenderID: hostID,
		TargetID: "conn-outsider",
		Payload:  payload,
	})
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestDisconnectSkipsOwnIDGroup(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	connect(t, s, "conn-a")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{ConnID: "conn-a", DisplayName: "A"})
	require.NoError(t, err)

	// transports like socket.io put every connection in a group named by its
	// own id; that group must never be treated as a room
	require.NoError(t, s.connRepo.AddToRoom("conn-a", "conn-a"))

	left, err := s.Disconnect(ctx, "conn-a")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, createResp.RoomCode, left[0].RoomCode)
}

func TestHostGateIsRederivedAfterPromotion(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	roomCode, hostID, guestID := createRoomWithMember(t, s)

	_, err := s.Pause(ctx, &PauseParams{RoomCode: roomCode, SenderID: guestID})
	require.ErrorIs(t, err, ErrNotHost)

	_, err = s.Disconnect(ctx, hostID)
	require.NoError(t, err)

	// the promoted member's very next command succeeds
	_, err = s.Pause(ctx, &PauseParams{RoomCode: roomCode, SenderID: guestID})
	assert.NoError(t, err)
}
