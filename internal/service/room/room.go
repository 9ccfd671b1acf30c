package room

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/domain"
)

type CreateRoomParams struct {
	ConnID      string
	DisplayName string
}

type CreateRoomResponse struct {
	RoomCode string
	State    domain.State
}

// CreateRoom inserts a new room with the caller as sole member and host and
// associates the caller's connection with the room group.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	room, err := s.roomRepo.CreateRoom(domain.User{
		ConnectionID: params.ConnID,
		DisplayName:  params.DisplayName,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create room", "error", err)
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	if err := s.connRepo.AddToRoom(room.Code(), params.ConnID); err != nil {
		// connection vanished before the room was committed
		s.roomRepo.DeleteRoom(room.Code())
		return CreateRoomResponse{}, fmt.Errorf("failed to add creator to room group: %w", err)
	}

	s.logger.InfoContext(ctx, "room created", "room_code", room.Code(), "host_id", params.ConnID)

	room.Lock()
	defer room.Unlock()

	return CreateRoomResponse{
		RoomCode: room.Code(),
		State:    room.State(),
	}, nil
}

type JoinRoomParams struct {
	RoomCode    string
	ConnID      string
	DisplayName string
}

type JoinRoomResponse struct {
	// State is the full snapshot the joiner needs to reconstruct playback
	// without replaying history.
	State      domain.State
	JoinedUser domain.User
	// Conns are the members that were already in the room, the fan-out set
	// for the join notice.
	Conns []*websocket.Conn
}

func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	room, err := s.lockRoom(params.RoomCode)
	if err != nil {
		return JoinRoomResponse{}, err
	}
	defer room.Unlock()

	// captured before the join so the joiner is not in its own notice set
	conns := s.connRepo.GetRoomConns(params.RoomCode)

	user := domain.User{
		ConnectionID: params.ConnID,
		DisplayName:  params.DisplayName,
	}
	if err := room.AddUser(user); err != nil {
		return JoinRoomResponse{}, err
	}

	if err := s.connRepo.AddToRoom(params.RoomCode, params.ConnID); err != nil {
		room.RemoveUser(params.ConnID)
		return JoinRoomResponse{}, fmt.Errorf("failed to add member to room group: %w", err)
	}

	s.logger.InfoContext(ctx, "user joined room", "room_code", params.RoomCode, "conn_id", params.ConnID)

	return JoinRoomResponse{
		State:      room.State(),
		JoinedUser: user,
		Conns:      conns,
	}, nil
}

// RoomExists is the read-only existence probe of the query surface.
func (s *service) RoomExists(roomCode string) bool {
	return s.roomRepo.HasRoom(roomCode)
}

// RoomCodes lists the active room codes.
func (s *service) RoomCodes() []string {
	return s.roomRepo.RoomCodes()
}
