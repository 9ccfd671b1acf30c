// Package room implements the room state machine: membership, host
// authority, queue navigation and playback transitions. Every operation
// resolves (room, caller), re-derives authority from the room's current host
// id and runs under the room's lock, so host promotion is effective for the
// very next command.
package room

import (
	"errors"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/domain"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotAMember   = errors.New("not a member of the room")
	ErrNotHost      = errors.New("not the host of the room")
)

type iRoomRepo interface {
	CreateRoom(host domain.User) (*domain.Room, error)
	GetRoom(code string) (*domain.Room, error)
	DeleteRoom(code string) error
	HasRoom(code string) bool
	RoomCodes() []string
}

type iConnRepo interface {
	Add(conn *websocket.Conn, connID string) error
	Remove(connID string) ([]string, error)
	GetConn(connID string) (*websocket.Conn, error)
	AddToRoom(roomCode, connID string) error
	GetRoomConns(roomCode string) []*websocket.Conn
}

type service struct {
	roomRepo iRoomRepo
	connRepo iConnRepo
	logger   *slog.Logger
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, logger *slog.Logger) *service {
	return &service{
		roomRepo: roomRepo,
		connRepo: connRepo,
		logger:   logger,
	}
}

// lockRoom resolves a code to its room and takes the room lock. A room that
// was deleted between lookup and lock shows up as closed and is treated as
// not found. Callers unlock once the mutation and its fan-out set are
// captured.
func (s *service) lockRoom(roomCode string) (*domain.Room, error) {
	room, err := s.roomRepo.GetRoom(roomCode)
	if err != nil {
		return nil, ErrRoomNotFound
	}

	room.Lock()
	if room.Closed() {
		room.Unlock()
		return nil, ErrRoomNotFound
	}

	return room, nil
}

// checkHost gates privileged operations. Non-members are distinguished from
// members without host authority so the caller gets an accurate error.
func (s *service) checkHost(room *domain.Room, senderID string) error {
	if !room.HasUser(senderID) {
		return ErrNotAMember
	}

	if !room.IsHost(senderID) {
		return ErrNotHost
	}

	return nil
}
