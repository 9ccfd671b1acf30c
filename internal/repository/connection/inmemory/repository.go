// Package inmemory tracks live websocket connections and the rooms each one
// is part of. It is the transport-side view of membership, reconciled with
// the room entities on disconnect.
package inmemory

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/maps"
)

var (
	ErrNotFound      = errors.New("connection not found")
	ErrAlreadyExists = errors.New("connection already exists")
)

type repo struct {
	connList  map[*websocket.Conn]string
	idList    map[string]*websocket.Conn
	connRooms map[string]map[string]struct{}
	roomConns map[string]map[string]*websocket.Conn
	mu        sync.RWMutex
	logger    *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		connList:  make(map[*websocket.Conn]string),
		idList:    make(map[string]*websocket.Conn),
		connRooms: make(map[string]map[string]struct{}),
		roomConns: make(map[string]map[string]*websocket.Conn),
		logger:    logger,
	}
}

func (r *repo) Add(conn *websocket.Conn, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != "" || r.idList[connID] != nil {
		return ErrAlreadyExists
	}

	r.connList[conn] = connID
	r.idList[connID] = conn

	r.logger.Debug("connection added", "conn_id", connID)
	return nil
}

// Remove drops the connection and every room association it holds. It
// returns the rooms the connection was part of so the caller can reconcile
// room membership.
func (r *repo) Remove(connID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[connID]
	if !ok {
		return nil, ErrNotFound
	}

	rooms := maps.Keys(r.connRooms[connID])
	for _, roomCode := range rooms {
		r.removeFromRoomLocked(roomCode, connID)
	}

	delete(r.connList, conn)
	delete(r.idList, connID)
	delete(r.connRooms, connID)

	r.logger.Debug("connection removed", "conn_id", connID, "rooms", rooms)
	return rooms, nil
}

func (r *repo) GetConn(connID string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[connID]
	if !ok {
		return nil, ErrNotFound
	}

	return conn, nil
}

func (r *repo) GetConnID(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.connList[conn]
	if !ok {
		return "", ErrNotFound
	}

	return connID, nil
}

func (r *repo) AddToRoom(roomCode, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[connID]
	if !ok {
		return ErrNotFound
	}

	if r.connRooms[connID] == nil {
		r.connRooms[connID] = make(map[string]struct{})
	}
	r.connRooms[connID][roomCode] = struct{}{}

	if r.roomConns[roomCode] == nil {
		r.roomConns[roomCode] = make(map[string]*websocket.Conn)
	}
	r.roomConns[roomCode][connID] = conn

	return nil
}

func (r *repo) RemoveFromRoom(roomCode, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.connRooms[connID], roomCode)
	r.removeFromRoomLocked(roomCode, connID)
}

func (r *repo) removeFromRoomLocked(roomCode, connID string) {
	delete(r.roomConns[roomCode], connID)
	if len(r.roomConns[roomCode]) == 0 {
		delete(r.roomConns, roomCode)
	}
}

// GetRoomConns returns the live connections of every member of a room - the
// fan-out set for room-scoped broadcasts.
func (r *repo) GetRoomConns(roomCode string) []*websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*websocket.Conn, 0, len(r.roomConns[roomCode]))
	for _, conn := range r.roomConns[roomCode] {
		conns = append(conns, conn)
	}

	return conns
}

func (r *repo) GetConnRooms(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Keys(r.connRooms[connID])
}
