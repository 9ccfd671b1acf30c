package room

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/domain"
)

// Connect registers a freshly upgraded connection under its generated id.
func (s *service) Connect(conn *websocket.Conn, connID string) error {
	if err := s.connRepo.Add(conn, connID); err != nil {
		return fmt.Errorf("failed to register connection: %w", err)
	}

	return nil
}

// RoomConns exposes the local fan-out set of a room, used to deliver events
// that arrive over the broadcast bus from other processes.
func (s *service) RoomConns(roomCode string) []*websocket.Conn {
	return s.connRepo.GetRoomConns(roomCode)
}

// RoomLeft describes the outcome of one room's reconciliation after a
// connection went away.
type RoomLeft struct {
	RoomCode      string
	LeftUser      domain.User
	NewHostID     string
	Users         []domain.User
	IsRoomDeleted bool
	Conns         []*websocket.Conn
}

// Disconnect removes the connection from the transport registry and
// reconciles every room it belonged to: membership entry dropped, host
// promoted to the first remaining member in join order when the host left,
// room deleted the instant it empties.
func (s *service) Disconnect(ctx context.Context, connID string) ([]RoomLeft, error) {
	rooms, err := s.connRepo.Remove(connID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove connection: %w", err)
	}

	results := make([]RoomLeft, 0, len(rooms))
	for _, roomCode := range rooms {
		// the transport may reuse the connection's own id as a group name
		if roomCode == connID {
			continue
		}

		room, err := s.lockRoom(roomCode)
		if err != nil {
			continue
		}

		previousHost := room.HostID()
		user, found, empty := room.RemoveUser(connID)
		if !found {
			room.Unlock()
			continue
		}

		if empty {
			room.Close()
			room.Unlock()

			if err := s.roomRepo.DeleteRoom(roomCode); err != nil {
				s.logger.WarnContext(ctx, "failed to delete empty room", "room_code", roomCode, "error", err)
			}
			s.logger.InfoContext(ctx, "room deleted", "room_code", roomCode)

			results = append(results, RoomLeft{
				RoomCode:      roomCode,
				LeftUser:      user,
				IsRoomDeleted: true,
			})
			continue
		}

		newHostID := ""
		if room.HostID() != previousHost {
			newHostID = room.HostID()
			s.logger.InfoContext(ctx, "host promoted", "room_code", roomCode, "host_id", newHostID)
		}
		users := room.Users()
		room.Unlock()

		results = append(results, RoomLeft{
			RoomCode:  roomCode,
			LeftUser:  user,
			NewHostID: newHostID,
			Users:     users,
			Conns:     s.connRepo.GetRoomConns(roomCode),
		})
	}

	return results, nil
}
