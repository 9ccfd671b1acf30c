package room

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/pkg/synctime"
)

type PlayParams struct {
	RoomCode    string
	SenderID    string
	CurrentTime float64
}

type PlayResponse struct {
	CurrentTime float64
	Timestamp   int64
	Conns       []*websocket.Conn
}

// Play marks the room playing at the host-reported position and stamps the
// authorization time. The whole room, host included, receives the same
// (currentTime, timestamp) pair so every clock reconciles identically.
func (s *service) Play(ctx context.Context, params *PlayParams) (PlayResponse, error) {
	room, err := s.lockRoom(params.RoomCode)
	if err != nil {
		return PlayResponse{}, err
	}
	defer room.Unlock()

	if err := s.checkHost(room, params.SenderID); err != nil {
		return PlayResponse{}, err
	}

	room.Play(params.CurrentTime)

	return PlayResponse{
		CurrentTime: params.CurrentTime,
		Timestamp:   synctime.NowMs(),
		Conns:       s.connRepo.GetRoomConns(params.RoomCode),
	}, nil
}

type PauseParams struct {
	RoomCode string
	SenderID string
}

type PauseResponse struct {
	Timestamp int64
	Conns     []*websocket.Conn
}

// Pause freezes playback. Only the timestamp travels: the position stays at
// whatever the room last recorded.
func (s *service) Pause(ctx context.Context, params *PauseParams) (PauseResponse, error) {
	room, err := s.lockRoom(params.RoomCode)
	if err != nil {
		return PauseResponse{}, err
	}
	defer room.Unlock()

	if err := s.checkHost(room, params.SenderID); err != nil {
		return PauseResponse{}, err
	}

	room.Pause()

	return PauseResponse{
		Timestamp: synctime.NowMs(),
		Conns:     s.connRepo.GetRoomConns(params.RoomCode),
	}, nil
}

type SeekParams struct {
	RoomCode string
	SenderID string
	NewTime  float64
}

type SeekResponse struct {
	NewTime   float64
	Timestamp int64
	Conns     []*websocket.Conn
}

func (s *service) Seek(ctx context.Context, params *SeekParams) (SeekResponse, error) {
	room, err := s.lockRoom(params.RoomCode)
	if err != nil {
		return SeekResponse{}, err
	}
	defer room.Unlock()

	if err := s.checkHost(room, params.SenderID); err != nil {
		return SeekResponse{}, err
	}

	room.Seek(params.NewTime)

	return SeekResponse{
		NewTime:   params.NewTime,
		Timestamp: synctime.NowMs(),
		Conns:     s.connRepo.GetRoomConns(params.RoomCode),
	}, nil
}
