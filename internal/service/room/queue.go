package room

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/pkg/synctime"
)

type LoadMediaParams struct {
	RoomCode   string
	SenderID   string
	Media      domain.MediaRef
	AddToQueue bool
}

type LoadMediaResponse struct {
	Media        *domain.MediaRef
	Queue        []domain.MediaRef
	CurrentIndex int
	Conns        []*websocket.Conn
}

func (s *service) LoadMedia(ctx context.Context, params *LoadMediaParams) (LoadMediaResponse, error) {
	room, err := s.lockRoom(params.RoomCode)
	if err != nil {
		return LoadMediaResponse{}, err
	}
	defer room.Unlock()

	if err := s.checkHost(room, params.SenderID); err != nil {
		return LoadMediaResponse{}, err
	}

	if err := room.LoadMedia(params.Media, params.AddToQueue); err != nil {
		return LoadMediaResponse{}, err
	}

	s.logger.InfoContext(ctx, "media loaded",
		"room_code", params.RoomCode,
		"media_type", params.Media.Type,
		"media_id", params.Media.ID,
		"add_to_queue", params.AddToQueue,
	)

	return LoadMediaResponse{
		Media:        room.Media(),
		Queue:        room.Queue(),
		CurrentIndex: room.CurrentIndex(),
		Conns:        s.connRepo.GetRoomConns(params.RoomCode),
	}, nil
}

type ChangeMediaParams struct {
	RoomCode string
	SenderID string
}

type ChangeMediaResponse struct {
	Media        *domain.MediaRef
	Queue        []domain.MediaRef
	CurrentIndex int
	// Timestamp stamps the synthetic seek-to-zero that accompanies the media
	// update, so every client resets its player to the new track's start in
	// sync.
	Timestamp int64
	Conns     []*websocket.Conn
}

// NextMedia advances the queue cursor with wraparound past the end.
func (s *service) NextMedia(ctx context.Context, params *ChangeMediaParams) (ChangeMediaResponse, error) {
	return s.advance(ctx, params, 1)
}

// PrevMedia retreats the queue cursor with wraparound before the start.
func (s *service) PrevMedia(ctx context.Context, params *ChangeMediaParams) (ChangeMediaResponse, error) {
	return s.advance(ctx, params, -1)
}

func (s *service) advance(ctx context.Context, params *ChangeMediaParams, delta int) (ChangeMediaResponse, error) {
	room, err := s.lockRoom(params.RoomCode)
	if err != nil {
		return ChangeMediaResponse{}, err
	}
	defer room.Unlock()

	if err := s.checkHost(room, params.SenderID); err != nil {
		return ChangeMediaResponse{}, err
	}

	if err := room.Advance(delta); err != nil {
		return ChangeMediaResponse{}, err
	}

	s.logger.InfoContext(ctx, "queue advanced",
		"room_code", params.RoomCode,
		"delta", delta,
		"current_index", room.CurrentIndex(),
	)

	return ChangeMediaResponse{
		Media:        room.Media(),
		Queue:        room.Queue(),
		CurrentIndex: room.CurrentIndex(),
		Timestamp:    synctime.NowMs(),
		Conns:        s.connRepo.GetRoomConns(params.RoomCode),
	}, nil
}
