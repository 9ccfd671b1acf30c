package room

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/pkg/synctime"
)

type SendChatParams struct {
	RoomCode string
	SenderID string
	Message  string
}

type SendChatResponse struct {
	SenderName string
	Message    string
	Timestamp  int64
	Conns      []*websocket.Conn
}

// SendChat relays a chat line to the whole room. The sender name is read
// from the room's member list, never from the payload, so a member cannot
// impersonate another member already in the room.
func (s *service) SendChat(ctx context.Context, params *SendChatParams) (SendChatResponse, error) {
	room, err := s.lockRoom(params.RoomCode)
	if err != nil {
		return SendChatResponse{}, err
	}
	defer room.Unlock()

	senderName, ok := room.DisplayNameOf(params.SenderID)
	if !ok {
		return SendChatResponse{}, ErrNotAMember
	}

	return SendChatResponse{
		SenderName: senderName,
		Message:    params.Message,
		Timestamp:  synctime.NowMs(),
		Conns:      s.connRepo.GetRoomConns(params.RoomCode),
	}, nil
}

type RelaySignalParams struct {
	RoomCode string
	SenderID string
	TargetID string
	Payload  json.RawMessage
}

type RelaySignalResponse struct {
	SenderID string
	Payload  json.RawMessage
	// TargetConn is the single recipient; signaling never fans out to the
	// whole room.
	TargetConn *websocket.Conn
}

// RelaySignal passes an opaque offer/answer/candidate payload to one peer in
// the same room, with the sender id attached so the target can reply. The
// payload structure is deliberately not inspected.
func (s *service) RelaySignal(ctx context.Context, params *RelaySignalParams) (RelaySignalResponse, error) {
	room, err := s.lockRoom(params.RoomCode)
	if err != nil {
		return RelaySignalResponse{}, err
	}
	defer room.Unlock()

	if !room.HasUser(params.SenderID) {
		return RelaySignalResponse{}, ErrNotAMember
	}

	if !room.HasUser(params.TargetID) {
		return RelaySignalResponse{}, ErrNotAMember
	}

	targetConn, err := s.connRepo.GetConn(params.TargetID)
	if err != nil {
		return RelaySignalResponse{}, fmt.Errorf("failed to resolve target connection: %w", err)
	}

	return RelaySignalResponse{
		SenderID:   params.SenderID,
		Payload:    params.Payload,
		TargetConn: targetConn,
	}, nil
}
