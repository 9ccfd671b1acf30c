package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/service/room"
)

// decode unmarshals an inbound payload and validates its required-field set
// before anything reaches the state machine.
func (c controller) decode(payload json.RawMessage, input any) error {
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, input); err != nil {
			return fmt.Errorf("%w: %v", ErrValidationError, err)
		}
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %s", ErrValidationError, validationErrors[0].Message)
	}

	return nil
}

func (c controller) handleAlive(context.Context, *websocket.Conn, json.RawMessage) error {
	return nil
}

type CreateRoomInput struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=32"`
}

type roomCreatedPayload struct {
	RoomCode string       `json:"room_code"`
	State    domain.State `json:"state"`
}

func (c controller) handleCreateRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input CreateRoomInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	createRoomResp, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		ConnID:      c.getConnIDFromCtx(ctx),
		DisplayName: input.DisplayName,
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	c.writeToConn(ctx, conn, &Output{
		Type: eventRoomCreated,
		Payload: roomCreatedPayload{
			RoomCode: createRoomResp.RoomCode,
			State:    createRoomResp.State,
		},
	})

	return nil
}

type JoinRoomInput struct {
	RoomCode    string `json:"room_code" validate:"required"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=32"`
}

type userJoinedPayload struct {
	User  domain.User   `json:"user"`
	Users []domain.User `json:"users"`
}

func (c controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input JoinRoomInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	joinRoomResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		RoomCode:    input.RoomCode,
		ConnID:      c.getConnIDFromCtx(ctx),
		DisplayName: input.DisplayName,
	})
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	// snapshot to the joiner, notice to everyone who was already there
	c.writeToConn(ctx, conn, &Output{
		Type:    eventRoomState,
		Payload: joinRoomResp.State,
	})
	c.broadcastToConns(ctx, input.RoomCode, joinRoomResp.Conns, &Output{
		Type: eventUserJoined,
		Payload: userJoinedPayload{
			User:  joinRoomResp.JoinedUser,
			Users: joinRoomResp.State.Users,
		},
	})

	return nil
}

type MediaRefInput struct {
	Type string `json:"type" validate:"required,max=32"`
	ID   string `json:"id" validate:"required,max=256"`
}

type LoadMediaInput struct {
	RoomCode   string        `json:"room_code" validate:"required"`
	Media      MediaRefInput `json:"media"`
	AddToQueue bool          `json:"add_to_queue"`
}

func (c controller) handleLoadMedia(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input LoadMediaInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	loadMediaResp, err := c.roomService.LoadMedia(ctx, &room.LoadMediaParams{
		RoomCode: input.RoomCode,
		SenderID: c.getConnIDFromCtx(ctx),
		Media: domain.MediaRef{
			Type: input.Media.Type,
			ID:   input.Media.ID,
		},
		AddToQueue: input.AddToQueue,
	})
	if err != nil {
		return fmt.Errorf("failed to load media: %w", err)
	}

	c.broadcastToConns(ctx, input.RoomCode, loadMediaResp.Conns, &Output{
		Type: eventMediaUpdated,
		Payload: mediaUpdatedPayload{
			Media:        loadMediaResp.Media,
			Queue:        loadMediaResp.Queue,
			CurrentIndex: loadMediaResp.CurrentIndex,
		},
	})

	return nil
}

type PlayInput struct {
	RoomCode    string  `json:"room_code" validate:"required"`
	CurrentTime float64 `json:"current_time" validate:"min=0"`
}

type syncPlayPayload struct {
	CurrentTime float64 `json:"current_time"`
	Timestamp   int64   `json:"timestamp"`
}

func (c controller) handlePlay(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input PlayInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	playResp, err := c.roomService.Play(ctx, &room.PlayParams{
		RoomCode:    input.RoomCode,
		SenderID:    c.getConnIDFromCtx(ctx),
		CurrentTime: input.CurrentTime,
	})
	if err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	c.broadcastToConns(ctx, input.RoomCode, playResp.Conns, &Output{
		Type: eventSyncPlay,
		Payload: syncPlayPayload{
			CurrentTime: playResp.CurrentTime,
			Timestamp:   playResp.Timestamp,
		},
	})

	return nil
}

type PauseInput struct {
	RoomCode string `json:"room_code" validate:"required"`
}

type syncPausePayload struct {
	Timestamp int64 `json:"timestamp"`
}

func (c controller) handlePause(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input PauseInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	pauseResp, err := c.roomService.Pause(ctx, &room.PauseParams{
		RoomCode: input.RoomCode,
		SenderID: c.getConnIDFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	c.broadcastToConns(ctx, input.RoomCode, pauseResp.Conns, &Output{
		Type:    eventSyncPause,
		Payload: syncPausePayload{Timestamp: pauseResp.Timestamp},
	})

	return nil
}

type SeekInput struct {
	RoomCode string  `json:"room_code" validate:"required"`
	NewTime  float64 `json:"new_time" validate:"min=0"`
}

type syncSeekPayload struct {
	NewTime   float64 `json:"new_time"`
	Timestamp int64   `json:"timestamp"`
}

func (c controller) handleSeek(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input SeekInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	seekResp, err := c.roomService.Seek(ctx, &room.SeekParams{
		RoomCode: input.RoomCode,
		SenderID: c.getConnIDFromCtx(ctx),
		NewTime:  input.NewTime,
	})
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	c.broadcastToConns(ctx, input.RoomCode, seekResp.Conns, &Output{
		Type: eventSyncSeek,
		Payload: syncSeekPayload{
			NewTime:   seekResp.NewTime,
			Timestamp: seekResp.Timestamp,
		},
	})

	return nil
}

type ChangeMediaInput struct {
	RoomCode string `json:"room_code" validate:"required"`
}

func (c controller) handleNextMedia(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	return c.changeMedia(ctx, payload, c.roomService.NextMedia)
}

func (c controller) handlePrevMedia(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	return c.changeMedia(ctx, payload, c.roomService.PrevMedia)
}

func (c controller) changeMedia(
	ctx context.Context,
	payload json.RawMessage,
	op func(context.Context, *room.ChangeMediaParams) (room.ChangeMediaResponse, error),
) error {
	var input ChangeMediaInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	changeMediaResp, err := op(ctx, &room.ChangeMediaParams{
		RoomCode: input.RoomCode,
		SenderID: c.getConnIDFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to change media: %w", err)
	}

	c.broadcastToConns(ctx, input.RoomCode, changeMediaResp.Conns, &Output{
		Type: eventMediaUpdated,
		Payload: mediaUpdatedPayload{
			Media:        changeMediaResp.Media,
			Queue:        changeMediaResp.Queue,
			CurrentIndex: changeMediaResp.CurrentIndex,
		},
	})
	// synthetic seek so every client resets to the new track's start in sync
	c.broadcastToConns(ctx, input.RoomCode, changeMediaResp.Conns, &Output{
		Type: eventSyncSeek,
		Payload: syncSeekPayload{
			NewTime:   0,
			Timestamp: changeMediaResp.Timestamp,
		},
	})

	return nil
}

type SendChatInput struct {
	RoomCode string `json:"room_code" validate:"required"`
	Message  string `json:"message" validate:"required,max=2000"`
}

type newChatPayload struct {
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

func (c controller) handleSendChat(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input SendChatInput
	if err := c.decode(payload, &input); err != nil {
		return err
	}

	sendChatResp, err := c.roomService.SendChat(ctx, &room.SendChatParams{
		RoomCode: input.RoomCode,
		SenderID: c.getConnIDFromCtx(ctx),
		Message:  input.Message,
	})
	if err != nil {
		return fmt.Errorf("failed to send chat: %w", err)
	}

	c.broadcastToConns(ctx, input.RoomCode, sendChatResp.Conns, &Output{
		Type: eventNewChat,
		Payload: newChatPayload{
			SenderName: sendChatResp.SenderName,
			Message:    sendChatResp.Message,
			Timestamp:  sendChatResp.Timestamp,
		},
	})

	return nil
}

type SignalInput struct {
	RoomCode string          `json:"room_code" validate:"required"`
	TargetID string          `json:"target_id" validate:"required"`
	Payload  json.RawMessage `json:"payload" validate:"required"`
}

type signalPayload struct {
	SenderID string          `json:"sender_id"`
	Payload  json.RawMessage `json:"payload"`
}

// handleSignal relays one signaling message kind (offer/answer/candidate) to
// a single targeted peer. The payload is passed through opaquely.
func (c controller) handleSignal(eventType string) func(context.Context, *websocket.Conn, json.RawMessage) error {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input SignalInput
		if err := c.decode(payload, &input); err != nil {
			return err
		}

		relayResp, err := c.roomService.RelaySignal(ctx, &room.RelaySignalParams{
			RoomCode: input.RoomCode,
			SenderID: c.getConnIDFromCtx(ctx),
			TargetID: input.TargetID,
			Payload:  input.Payload,
		})
		if err != nil {
			return fmt.Errorf("failed to relay signal: %w", err)
		}

		c.writeToConn(ctx, relayResp.TargetConn, &Output{
			Type: eventType,
			Payload: signalPayload{
				SenderID: relayResp.SenderID,
				Payload:  relayResp.Payload,
			},
		})

		return nil
	}
}
