// Package controller is the session gateway: it upgrades connections,
// resolves every inbound message to (room, caller), invokes the matching room
// operation and routes the outbound fan-out.
package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/validator"
)

type iRoomService interface {
	Connect(conn *websocket.Conn, connID string) error
	Disconnect(ctx context.Context, connID string) ([]room.RoomLeft, error)
	CreateRoom(ctx context.Context, params *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(ctx context.Context, params *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LoadMedia(ctx context.Context, params *room.LoadMediaParams) (room.LoadMediaResponse, error)
	Play(ctx context.Context, params *room.PlayParams) (room.PlayResponse, error)
	Pause(ctx context.Context, params *room.PauseParams) (room.PauseResponse, error)
	Seek(ctx context.Context, params *room.SeekParams) (room.SeekResponse, error)
	NextMedia(ctx context.Context, params *room.ChangeMediaParams) (room.ChangeMediaResponse, error)
	PrevMedia(ctx context.Context, params *room.ChangeMediaParams) (room.ChangeMediaResponse, error)
	SendChat(ctx context.Context, params *room.SendChatParams) (room.SendChatResponse, error)
	RelaySignal(ctx context.Context, params *room.RelaySignalParams) (room.RelaySignalResponse, error)
	RoomExists(roomCode string) bool
	RoomCodes() []string
	RoomConns(roomCode string) []*websocket.Conn
}

// iBroadcastBus carries room-scoped events to other server processes.
// At-most-once, best-effort: a publish failure never unwinds the mutation.
type iBroadcastBus interface {
	Publish(ctx context.Context, roomCode string, event any) error
}

type controller struct {
	roomService iRoomService
	bus         iBroadcastBus
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
}

func NewController(roomService iRoomService, bus iBroadcastBus, logger *slog.Logger) *controller {
	return &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		bus:         bus,
		validate:    validator.NewValidator(),
		logger:      logger,
	}
}

// mediaUpdatedPayload is shared by LOAD_MEDIA and queue navigation: the full
// queue travels with every update so clients never diff against stale state.
type mediaUpdatedPayload struct {
	Media        *domain.MediaRef  `json:"media"`
	Queue        []domain.MediaRef `json:"queue"`
	CurrentIndex int               `json:"current_index"`
}
