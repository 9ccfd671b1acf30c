package controller

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/wsrouter"
)

var ErrValidationError = errors.New("validation error")

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, room.ErrNotAMember):
		return "NOT_A_MEMBER"
	case errors.Is(err, room.ErrNotHost):
		return "NOT_HOST"
	case errors.Is(err, domain.ErrEmptyQueue):
		return "EMPTY_QUEUE"
	case errors.Is(err, domain.ErrQueueLimitReached):
		return "QUEUE_LIMIT_REACHED"
	case errors.Is(err, domain.ErrMembersLimitReached):
		return "MEMBERS_LIMIT_REACHED"
	case errors.Is(err, domain.ErrUserAlreadyJoined):
		return "ALREADY_JOINED"
	case errors.Is(err, ErrValidationError), errors.Is(err, wsrouter.ErrUnknownMessageType):
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// sendError reports a failed request to its sender only. No other member
// hears about it and no state changed before the failure was detected.
func (c controller) sendError(ctx context.Context, conn *websocket.Conn, err error) {
	code := errorCode(err)
	c.logger.InfoContext(ctx, "request rejected",
		"message_type", wsrouter.GetMessageTypeFromCtx(ctx),
		"code", code,
		"error", err,
	)

	c.writeToConn(ctx, conn, &Output{
		Type: eventError,
		Payload: errorPayload{
			Code:    code,
			Message: err.Error(),
		},
	})
}
