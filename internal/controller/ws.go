package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/pkg/ctxlogger"
)

type userLeftPayload struct {
	User      domain.User   `json:"user"`
	Users     []domain.User `json:"users"`
	NewHostID string        `json:"new_host_id,omitempty"`
}

func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("conn_id", connID))
	ctx = context.WithValue(ctx, connIDCtxKey, connID)

	if err := c.roomService.Connect(conn, connID); err != nil {
		c.logger.ErrorContext(ctx, "failed to register connection", "error", err)
		return
	}

	c.logger.InfoContext(ctx, "connection opened")
	err = c.getWSRouter().ServeConn(ctx, conn)
	c.logger.InfoContext(ctx, "connection closed", "reason", err)

	c.disconnect(ctx, connID)
}

// disconnect reconciles every room the connection belonged to and tells the
// remaining members who left and who the host is now.
func (c controller) disconnect(ctx context.Context, connID string) {
	roomsLeft, err := c.roomService.Disconnect(ctx, connID)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect", "error", err)
		return
	}

	for _, left := range roomsLeft {
		if left.IsRoomDeleted {
			continue
		}

		c.broadcastToConns(ctx, left.RoomCode, left.Conns, &Output{
			Type: eventUserLeft,
			Payload: userLeftPayload{
				User:      left.LeftUser,
				Users:     left.Users,
				NewHostID: left.NewHostID,
			},
		})
	}
}
