package controller

import (
	"context"

	"github.com/gorilla/websocket"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const (
	eventRoomCreated  = "ROOM_CREATED"
	eventRoomState    = "ROOM_STATE"
	eventUserJoined   = "USER_JOINED"
	eventUserLeft     = "USER_LEFT"
	eventMediaUpdated = "MEDIA_UPDATED"
	eventSyncPlay     = "SYNC_PLAY"
	eventSyncPause    = "SYNC_PAUSE"
	eventSyncSeek     = "SYNC_SEEK"
	eventNewChat      = "NEW_CHAT"
	eventVoiceOffer   = "VOICE_OFFER"
	eventVoiceAnswer  = "VOICE_ANSWER"
	eventIceCandidate = "ICE_CANDIDATE"
	eventError        = "ERROR"
)

func (c controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) {
	if err := conn.WriteJSON(output); err != nil {
		c.logger.WarnContext(ctx, "failed to write to connection", "type", output.Type, "error", err)
	}
}

// broadcastToConns fans an event out to the given local connections and
// publishes it on the bus for members connected to other processes. Delivery
// is best-effort per recipient: one failed write never rolls back the state
// mutation that produced the event.
func (c controller) broadcastToConns(ctx context.Context, roomCode string, conns []*websocket.Conn, output *Output) {
	for _, conn := range conns {
		c.writeToConn(ctx, conn, output)
	}

	if err := c.bus.Publish(ctx, roomCode, output); err != nil {
		c.logger.WarnContext(ctx, "failed to publish to bus", "room_code", roomCode, "type", output.Type, "error", err)
	}
}

// DeliverBusEvent hands an event received from another process to the local
// connections of its room. It is the deliver callback of the bus subscriber.
func (c controller) DeliverBusEvent(ctx context.Context, roomCode string, event []byte) {
	for _, conn := range c.roomService.RoomConns(roomCode) {
		if err := conn.WriteMessage(websocket.TextMessage, event); err != nil {
			c.logger.WarnContext(ctx, "failed to relay bus event", "room_code", roomCode, "error", err)
		}
	}
}
