// Package redis implements the shared broadcast bus that lets several server
// processes fan room events out to all members, whichever process their
// connection landed on. Delivery is at-most-once and best-effort: there are
// no acknowledgments and a lost message is never retried.
package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "watchroom:room:"

// envelope wraps an outbound room event with its origin instance so a
// process can skip events it published itself (those were already written to
// its local connections).
type envelope struct {
	Origin   string          `json:"origin"`
	RoomCode string          `json:"room_code"`
	Event    json.RawMessage `json:"event"`
}

type Bus struct {
	rc     *redis.Client
	origin string
	logger *slog.Logger
}

func NewBus(rc *redis.Client, logger *slog.Logger) *Bus {
	return &Bus{
		rc:     rc,
		origin: uuid.NewString(),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, roomCode string, event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(envelope{
		Origin:   b.origin,
		RoomCode: roomCode,
		Event:    raw,
	})
	if err != nil {
		return err
	}

	return b.rc.Publish(ctx, channelPrefix+roomCode, payload).Err()
}

// Run subscribes to every room channel and invokes deliver for each event
// published by another instance. It blocks until ctx is canceled or the
// subscription breaks.
func (b *Bus) Run(ctx context.Context, deliver func(roomCode string, event json.RawMessage)) error {
	pubsub := b.rc.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.WarnContext(ctx, "dropping malformed bus message", "channel", msg.Channel, "error", err)
				continue
			}

			if env.Origin == b.origin {
				continue
			}

			deliver(env.RoomCode, env.Event)
		}
	}
}
