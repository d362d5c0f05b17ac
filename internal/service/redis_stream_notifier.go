package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// streamMaxLen bounds the notification stream; consumers are expected to
// keep up well within this window.
const streamMaxLen = 10000

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type redisStreamNotifier struct {
	client streamAdder
	stream string
}

// NewRedisStreamNotifier appends events to a Redis stream for downstream
// consumers.
func NewRedisStreamNotifier(client streamAdder, stream string) Notifier {
	return &redisStreamNotifier{client: client, stream: stream}
}

func (n *redisStreamNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":           string(event.Type),
			"application_id": event.ApplicationID.String(),
			"payload":        string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", n.stream, err)
	}
	return nil
}
