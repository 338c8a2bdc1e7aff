package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// SignalBus implements domain.SignalBus using Redis Pub/Sub. Services publish
// refresh signals on it and the WebSocket hub fans them out to clients.
type SignalBus struct {
	rdb *redis.Client
}

// NewSignalBus creates a SignalBus backed by the given Client.
func NewSignalBus(c *Client) *SignalBus {
	return &SignalBus{rdb: c.Underlying()}
}

// Publish sends a raw byte payload to a Redis Pub/Sub channel.
func (sb *SignalBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := sb.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe creates a Redis Pub/Sub subscription over one or more channels
// and returns a read-only channel of deliveries tagged with their source
// channel. The subscription is automatically closed when the context is
// cancelled; the returned channel is closed at that point as well.
func (sb *SignalBus) Subscribe(ctx context.Context, channels ...string) (<-chan domain.SignalMessage, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("redis: subscribe: no channels")
	}

	var pubsub *redis.PubSub
	if hasPattern(channels) {
		pubsub = sb.rdb.PSubscribe(ctx, channels...)
	} else {
		pubsub = sb.rdb.Subscribe(ctx, channels...)
	}

	// Verify the subscription is established by receiving the confirmation.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", strings.Join(channels, ","), err)
	}

	out := make(chan domain.SignalMessage, 128)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- domain.SignalMessage{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// hasPattern returns true when any channel includes glob-style wildcards, in
// which case PSubscribe must be used instead of Subscribe.
func hasPattern(channels []string) bool {
	for _, ch := range channels {
		if strings.ContainsAny(ch, "*?[") {
			return true
		}
	}
	return false
}

// Compile-time interface check.
var _ domain.SignalBus = (*SignalBus)(nil)
