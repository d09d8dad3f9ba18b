package notify

import (
	"context"
	"fmt"

	"auction-dashboard/utils"

	"github.com/redis/go-redis/v9"
)

// BroadcastChannel receives notifications for every session
const BroadcastChannel = "notifications:all"

// UserChannel returns the pub/sub channel of one recipient
func UserChannel(email string) string {
	return "notifications:" + email
}

// RedisPubSub is the part of *redis.Client used for notifications
type RedisPubSub interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisSource subscribes each session to its own channel and the broadcast channel
type RedisSource struct {
	rdb RedisPubSub
}

// NewRedisSource creates a Source backed by Redis pub/sub
func NewRedisSource(rdb RedisPubSub) *RedisSource {
	return &RedisSource{rdb: rdb}
}

// Subscribe waits for the subscription to be confirmed before returning
func (s *RedisSource) Subscribe(ctx context.Context, email string) (<-chan []byte, error) {
	ps := s.rdb.Subscribe(ctx, UserChannel(email), BroadcastChannel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("notify: redis subscribe %s: %w", email, err)
	}

	out := make(chan []byte, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	utils.Info("notify: subscribed to redis channels", map[string]any{"email": email})
	return out, nil
}

// Publish sends payload to recipient's channel, or the broadcast channel
func (s *RedisSource) Publish(ctx context.Context, recipient string, payload []byte) error {
	channel := BroadcastChannel
	if recipient != "" {
		channel = UserChannel(recipient)
	}
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("notify: redis publish %s: %w", channel, err)
	}
	return nil
}
