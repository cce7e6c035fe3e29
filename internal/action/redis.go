package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	redisKey     = "bubblefeed:action-vr"
	redisChannel = "bubblefeed:action-vr:updates"
)

// RedisStore keeps the slot in one Redis key, so every server process
// sees the same action. Writes are announced on a pub/sub channel.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to a Redis URL ("redis://host:6379/0") and pings it.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreFromClient(client), nil
}

func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context) (json.RawMessage, error) {
	b, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Default, nil
		}
		return nil, fmt.Errorf("get action: %w", err)
	}
	return orDefault(b), nil
}

func (s *RedisStore) Set(ctx context.Context, payload json.RawMessage) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKey, []byte(payload), 0)
		pipe.Publish(ctx, redisChannel, []byte(orDefault(payload)))
		return nil
	})
	if err != nil {
		return fmt.Errorf("set action: %w", err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKey)
		pipe.Publish(ctx, redisChannel, []byte(Default))
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset action: %w", err)
	}
	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context) (<-chan json.RawMessage, error) {
	pubsub := s.client.Subscribe(ctx, redisChannel)

	// Wait for the subscription confirmation so no publish made after
	// Subscribe returns can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe action: %w", err)
	}

	out := make(chan json.RawMessage, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- json.RawMessage(msg.Payload):
				default:
				}
			}
		}
	}()
	return out, nil
}
