package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is the envelope written to a stream entry.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Publisher appends domain events to a named stream.
type Publisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// RedisPublisher writes events to Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	maxLen int64
}

// NewRedisPublisher returns a publisher that trims each stream to roughly maxLen entries.
// A zero maxLen keeps every entry.
func NewRedisPublisher(client *redis.Client, maxLen int64) *RedisPublisher {
	return &RedisPublisher{client: client, maxLen: maxLen}
}

func (p *RedisPublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	eventJSON, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"event": eventJSON},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
