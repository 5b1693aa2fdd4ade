// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for room action records.
const DefaultQueueName = "dongdong_actions"

// ActionRecord is one entry of a room's action history, consumed by the historian.
type ActionRecord struct {
	ID            uuid.UUID      `json:"id"`
	RoomID        string         `json:"room_id"`
	ActionIndex   int            `json:"action_index"`
	Actor         string         `json:"actor"`
	ActionType    string         `json:"action_type"`
	ActionPayload map[string]any `json:"action_payload"`
	Timestamp     int64          `json:"timestamp"`
}

// Publisher pushes action records onto a Redis list.
type Publisher struct {
	Client *redis.Client
	Queue  string
}

// Options configures the Redis connection.
type Options struct {
	Addr string
	DB   int
}

// Connect creates a client and pings it.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: opts.Addr,
		DB:   opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// NewPublisher wraps a connected client. An empty queue uses DefaultQueueName.
func NewPublisher(client *redis.Client, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Publisher{Client: client, Queue: queue}
}

// Publish serializes the record to JSON and pushes it to the queue.
func (p *Publisher) Publish(ctx context.Context, record ActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := p.Client.RPush(ctx, p.Queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.Queue, err)
	}
	return nil
}

// Consumer pops action records off the same Redis list.
type Consumer struct {
	Client *redis.Client
	Queue  string
}

// NewConsumer wraps a connected client. An empty queue uses DefaultQueueName.
func NewConsumer(client *redis.Client, queue string) *Consumer {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Consumer{Client: client, Queue: queue}
}

// Pop blocks up to timeout for the next record. It returns (nil, nil) when the
// queue stayed empty.
func (c *Consumer) Pop(ctx context.Context, timeout time.Duration) (*ActionRecord, error) {
	queue := c.Queue
	res, err := c.Client.BLPop(ctx, timeout, queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BLPop %s: %w", queue, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return nil, nil
	}
	var rec ActionRecord
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return nil, fmt.Errorf("invalid action record: %w", err)
	}
	return &rec, nil
}
