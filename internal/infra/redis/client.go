package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// eventsChannel carries ticket lifecycle events for live observers
// (dashboards, notifiers) subscribed outside this process.
const eventsChannel = "remedian:events"

// Client wraps Redis operations for the ingestion fast path.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func seenKey(runID string) string {
	return fmt.Sprintf("runs:seen:%s", runID)
}

// MarkRunSeen records a run id in the ingestion dedup window. Returns true
// when this is the first sighting within the window. This is a fast-path
// optimization only; the storage uniqueness constraint remains the
// authoritative dedup enforcer.
func (c *Client) MarkRunSeen(ctx context.Context, runID string, ttl time.Duration) (bool, error) {
	first, err := c.rdb.SetNX(ctx, seenKey(runID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return first, nil
}

// Publish broadcasts a ticket lifecycle event to live observers.
// Best effort: callers log failures and continue.
func (c *Client) Publish(ctx context.Context, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := c.rdb.Publish(ctx, eventsChannel, data).Err(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	return nil
}
