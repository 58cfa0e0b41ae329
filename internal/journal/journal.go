// internal/journal/journal.go
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the journal pushes session events onto.
// An offline consumer (analytics, replay tooling) drains it independently.
var DefaultQueueName = "arena_events"

// Record is one journaled protocol event.
type Record struct {
	Event        string      `json:"event"`
	ConnectionID string      `json:"connection_id"`
	GameID       string      `json:"game_id,omitempty"`
	Payload      interface{} `json:"payload,omitempty"`
	Timestamp    int64       `json:"timestamp"`
}

// Journal is a write-behind event log on a Redis list. A nil *Journal is a
// valid no-op journal, so callers never branch on whether journaling is
// configured.
type Journal struct {
	rdb   *redis.Client
	queue string
}

// Connect builds the Redis client from REDIS_ADDR / REDIS_DB and pings it.
// Unlike the durable store, an unreachable journal is not fatal to the
// caller; it returns the error and lets main decide.
func Connect(ctx context.Context) (*Journal, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Journal{
		rdb:   rdb,
		queue: getEnv("JOURNAL_QUEUE_NAME", DefaultQueueName),
	}, nil
}

// Publish serializes the record and pushes it to the journal queue. The
// timestamp is stamped here if the caller left it zero.
func (j *Journal) Publish(ctx context.Context, rec Record) error {
	if j == nil {
		return nil
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal journal record: %w", err)
	}
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", j.queue, err)
	}
	return nil
}

// Close releases the Redis client.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.rdb.Close()
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
