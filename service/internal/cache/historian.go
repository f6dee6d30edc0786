// Package cache publishes game action records to redis for the historian.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// GameActionRecord is one entry in a game's action history.
type GameActionRecord struct {
	GameID      uuid.UUID      `json:"gameId"`
	ActionIndex int            `json:"actionIndex"`
	Actor       string         `json:"actor,omitempty"` // empty for host-originated records
	ActionType  string         `json:"actionType"`
	Payload     map[string]any `json:"payload,omitempty"`
	Timestamp   int64          `json:"timestamp"` // unix millis
}

// ActionsKey is the redis list holding a game's records in publish order.
func ActionsKey(gameID uuid.UUID) string {
	return fmt.Sprintf("dutch:game:%s:actions", gameID)
}

// Connect parses a redis URL and checks the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Historian appends action records to per-game redis lists.
type Historian struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewHistorian returns a historian writing through rdb. A positive ttl
// expires each game's list that long after its last record.
func NewHistorian(rdb redis.Cmdable, ttl time.Duration) *Historian {
	return &Historian{rdb: rdb, ttl: ttl}
}

// Publish appends rec to its game's list.
func (h *Historian) Publish(ctx context.Context, rec GameActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action %d: %w", rec.ActionIndex, err)
	}
	key := ActionsKey(rec.GameID)
	_, err = h.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		if h.ttl > 0 {
			pipe.Expire(ctx, key, h.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish action %d for game %s: %w", rec.ActionIndex, rec.GameID, err)
	}
	return nil
}

// History returns every record published for gameID, oldest first.
func (h *Historian) History(ctx context.Context, gameID uuid.UUID) ([]GameActionRecord, error) {
	raw, err := h.rdb.LRange(ctx, ActionsKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history for game %s: %w", gameID, err)
	}
	out := make([]GameActionRecord, 0, len(raw))
	for i, s := range raw {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decode record %d for game %s: %w", i, gameID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
