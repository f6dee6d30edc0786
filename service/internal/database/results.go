// Package database persists settled games to postgres.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/dutch/engine"
)

// ErrResultNotFound is returned by LoadResult for an unknown game.
var ErrResultNotFound = errors.New("game result not found")

const schema = `
CREATE TABLE IF NOT EXISTS game_results (
	game_id    UUID PRIMARY KEY,
	reason     TEXT        NOT NULL,
	draw       BOOLEAN     NOT NULL,
	winners    JSONB       NOT NULL,
	scores     JSONB       NOT NULL,
	turns      INTEGER     NOT NULL,
	seed       BIGINT      NOT NULL,
	ended_at   TIMESTAMPTZ NOT NULL
)`

// GameRecord is one settled game as stored.
type GameRecord struct {
	GameID  uuid.UUID
	Result  engine.Result
	Turns   int
	Seed    uint64
	EndedAt time.Time
}

// Connect opens a pgx pool and checks the server is reachable.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// ResultStore reads and writes game_results.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// Migrate creates the results table if it does not exist.
func (s *ResultStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate game_results: %w", err)
	}
	return nil
}

// SaveResult upserts rec. Saving the same game twice keeps the latest copy.
func (s *ResultStore) SaveResult(ctx context.Context, rec GameRecord) error {
	winners, err := json.Marshal(rec.Result.Winners)
	if err != nil {
		return fmt.Errorf("marshal winners: %w", err)
	}
	scores, err := json.Marshal(rec.Result.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO game_results (game_id, reason, draw, winners, scores, turns, seed, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_id) DO UPDATE SET
			reason = EXCLUDED.reason,
			draw = EXCLUDED.draw,
			winners = EXCLUDED.winners,
			scores = EXCLUDED.scores,
			turns = EXCLUDED.turns,
			seed = EXCLUDED.seed,
			ended_at = EXCLUDED.ended_at`,
		rec.GameID, rec.Result.Reason.String(), rec.Result.Draw, winners, scores, rec.Turns, int64(rec.Seed), rec.EndedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save result for game %s: %w", rec.GameID, err)
	}
	return nil
}

// LoadResult returns the stored record for gameID.
func (s *ResultStore) LoadResult(ctx context.Context, gameID uuid.UUID) (GameRecord, error) {
	var (
		rec     GameRecord
		reason  string
		winners []byte
		scores  []byte
		seed    int64
	)
	err := s.pool.QueryRow(ctx, `
		SELECT game_id, reason, draw, winners, scores, turns, seed, ended_at
		FROM game_results WHERE game_id = $1`, gameID,
	).Scan(&rec.GameID, &reason, &rec.Result.Draw, &winners, &scores, &rec.Turns, &seed, &rec.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return GameRecord{}, fmt.Errorf("%w: %s", ErrResultNotFound, gameID)
	}
	if err != nil {
		return GameRecord{}, fmt.Errorf("load result for game %s: %w", gameID, err)
	}
	if rec.Result.Reason, err = ParseEndReason(reason); err != nil {
		return GameRecord{}, err
	}
	if err := json.Unmarshal(winners, &rec.Result.Winners); err != nil {
		return GameRecord{}, fmt.Errorf("decode winners: %w", err)
	}
	if err := json.Unmarshal(scores, &rec.Result.Scores); err != nil {
		return GameRecord{}, fmt.Errorf("decode scores: %w", err)
	}
	rec.Seed = uint64(seed)
	return rec, nil
}

// ParseEndReason maps a stored reason back to its engine value.
func ParseEndReason(s string) (engine.EndReason, error) {
	for r := engine.EndFinalRound; r <= engine.EndForced; r++ {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown end reason %q", s)
}
