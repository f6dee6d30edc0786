package game

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/dutch/engine"
	"github.com/jason-s-yu/dutch/service/internal/cache"
	"github.com/jason-s-yu/dutch/service/internal/database"
)

// publishTimeout bounds each asynchronous history or result write.
const publishTimeout = 2 * time.Second

// ActionLog receives the ordered action history; *cache.Historian is one.
type ActionLog interface {
	Publish(ctx context.Context, rec cache.GameActionRecord) error
}

// ResultSink stores settled games; *database.ResultStore is one.
type ResultSink interface {
	SaveResult(ctx context.Context, rec database.GameRecord) error
}

// logSubmitted records one submitted action and its outcome.
// Assumes the lock is held.
func (t *Table) logSubmitted(actor engine.PlayerID, a engine.Action, events []engine.Event, err error) {
	if a == nil {
		return
	}
	kinds := make([]string, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind.String()
	}
	payload := map[string]any{
		"action": a,
		"turn":   t.state.TurnNumber,
		"phase":  t.state.Phase.String(),
		"events": kinds,
	}
	if err != nil {
		payload["rejected"] = engine.ReasonOf(err).String()
	}
	t.logAction(actor, a.Kind().String(), payload)
}

// logAction sends a record to the history log without blocking the table.
// Assumes the lock is held.
func (t *Table) logAction(actor engine.PlayerID, actionType string, payload map[string]any) {
	t.actionIndex++
	if t.history == nil {
		return
	}
	rec := cache.GameActionRecord{
		GameID:      t.ID,
		ActionIndex: t.actionIndex,
		Actor:       string(actor),
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}

	// Each publish waits for the previous one so records land in
	// ActionIndex order.
	prev := t.lastPublish
	done := make(chan struct{})
	t.lastPublish = done

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := t.history.Publish(ctx, rec); err != nil {
			t.log.WithFields(logrus.Fields{
				"action_index": rec.ActionIndex,
				"action":       rec.ActionType,
			}).WithError(err).Error("publish action failed")
		}
	}()
}

// persistResult saves the settled game in the background.
// Assumes the lock is held.
func (t *Table) persistResult(res engine.Result) {
	if t.results == nil {
		return
	}
	rec := database.GameRecord{
		GameID:  t.ID,
		Result:  res,
		Turns:   t.state.TurnNumber,
		Seed:    t.seed,
		EndedAt: time.Now().UTC(),
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := t.results.SaveResult(ctx, rec); err != nil {
			t.log.WithError(err).Error("save result failed")
		}
	}()
}
