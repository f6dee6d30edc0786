package game

import (
	"time"

	"github.com/jason-s-yu/dutch/engine"
)

// Scheduler runs f once after d. The returned cancel reports whether it
// stopped f from running.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func() bool)
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// maxTimeoutSteps bounds the actions one turn timeout may auto-play: every
// seat's initial peek, or a draw, a play and a skipped power.
const maxTimeoutSteps = engine.MaxPlayers

// armWindow schedules expiry of window id. Assumes the lock is held.
func (t *Table) armWindow(id uint64) {
	t.stopWindow()
	if t.windowDuration <= 0 {
		return
	}
	t.windowCancel = t.sched.AfterFunc(t.windowDuration, func() { t.onWindowTimeout(id) })
	t.log.WithField("window_id", id).Debug("same-rank window armed")
}

func (t *Table) stopWindow() {
	if t.windowCancel != nil {
		t.windowCancel()
		t.windowCancel = nil
	}
}

// armTurn restarts the turn timer. Callbacks from earlier arms see a stale
// generation and do nothing. Assumes the lock is held.
func (t *Table) armTurn() {
	t.turnGen++
	if t.turnCancel != nil {
		t.turnCancel()
		t.turnCancel = nil
	}
	if t.turnDuration <= 0 {
		return
	}
	gen := t.turnGen
	t.turnCancel = t.sched.AfterFunc(t.turnDuration, func() { t.onTurnTimeout(gen) })
}

func (t *Table) stopTimers() {
	t.stopWindow()
	t.turnGen++
	if t.turnCancel != nil {
		t.turnCancel()
		t.turnCancel = nil
	}
}

func (t *Table) onWindowTimeout(id uint64) {
	t.dispatch(func() {
		if t.closed || t.state.Window.ID != id {
			return
		}
		t.windowCancel = nil
		t.log.WithField("window_id", id).Debug("same-rank window expired")
		_, _ = t.applyLocked(engine.SystemActor, engine.SameRankWindowExpired{WindowID: id})
	})
}

func (t *Table) onTurnTimeout(gen uint64) {
	t.dispatch(func() {
		if t.closed || gen != t.turnGen {
			return
		}
		t.turnCancel = nil
		t.log.WithField("phase", t.state.Phase.String()).Info("turn timer expired; auto-playing")
		for i := 0; i < maxTimeoutSteps && gen == t.turnGen; i++ {
			actor, a := t.timeoutAction()
			if a == nil {
				return
			}
			if _, err := t.applyLocked(actor, a); err != nil {
				t.log.WithError(err).Warn("auto-play rejected")
				return
			}
		}
	})
}

// timeoutAction picks the move made for a player who ran out of time: the
// first slots for a missed peek, a deck draw (the discard if the deck cannot
// be drawn) played straight to the discard, a declined power, and the
// opener's advance for a window no timer will close. With nothing drawable
// the match is ended. Assumes the lock is held.
func (t *Table) timeoutAction() (engine.PlayerID, engine.Action) {
	g := &t.state
	switch g.Phase {
	case engine.PhaseInitialPeek:
		for _, p := range g.Players {
			if !p.Peeked {
				idx := make([]int, g.Rules.InitialPeekCount)
				for i := range idx {
					idx[i] = i
				}
				return p.ID, engine.PeekInitial{Indices: idx}
			}
		}
	case engine.PhaseDrawing:
		cur := g.CurrentPlayer().ID
		for _, src := range []engine.DrawSource{engine.FromDeck, engine.FromDiscard} {
			if a := (engine.Draw{Source: src}); engine.Validate(g, cur, a) == nil {
				return cur, a
			}
		}
		return engine.SystemActor, engine.ForceEnd{}
	case engine.PhasePlacingDrawnCard:
		return g.CurrentPlayer().ID, engine.PlaceDrawnCard{Mode: engine.PlacePlay}
	case engine.PhasePeekPower, engine.PhaseSwapPower:
		return g.Pending.Invoker, engine.SkipPower{}
	case engine.PhaseSameRankWindow:
		if t.windowCancel == nil {
			return g.Window.OpenedBy, engine.AdvanceSameRankWindow{}
		}
	}
	return engine.SystemActor, nil
}
