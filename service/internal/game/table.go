// Package game hosts live Dutch matches. A Table wraps one engine.GameState,
// serialises every input through a mutex, fans events out to connected
// players and owns the timers the engine leaves to its host.
package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/dutch/engine"
)

var (
	ErrNotStarted     = errors.New("table not started")
	ErrAlreadyStarted = errors.New("table already started")
	ErrTableClosed    = errors.New("table closed")
)

// OnGameEndFunc is called once, outside the table lock, when a match settles.
type OnGameEndFunc func(gameID uuid.UUID, res engine.Result)

// Options configures a Table. Zero durations disable the matching timer.
type Options struct {
	WindowDuration time.Duration
	TurnDuration   time.Duration
	Scheduler      Scheduler // defaults to the wall clock
	Logger         logrus.FieldLogger
	History        ActionLog  // optional
	Results        ResultSink // optional
}

// Table is one running match.
type Table struct {
	ID uuid.UUID

	// Callbacks run with the table lock held and must not call back into
	// the table.
	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID engine.PlayerID, ev GameEvent)
	OnGameEnd           OnGameEndFunc

	mu      sync.Mutex
	state   engine.GameState
	opening []engine.Event
	seed    uint64
	started bool
	closed  bool

	log     logrus.FieldLogger
	sched   Scheduler
	history ActionLog
	results ResultSink

	windowDuration time.Duration
	turnDuration   time.Duration
	windowCancel   func() bool
	turnCancel     func() bool
	turnGen        uint64 // bumped whenever the turn timer is re-armed

	seq         uint64
	actionIndex int
	pendingEnd  *engine.Result
	lastPublish chan struct{}
	wg          sync.WaitGroup // async history and result writes
}

// NewTable deals a new match. Nothing is broadcast until Start.
func NewTable(setup engine.Setup, opts Options) (*Table, error) {
	state, opening, err := engine.NewGame(setup)
	if err != nil {
		return nil, err
	}
	t := &Table{
		ID:             uuid.New(),
		state:          state,
		opening:        opening,
		seed:           setup.Seed,
		sched:          opts.Scheduler,
		history:        opts.History,
		results:        opts.Results,
		windowDuration: opts.WindowDuration,
		turnDuration:   opts.TurnDuration,
	}
	if t.sched == nil {
		t.sched = wallClock{}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	t.log = log.WithField("game_id", t.ID)
	return t, nil
}

// Start announces the match and arms the first timers.
func (t *Table) Start() error {
	var err error
	t.dispatch(func() {
		switch {
		case t.closed:
			err = ErrTableClosed
			return
		case t.started:
			err = ErrAlreadyStarted
			return
		}
		t.started = true

		players := make([]string, len(t.state.Players))
		for i, p := range t.state.Players {
			players[i] = string(p.ID)
		}
		t.logAction(engine.SystemActor, "game_start", map[string]any{
			"seed":    t.seed,
			"players": players,
			"rules":   t.state.Rules,
		})
		t.log.WithField("players", len(players)).Info("game started")

		t.fanOut(t.opening)
		if t.state.Phase == engine.PhaseInitialPeek {
			t.armTurn()
		}
		t.react(t.opening)
		t.opening = nil
	})
	return err
}

// Submit applies one action. Rejections come back as the engine's
// ActionRejected event together with its error; only the actor is told.
func (t *Table) Submit(actor engine.PlayerID, a engine.Action) (events []engine.Event, err error) {
	t.dispatch(func() {
		events, err = t.applyLocked(actor, a)
	})
	return events, err
}

// dispatch runs fn under the lock, then delivers a pending game-end notice.
func (t *Table) dispatch(fn func()) {
	t.mu.Lock()
	fn()
	res := t.pendingEnd
	t.pendingEnd = nil
	t.mu.Unlock()

	if res != nil && t.OnGameEnd != nil {
		t.OnGameEnd(t.ID, *res)
	}
}

// applyLocked assumes the lock is held.
func (t *Table) applyLocked(actor engine.PlayerID, a engine.Action) ([]engine.Event, error) {
	if t.closed {
		return nil, ErrTableClosed
	}
	if !t.started {
		return nil, ErrNotStarted
	}

	events, err := t.state.Apply(actor, a)
	entry := t.log.WithField("player_id", actor)
	if a != nil {
		entry = entry.WithField("action", a.Kind().String())
	}
	if err != nil {
		entry.WithField("reason", engine.ReasonOf(err).String()).Info("action rejected")
	} else {
		entry.WithField("events", len(events)).Debug("action applied")
	}

	t.logSubmitted(actor, a, events, err)
	t.fanOut(events)
	if err == nil {
		t.react(events)
	}
	return events, err
}

// react re-arms timers and finalises the match from applied events.
// Assumes the lock is held.
func (t *Table) react(events []engine.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case engine.EventTurnStarted:
			t.armTurn()
		case engine.EventSameRankWindowOpened:
			t.armWindow(ev.WindowID)
			if t.windowDuration <= 0 {
				// Without a window timer the turn timer bounds the window.
				t.armTurn()
			}
		case engine.EventSameRankWindowClosed:
			t.stopWindow()
		case engine.EventGameEnded:
			t.stopTimers()
			t.finish()
		}
	}
}

// finish records the settled result. Assumes the lock is held.
func (t *Table) finish() {
	if t.state.Result == nil {
		return
	}
	res := *t.state.Result
	t.pendingEnd = &res

	t.log.WithFields(logrus.Fields{
		"reason":  res.Reason.String(),
		"winners": res.Winners,
		"draw":    res.Draw,
		"turns":   t.state.TurnNumber,
	}).Info("game ended")
	t.logAction(engine.SystemActor, "game_end", map[string]any{
		"reason":  res.Reason.String(),
		"winners": res.Winners,
		"draw":    res.Draw,
		"scores":  res.Scores,
	})
	t.persistResult(res)
}

// Sync returns the state as viewer may see it.
func (t *Table) Sync(viewer engine.PlayerID) engine.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.ViewFor(viewer)
}

// SendSync pushes a private_sync_state event to viewer.
func (t *Table) SendSync(viewer engine.PlayerID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	view := t.state.ViewFor(viewer)
	t.seq++
	t.toPlayer(viewer, GameEvent{Type: EventPrivateSyncState, GameID: t.ID, Seq: t.seq, State: &view})
}

// State returns a deep copy of the authoritative state.
func (t *Table) State() engine.GameState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// LegalActions lists what player may submit right now.
func (t *Table) LegalActions(player engine.PlayerID) []engine.Action {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.LegalActions(player)
}

// Close stops the timers, rejects further input and waits for pending
// history and result writes.
func (t *Table) Close() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		t.stopTimers()
	}
	t.mu.Unlock()
	t.wg.Wait()
}
