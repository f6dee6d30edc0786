// Package runner plays whole matches on a game.Table with scripted or random
// seats. It backs the simulator command and the soak tests.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/dutch/engine"
	"github.com/jason-s-yu/dutch/service/internal/game"
)

const defaultMaxActionsPerGame = 2048

var (
	ErrActionLimitExceeded = errors.New("action limit exceeded")
	ErrRunnerMisconfigured = errors.New("runner misconfigured")
	ErrContextCancelled    = errors.New("runner context cancelled")
	ErrInvalidGamesToRun   = errors.New("games to run must be greater than zero")
)

// ActionProvider picks the next move for one seat from its legal actions.
// A nil action passes; passing is only meaningful in a same-rank window.
type ActionProvider interface {
	NextAction(ctx context.Context, view engine.View, legal []engine.Action) (engine.Action, error)
}

type Config struct {
	Players           int
	Rules             engine.HouseRules
	MaxActionsPerGame int
	// Table carries the logger and history/result sinks. Its timers are
	// ignored: the runner expires windows itself.
	Table          game.Options
	OnGameComplete func(GameSummary)
}

type Runner struct {
	provider ActionProvider
	config   Config
}

// GameSummary describes one finished match.
type GameSummary struct {
	GameID        uuid.UUID
	Seed          uint64
	Result        engine.Result
	Turns         int
	ActionCount   int
	Rejections    int
	FallbackCount int
}

// Summary aggregates a batch.
type Summary struct {
	GamesCompleted  int                     `json:"games_completed"`
	TotalActions    int                     `json:"total_actions"`
	TotalRejections int                     `json:"total_rejections"`
	TotalFallbacks  int                     `json:"total_fallbacks"`
	ActionLimitHits int                     `json:"action_limit_hits"`
	Draws           int                     `json:"draws"`
	Wins            map[engine.PlayerID]int `json:"wins"`
	Reasons         map[string]int          `json:"reasons"`
}

func (s *Summary) add(gs GameSummary) {
	s.GamesCompleted++
	s.TotalActions += gs.ActionCount
	s.TotalRejections += gs.Rejections
	s.TotalFallbacks += gs.FallbackCount
	s.Reasons[gs.Result.Reason.String()]++
	if gs.Result.Draw {
		s.Draws++
	}
	for _, w := range gs.Result.Winners {
		s.Wins[w]++
	}
}

func New(provider ActionProvider, config Config) Runner {
	return Runner{provider: provider, config: config}
}

// SeatIDs names the seats of an n-player table.
func SeatIDs(n int) []engine.PlayerID {
	ids := make([]engine.PlayerID, n)
	for i := range ids {
		ids[i] = engine.PlayerID(fmt.Sprintf("p%d", i+1))
	}
	return ids
}

// RunGames plays n matches with seeds derived from seed. A match stopped at
// the action limit is force-ended, counted and the batch goes on.
func (r Runner) RunGames(ctx context.Context, n int, seed uint64) (Summary, error) {
	sum := Summary{Wins: make(map[engine.PlayerID]int), Reasons: make(map[string]int)}
	if n <= 0 {
		return sum, ErrInvalidGamesToRun
	}
	rng := engine.NewRNG(seed)
	for i := 0; i < n; i++ {
		gs, err := r.RunGame(ctx, rng.Uint64())
		if errors.Is(err, ErrActionLimitExceeded) {
			sum.ActionLimitHits++
			sum.add(gs)
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("game %d: %w", i+1, err)
		}
		sum.add(gs)
	}
	return sum, nil
}

// RunGame plays one match to its end.
func (r Runner) RunGame(ctx context.Context, seed uint64) (GameSummary, error) {
	var gs GameSummary
	if r.provider == nil || r.config.Players < engine.MinPlayers || r.config.Players > engine.MaxPlayers {
		return gs, ErrRunnerMisconfigured
	}
	maxActions := r.config.MaxActionsPerGame
	if maxActions <= 0 {
		maxActions = defaultMaxActionsPerGame
	}

	specs := make([]engine.PlayerSpec, r.config.Players)
	for i, id := range SeatIDs(r.config.Players) {
		specs[i] = engine.PlayerSpec{ID: id}
	}
	opts := r.config.Table
	opts.WindowDuration, opts.TurnDuration = 0, 0

	table, err := game.NewTable(engine.Setup{Players: specs, Rules: r.config.Rules, Seed: seed}, opts)
	if err != nil {
		return gs, err
	}
	defer table.Close()
	gs.GameID, gs.Seed = table.ID, seed
	if err := table.Start(); err != nil {
		return gs, err
	}

	for {
		state := table.State()
		if state.IsTerminal() {
			gs.Result = *state.Result
			gs.Turns = state.TurnNumber
			if r.config.OnGameComplete != nil {
				r.config.OnGameComplete(gs)
			}
			return gs, nil
		}
		if err := checkContext(ctx); err != nil {
			return gs, err
		}
		if gs.ActionCount >= maxActions {
			if _, err := table.Submit(engine.SystemActor, engine.ForceEnd{}); err != nil {
				return gs, err
			}
			ended := table.State()
			gs.Result = *ended.Result
			gs.Turns = ended.TurnNumber
			return gs, fmt.Errorf("%w: applied %d actions (max %d)", ErrActionLimitExceeded, gs.ActionCount, maxActions)
		}

		if err := r.step(ctx, table, &state, &gs); err != nil {
			return gs, err
		}
		after := table.State()
		if err := after.CheckInvariants(); err != nil {
			return gs, fmt.Errorf("after action %d: %w", gs.ActionCount, err)
		}
	}
}

// step submits one action: a seat's move, the window expiry when every seat
// passes, or a forced end when the seat to move is stuck.
func (r Runner) step(ctx context.Context, table *game.Table, state *engine.GameState, gs *GameSummary) error {
	for _, id := range actingSeats(state) {
		legal := table.LegalActions(id)
		if len(legal) == 0 {
			continue
		}
		action, err := r.provider.NextAction(ctx, table.Sync(id), legal)
		if err != nil {
			if err := checkContext(ctx); err != nil {
				return err
			}
			return r.fallback(table, id, legal, gs)
		}
		if action == nil {
			if state.Phase == engine.PhaseSameRankWindow {
				continue
			}
			return r.fallback(table, id, legal, gs)
		}

		gs.ActionCount++
		if _, err := table.Submit(id, action); err != nil {
			gs.Rejections++
			return r.fallback(table, id, legal, gs)
		}
		return nil
	}

	gs.ActionCount++
	if state.Phase != engine.PhaseSameRankWindow {
		// Stalemate: the seat to move has nothing legal.
		gs.FallbackCount++
		_, err := table.Submit(engine.SystemActor, engine.ForceEnd{})
		return err
	}
	_, err := table.Submit(engine.SystemActor, engine.SameRankWindowExpired{WindowID: state.Window.ID})
	return err
}

// fallback plays the first legal action for id.
func (r Runner) fallback(table *game.Table, id engine.PlayerID, legal []engine.Action, gs *GameSummary) error {
	gs.ActionCount++
	gs.FallbackCount++
	if _, err := table.Submit(id, legal[0]); err != nil {
		return fmt.Errorf("apply fallback %s for %s: %w", legal[0].Kind(), id, err)
	}
	return nil
}

// actingSeats lists who may move, in the order they are asked.
func actingSeats(g *engine.GameState) []engine.PlayerID {
	switch g.Phase {
	case engine.PhaseInitialPeek:
		for _, p := range g.Players {
			if !p.Peeked {
				return []engine.PlayerID{p.ID}
			}
		}
		return nil
	case engine.PhasePeekPower, engine.PhaseSwapPower:
		return []engine.PlayerID{g.Pending.Invoker}
	case engine.PhaseSameRankWindow:
		ids := make([]engine.PlayerID, 0, len(g.Players))
		start := g.PlayerIndex(g.Window.OpenedBy)
		if start < 0 {
			start = g.CurrentPlayerIndex
		}
		for i := range g.Players {
			ids = append(ids, g.Players[(start+i)%len(g.Players)].ID)
		}
		return ids
	default:
		return []engine.PlayerID{g.CurrentPlayer().ID}
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
	default:
		return nil
	}
}
