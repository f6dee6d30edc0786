package engine

// Validate checks a proposed action against the current state without
// mutating it. A nil result means Apply will accept the action.
func Validate(g *GameState, actor PlayerID, a Action) error {
	if a == nil {
		return reject(ErrWrongPhase, "nil action")
	}
	if g.IsTerminal() {
		return reject(ErrGameOver, "%s after game end", a.Kind())
	}

	switch act := a.(type) {
	case SameRankWindowExpired:
		if actor != SystemActor {
			return reject(ErrNotYourTurn, "window expiry is host-only")
		}
		if g.Phase != PhaseSameRankWindow || g.Window.ID != act.WindowID {
			return reject(ErrStaleWindow, "window %d (open: %d)", act.WindowID, g.Window.ID)
		}
		return nil
	case ForceEnd:
		if actor != SystemActor {
			return reject(ErrNotYourTurn, "forced end is host-only")
		}
		return nil
	}

	p := g.Player(actor)
	if p == nil {
		return reject(ErrUnknownPlayer, "%q", actor)
	}

	switch act := a.(type) {
	case PeekInitial:
		return validatePeekInitial(g, p, act)
	case Draw:
		return validateDraw(g, p, act)
	case PlayFromHand:
		if err := requireTurn(g, p, PhasePlacingDrawnCard); err != nil {
			return err
		}
		_, err := p.Hand.FindByCardID(act.CardID)
		return err
	case PlaceDrawnCard:
		return validatePlace(g, p, act)
	case ClaimSameRank:
		return validateClaim(g, p, act)
	case AdvanceSameRankWindow:
		if g.Phase != PhaseSameRankWindow {
			return reject(ErrWrongPhase, "no same-rank window open (phase %s)", g.Phase)
		}
		if g.Window.OpenedBy != p.ID {
			return reject(ErrNotYourTurn, "window opened by %q", g.Window.OpenedBy)
		}
		return nil
	case InvokePeek:
		if err := requirePower(g, p, PowerPeek); err != nil {
			return err
		}
		return validateSlot(g, act.Target, act.Index)
	case InvokeSwap:
		return validateSwap(g, p, act)
	case SkipPower:
		if g.Phase != PhasePeekPower && g.Phase != PhaseSwapPower {
			return reject(ErrWrongPhase, "no power pending (phase %s)", g.Phase)
		}
		if g.Pending.Invoker != p.ID {
			return reject(ErrNotYourTurn, "power belongs to %q", g.Pending.Invoker)
		}
		return nil
	case CallFinalRound:
		if g.FinalRoundCalledBy != "" {
			return reject(ErrDuplicateFinalRoundCall, "already called by %q", g.FinalRoundCalledBy)
		}
		if err := requireTurn(g, p, PhaseDrawing); err != nil {
			return err
		}
		if g.Round() < g.Rules.FinalRoundMinRound {
			return reject(ErrWrongPhase, "final round not allowed before round %d (round %d)", g.Rules.FinalRoundMinRound, g.Round())
		}
		return nil
	}
	return reject(ErrWrongPhase, "unhandled action %T", a)
}

// requireTurn checks the phase and that p is the current player.
func requireTurn(g *GameState, p *Player, phase Phase) error {
	if g.Phase != phase {
		return reject(ErrWrongPhase, "expected %s, phase is %s", phase, g.Phase)
	}
	if cur := g.CurrentPlayer(); cur == nil || cur.ID != p.ID {
		return reject(ErrNotYourTurn, "%q acted on another player's turn", p.ID)
	}
	return nil
}

// requirePower checks that power is the one the just-played card granted and
// that p invoked it.
func requirePower(g *GameState, p *Player, power Power) error {
	want := PhasePeekPower
	if power == PowerSwap {
		want = PhaseSwapPower
	}
	if g.Phase != want || g.Pending.Power != power {
		return reject(ErrInvalidPowerInvocation, "%s not available (phase %s)", power, g.Phase)
	}
	if g.Pending.Invoker != p.ID {
		return reject(ErrNotYourTurn, "power belongs to %q", g.Pending.Invoker)
	}
	if top, ok := g.DiscardTop(); !ok || top.Power() != power {
		return reject(ErrInvalidPowerInvocation, "discard top does not grant %s", power)
	}
	return nil
}

// validateSlot checks that target holds a card at index.
func validateSlot(g *GameState, target PlayerID, index int) error {
	tp := g.Player(target)
	if tp == nil {
		return reject(ErrInvalidTarget, "unknown player %q", target)
	}
	if index < 0 || index >= len(tp.Hand) {
		return reject(ErrInvalidTarget, "%q slot %d out of range (hand size %d)", target, index, len(tp.Hand))
	}
	if !tp.Hand[index].Occupied {
		return reject(ErrCardNotFound, "%q slot %d is empty", target, index)
	}
	return nil
}

func validatePeekInitial(g *GameState, p *Player, act PeekInitial) error {
	if g.Phase != PhaseInitialPeek {
		return reject(ErrWrongPhase, "initial peek is over (phase %s)", g.Phase)
	}
	if p.Peeked {
		return reject(ErrWrongPhase, "%q already peeked", p.ID)
	}
	if len(act.Indices) != g.Rules.InitialPeekCount {
		return reject(ErrInvalidTarget, "peek %d cards, want %d", len(act.Indices), g.Rules.InitialPeekCount)
	}
	seen := make(map[int]bool, len(act.Indices))
	for _, i := range act.Indices {
		if seen[i] {
			return reject(ErrInvalidTarget, "slot %d peeked twice", i)
		}
		seen[i] = true
		if err := validateSlot(g, p.ID, i); err != nil {
			return err
		}
	}
	return nil
}

func validateDraw(g *GameState, p *Player, act Draw) error {
	if err := requireTurn(g, p, PhaseDrawing); err != nil {
		return err
	}
	switch act.Source {
	case FromDeck:
		if g.DrawPile.Len() == 0 && g.DiscardPile.Len() <= 1 {
			return reject(ErrPileEmpty, "draw pile empty and discard pile holds %d", g.DiscardPile.Len())
		}
	case FromDiscard:
		if !g.Rules.AllowDrawFromDiscard {
			return reject(ErrRuleDisabled, "drawing from the discard pile")
		}
		if g.DiscardPile.Len() == 0 {
			return reject(ErrPileEmpty, "discard pile empty")
		}
	default:
		return reject(ErrInvalidTarget, "draw source %d", act.Source)
	}
	return nil
}

func validatePlace(g *GameState, p *Player, act PlaceDrawnCard) error {
	if err := requireTurn(g, p, PhasePlacingDrawnCard); err != nil {
		return err
	}
	if p.Held == nil {
		return reject(ErrCardNotFound, "%q holds no drawn card", p.ID)
	}
	switch act.Mode {
	case PlacePlay:
		return nil
	case PlaceReplace:
		return validateSlot(g, p.ID, act.Index)
	default:
		return reject(ErrInvalidTarget, "place mode %d", act.Mode)
	}
}

func validateClaim(g *GameState, p *Player, act ClaimSameRank) error {
	if g.Phase != PhaseSameRankWindow {
		return reject(ErrWrongPhase, "no same-rank window open (phase %s)", g.Phase)
	}
	if g.Rules.LockCallerHand && p.HasCalledFinalRound {
		return reject(ErrHandLocked, "%q called the final round", p.ID)
	}
	idx, err := p.Hand.FindByCardID(act.CardID)
	if err != nil {
		return err
	}
	top, ok := g.DiscardTop()
	if ok && p.Hand[idx].Card.Rank == top.Rank {
		return nil
	}
	if need := g.Rules.PenaltyDrawCount; need > 0 && g.drawableCards() < need {
		return reject(ErrPileEmpty, "penalty needs %d cards, %d available", need, g.drawableCards())
	}
	return nil
}

func validateSwap(g *GameState, p *Player, act InvokeSwap) error {
	if err := requirePower(g, p, PowerSwap); err != nil {
		return err
	}
	if err := validateSlot(g, act.First, act.FirstIndex); err != nil {
		return err
	}
	if err := validateSlot(g, act.Second, act.SecondIndex); err != nil {
		return err
	}
	if act.First == act.Second && act.FirstIndex == act.SecondIndex {
		return reject(ErrInvalidTarget, "swap of slot %d with itself", act.FirstIndex)
	}
	if g.Rules.LockCallerHand {
		for _, id := range []PlayerID{act.First, act.Second} {
			if id == g.FinalRoundCalledBy {
				return reject(ErrHandLocked, "%q called the final round", id)
			}
		}
	}
	return nil
}

// drawableCards is how many cards can still be drawn from the deck,
// counting what a reshuffle would recover.
func (g *GameState) drawableCards() int {
	n := g.DrawPile.Len()
	if d := g.DiscardPile.Len(); d > 1 {
		n += d - 1
	}
	return n
}
