package engine

import "fmt"

// Apply validates a and, if it is legal, applies it. The returned events
// describe the transition in order. A rejected action leaves g untouched and
// yields a single EventActionRejected along with the typed error.
func (g *GameState) Apply(actor PlayerID, a Action) ([]Event, error) {
	if err := Validate(g, actor, a); err != nil {
		return []Event{rejectedEvent(actor, a, err)}, err
	}
	snap := g.Save()
	events, err := g.apply(actor, a)
	if err != nil {
		g.Restore(snap)
		return []Event{rejectedEvent(actor, a, err)}, err
	}
	return events, nil
}

// apply performs an already validated action on g.
func (g *GameState) apply(actor PlayerID, a Action) ([]Event, error) {
	switch act := a.(type) {
	case PeekInitial:
		return g.applyPeekInitial(actor, act), nil
	case Draw:
		return g.applyDraw(act)
	case PlayFromHand:
		p := g.CurrentPlayer()
		idx, err := p.Hand.FindByCardID(act.CardID)
		if err != nil {
			return nil, err
		}
		return g.replaceSlot(idx)
	case PlaceDrawnCard:
		if act.Mode == PlaceReplace {
			return g.replaceSlot(act.Index)
		}
		return g.playHeld(), nil
	case ClaimSameRank:
		return g.claimSameRank(actor, act)
	case AdvanceSameRankWindow:
		return g.closeWindow("advanced"), nil
	case SameRankWindowExpired:
		return g.closeWindow("expired"), nil
	case InvokePeek:
		return g.resolvePeek(act), nil
	case InvokeSwap:
		return g.resolveSwap(act)
	case SkipPower:
		return g.skipPower(), nil
	case CallFinalRound:
		return g.callFinalRound(actor), nil
	case ForceEnd:
		return g.endGame(EndForced, SystemActor), nil
	}
	return nil, fmt.Errorf("%w: unhandled action %T", ErrWrongPhase, a)
}

func (g *GameState) applyPeekInitial(actor PlayerID, act PeekInitial) []Event {
	p := g.Player(actor)
	p.Peeked = true
	p.Status = StatusWaiting
	p.Revealed = append([]int(nil), act.Indices...)

	ev := Event{Kind: EventInitialCardsRevealed, Player: actor, Reveal: VisibleActor}
	for _, i := range act.Indices {
		ev.Cards = append(ev.Cards, p.Hand[i].Card)
		ev.Slots = append(ev.Slots, SlotRef{Player: actor, Index: i})
	}
	events := []Event{ev}

	for i := range g.Players {
		if !g.Players[i].Peeked {
			return events
		}
	}
	for i := range g.Players {
		g.Players[i].Revealed = nil
	}
	return append(events, g.beginTurn(0)...)
}

// beginTurn hands the turn to seat idx.
func (g *GameState) beginTurn(idx int) []Event {
	g.CurrentPlayerIndex = idx
	g.Phase = PhaseDrawing
	g.Window = SameRankWindow{}
	g.Pending = PendingPower{}
	for i := range g.Players {
		g.Players[i].Status = StatusWaiting
	}
	g.Players[idx].Status = StatusCurrentTurn
	return []Event{{Kind: EventTurnStarted, Player: g.Players[idx].ID, Count: g.TurnNumber}}
}

// advanceTurn ends the current turn and starts the next one, or ends the game
// when the final round has come back to its caller or the turn limit is hit.
func (g *GameState) advanceTurn() []Event {
	g.TurnNumber++
	if limit := g.Rules.MaxGameTurns; limit > 0 && g.TurnNumber >= limit {
		return g.endGame(EndMaxTurns, SystemActor)
	}
	next := g.NextPlayerIndex(g.CurrentPlayerIndex)
	if g.FinalRoundActive && g.Players[next].ID == g.FinalRoundCalledBy {
		return g.endGame(EndFinalRound, SystemActor)
	}
	return g.beginTurn(next)
}

// drawFromDeck takes the top deck card, reshuffling the discard pile in when
// the deck is exhausted.
func (g *GameState) drawFromDeck() (Card, []Event, error) {
	var events []Event
	if g.DrawPile.Len() == 0 {
		if err := Reshuffle(&g.DrawPile, &g.DiscardPile, &g.RNG); err != nil {
			return Card{}, nil, fmt.Errorf("%w: nothing left to reshuffle", ErrPileEmpty)
		}
		events = append(events, Event{Kind: EventDeckReshuffled, Count: g.DrawPile.Len()})
	}
	c, err := g.DrawPile.DrawTop()
	if err != nil {
		return Card{}, nil, err
	}
	return c, events, nil
}

func (g *GameState) applyDraw(act Draw) ([]Event, error) {
	p := g.CurrentPlayer()
	var (
		c      Card
		events []Event
		err    error
	)
	reveal := VisibleActor
	if act.Source == FromDiscard {
		c, err = g.DiscardPile.DrawTop()
		reveal = VisiblePublic
	} else {
		c, events, err = g.drawFromDeck()
	}
	if err != nil {
		return nil, err
	}

	p.Held = &c
	p.HeldFrom = act.Source
	p.Status = StatusPlacingDrawnCard
	g.Phase = PhasePlacingDrawnCard
	return append(events, Event{
		Kind:   EventCardDrawn,
		Player: p.ID,
		Cards:  []Card{c},
		Reveal: reveal,
		Source: act.Source,
	}), nil
}

// replaceSlot plays the hand card at idx and puts the held card in its place.
func (g *GameState) replaceSlot(idx int) ([]Event, error) {
	p := g.CurrentPlayer()
	held, from := *p.Held, p.HeldFrom
	played, err := p.Hand.Replace(idx, held)
	if err != nil {
		return nil, err
	}
	p.Held = nil
	g.DiscardPile.Push(played)

	placed := VisibleNone
	if from == FromDiscard {
		placed = VisiblePublic
	}
	slot := []SlotRef{{Player: p.ID, Index: idx}}
	events := []Event{
		{Kind: EventCardPlayed, Player: p.ID, Cards: []Card{played}, Slots: slot, Reveal: VisiblePublic},
		{Kind: EventCardPlaced, Player: p.ID, Cards: []Card{held}, Slots: slot, Reveal: placed, Source: from},
	}
	return append(events, g.afterPlay(played, false, from)...), nil
}

// playHeld discards the held card directly.
func (g *GameState) playHeld() []Event {
	p := g.CurrentPlayer()
	held, from := *p.Held, p.HeldFrom
	p.Held = nil
	g.DiscardPile.Push(held)

	events := []Event{{Kind: EventCardPlayed, Player: p.ID, Cards: []Card{held}, Reveal: VisiblePublic, Source: from}}
	return append(events, g.afterPlay(held, true, from)...)
}

// afterPlay routes the turn once a card lands on the discard pile. A usable
// Queen or Jack grants its power; any other play opens the same-rank window.
func (g *GameState) afterPlay(c Card, drawn bool, from DrawSource) []Event {
	p := g.CurrentPlayer()
	power := c.Power()
	granted := power != PowerNone &&
		!(drawn && g.Rules.PowersRequireDeckDraw && from != FromDeck) &&
		g.powerUsable(power)

	if !granted {
		return g.openWindow(p.ID)
	}

	g.Pending = PendingPower{Power: power, Invoker: p.ID}
	p.Status = StatusUsingPower
	if power == PowerPeek {
		g.Phase = PhasePeekPower
	} else {
		g.Phase = PhaseSwapPower
	}
	return []Event{{Kind: EventPowerAvailable, Player: p.ID, Power: power, Rank: c.Rank}}
}

func (g *GameState) callFinalRound(actor PlayerID) []Event {
	p := g.Player(actor)
	p.HasCalledFinalRound = true
	g.FinalRoundActive = true
	g.FinalRoundCalledBy = actor
	events := []Event{{Kind: EventFinalRoundCalled, Player: actor, Count: g.Round()}}
	return append(events, g.advanceTurn()...)
}

// endGame settles the match. emptied names the player whose hand ran out
// when reason is EndEmptyHand.
func (g *GameState) endGame(reason EndReason, emptied PlayerID) []Event {
	for i := range g.Players {
		p := &g.Players[i]
		if p.Held != nil {
			g.DiscardPile.Push(*p.Held)
			p.Held = nil
		}
		p.Status = StatusFinished
		p.Revealed = nil
	}
	g.Window = SameRankWindow{}
	g.Pending = PendingPower{}
	g.Phase = PhaseEnded

	res := g.settle(reason, emptied)
	g.Result = &res
	out := res.clone()
	return []Event{{Kind: EventGameEnded, Player: emptied, Result: &out, Detail: reason.String()}}
}
