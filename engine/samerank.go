package engine

// openWindow starts a same-rank window keyed to the discard top. Every
// player may claim until the opener advances or the host reports expiry.
func (g *GameState) openWindow(opener PlayerID) []Event {
	top, _ := g.DiscardTop()
	g.WindowSeq++
	g.Window = SameRankWindow{ID: g.WindowSeq, OpenedBy: opener, Rank: top.Rank}
	g.Pending = PendingPower{}
	g.Phase = PhaseSameRankWindow
	for i := range g.Players {
		g.Players[i].Status = StatusSameRankWindow
	}
	return []Event{{
		Kind:     EventSameRankWindowOpened,
		Player:   opener,
		Rank:     top.Rank,
		Cards:    []Card{top},
		Reveal:   VisiblePublic,
		WindowID: g.Window.ID,
	}}
}

// claimSameRank plays a card from the claimant's hand against the discard
// top. A match is collected (or discarded); a mismatch stays in hand and
// costs PenaltyDrawCount face-down cards.
func (g *GameState) claimSameRank(actor PlayerID, act ClaimSameRank) ([]Event, error) {
	p := g.Player(actor)
	idx, err := p.Hand.FindByCardID(act.CardID)
	if err != nil {
		return nil, err
	}
	card := p.Hand[idx].Card
	top, _ := g.DiscardTop()
	slot := []SlotRef{{Player: actor, Index: idx}}

	if card.Rank != top.Rank {
		events := []Event{{
			Kind:     EventSameRankClaimPenalized,
			Player:   actor,
			Cards:    []Card{card},
			Slots:    slot,
			Reveal:   VisiblePublic,
			Rank:     top.Rank,
			WindowID: g.Window.ID,
			Count:    g.Rules.PenaltyDrawCount,
		}}
		for i := 0; i < g.Rules.PenaltyDrawCount; i++ {
			c, drawn, err := g.drawFromDeck()
			if err != nil {
				return nil, err
			}
			events = append(events, drawn...)
			at := p.Hand.Append(c)
			events = append(events, Event{
				Kind:   EventCardDrawn,
				Player: actor,
				Cards:  []Card{c},
				Slots:  []SlotRef{{Player: actor, Index: at}},
				Reveal: VisibleNone,
				Source: FromDeck,
				Detail: "penalty",
			})
		}
		return events, nil
	}

	if _, err := p.Hand.RemoveAt(idx); err != nil {
		return nil, err
	}
	if g.Rules.CollectSameRank {
		p.Collections[card.Rank] = append(p.Collections[card.Rank], card)
	} else {
		g.DiscardPile.Push(card)
	}
	events := []Event{{
		Kind:     EventSameRankClaimAccepted,
		Player:   actor,
		Cards:    []Card{card},
		Slots:    slot,
		Reveal:   VisiblePublic,
		Rank:     card.Rank,
		WindowID: g.Window.ID,
	}}
	if p.Hand.IsEmpty() {
		return append(events, g.endGame(EndEmptyHand, actor)...), nil
	}
	return events, nil
}

// closeWindow ends the open window and passes the turn on.
func (g *GameState) closeWindow(how string) []Event {
	ev := Event{
		Kind:     EventSameRankWindowClosed,
		Player:   g.Window.OpenedBy,
		Rank:     g.Window.Rank,
		WindowID: g.Window.ID,
		Detail:   how,
	}
	g.Window = SameRankWindow{}
	return append([]Event{ev}, g.advanceTurn()...)
}
