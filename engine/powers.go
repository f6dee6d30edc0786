package engine

// powerUsable reports whether power has any legal target. A power with none
// fizzles and the play is treated as ordinary.
func (g *GameState) powerUsable(power Power) bool {
	n := 0
	for i := range g.Players {
		p := &g.Players[i]
		if power == PowerSwap && g.Rules.LockCallerHand && p.HasCalledFinalRound {
			continue
		}
		n += p.Hand.CardCount()
	}
	switch power {
	case PowerPeek:
		return n >= 1
	case PowerSwap:
		return n >= 2
	}
	return false
}

// resolvePeek shows the invoker one card, then opens the same-rank window.
func (g *GameState) resolvePeek(act InvokePeek) []Event {
	invoker := g.Pending.Invoker
	tp := g.Player(act.Target)
	g.Pending = PendingPower{}
	events := []Event{{
		Kind:   EventPowerResolved,
		Player: invoker,
		Power:  PowerPeek,
		Cards:  []Card{tp.Hand[act.Index].Card},
		Slots:  []SlotRef{{Player: act.Target, Index: act.Index}},
		Reveal: VisibleActor,
	}}
	return append(events, g.openWindow(invoker)...)
}

// resolveSwap exchanges two slots without revealing either card. A swap ends
// the turn with no same-rank window.
func (g *GameState) resolveSwap(act InvokeSwap) ([]Event, error) {
	invoker := g.Pending.Invoker
	a, b := g.Player(act.First), g.Player(act.Second)
	cb := b.Hand[act.SecondIndex].Card
	ca, err := a.Hand.Replace(act.FirstIndex, cb)
	if err != nil {
		return nil, err
	}
	if _, err := b.Hand.Replace(act.SecondIndex, ca); err != nil {
		return nil, err
	}
	g.Pending = PendingPower{}

	events := []Event{{
		Kind:   EventPowerResolved,
		Player: invoker,
		Power:  PowerSwap,
		Cards:  []Card{ca, cb},
		Slots: []SlotRef{
			{Player: act.First, Index: act.FirstIndex},
			{Player: act.Second, Index: act.SecondIndex},
		},
		Reveal: VisibleNone,
	}}
	return append(events, g.advanceTurn()...), nil
}

// skipPower declines the pending power. A skipped peek still opens the
// window; a skipped swap ends the turn as a swap would.
func (g *GameState) skipPower() []Event {
	pending := g.Pending
	g.Pending = PendingPower{}
	events := []Event{{
		Kind:   EventPowerResolved,
		Player: pending.Invoker,
		Power:  pending.Power,
		Detail: "skipped",
	}}
	if pending.Power == PowerPeek {
		return append(events, g.openWindow(pending.Invoker)...)
	}
	return append(events, g.advanceTurn()...)
}
