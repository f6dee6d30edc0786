package engine

// LegalActions returns every action player may submit in the current state.
// Host-only actions are not included. The order is stable for a given state.
func (g *GameState) LegalActions(player PlayerID) []Action {
	p := g.Player(player)
	if p == nil || g.IsTerminal() {
		return nil
	}

	var candidates []Action
	switch g.Phase {
	case PhaseInitialPeek:
		for _, idx := range combinations(occupiedSlots(p.Hand), g.Rules.InitialPeekCount) {
			candidates = append(candidates, PeekInitial{Indices: idx})
		}
	case PhaseDrawing:
		candidates = append(candidates, Draw{Source: FromDeck}, Draw{Source: FromDiscard}, CallFinalRound{})
	case PhasePlacingDrawnCard:
		candidates = append(candidates, PlaceDrawnCard{Mode: PlacePlay})
		for _, i := range occupiedSlots(p.Hand) {
			candidates = append(candidates, PlaceDrawnCard{Mode: PlaceReplace, Index: i})
		}
	case PhasePeekPower:
		for _, ref := range g.allSlots() {
			candidates = append(candidates, InvokePeek{Target: ref.Player, Index: ref.Index})
		}
		candidates = append(candidates, SkipPower{})
	case PhaseSwapPower:
		refs := g.allSlots()
		for i := range refs {
			for j := i + 1; j < len(refs); j++ {
				candidates = append(candidates, InvokeSwap{
					First: refs[i].Player, FirstIndex: refs[i].Index,
					Second: refs[j].Player, SecondIndex: refs[j].Index,
				})
			}
		}
		candidates = append(candidates, SkipPower{})
	case PhaseSameRankWindow:
		for _, i := range occupiedSlots(p.Hand) {
			candidates = append(candidates, ClaimSameRank{CardID: p.Hand[i].Card.ID})
		}
		candidates = append(candidates, AdvanceSameRankWindow{})
	}

	legal := candidates[:0]
	for _, a := range candidates {
		if Validate(g, player, a) == nil {
			legal = append(legal, a)
		}
	}
	return legal
}

func occupiedSlots(h Hand) []int {
	var out []int
	for i, s := range h {
		if s.Occupied {
			out = append(out, i)
		}
	}
	return out
}

func (g *GameState) allSlots() []SlotRef {
	var out []SlotRef
	for i := range g.Players {
		for _, j := range occupiedSlots(g.Players[i].Hand) {
			out = append(out, SlotRef{Player: g.Players[i].ID, Index: j})
		}
	}
	return out
}

// combinations returns every k-element subset of items, in lexicographic
// order.
func combinations(items []int, k int) [][]int {
	if k <= 0 || k > len(items) {
		return nil
	}
	var out [][]int
	cur := make([]int, 0, k)
	var rec func(start int)
	rec = func(start int) {
		if len(cur) == k {
			out = append(out, append([]int(nil), cur...))
			return
		}
		for i := start; i <= len(items)-(k-len(cur)); i++ {
			cur = append(cur, items[i])
			rec(i + 1)
			cur = cur[:len(cur)-1]
		}
	}
	rec(0)
	return out
}
