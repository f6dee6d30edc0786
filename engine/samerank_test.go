package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTwoWindow has Alice draw 2S and play it, opening a window on Two.
// Alice holds 2H in slot 0.
func openTwoWindow(t *testing.T, rules HouseRules, rest string) *GameState {
	t.Helper()
	g := newStackedGame(t, rules, eightCards+" 2S "+rest)
	mustApply(t, g, alice, Draw{Source: FromDeck})
	mustApply(t, g, alice, PlaceDrawnCard{Mode: PlacePlay})
	require.Equal(t, PhaseSameRankWindow, g.Phase)
	require.Equal(t, RankTwo, g.Window.Rank)
	return g
}

func TestSameRankClaimAccepted(t *testing.T) {
	g := openTwoWindow(t, noPeekRules(), "")
	claimed := g.Players[0].Hand[0].Card

	events := mustApply(t, g, alice, ClaimSameRank{CardID: claimed.ID})
	require.Equal(t, []EventKind{EventSameRankClaimAccepted}, kinds(events))
	assert.Equal(t, "__ 4H 6H 8H", handString(g.Players[0].Hand))
	assert.Equal(t, []Card{claimed}, g.Players[0].Collections[RankTwo])
	assert.Equal(t, PhaseSameRankWindow, g.Phase, "window stays open after a claim")
}

func TestSameRankClaimToDiscard(t *testing.T) {
	rules := noPeekRules()
	rules.CollectSameRank = false
	g := openTwoWindow(t, rules, "")
	claimed := g.Players[0].Hand[0].Card

	mustApply(t, g, alice, ClaimSameRank{CardID: claimed.ID})
	top, _ := g.DiscardTop()
	assert.Equal(t, claimed.ID, top.ID)
	assert.Empty(t, g.Players[0].Collections[RankTwo])
}

func TestSameRankClaimPenalized(t *testing.T) {
	g := openTwoWindow(t, noPeekRules(), "9S")
	wrong := g.Players[1].Hand[0].Card // 3H

	events := mustApply(t, g, bob, ClaimSameRank{CardID: wrong.ID})
	require.Equal(t, []EventKind{EventSameRankClaimPenalized, EventCardDrawn}, kinds(events))
	assert.Equal(t, "3H 5H 7H 9H 9S", handString(g.Players[1].Hand))
	assert.Equal(t, []SlotRef{{Player: bob, Index: 4}}, events[1].Slots)
	assert.False(t, events[1].For(bob).Cards[0].Known, "penalty cards are face-down")
}

func TestSameRankClaimsFromSeveralPlayers(t *testing.T) {
	// alice: 2H 3H 4H 6H, bob: 7S 4S 5S 8S, carol: 9C 5C 6C TC.
	g := newStackedGame(t, noPeekRules(), "2H 7S 9C 3H 4S 5C 4H 5S 6C 6H 8S TC 7D KD", alice, bob, carol)
	mustApply(t, g, alice, Draw{Source: FromDeck})
	mustApply(t, g, alice, PlaceDrawnCard{Mode: PlacePlay})
	require.Equal(t, RankSeven, g.Window.Rank)
	id := g.Window.ID

	sevenS := g.Players[1].Hand[0].Card
	events := mustApply(t, g, bob, ClaimSameRank{CardID: sevenS.ID})
	require.Equal(t, []EventKind{EventSameRankClaimAccepted}, kinds(events))
	assert.Equal(t, []Card{sevenS}, g.Players[1].Collections[RankSeven])
	assert.Equal(t, "__ 4S 5S 8S", handString(g.Players[1].Hand))

	nineC := g.Players[2].Hand[0].Card
	events = mustApply(t, g, carol, ClaimSameRank{CardID: nineC.ID})
	require.Equal(t, []EventKind{EventSameRankClaimPenalized, EventCardDrawn}, kinds(events))
	assert.Equal(t, RankSeven, events[0].Rank, "judged against the current top")
	assert.Equal(t, "9C 5C 6C TC KD", handString(g.Players[2].Hand))
	idx, err := g.Players[2].Hand.FindByCardID(nineC.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	assert.Equal(t, PhaseSameRankWindow, g.Phase)
	assert.Equal(t, id, g.Window.ID)
}

func TestSameRankPenaltyReshufflesDiscard(t *testing.T) {
	rules := noPeekRules()
	rules.CollectSameRank = false
	g := openTwoWindow(t, rules, "")
	mustApply(t, g, alice, ClaimSameRank{CardID: g.Players[0].Hand[0].Card.ID})
	require.Equal(t, 0, g.DrawPile.Len())
	require.Equal(t, 2, g.DiscardPile.Len())

	events := mustApply(t, g, bob, ClaimSameRank{CardID: g.Players[1].Hand[0].Card.ID})
	require.Equal(t, []EventKind{EventSameRankClaimPenalized, EventDeckReshuffled, EventCardDrawn}, kinds(events))
	assert.Equal(t, 1, events[1].Count)
	assert.Equal(t, "3H 5H 7H 9H 2S", handString(g.Players[1].Hand))
	top, _ := g.DiscardTop()
	assert.Equal(t, "2H", top.String())
	assert.Equal(t, 1, g.DiscardPile.Len())
	assert.Equal(t, 0, g.DrawPile.Len())
	assert.Equal(t, PhaseSameRankWindow, g.Phase)
}

func TestSameRankPenaltyWithNoCards(t *testing.T) {
	g := openTwoWindow(t, noPeekRules(), "")
	require.Equal(t, 0, g.DrawPile.Len())
	require.Equal(t, 1, g.DiscardPile.Len())
	before := g.StateHash()

	_, err := g.Apply(bob, ClaimSameRank{CardID: g.Players[1].Hand[0].Card.ID})
	assert.ErrorIs(t, err, ErrPileEmpty)
	assert.Equal(t, before, g.StateHash())
}

func TestSameRankWindowClose(t *testing.T) {
	g := openTwoWindow(t, noPeekRules(), "KS")
	id := g.Window.ID

	_, err := g.Apply(bob, AdvanceSameRankWindow{})
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = g.Apply(bob, SameRankWindowExpired{WindowID: id})
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = g.Apply(SystemActor, SameRankWindowExpired{WindowID: id + 1})
	assert.ErrorIs(t, err, ErrStaleWindow)

	events := mustApply(t, g, SystemActor, SameRankWindowExpired{WindowID: id})
	assert.Equal(t, []EventKind{EventSameRankWindowClosed, EventTurnStarted}, kinds(events))
	assert.Equal(t, "expired", events[0].Detail)
	assert.Equal(t, bob, g.CurrentPlayer().ID)

	// A second expiry for the same window is stale.
	events, err = g.Apply(SystemActor, SameRankWindowExpired{WindowID: id})
	assert.ErrorIs(t, err, ErrStaleWindow)
	assert.Equal(t, ReasonStaleWindow, events[0].Reason)

	_, err = g.Apply(alice, ClaimSameRank{CardID: g.Players[0].Hand[0].Card.ID})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestEmptyHandWinsImmediately(t *testing.T) {
	rules := noPeekRules()
	rules.HandSize = 1
	g := newStackedGame(t, rules, "2H 3H 2S KS")
	mustApply(t, g, alice, Draw{Source: FromDeck})
	mustApply(t, g, alice, PlaceDrawnCard{Mode: PlacePlay})

	events := mustApply(t, g, alice, ClaimSameRank{CardID: g.Players[0].Hand[0].Card.ID})
	require.Equal(t, []EventKind{EventSameRankClaimAccepted, EventGameEnded}, kinds(events))
	res := events[1].Result
	assert.Equal(t, EndEmptyHand, res.Reason)
	assert.Equal(t, []PlayerID{alice}, res.Winners)
	assert.False(t, res.Draw)
	assert.True(t, g.IsTerminal())
	assert.Empty(t, g.Players[0].Hand)
}

func TestLockedCallerCannotClaim(t *testing.T) {
	rules := noPeekRules()
	rules.LockCallerHand = true
	g := newStackedGame(t, rules, "2H 3H 4H 5H 6H 7H 8H 9H 3S")
	mustApply(t, g, alice, CallFinalRound{})
	mustApply(t, g, bob, Draw{Source: FromDeck})
	mustApply(t, g, bob, PlaceDrawnCard{Mode: PlacePlay})
	require.Equal(t, RankThree, g.Window.Rank)

	_, err := g.Apply(alice, ClaimSameRank{CardID: g.Players[0].Hand[0].Card.ID})
	assert.ErrorIs(t, err, ErrHandLocked)

	mustApply(t, g, bob, ClaimSameRank{CardID: g.Players[1].Hand[0].Card.ID})
}
