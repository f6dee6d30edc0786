package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorePlayerCountsOneCardPerCollection(t *testing.T) {
	p := Player{ID: alice, Collections: map[Rank][]Card{}}
	for _, c := range []string{"AH", "KS"} {
		p.Hand.Append(parseCard(t, c))
	}
	_, _ = p.Hand.InsertAt(5, parseCard(t, "2C"))
	p.Collections[RankSeven] = []Card{parseCard(t, "7H"), parseCard(t, "7S")}

	s := ScorePlayer(&p)
	assert.Equal(t, 1+13+2+7, s.Points)
	assert.Equal(t, 4, s.Cards)
	assert.Equal(t, s.Points, s.Adjusted)
}

func TestDetermineWinners(t *testing.T) {
	cases := []struct {
		name    string
		scores  []Score
		winners []PlayerID
		draw    bool
	}{
		{
			name:    "lowest points",
			scores:  []Score{{Player: alice, Points: 9, Cards: 3}, {Player: bob, Points: 4, Cards: 4}},
			winners: []PlayerID{bob},
		},
		{
			name:    "fewest cards breaks a points tie",
			scores:  []Score{{Player: alice, Points: 6, Cards: 3}, {Player: bob, Points: 6, Cards: 2}, {Player: carol, Points: 8, Cards: 1}},
			winners: []PlayerID{bob},
		},
		{
			name: "caller breaks a full tie",
			scores: []Score{
				{Player: alice, Points: 6, Cards: 2},
				{Player: bob, Points: 6, Cards: 2, CalledFinalRound: true},
			},
			winners: []PlayerID{bob},
		},
		{
			name:    "a tie above the lowest score is ignored",
			scores:  []Score{{Player: alice, Points: 5, Cards: 2}, {Player: bob, Points: 5, Cards: 2}, {Player: carol, Points: 3, Cards: 3, CalledFinalRound: true}},
			winners: []PlayerID{carol},
		},
		{
			name:    "draw",
			scores:  []Score{{Player: alice, Points: 5, Cards: 2}, {Player: bob, Points: 5, Cards: 2}, {Player: carol, Points: 9, Cards: 2, CalledFinalRound: true}},
			winners: []PlayerID{alice, bob},
			draw:    true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			winners, draw := DetermineWinners(tc.scores)
			assert.Equal(t, tc.winners, winners)
			assert.Equal(t, tc.draw, draw)
		})
	}
}

func TestSettleFalseCallPenalty(t *testing.T) {
	rules := noPeekRules()
	rules.FalseCallPenalty = 10
	// Bob holds the lower hand, so Alice's call fails.
	g := newStackedGame(t, rules, "9H AH 9D AD 9C AC 9S AS KS")
	mustApply(t, g, alice, CallFinalRound{})
	mustApply(t, g, bob, Draw{Source: FromDeck})
	mustApply(t, g, bob, PlaceDrawnCard{Mode: PlacePlay})
	mustApply(t, g, bob, AdvanceSameRankWindow{})

	res := g.Result
	if assert.NotNil(t, res) {
		assert.Equal(t, EndFinalRound, res.Reason)
		assert.Equal(t, []PlayerID{bob}, res.Winners)
		a, _ := res.ScoreOf(alice)
		assert.Equal(t, 36, a.Points)
		assert.Equal(t, 46, a.Adjusted)
		b, _ := res.ScoreOf(bob)
		assert.Equal(t, 4, b.Adjusted)
	}
}
