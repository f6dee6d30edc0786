package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	alice PlayerID = "alice"
	bob   PlayerID = "bob"
	carol PlayerID = "carol"
)

// parseCard reads a two-character card such as "QS" or "TH".
func parseCard(t *testing.T, s string) Card {
	t.Helper()
	require.Len(t, s, 2, "card %q", s)
	r := strings.IndexByte("A23456789TJQK", s[0])
	su := strings.IndexByte("HDCS", s[1])
	require.True(t, r >= 0 && su >= 0, "card %q", s)
	return Card{Rank: Rank(r), Suit: Suit(su)}
}

// stackedDeck builds a deck from space-separated cards, top first. With two
// players and four cards each, the first eight cards deal as
// alice: 0 2 4 6 and bob: 1 3 5 7.
func stackedDeck(t *testing.T, cards string) []Card {
	t.Helper()
	var out []Card
	for _, f := range strings.Fields(cards) {
		out = append(out, parseCard(t, f))
	}
	return out
}

func noPeekRules() HouseRules {
	r := DefaultHouseRules()
	r.InitialPeekCount = 0
	return r
}

func newStackedGame(t *testing.T, rules HouseRules, cards string, players ...PlayerID) *GameState {
	t.Helper()
	if len(players) == 0 {
		players = []PlayerID{alice, bob}
	}
	specs := make([]PlayerSpec, len(players))
	for i, id := range players {
		specs[i] = PlayerSpec{ID: id}
	}
	g, _, err := NewGame(Setup{Players: specs, Rules: rules, Seed: 7, Deck: stackedDeck(t, cards)})
	require.NoError(t, err)
	return &g
}

func mustApply(t *testing.T, g *GameState, actor PlayerID, a Action) []Event {
	t.Helper()
	events, err := g.Apply(actor, a)
	require.NoError(t, err, "%s by %q", a.Kind(), actor)
	require.NoError(t, g.CheckInvariants())
	return events
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func handString(h Hand) string {
	parts := make([]string, len(h))
	for i, s := range h {
		if s.Occupied {
			parts[i] = s.Card.String()
		} else {
			parts[i] = "__"
		}
	}
	return strings.Join(parts, " ")
}

func findEvent(events []Event, kind EventKind) (Event, bool) {
	for _, e := range events {
		if e.Kind == kind {
			return e, true
		}
	}
	return Event{}, false
}
