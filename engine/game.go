// Package engine implements the Dutch card game rules.
//
// The engine is a pure state-transition function: callers submit one Action
// at a time to GameState.Apply and receive the events describing what
// happened. It performs no I/O, starts no timers and never blocks; the host
// owns scheduling (the same-rank window timer) and feeds expiry back as an
// ordinary action.
package engine

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	MinPlayers = 2
	MaxPlayers = 8
)

// Player holds one seat's hand and turn bookkeeping.
type Player struct {
	ID                  PlayerID        `json:"id"`
	Hand                Hand            `json:"hand"`
	Status              PlayerStatus    `json:"status"`
	Held                *Card           `json:"held,omitempty"` // drawn, not yet placed
	HeldFrom            DrawSource      `json:"heldFrom"`
	HasCalledFinalRound bool            `json:"hasCalledFinalRound"`
	IsHuman             bool            `json:"isHuman"`
	Collections         map[Rank][]Card `json:"collections,omitempty"`
	Revealed            []int           `json:"revealed,omitempty"` // initial-peek slots, presentation only
	Peeked              bool            `json:"peeked"`
}

// CollectionCount returns the number of non-empty collections.
func (p *Player) CollectionCount() int {
	n := 0
	for _, cards := range p.Collections {
		if len(cards) > 0 {
			n++
		}
	}
	return n
}

func (p Player) clone() Player {
	out := p
	out.Hand = p.Hand.clone()
	if p.Held != nil {
		held := *p.Held
		out.Held = &held
	}
	if p.Collections != nil {
		out.Collections = make(map[Rank][]Card, len(p.Collections))
		for r, cards := range p.Collections {
			out.Collections[r] = append([]Card(nil), cards...)
		}
	}
	if p.Revealed != nil {
		out.Revealed = append([]int(nil), p.Revealed...)
	}
	return out
}

// SameRankWindow describes the open same-rank window. A zero ID means no
// window is open.
type SameRankWindow struct {
	ID       uint64   `json:"id"`
	OpenedBy PlayerID `json:"openedBy"`
	Rank     Rank     `json:"rank"`
}

// PendingPower is the power waiting to be resolved by its invoker.
type PendingPower struct {
	Power   Power    `json:"power"`
	Invoker PlayerID `json:"invoker"`
}

// GameState is the complete authoritative state of one match.
type GameState struct {
	DrawPile           Pile           `json:"-"`
	DiscardPile        Pile           `json:"-"`
	Players            []Player       `json:"players"`
	CurrentPlayerIndex int            `json:"currentPlayerIndex"`
	Phase              Phase          `json:"phase"`
	FinalRoundActive   bool           `json:"finalRoundActive"`
	FinalRoundCalledBy PlayerID       `json:"finalRoundCalledBy,omitempty"`
	OriginalDeck       []Card         `json:"-"`
	Rules              HouseRules     `json:"rules"`
	RNG                RNG            `json:"-"`
	TurnNumber         int            `json:"turnNumber"`
	Window             SameRankWindow `json:"window"`
	WindowSeq          uint64         `json:"windowSeq"`
	Pending            PendingPower   `json:"pending"`
	Result             *Result        `json:"result,omitempty"`

	deckIndex map[uuid.UUID]int
}

// PlayerSpec seats one player.
type PlayerSpec struct {
	ID      PlayerID
	IsHuman bool
}

// Setup describes a new match.
type Setup struct {
	Players []PlayerSpec
	Rules   HouseRules
	Seed    uint64
	// Deck, if set, is dealt top-first without shuffling. Cards with a nil
	// ID are assigned one. When empty a shuffled standard deck is used.
	Deck []Card
}

// NewGame shuffles, deals and returns the opening state together with the
// events for the first phase.
func NewGame(s Setup) (GameState, []Event, error) {
	if err := s.Rules.validate(); err != nil {
		return GameState{}, nil, err
	}
	if n := len(s.Players); n < MinPlayers || n > MaxPlayers {
		return GameState{}, nil, reject(ErrInvalidSetup, "expected %d-%d players, got %d", MinPlayers, MaxPlayers, n)
	}
	seen := make(map[PlayerID]bool, len(s.Players))
	for _, p := range s.Players {
		if p.ID == SystemActor {
			return GameState{}, nil, reject(ErrInvalidSetup, "empty player id")
		}
		if seen[p.ID] {
			return GameState{}, nil, reject(ErrInvalidSetup, "duplicate player id %q", p.ID)
		}
		seen[p.ID] = true
	}

	g := GameState{
		Rules:     s.Rules,
		RNG:       NewRNG(s.Seed),
		deckIndex: make(map[uuid.UUID]int),
	}

	var topFirst []Card
	if len(s.Deck) > 0 {
		topFirst = make([]Card, len(s.Deck))
		for i, c := range s.Deck {
			if c.ID == uuid.Nil {
				c.ID = uuid.New()
			}
			topFirst[i] = c
		}
	} else {
		// IDs stay off the game RNG: a visible ID must say nothing about
		// the shuffle.
		topFirst = StandardDeck(uuid.New)
		g.RNG.Shuffle(topFirst)
	}
	for i, c := range topFirst {
		if !c.Rank.Valid() || c.Suit >= NumSuits {
			return GameState{}, nil, reject(ErrInvalidSetup, "malformed card %v", c)
		}
		if _, dup := g.deckIndex[c.ID]; dup {
			return GameState{}, nil, reject(ErrInvalidSetup, "duplicate card id %s", c.ID)
		}
		g.deckIndex[c.ID] = i
	}
	need := len(s.Players) * s.Rules.HandSize
	if s.Rules.FlipInitialDiscard {
		need++
	}
	if len(topFirst) < need {
		return GameState{}, nil, reject(ErrInvalidSetup, "deck of %d cannot deal %d", len(topFirst), need)
	}

	g.OriginalDeck = append([]Card(nil), topFirst...)
	g.DrawPile = NewPile(topFirst...)

	g.Players = make([]Player, len(s.Players))
	for i, spec := range s.Players {
		g.Players[i] = Player{
			ID:          spec.ID,
			IsHuman:     spec.IsHuman,
			Hand:        make(Hand, 0, s.Rules.HandSize),
			Collections: make(map[Rank][]Card),
		}
	}

	// Deal one card at a time around the table.
	for c := 0; c < s.Rules.HandSize; c++ {
		for p := range g.Players {
			card, _ := g.DrawPile.DrawTop()
			g.Players[p].Hand.Append(card)
		}
	}
	if s.Rules.FlipInitialDiscard {
		card, _ := g.DrawPile.DrawTop()
		g.DiscardPile.Push(card)
	}

	if s.Rules.InitialPeekCount == 0 {
		for i := range g.Players {
			g.Players[i].Peeked = true
		}
		events := g.beginTurn(0)
		return g, events, nil
	}

	g.Phase = PhaseInitialPeek
	for i := range g.Players {
		g.Players[i].Status = StatusInitialPeek
	}
	return g, nil, nil
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsTerminal returns true when the game is over.
func (g *GameState) IsTerminal() bool { return g.Phase == PhaseEnded }

// InFinalRound reports whether the final round has been called.
func (g *GameState) InFinalRound() bool { return g.FinalRoundActive }

// PlayerIndex returns the seat index of id, or -1.
func (g *GameState) PlayerIndex(id PlayerID) int {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// Player returns the player with the given ID, or nil.
func (g *GameState) Player(id PlayerID) *Player {
	if i := g.PlayerIndex(id); i >= 0 {
		return &g.Players[i]
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is.
func (g *GameState) CurrentPlayer() *Player {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return nil
	}
	return &g.Players[g.CurrentPlayerIndex]
}

// DiscardTop returns the face-up top of the discard pile.
func (g *GameState) DiscardTop() (Card, bool) { return g.DiscardPile.Top() }

// NextPlayerIndex returns the seat after i in turn order.
func (g *GameState) NextPlayerIndex(i int) int { return (i + 1) % len(g.Players) }

// Round returns the current round number (0-based).
func (g *GameState) Round() int { return g.TurnNumber / len(g.Players) }

// CardByID resolves full card identity from the original deck.
func (g *GameState) CardByID(id uuid.UUID) (Card, error) {
	if g.deckIndex != nil {
		if i, ok := g.deckIndex[id]; ok {
			return g.OriginalDeck[i], nil
		}
		return Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	for _, c := range g.OriginalDeck {
		if c.ID == id {
			return c, nil
		}
	}
	return Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
}

// deckPosition returns id's index in the original deck, or -1.
func (g *GameState) deckPosition(id uuid.UUID) int {
	if g.deckIndex != nil {
		if i, ok := g.deckIndex[id]; ok {
			return i
		}
		return -1
	}
	for i, c := range g.OriginalDeck {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// Invariants
// ---------------------------------------------------------------------------

// CardTotal counts every card the game currently holds: both piles, all
// occupied slots, all collections and any held drawn card.
func (g *GameState) CardTotal() int {
	n := g.DrawPile.Len() + g.DiscardPile.Len()
	for i := range g.Players {
		p := &g.Players[i]
		n += p.Hand.CardCount()
		for _, cards := range p.Collections {
			n += len(cards)
		}
		if p.Held != nil {
			n++
		}
	}
	return n
}

// CheckInvariants verifies card conservation, unique card identity and the
// turn-ownership rules. It is meant for tests and soak runs.
func (g *GameState) CheckInvariants() error {
	if got, want := g.CardTotal(), len(g.OriginalDeck); got != want {
		return fmt.Errorf("card conservation: have %d cards, deck has %d", got, want)
	}

	seen := make(map[uuid.UUID]string, len(g.OriginalDeck))
	note := func(c Card, where string) error {
		if prev, dup := seen[c.ID]; dup {
			return fmt.Errorf("card %s in both %s and %s", c.ID, prev, where)
		}
		if _, err := g.CardByID(c.ID); err != nil {
			return fmt.Errorf("card %s in %s is not in the deck", c.ID, where)
		}
		seen[c.ID] = where
		return nil
	}
	for _, c := range g.DrawPile.cards {
		if err := note(c, "draw pile"); err != nil {
			return err
		}
	}
	for _, c := range g.DiscardPile.cards {
		if err := note(c, "discard pile"); err != nil {
			return err
		}
	}

	owners := 0
	for i := range g.Players {
		p := &g.Players[i]
		for j, s := range p.Hand {
			if !s.Occupied {
				continue
			}
			if err := note(s.Card, fmt.Sprintf("%s slot %d", p.ID, j)); err != nil {
				return err
			}
		}
		for r, cards := range p.Collections {
			for _, c := range cards {
				if err := note(c, fmt.Sprintf("%s collection %s", p.ID, r)); err != nil {
					return err
				}
			}
		}
		if p.Held != nil {
			if p.Status != StatusPlacingDrawnCard {
				return fmt.Errorf("%s holds a drawn card with status %s", p.ID, p.Status)
			}
			if err := note(*p.Held, fmt.Sprintf("%s held", p.ID)); err != nil {
				return err
			}
		}
		if p.Status.OwnsTurn() {
			owners++
		}
		if p.HasCalledFinalRound != (p.ID == g.FinalRoundCalledBy) {
			return fmt.Errorf("%s final-round flag disagrees with caller %q", p.ID, g.FinalRoundCalledBy)
		}
	}

	switch g.Phase {
	case PhaseDrawing, PhasePlacingDrawnCard, PhasePeekPower, PhaseSwapPower:
		if owners != 1 {
			return fmt.Errorf("phase %s has %d turn owners", g.Phase, owners)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Clone returns a deep copy that shares no mutable memory with g.
func (g *GameState) Clone() GameState {
	out := *g
	out.DrawPile = g.DrawPile.clone()
	out.DiscardPile = g.DiscardPile.clone()
	out.Players = make([]Player, len(g.Players))
	for i := range g.Players {
		out.Players[i] = g.Players[i].clone()
	}
	if g.Result != nil {
		res := g.Result.clone()
		out.Result = &res
	}
	// OriginalDeck and deckIndex are never written after NewGame.
	return out
}

// Snapshot is a deep copy of GameState. Apply rolls back to one when an
// action fails part way.
type Snapshot struct{ state GameState }

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot{state: g.Clone()} }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = s.state.Clone() }

// ---------------------------------------------------------------------------
// Hash
// ---------------------------------------------------------------------------

// StateHash returns a 64-bit FNV-1a hash over card positions and turn
// bookkeeping. Cards hash by their place in the original deck, not their
// random IDs, so two games played from the same seed with the same actions
// hash identically.
func (g *GameState) StateHash() uint64 {
	h := uint64(14695981039346656037)
	const prime = uint64(1099511628211)
	mix := func(b []byte) {
		for _, x := range b {
			h ^= uint64(x)
			h *= prime
		}
	}
	mixInt := func(v int) { mix([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}) }
	mixCard := func(c Card) { mixInt(g.deckPosition(c.ID)) }

	for _, c := range g.DrawPile.cards {
		mixCard(c)
	}
	mixInt(-1)
	for _, c := range g.DiscardPile.cards {
		mixCard(c)
	}
	for i := range g.Players {
		p := &g.Players[i]
		mix([]byte(p.ID))
		for _, s := range p.Hand {
			if s.Occupied {
				mixCard(s.Card)
			} else {
				mixInt(-2)
			}
		}
		for r := RankAce; r <= RankKing; r++ {
			for _, c := range p.Collections[r] {
				mixCard(c)
			}
		}
		if p.Held != nil {
			mixCard(*p.Held)
		}
		mixInt(int(p.Status))
	}
	mixInt(g.CurrentPlayerIndex)
	mixInt(int(g.Phase))
	mixInt(g.TurnNumber)
	mix([]byte(g.FinalRoundCalledBy))
	return h
}
