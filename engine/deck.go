package engine

import "github.com/google/uuid"

// Pile is an ordered stack of cards. The top of the pile is the last element
// internally; Cards returns it top-first.
type Pile struct {
	cards []Card
}

// NewPile builds a pile from cards given top-first.
func NewPile(topFirst ...Card) Pile {
	p := Pile{cards: make([]Card, len(topFirst))}
	for i, c := range topFirst {
		p.cards[len(topFirst)-1-i] = c
	}
	return p
}

// Len returns the number of cards in the pile.
func (p *Pile) Len() int { return len(p.cards) }

// Top returns the top card without removing it.
func (p *Pile) Top() (Card, bool) {
	if len(p.cards) == 0 {
		return Card{}, false
	}
	return p.cards[len(p.cards)-1], true
}

// DrawTop removes and returns the top card.
func (p *Pile) DrawTop() (Card, error) {
	if len(p.cards) == 0 {
		return Card{}, ErrPileEmpty
	}
	c := p.cards[len(p.cards)-1]
	p.cards = p.cards[:len(p.cards)-1]
	return c, nil
}

// Push places c on top of the pile.
func (p *Pile) Push(c Card) { p.cards = append(p.cards, c) }

// Cards returns a top-first copy of the pile.
func (p *Pile) Cards() []Card {
	out := make([]Card, len(p.cards))
	for i, c := range p.cards {
		out[len(p.cards)-1-i] = c
	}
	return out
}

// Contains reports whether a card with the given ID is in the pile.
func (p *Pile) Contains(id uuid.UUID) bool {
	for _, c := range p.cards {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (p Pile) clone() Pile {
	if p.cards == nil {
		return Pile{}
	}
	out := make([]Card, len(p.cards))
	copy(out, p.cards)
	return Pile{cards: out}
}

// Reshuffle rebuilds an exhausted draw pile from the discard pile. The top
// discard stays face-up where it is; every other discard moves to the draw
// pile in random order. Returns ErrInsufficientCards if the discard pile
// holds one card or fewer.
func Reshuffle(draw, discard *Pile, r *RNG) error {
	if discard.Len() <= 1 {
		return ErrInsufficientCards
	}
	top := discard.cards[len(discard.cards)-1]
	rest := discard.cards[:len(discard.cards)-1]

	fresh := make([]Card, 0, len(draw.cards)+len(rest))
	fresh = append(fresh, rest...)
	r.Shuffle(fresh)
	// Anything still on the draw pile stays on top.
	fresh = append(fresh, draw.cards...)

	draw.cards = fresh
	discard.cards = []Card{top}
	return nil
}

// ---------------------------------------------------------------------------
// xorshift64 RNG, held by value so GameState copies stay independent.
// ---------------------------------------------------------------------------

// RNG is a xorshift64 generator. Its zero value is unusable; seed with NewRNG.
type RNG uint64

// NewRNG returns a generator seeded with seed (0 is remapped, xorshift can't
// start at 0).
func NewRNG(seed uint64) RNG {
	if seed == 0 {
		seed = 1
	}
	return RNG(seed)
}

// Uint64 advances the generator.
func (r *RNG) Uint64() uint64 {
	x := uint64(*r)
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*r = RNG(x)
	return x
}

// Intn returns a number in [0, n).
func (r *RNG) Intn(n int) int {
	return int(r.Uint64() % uint64(n))
}

// Shuffle performs an in-place Fisher-Yates shuffle.
func (r *RNG) Shuffle(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
