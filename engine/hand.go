package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// Slot is one position in a hand. An empty slot keeps the positions of the
// cards after it stable.
type Slot struct {
	Card     Card `json:"card"`
	Occupied bool `json:"occupied"`
}

// Occupied returns a slot holding c.
func Occupied(c Card) Slot { return Slot{Card: c, Occupied: true} }

// Hand is an ordered sequence of slots.
type Hand []Slot

// Len returns the number of slots, empty ones included.
func (h Hand) Len() int { return len(h) }

// CardCount returns the number of occupied slots.
func (h Hand) CardCount() int {
	n := 0
	for _, s := range h {
		if s.Occupied {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no slot holds a card.
func (h Hand) IsEmpty() bool { return h.CardCount() == 0 }

// At returns the card in slot i.
func (h Hand) At(i int) (Card, bool) {
	if i < 0 || i >= len(h) || !h[i].Occupied {
		return Card{}, false
	}
	return h[i].Card, true
}

// FindByCardID returns the slot index holding the card with the given ID.
func (h Hand) FindByCardID(id uuid.UUID) (int, error) {
	for i, s := range h {
		if s.Occupied && s.Card.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: card %s not in hand", ErrCardNotFound, id)
}

// RemoveAt takes the card out of slot i. When no occupied slot follows i the
// slot is deleted (along with any empty slots it leaves trailing); otherwise
// the slot becomes empty and every other slot keeps its index.
func (h *Hand) RemoveAt(i int) (Card, error) {
	hand := *h
	if i < 0 || i >= len(hand) || !hand[i].Occupied {
		return Card{}, fmt.Errorf("%w: no card at slot %d", ErrCardNotFound, i)
	}
	card := hand[i].Card

	last := true
	for j := i + 1; j < len(hand); j++ {
		if hand[j].Occupied {
			last = false
			break
		}
	}

	if !last {
		hand[i] = Slot{}
		return card, nil
	}

	hand = hand[:i]
	for len(hand) > 0 && !hand[len(hand)-1].Occupied {
		hand = hand[:len(hand)-1]
	}
	*h = hand
	return card, nil
}

// InsertAt places c into the empty slot i, or appends when i is past the end.
func (h *Hand) InsertAt(i int, c Card) (int, error) {
	hand := *h
	if i < 0 {
		return -1, fmt.Errorf("%w: slot %d", ErrInvalidTarget, i)
	}
	if i >= len(hand) {
		*h = append(hand, Occupied(c))
		return len(hand), nil
	}
	if hand[i].Occupied {
		return -1, fmt.Errorf("%w: slot %d", ErrSlotOccupied, i)
	}
	hand[i] = Occupied(c)
	return i, nil
}

// Append adds c in a new slot at the end of the hand.
func (h *Hand) Append(c Card) int {
	at, _ := h.InsertAt(len(*h), c)
	return at
}

// Replace puts c into the occupied slot i and returns the card it displaced.
// The slot keeps its index.
func (h *Hand) Replace(i int, c Card) (Card, error) {
	hand := *h
	if i < 0 || i >= len(hand) || !hand[i].Occupied {
		return Card{}, fmt.Errorf("%w: no card at slot %d", ErrCardNotFound, i)
	}
	old := hand[i].Card
	hand[i] = Slot{}
	if _, err := h.InsertAt(i, c); err != nil {
		return Card{}, err
	}
	return old, nil
}

func (h Hand) clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}
