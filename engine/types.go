package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// Rank is the face rank of a card.
type Rank uint8

const (
	RankAce Rank = iota
	RankTwo
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
)

// NumRanks is the number of distinct ranks in a standard deck.
const NumRanks = 13

var rankNames = [NumRanks]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K"}

func (r Rank) String() string {
	if int(r) < len(rankNames) {
		return rankNames[r]
	}
	return "?"
}

// Valid reports whether r is one of the 13 standard ranks.
func (r Rank) Valid() bool { return r <= RankKing }

// Suit is the suit of a card.
type Suit uint8

const (
	SuitHearts Suit = iota
	SuitDiamonds
	SuitClubs
	SuitSpades
)

// NumSuits is the number of suits in a standard deck.
const NumSuits = 4

var suitNames = [NumSuits]string{"H", "D", "C", "S"}

func (s Suit) String() string {
	if int(s) < len(suitNames) {
		return suitNames[s]
	}
	return "?"
}

// Power is the special power granted by playing a card to the discard pile.
type Power uint8

const (
	PowerNone Power = iota
	PowerPeek       // Queen
	PowerSwap       // Jack
)

func (p Power) String() string {
	switch p {
	case PowerPeek:
		return "peek"
	case PowerSwap:
		return "swap"
	default:
		return "none"
	}
}

// Card is an immutable card instance. ID is stable for the whole game and
// carries no information about rank or suit.
type Card struct {
	ID   uuid.UUID `json:"id"`
	Rank Rank      `json:"rank"`
	Suit Suit      `json:"suit"`
}

// NewCard constructs a card with a fresh random ID.
func NewCard(rank Rank, suit Suit) Card {
	return Card{ID: uuid.New(), Rank: rank, Suit: suit}
}

// Value returns the point value of the card.
//   - Ace → 1
//   - Two–Ten → face value
//   - Jack → 11, Queen → 12, King → 13
func (c Card) Value() int {
	switch {
	case c.Rank <= RankTen:
		return int(c.Rank) + 1
	case c.Rank == RankJack:
		return 11
	case c.Rank == RankQueen:
		return 12
	case c.Rank == RankKing:
		return 13
	}
	return 0
}

// Power returns the power triggered when this card is played.
func (c Card) Power() Power {
	switch c.Rank {
	case RankQueen:
		return PowerPeek
	case RankJack:
		return PowerSwap
	default:
		return PowerNone
	}
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// StandardDeck returns the 52-card table in suit-major order, each card with
// an ID produced by newID.
func StandardDeck(newID func() uuid.UUID) []Card {
	deck := make([]Card, 0, NumSuits*NumRanks)
	for s := Suit(0); s < NumSuits; s++ {
		for r := RankAce; r <= RankKing; r++ {
			deck = append(deck, Card{ID: newID(), Rank: r, Suit: s})
		}
	}
	return deck
}

// PlayerID identifies a seated player.
type PlayerID string

// Phase is the state of the turn machine.
type Phase uint8

const (
	PhaseInitialPeek Phase = iota
	PhaseDrawing
	PhasePlacingDrawnCard
	PhasePeekPower
	PhaseSwapPower
	PhaseSameRankWindow
	PhaseEnded
)

var phaseNames = [...]string{
	PhaseInitialPeek:      "initial_peek",
	PhaseDrawing:          "drawing",
	PhasePlacingDrawnCard: "placing_drawn_card",
	PhasePeekPower:        "peek_power",
	PhaseSwapPower:        "swap_power",
	PhaseSameRankWindow:   "same_rank_window",
	PhaseEnded:            "ended",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// PlayerStatus mirrors the phase from one player's point of view.
type PlayerStatus uint8

const (
	StatusWaiting PlayerStatus = iota
	StatusInitialPeek
	StatusCurrentTurn
	StatusPlacingDrawnCard
	StatusUsingPower
	StatusSameRankWindow
	StatusFinished
)

var statusNames = [...]string{
	StatusWaiting:          "waiting",
	StatusInitialPeek:      "initial_peek",
	StatusCurrentTurn:      "current_turn",
	StatusPlacingDrawnCard: "placing_drawn_card",
	StatusUsingPower:       "using_power",
	StatusSameRankWindow:   "same_rank_window",
	StatusFinished:         "finished",
}

func (s PlayerStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// OwnsTurn reports whether the status belongs to the player whose turn it is.
func (s PlayerStatus) OwnsTurn() bool {
	return s == StatusCurrentTurn || s == StatusPlacingDrawnCard || s == StatusUsingPower
}

// DrawSource selects which pile a draw takes from.
type DrawSource uint8

const (
	FromDeck DrawSource = iota
	FromDiscard
)

func (s DrawSource) String() string {
	if s == FromDiscard {
		return "discard"
	}
	return "deck"
}
