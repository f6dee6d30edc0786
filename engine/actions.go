package engine

import "github.com/google/uuid"

// ActionKind identifies an inbound command.
type ActionKind uint8

const (
	ActionPeekInitial ActionKind = iota
	ActionDraw
	ActionPlayFromHand
	ActionPlaceDrawnCard
	ActionClaimSameRank
	ActionAdvanceSameRankWindow
	ActionSameRankWindowExpired
	ActionInvokePeek
	ActionInvokeSwap
	ActionSkipPower
	ActionCallFinalRound
	ActionForceEnd
)

var actionNames = [...]string{
	ActionPeekInitial:           "peek_initial",
	ActionDraw:                  "draw",
	ActionPlayFromHand:          "play_from_hand",
	ActionPlaceDrawnCard:        "place_drawn_card",
	ActionClaimSameRank:         "claim_same_rank",
	ActionAdvanceSameRankWindow: "advance_same_rank_window",
	ActionSameRankWindowExpired: "same_rank_window_expired",
	ActionInvokePeek:            "invoke_peek",
	ActionInvokeSwap:            "invoke_swap",
	ActionSkipPower:             "skip_power",
	ActionCallFinalRound:        "call_final_round",
	ActionForceEnd:              "force_end",
}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return "unknown"
}

// SystemActor is the actor for host-originated inputs (timer expiry, forced
// end). Seated players never use it.
const SystemActor PlayerID = ""

// Action is an intent submitted to GameState.Apply.
type Action interface {
	Kind() ActionKind
}

// PeekInitial picks which of the player's dealt cards to look at before play.
type PeekInitial struct {
	Indices []int `json:"indices"`
}

// Draw takes the top card of the deck or the discard pile.
type Draw struct {
	Source DrawSource `json:"source"`
}

// PlayFromHand plays a hand card to the discard pile; the held drawn card
// takes its slot.
type PlayFromHand struct {
	CardID uuid.UUID `json:"cardId"`
}

// PlaceMode selects what happens to a held drawn card.
type PlaceMode uint8

const (
	PlacePlay    PlaceMode = iota // discard the drawn card directly
	PlaceReplace                  // swap it into Index, discarding the card there
)

// PlaceDrawnCard resolves the held drawn card.
type PlaceDrawnCard struct {
	Mode  PlaceMode `json:"mode"`
	Index int       `json:"index,omitempty"`
}

// ClaimSameRank plays a card from the claimant's own hand during a
// same-rank window.
type ClaimSameRank struct {
	CardID uuid.UUID `json:"cardId"`
}

// AdvanceSameRankWindow closes the window early; only its opener may send it.
type AdvanceSameRankWindow struct{}

// SameRankWindowExpired is delivered by the host scheduler when the window's
// timer fires.
type SameRankWindowExpired struct {
	WindowID uint64 `json:"windowId"`
}

// InvokePeek resolves a Queen: the invoker sees one card.
type InvokePeek struct {
	Target PlayerID `json:"target"`
	Index  int      `json:"index"`
}

// InvokeSwap resolves a Jack: two slots are exchanged blind.
type InvokeSwap struct {
	First       PlayerID `json:"first"`
	FirstIndex  int      `json:"firstIndex"`
	Second      PlayerID `json:"second"`
	SecondIndex int      `json:"secondIndex"`
}

// SkipPower declines a pending power.
type SkipPower struct{}

// CallFinalRound starts the final round; every other player gets one more
// turn.
type CallFinalRound struct{}

// ForceEnd settles the game immediately; used by the host to rule on a
// stalemate.
type ForceEnd struct{}

func (PeekInitial) Kind() ActionKind           { return ActionPeekInitial }
func (Draw) Kind() ActionKind                  { return ActionDraw }
func (PlayFromHand) Kind() ActionKind          { return ActionPlayFromHand }
func (PlaceDrawnCard) Kind() ActionKind        { return ActionPlaceDrawnCard }
func (ClaimSameRank) Kind() ActionKind         { return ActionClaimSameRank }
func (AdvanceSameRankWindow) Kind() ActionKind { return ActionAdvanceSameRankWindow }
func (SameRankWindowExpired) Kind() ActionKind { return ActionSameRankWindowExpired }
func (InvokePeek) Kind() ActionKind            { return ActionInvokePeek }
func (InvokeSwap) Kind() ActionKind            { return ActionInvokeSwap }
func (SkipPower) Kind() ActionKind             { return ActionSkipPower }
func (CallFinalRound) Kind() ActionKind        { return ActionCallFinalRound }
func (ForceEnd) Kind() ActionKind              { return ActionForceEnd }
