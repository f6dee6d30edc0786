package engine

import (
	"errors"
	"fmt"
)

var (
	ErrCardNotFound            = errors.New("card not found")
	ErrNotYourTurn             = errors.New("not your turn")
	ErrWrongPhase              = errors.New("action not allowed in current phase")
	ErrPileEmpty               = errors.New("pile empty")
	ErrInsufficientCards       = errors.New("insufficient cards to reshuffle")
	ErrInvalidPowerInvocation  = errors.New("power does not match the played card")
	ErrDuplicateFinalRoundCall = errors.New("final round already called")
	ErrInvalidTarget           = errors.New("invalid target")
	ErrSlotOccupied            = errors.New("slot occupied")
	ErrStaleWindow             = errors.New("same-rank window already closed")
	ErrHandLocked              = errors.New("hand locked after final round call")
	ErrGameOver                = errors.New("game is over")
	ErrUnknownPlayer           = errors.New("unknown player")
	ErrRuleDisabled            = errors.New("disabled by house rules")
	ErrInvalidSetup            = errors.New("invalid game setup")
)

// RejectReason enumerates why an action was refused.
type RejectReason uint8

const (
	ReasonNone RejectReason = iota
	ReasonCardNotFound
	ReasonNotYourTurn
	ReasonWrongPhase
	ReasonPileEmpty
	ReasonInvalidPowerInvocation
	ReasonDuplicateFinalRoundCall
	ReasonInvalidTarget
	ReasonStaleWindow
	ReasonHandLocked
	ReasonGameOver
	ReasonUnknownPlayer
	ReasonRuleDisabled
	ReasonInternal
)

var reasonNames = [...]string{
	ReasonNone:                    "none",
	ReasonCardNotFound:            "card_not_found",
	ReasonNotYourTurn:             "not_your_turn",
	ReasonWrongPhase:              "wrong_phase",
	ReasonPileEmpty:               "pile_empty",
	ReasonInvalidPowerInvocation:  "invalid_power_invocation",
	ReasonDuplicateFinalRoundCall: "duplicate_final_round_call",
	ReasonInvalidTarget:           "invalid_target",
	ReasonStaleWindow:             "stale_window",
	ReasonHandLocked:              "hand_locked",
	ReasonGameOver:                "game_over",
	ReasonUnknownPlayer:           "unknown_player",
	ReasonRuleDisabled:            "rule_disabled",
	ReasonInternal:                "internal",
}

func (r RejectReason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

var reasonErrors = []struct {
	err    error
	reason RejectReason
}{
	{ErrCardNotFound, ReasonCardNotFound},
	{ErrNotYourTurn, ReasonNotYourTurn},
	{ErrWrongPhase, ReasonWrongPhase},
	{ErrPileEmpty, ReasonPileEmpty},
	{ErrInsufficientCards, ReasonPileEmpty},
	{ErrInvalidPowerInvocation, ReasonInvalidPowerInvocation},
	{ErrDuplicateFinalRoundCall, ReasonDuplicateFinalRoundCall},
	{ErrInvalidTarget, ReasonInvalidTarget},
	{ErrSlotOccupied, ReasonInvalidTarget},
	{ErrStaleWindow, ReasonStaleWindow},
	{ErrHandLocked, ReasonHandLocked},
	{ErrGameOver, ReasonGameOver},
	{ErrUnknownPlayer, ReasonUnknownPlayer},
	{ErrRuleDisabled, ReasonRuleDisabled},
}

// ReasonOf maps an engine error to its rejection reason.
func ReasonOf(err error) RejectReason {
	if err == nil {
		return ReasonNone
	}
	for _, re := range reasonErrors {
		if errors.Is(err, re.err) {
			return re.reason
		}
	}
	return ReasonInternal
}

func reject(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
