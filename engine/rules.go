package engine

// HouseRules holds configurable game rule settings.
type HouseRules struct {
	HandSize              int  `json:"handSize"`              // cards dealt per player
	InitialPeekCount      int  `json:"initialPeekCount"`      // cards each player sees before play; 0 skips the peek phase
	PenaltyDrawCount      int  `json:"penaltyDrawCount"`      // cards drawn for a mismatched same-rank claim
	AllowDrawFromDiscard  bool `json:"allowDrawFromDiscard"`  // if false, only the deck may be drawn from
	CollectSameRank       bool `json:"collectSameRank"`       // if false, matched cards go onto the discard pile
	PowersRequireDeckDraw bool `json:"powersRequireDeckDraw"` // if true, a drawn Queen/Jack only triggers when drawn from the deck
	LockCallerHand        bool `json:"lockCallerHand"`        // if true, the final-round caller cannot claim or be swapped
	FinalRoundMinRound    int  `json:"finalRoundMinRound"`    // earliest round the final round may be called
	MaxGameTurns          int  `json:"maxGameTurns"`          // 0 = unlimited
	FalseCallPenalty      int  `json:"falseCallPenalty"`      // added to the caller's adjusted score if they don't win
	FlipInitialDiscard    bool `json:"flipInitialDiscard"`    // if true, the top deck card starts the discard pile
}

// DefaultHouseRules returns the standard Dutch house rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		HandSize:              4,
		InitialPeekCount:      2,
		PenaltyDrawCount:      1,
		AllowDrawFromDiscard:  true,
		CollectSameRank:       true,
		PowersRequireDeckDraw: false,
		LockCallerHand:        false,
		FinalRoundMinRound:    0,
		MaxGameTurns:          0,
		FalseCallPenalty:      0,
		FlipInitialDiscard:    false,
	}
}

// validate reports rule combinations the engine cannot play.
func (r HouseRules) validate() error {
	switch {
	case r.HandSize < 1:
		return reject(ErrInvalidSetup, "hand size %d", r.HandSize)
	case r.InitialPeekCount < 0 || r.InitialPeekCount > r.HandSize:
		return reject(ErrInvalidSetup, "initial peek count %d with hand size %d", r.InitialPeekCount, r.HandSize)
	case r.PenaltyDrawCount < 0:
		return reject(ErrInvalidSetup, "penalty draw count %d", r.PenaltyDrawCount)
	case r.MaxGameTurns < 0:
		return reject(ErrInvalidSetup, "max game turns %d", r.MaxGameTurns)
	}
	return nil
}
