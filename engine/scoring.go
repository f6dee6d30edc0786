package engine

// EndReason says why a game ended.
type EndReason uint8

const (
	EndFinalRound EndReason = iota // the final round came back to its caller
	EndEmptyHand                   // a player ran out of cards
	EndMaxTurns                    // house turn limit reached
	EndForced                      // ended by the host
)

var endReasonNames = [...]string{
	EndFinalRound: "final_round",
	EndEmptyHand:  "empty_hand",
	EndMaxTurns:   "max_turns",
	EndForced:     "forced",
}

func (r EndReason) String() string {
	if int(r) < len(endReasonNames) {
		return endReasonNames[r]
	}
	return "unknown"
}

// Score is one player's final tally.
type Score struct {
	Player           PlayerID `json:"player"`
	Points           int      `json:"points"`
	Cards            int      `json:"cards"` // hand cards plus one per collection
	CalledFinalRound bool     `json:"calledFinalRound"`
	Adjusted         int      `json:"adjusted"` // Points plus any false-call penalty
}

// Result is the settled outcome of a game.
type Result struct {
	Reason  EndReason  `json:"reason"`
	Winners []PlayerID `json:"winners"`
	Draw    bool       `json:"draw"`
	Scores  []Score    `json:"scores"` // seat order
}

// ScoreOf returns the score for id.
func (r *Result) ScoreOf(id PlayerID) (Score, bool) {
	for _, s := range r.Scores {
		if s.Player == id {
			return s, true
		}
	}
	return Score{}, false
}

// IsWinner reports whether id is among the winners.
func (r *Result) IsWinner(id PlayerID) bool {
	for _, w := range r.Winners {
		if w == id {
			return true
		}
	}
	return false
}

func (r Result) clone() Result {
	out := r
	out.Winners = append([]PlayerID(nil), r.Winners...)
	out.Scores = append([]Score(nil), r.Scores...)
	return out
}

// ScorePlayer totals the occupied hand slots plus one representative card of
// each collection.
func ScorePlayer(p *Player) Score {
	s := Score{Player: p.ID, CalledFinalRound: p.HasCalledFinalRound}
	for _, slot := range p.Hand {
		if slot.Occupied {
			s.Points += slot.Card.Value()
			s.Cards++
		}
	}
	for r := RankAce; r <= RankKing; r++ {
		if cards := p.Collections[r]; len(cards) > 0 {
			s.Points += cards[0].Value()
			s.Cards++
		}
	}
	s.Adjusted = s.Points
	return s
}

// DetermineWinners applies the tie-break ladder: lowest points, then fewest
// cards, then the final-round caller. Players still tied share a draw.
func DetermineWinners(scores []Score) (winners []PlayerID, draw bool) {
	if len(scores) == 0 {
		return nil, false
	}
	best := scores[0].Points
	for _, s := range scores[1:] {
		if s.Points < best {
			best = s.Points
		}
	}
	var tied []Score
	for _, s := range scores {
		if s.Points == best {
			tied = append(tied, s)
		}
	}

	if len(tied) > 1 {
		fewest := tied[0].Cards
		for _, s := range tied[1:] {
			if s.Cards < fewest {
				fewest = s.Cards
			}
		}
		kept := tied[:0]
		for _, s := range tied {
			if s.Cards == fewest {
				kept = append(kept, s)
			}
		}
		tied = kept
	}

	if len(tied) > 1 {
		for _, s := range tied {
			if s.CalledFinalRound {
				return []PlayerID{s.Player}, false
			}
		}
	}

	for _, s := range tied {
		winners = append(winners, s.Player)
	}
	return winners, len(winners) > 1
}

// settle scores every player and fixes the result. An empty-hand win skips
// the ranking and names the emptied player outright.
func (g *GameState) settle(reason EndReason, emptied PlayerID) Result {
	res := Result{Reason: reason, Scores: make([]Score, len(g.Players))}
	for i := range g.Players {
		res.Scores[i] = ScorePlayer(&g.Players[i])
	}
	if reason == EndEmptyHand {
		res.Winners = []PlayerID{emptied}
	} else {
		res.Winners, res.Draw = DetermineWinners(res.Scores)
	}
	if pen := g.Rules.FalseCallPenalty; pen != 0 {
		for i := range res.Scores {
			s := &res.Scores[i]
			if s.CalledFinalRound && !res.IsWinner(s.Player) {
				s.Adjusted += pen
			}
		}
	}
	return res
}
