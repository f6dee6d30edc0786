package engine

import "github.com/google/uuid"

// CardView is a card as one viewer sees it. Unknown cards carry only their
// ID.
type CardView struct {
	ID    uuid.UUID `json:"id"`
	Known bool      `json:"known"`
	Rank  Rank      `json:"rank"`
	Suit  Suit      `json:"suit"`
	Value int       `json:"value,omitempty"`
}

func viewCard(c Card, known bool) CardView {
	if !known {
		return CardView{ID: c.ID}
	}
	return CardView{ID: c.ID, Known: true, Rank: c.Rank, Suit: c.Suit, Value: c.Value()}
}

// SlotView is one hand slot; Empty slots have no card.
type SlotView struct {
	Empty bool      `json:"empty,omitempty"`
	Card  *CardView `json:"card,omitempty"`
}

// PlayerView is one seat as seen by a viewer.
type PlayerView struct {
	ID                  PlayerID            `json:"id"`
	Status              PlayerStatus        `json:"status"`
	Hand                []SlotView          `json:"hand"`
	CardCount           int                 `json:"cardCount"`
	Held                *CardView           `json:"held,omitempty"`
	HasCalledFinalRound bool                `json:"hasCalledFinalRound"`
	Collections         map[Rank][]CardView `json:"collections,omitempty"`
}

// View is the per-viewer projection of a GameState.
type View struct {
	Viewer             PlayerID       `json:"viewer"`
	Phase              Phase          `json:"phase"`
	Players            []PlayerView   `json:"players"`
	CurrentPlayer      PlayerID       `json:"currentPlayer"`
	DrawPileSize       int            `json:"drawPileSize"`
	DiscardTop         *CardView      `json:"discardTop,omitempty"`
	DiscardPileSize    int            `json:"discardPileSize"`
	TurnNumber         int            `json:"turnNumber"`
	FinalRoundCalledBy PlayerID       `json:"finalRoundCalledBy,omitempty"`
	Window             SameRankWindow `json:"window"`
	Pending            PendingPower   `json:"pending"`
	Result             *Result        `json:"result,omitempty"`
}

// ViewFor projects g for viewer. Hand cards stay face-down for everyone,
// their owner included, except the slots the viewer is looking at during the
// initial peek. Held cards are shown only to their holder unless they came
// off the discard pile. After the game ends every card is face-up.
func (g *GameState) ViewFor(viewer PlayerID) View {
	over := g.IsTerminal()
	v := View{
		Viewer:             viewer,
		Phase:              g.Phase,
		DrawPileSize:       g.DrawPile.Len(),
		DiscardPileSize:    g.DiscardPile.Len(),
		TurnNumber:         g.TurnNumber,
		FinalRoundCalledBy: g.FinalRoundCalledBy,
		Window:             g.Window,
		Pending:            g.Pending,
	}
	if cur := g.CurrentPlayer(); cur != nil {
		v.CurrentPlayer = cur.ID
	}
	if top, ok := g.DiscardTop(); ok {
		cv := viewCard(top, true)
		v.DiscardTop = &cv
	}
	if g.Result != nil {
		res := g.Result.clone()
		v.Result = &res
	}

	for i := range g.Players {
		p := &g.Players[i]
		pv := PlayerView{
			ID:                  p.ID,
			Status:              p.Status,
			Hand:                make([]SlotView, len(p.Hand)),
			CardCount:           p.Hand.CardCount(),
			HasCalledFinalRound: p.HasCalledFinalRound,
		}
		revealed := map[int]bool{}
		if p.ID == viewer && g.Phase == PhaseInitialPeek {
			for _, j := range p.Revealed {
				revealed[j] = true
			}
		}
		for j, s := range p.Hand {
			if !s.Occupied {
				pv.Hand[j] = SlotView{Empty: true}
				continue
			}
			cv := viewCard(s.Card, over || revealed[j])
			pv.Hand[j] = SlotView{Card: &cv}
		}
		if p.Held != nil {
			cv := viewCard(*p.Held, p.ID == viewer || p.HeldFrom == FromDiscard)
			pv.Held = &cv
		}
		for r, cards := range p.Collections {
			if len(cards) == 0 {
				continue
			}
			if pv.Collections == nil {
				pv.Collections = make(map[Rank][]CardView)
			}
			for _, c := range cards {
				pv.Collections[r] = append(pv.Collections[r], viewCard(c, true))
			}
		}
		v.Players = append(v.Players, pv)
	}
	return v
}
