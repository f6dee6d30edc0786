package engine

// EventKind identifies an outbound domain event.
type EventKind uint8

const (
	EventActionRejected EventKind = iota
	EventInitialCardsRevealed
	EventTurnStarted
	EventCardDrawn
	EventDeckReshuffled
	EventCardPlayed
	EventCardPlaced
	EventPowerAvailable
	EventPowerResolved
	EventSameRankWindowOpened
	EventSameRankClaimAccepted
	EventSameRankClaimPenalized
	EventSameRankWindowClosed
	EventFinalRoundCalled
	EventGameEnded
)

var eventNames = [...]string{
	EventActionRejected:         "action_rejected",
	EventInitialCardsRevealed:   "initial_cards_revealed",
	EventTurnStarted:            "turn_started",
	EventCardDrawn:              "card_drawn",
	EventDeckReshuffled:         "deck_reshuffled",
	EventCardPlayed:             "card_played",
	EventCardPlaced:             "card_placed",
	EventPowerAvailable:         "power_available",
	EventPowerResolved:          "power_resolved",
	EventSameRankWindowOpened:   "same_rank_window_opened",
	EventSameRankClaimAccepted:  "same_rank_claim_accepted",
	EventSameRankClaimPenalized: "same_rank_claim_penalized",
	EventSameRankWindowClosed:   "same_rank_window_closed",
	EventFinalRoundCalled:       "final_round_called",
	EventGameEnded:              "game_ended",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Visibility says who may see the identity of the cards in an event.
type Visibility uint8

const (
	VisiblePublic Visibility = iota // everyone
	VisibleActor                    // only Event.Player
	VisibleNone                     // nobody; IDs only
)

// SlotRef addresses one hand slot.
type SlotRef struct {
	Player PlayerID `json:"player"`
	Index  int      `json:"index"`
}

// Event is one authoritative fact produced by a transition. Cards carry full
// identity; use For to obtain the copy a given viewer may see.
type Event struct {
	Kind     EventKind    `json:"kind"`
	Player   PlayerID     `json:"player,omitempty"`
	Cards    []Card       `json:"cards,omitempty"`
	Reveal   Visibility   `json:"reveal"`
	Slots    []SlotRef    `json:"slots,omitempty"`
	Source   DrawSource   `json:"source"`
	Power    Power        `json:"power"`
	Rank     Rank         `json:"rank"`
	WindowID uint64       `json:"windowId,omitempty"`
	Count    int          `json:"count,omitempty"`
	Reason   RejectReason `json:"reason"`
	Detail   string       `json:"detail,omitempty"`
	Result   *Result      `json:"result,omitempty"`
}

// Private reports whether some viewers are denied card identity.
func (e Event) Private() bool { return e.Reveal != VisiblePublic && len(e.Cards) > 0 }

// CanSee reports whether viewer may see the identity of the event's cards.
func (e Event) CanSee(viewer PlayerID) bool {
	switch e.Reveal {
	case VisiblePublic:
		return true
	case VisibleActor:
		return viewer != SystemActor && viewer == e.Player
	default:
		return false
	}
}

// EventView is an Event as seen by one viewer.
type EventView struct {
	Kind     EventKind    `json:"kind"`
	Player   PlayerID     `json:"player,omitempty"`
	Cards    []CardView   `json:"cards,omitempty"`
	Slots    []SlotRef    `json:"slots,omitempty"`
	Source   DrawSource   `json:"source"`
	Power    Power        `json:"power"`
	Rank     Rank         `json:"rank"`
	WindowID uint64       `json:"windowId,omitempty"`
	Count    int          `json:"count,omitempty"`
	Reason   RejectReason `json:"reason"`
	Detail   string       `json:"detail,omitempty"`
	Result   *Result      `json:"result,omitempty"`
}

// For returns the event with card identities elided where viewer may not
// see them.
func (e Event) For(viewer PlayerID) EventView {
	v := EventView{
		Kind:     e.Kind,
		Player:   e.Player,
		Slots:    e.Slots,
		Source:   e.Source,
		Power:    e.Power,
		Rank:     e.Rank,
		WindowID: e.WindowID,
		Count:    e.Count,
		Reason:   e.Reason,
		Detail:   e.Detail,
		Result:   e.Result,
	}
	known := e.CanSee(viewer)
	for _, c := range e.Cards {
		v.Cards = append(v.Cards, viewCard(c, known))
	}
	return v
}

func rejectedEvent(actor PlayerID, a Action, err error) Event {
	ev := Event{
		Kind:   EventActionRejected,
		Player: actor,
		Reason: ReasonOf(err),
		Detail: err.Error(),
	}
	if a != nil {
		ev.Detail = a.Kind().String() + ": " + ev.Detail
	}
	return ev
}
