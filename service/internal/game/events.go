package game

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/dutch/engine"
)

// GameEventType names an outbound message.
type GameEventType string

const (
	EventPrivateSyncState GameEventType = "private_sync_state"
	privatePrefix                       = "private_"
)

// GameEvent is one message sent to a player or to the whole table. Every
// engine event gets a Seq; its public and private copies share it.
type GameEvent struct {
	Type   GameEventType     `json:"type"`
	GameID uuid.UUID         `json:"gameId"`
	Seq    uint64            `json:"seq"`
	Event  *engine.EventView `json:"event,omitempty"`
	State  *engine.View      `json:"state,omitempty"`
}

// PublicType is the broadcast type for an engine event kind.
func PublicType(k engine.EventKind) GameEventType { return GameEventType(k.String()) }

// PrivateType is the single-player type for an engine event kind.
func PrivateType(k engine.EventKind) GameEventType {
	return GameEventType(privatePrefix + k.String())
}

// fanOut delivers events. Rejections go only to their actor. Events whose
// cards are revealed to the actor are broadcast with identities elided and
// sent whole to the actor. Assumes the lock is held.
func (t *Table) fanOut(events []engine.Event) {
	for _, ev := range events {
		t.seq++
		if ev.Kind == engine.EventActionRejected {
			view := ev.For(ev.Player)
			t.toPlayer(ev.Player, GameEvent{Type: PrivateType(ev.Kind), GameID: t.ID, Seq: t.seq, Event: &view})
			continue
		}

		public := ev.For(engine.SystemActor)
		t.broadcast(GameEvent{Type: PublicType(ev.Kind), GameID: t.ID, Seq: t.seq, Event: &public})

		if ev.Reveal == engine.VisibleActor && len(ev.Cards) > 0 {
			private := ev.For(ev.Player)
			t.toPlayer(ev.Player, GameEvent{Type: PrivateType(ev.Kind), GameID: t.ID, Seq: t.seq, Event: &private})
		}
	}
}

func (t *Table) broadcast(ev GameEvent) {
	if t.BroadcastFn == nil {
		t.log.WithField("type", ev.Type).Debug("no broadcaster; event dropped")
		return
	}
	t.BroadcastFn(ev)
}

func (t *Table) toPlayer(id engine.PlayerID, ev GameEvent) {
	if id == engine.SystemActor {
		return
	}
	if t.BroadcastToPlayerFn == nil {
		t.log.WithFields(logrus.Fields{"type": ev.Type, "player_id": id}).Debug("no player sender; event dropped")
		return
	}
	t.BroadcastToPlayerFn(id, ev)
}
