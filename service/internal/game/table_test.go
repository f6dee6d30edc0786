package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/dutch/engine"
)

const eightCards = "2H 3H 4H 5H 6H 7H 8H 9H"

func TestStartBroadcastsOpening(t *testing.T) {
	f := newFixture(t, noPeekRules(), eightCards+" KS", 0)

	_, err := f.table.Submit(alice, engine.Draw{Source: engine.FromDeck})
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, f.table.Start())
	assert.Equal(t, []GameEventType{PublicType(engine.EventTurnStarted)}, f.mb.publicTypes())
	assert.ErrorIs(t, f.table.Start(), ErrAlreadyStarted)

	f.table.Close()
	require.Equal(t, []string{"game_start"}, f.history.types())
	rec := f.history.recs[0]
	assert.Equal(t, f.table.ID, rec.GameID)
	assert.Equal(t, 1, rec.ActionIndex)
	assert.Empty(t, rec.Actor)
	assert.Equal(t, uint64(99), rec.Payload["seed"])
	assert.Equal(t, []string{"alice", "bob"}, rec.Payload["players"])
}

func TestDrawIsPrivateToActor(t *testing.T) {
	f := newFixture(t, noPeekRules(), eightCards+" KS", 0)
	require.NoError(t, f.table.Start())
	f.mb.clear()

	f.submit(t, alice, engine.Draw{Source: engine.FromDeck})

	pub := f.mb.findEventByType(PublicType(engine.EventCardDrawn))
	require.NotNil(t, pub)
	require.Len(t, pub.Event.Cards, 1)
	assert.False(t, pub.Event.Cards[0].Known)
	assert.Equal(t, alice, pub.Event.Player)

	priv := f.mb.forPlayer(alice)
	require.Len(t, priv, 1)
	assert.Equal(t, GameEventType("private_card_drawn"), priv[0].Type)
	assert.True(t, priv[0].Event.Cards[0].Known)
	assert.Equal(t, engine.RankKing, priv[0].Event.Cards[0].Rank)
	assert.Equal(t, pub.Seq, priv[0].Seq)
	assert.Equal(t, pub.Event.Cards[0].ID, priv[0].Event.Cards[0].ID)

	assert.Empty(t, f.mb.forPlayer(bob))
}

func TestDiscardDrawIsPublic(t *testing.T) {
	rules := noPeekRules()
	rules.FlipInitialDiscard = true
	f := newFixture(t, rules, eightCards+" KS 5C", 0)
	require.NoError(t, f.table.Start())
	f.mb.clear()

	f.submit(t, alice, engine.Draw{Source: engine.FromDiscard})

	pub := f.mb.findEventByType(PublicType(engine.EventCardDrawn))
	require.NotNil(t, pub)
	assert.True(t, pub.Event.Cards[0].Known)
	assert.Empty(t, f.mb.forPlayer(alice))
}

func TestRejectionGoesOnlyToActor(t *testing.T) {
	f := newFixture(t, noPeekRules(), eightCards+" KS", 0)
	require.NoError(t, f.table.Start())
	f.mb.clear()

	events, err := f.table.Submit(bob, engine.Draw{Source: engine.FromDeck})
	assert.ErrorIs(t, err, engine.ErrNotYourTurn)
	require.Len(t, events, 1)
	assert.Equal(t, engine.EventActionRejected, events[0].Kind)

	assert.Empty(t, f.mb.publicTypes())
	got := f.mb.forPlayer(bob)
	require.Len(t, got, 1)
	assert.Equal(t, GameEventType("private_action_rejected"), got[0].Type)
	assert.Equal(t, engine.ReasonOf(engine.ErrNotYourTurn), got[0].Event.Reason)

	entry := f.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "action rejected", entry.Message)
	assert.Equal(t, bob, entry.Data["player_id"])
	assert.Equal(t, "draw", entry.Data["action"])

	f.table.Close()
	assert.Equal(t, []string{"game_start", "draw"}, f.history.types())
	assert.Equal(t, engine.ReasonOf(engine.ErrNotYourTurn).String(), f.history.recs[1].Payload["rejected"])
}

func TestSyncViews(t *testing.T) {
	f := newFixture(t, noPeekRules(), eightCards+" KS", 0)
	require.NoError(t, f.table.Start())
	f.submit(t, alice, engine.Draw{Source: engine.FromDeck})

	mine := f.table.Sync(alice)
	require.NotNil(t, mine.Players[0].Held)
	assert.True(t, mine.Players[0].Held.Known)

	theirs := f.table.Sync(bob)
	require.NotNil(t, theirs.Players[0].Held)
	assert.False(t, theirs.Players[0].Held.Known)
	assert.False(t, theirs.Players[1].Hand[0].Card.Known)
	assert.Equal(t, alice, theirs.CurrentPlayer)

	f.mb.clear()
	f.table.SendSync(bob)
	got := f.mb.forPlayer(bob)
	require.Len(t, got, 1)
	assert.Equal(t, EventPrivateSyncState, got[0].Type)
	require.NotNil(t, got[0].State)
	assert.Equal(t, bob, got[0].State.Viewer)
	assert.Empty(t, f.mb.publicTypes())
}

func TestLegalActionsAndState(t *testing.T) {
	f := newFixture(t, noPeekRules(), eightCards+" KS", 0)
	require.NoError(t, f.table.Start())

	assert.NotEmpty(t, f.table.LegalActions(alice))
	assert.Empty(t, f.table.LegalActions(bob))

	st := f.table.State()
	st.Players[0].Hand = nil
	assert.Equal(t, 4, f.table.State().Players[0].Hand.CardCount())
}

func TestGameEndNotifiesAndPersists(t *testing.T) {
	f := newFixture(t, noPeekRules(), eightCards+" KS", turnWait)

	var (
		calls  int
		gotID  uuid.UUID
		gotRes engine.Result
	)
	f.table.OnGameEnd = func(id uuid.UUID, res engine.Result) {
		calls++
		gotID, gotRes = id, res
	}
	require.NoError(t, f.table.Start())
	require.Equal(t, 1, f.sched.live(turnWait))

	f.submit(t, engine.SystemActor, engine.ForceEnd{})
	assert.Equal(t, 1, calls)
	assert.Equal(t, f.table.ID, gotID)
	assert.Equal(t, engine.EndForced, gotRes.Reason)
	assert.Equal(t, 0, f.sched.live(turnWait))
	assert.NotNil(t, f.mb.findEventByType(PublicType(engine.EventGameEnded)))

	_, err := f.table.Submit(alice, engine.Draw{Source: engine.FromDeck})
	assert.ErrorIs(t, err, engine.ErrGameOver)
	assert.Equal(t, 1, calls)

	f.table.Close()
	require.Len(t, f.sink.recs, 1)
	assert.Equal(t, f.table.ID, f.sink.recs[0].GameID)
	assert.Equal(t, uint64(99), f.sink.recs[0].Seed)
	assert.Equal(t, engine.EndForced, f.sink.recs[0].Result.Reason)
	assert.Equal(t, []string{"game_start", "force_end", "game_end", "draw"}, f.history.types())

	_, err = f.table.Submit(alice, engine.Draw{Source: engine.FromDeck})
	assert.ErrorIs(t, err, ErrTableClosed)
	assert.ErrorIs(t, f.table.Start(), ErrTableClosed)
}

func TestConcurrentAccess(t *testing.T) {
	f := newFixture(t, noPeekRules(), eightCards+" KS", 0)
	require.NoError(t, f.table.Start())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.table.Sync(bob)
			_ = f.table.LegalActions(alice)
			_, err := f.table.Submit(bob, engine.Draw{Source: engine.FromDeck})
			assert.ErrorIs(t, err, engine.ErrNotYourTurn)
		}()
	}
	wg.Wait()

	st := f.table.State()
	require.NoError(t, st.CheckInvariants())
	assert.Len(t, f.mb.forPlayer(bob), 8)
}
