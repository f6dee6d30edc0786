package game

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/dutch/engine"
	"github.com/jason-s-yu/dutch/service/internal/cache"
	"github.com/jason-s-yu/dutch/service/internal/database"
)

const (
	alice engine.PlayerID = "alice"
	bob   engine.PlayerID = "bob"

	windowWait = 3 * time.Second
	turnWait   = 10 * time.Second
)

// mockBroadcaster captures game events for testing assertions.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[engine.PlayerID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{playerEvents: make(map[engine.PlayerID][]GameEvent)}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(id engine.PlayerID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[id] = append(mb.playerEvents[id], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = nil
	mb.playerEvents = make(map[engine.PlayerID][]GameEvent)
}

func (mb *mockBroadcaster) publicTypes() []GameEventType {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	out := make([]GameEventType, len(mb.allEvents))
	for i, ev := range mb.allEvents {
		out[i] = ev.Type
	}
	return out
}

func (mb *mockBroadcaster) findEventByType(typ GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == typ {
			ev := mb.allEvents[i]
			return &ev
		}
	}
	return nil
}

func (mb *mockBroadcaster) forPlayer(id engine.PlayerID) []GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return append([]GameEvent(nil), mb.playerEvents[id]...)
}

// fakeScheduler records timers and runs them only when fired by a test.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ft := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, ft)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		live := !ft.stopped && !ft.fired
		ft.stopped = true
		return live
	}
}

// fire runs the newest live timer of duration d.
func (s *fakeScheduler) fire(d time.Duration) bool {
	s.mu.Lock()
	var ft *fakeTimer
	for i := len(s.timers) - 1; i >= 0; i-- {
		if c := s.timers[i]; c.d == d && !c.stopped && !c.fired {
			ft = c
			break
		}
	}
	if ft != nil {
		ft.fired = true
	}
	s.mu.Unlock()
	if ft == nil {
		return false
	}
	ft.f()
	return true
}

func (s *fakeScheduler) live(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ft := range s.timers {
		if ft.d == d && !ft.stopped && !ft.fired {
			n++
		}
	}
	return n
}

// all returns every timer ever armed, oldest first.
func (s *fakeScheduler) all() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeTimer(nil), s.timers...)
}

type fakeHistory struct {
	mu   sync.Mutex
	recs []cache.GameActionRecord
}

func (h *fakeHistory) Publish(_ context.Context, rec cache.GameActionRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, rec)
	return nil
}

func (h *fakeHistory) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.recs))
	for i, r := range h.recs {
		out[i] = r.ActionType
	}
	return out
}

type fakeSink struct {
	mu   sync.Mutex
	recs []database.GameRecord
}

func (s *fakeSink) SaveResult(_ context.Context, rec database.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

type fixture struct {
	table   *Table
	mb      *mockBroadcaster
	sched   *fakeScheduler
	history *fakeHistory
	sink    *fakeSink
	logs    *test.Hook
}

// stackedDeck builds a deck from space-separated cards such as "QS TH",
// top first.
func stackedDeck(t *testing.T, cards string) []engine.Card {
	t.Helper()
	var out []engine.Card
	for _, f := range strings.Fields(cards) {
		require.Len(t, f, 2, "card %q", f)
		r := strings.IndexByte("A23456789TJQK", f[0])
		s := strings.IndexByte("HDCS", f[1])
		require.True(t, r >= 0 && s >= 0, "card %q", f)
		out = append(out, engine.Card{Rank: engine.Rank(r), Suit: engine.Suit(s)})
	}
	return out
}

func noPeekRules() engine.HouseRules {
	r := engine.DefaultHouseRules()
	r.InitialPeekCount = 0
	return r
}

// newFixture seats alice and bob at a stacked table. With four cards each
// the first eight cards deal as alice: 0 2 4 6 and bob: 1 3 5 7.
func newFixture(t *testing.T, rules engine.HouseRules, cards string, turn time.Duration) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		mb:      newMockBroadcaster(),
		sched:   &fakeScheduler{},
		history: &fakeHistory{},
		sink:    &fakeSink{},
		logs:    hook,
	}
	table, err := NewTable(engine.Setup{
		Players: []engine.PlayerSpec{{ID: alice, IsHuman: true}, {ID: bob, IsHuman: true}},
		Rules:   rules,
		Seed:    99,
		Deck:    stackedDeck(t, cards),
	}, Options{
		WindowDuration: windowWait,
		TurnDuration:   turn,
		Scheduler:      f.sched,
		Logger:         logger,
		History:        f.history,
		Results:        f.sink,
	})
	require.NoError(t, err)
	table.BroadcastFn = f.mb.broadcastFn
	table.BroadcastToPlayerFn = f.mb.broadcastToPlayerFn
	f.table = table
	t.Cleanup(table.Close)
	return f
}

func (f *fixture) submit(t *testing.T, actor engine.PlayerID, a engine.Action) []engine.Event {
	t.Helper()
	events, err := f.table.Submit(actor, a)
	require.NoError(t, err, "%s by %q", a.Kind(), actor)
	return events
}
