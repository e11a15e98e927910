package game

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
	"github.com/xainyuplus/Liar-s-Bar/internal/randutil"
)

type recordingGateway struct {
	broadcasts []Event
	private    map[string][]Event
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{private: make(map[string][]Event)}
}

func (g *recordingGateway) Broadcast(e Event) {
	g.broadcasts = append(g.broadcasts, e)
}

func (g *recordingGateway) Send(playerID string, e Event) {
	g.private[playerID] = append(g.private[playerID], e)
}

func (g *recordingGateway) ofType(t EventType) []Event {
	var out []Event
	for _, e := range g.broadcasts {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

func (g *recordingGateway) last(t EventType) Event {
	events := g.ofType(t)
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

type scheduledTimer struct {
	delay time.Duration
	timer Timer
}

type manualScheduler struct {
	pending []scheduledTimer
}

func (s *manualScheduler) Schedule(d time.Duration, t Timer) {
	s.pending = append(s.pending, scheduledTimer{delay: d, timer: t})
}

// fire delivers the oldest pending timer of kind that is still current
func (s *manualScheduler) fire(t *testing.T, m *Manager, kind TimerKind) {
	t.Helper()
	for i, p := range s.pending {
		if p.timer.Kind == kind && p.timer.Seq == m.Seq() {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			m.HandleTimer(p.timer)
			return
		}
	}
	t.Fatalf("no current %s timer pending (seq %d)", kind, m.Seq())
}

// next delivers the oldest pending timer that is still current
func (s *manualScheduler) next(m *Manager) bool {
	for i, p := range s.pending {
		if p.timer.Seq == m.Seq() {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			m.HandleTimer(p.timer)
			return true
		}
	}
	return false
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type testGame struct {
	m       *Manager
	roster  *Roster
	gateway *recordingGateway
	sched   *manualScheduler
}

func newTestGame(t *testing.T, players int, configure ...func(*Config)) *testGame {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TurnTimeout = 0
	for _, fn := range configure {
		fn(&cfg)
	}

	roster := NewRoster()
	for i := 1; i <= players; i++ {
		require.NoError(t, roster.Add(NewPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i), false, cfg.ChamberSize)))
	}

	g := &testGame{
		roster:  roster,
		gateway: newRecordingGateway(),
		sched:   &manualScheduler{},
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	clock := fixedClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g.m = NewManager(cfg, roster, g.gateway, g.sched, clock, randutil.New(42), logger)
	return g
}

func (g *testGame) start(t *testing.T) {
	t.Helper()
	require.NoError(t, g.m.Start())
}

func (g *testGame) player(id string) *Player {
	return g.roster.Get(id)
}

// rig replaces a player's hand with the given ranks, numbering ids from base
func (g *testGame) rig(id string, base int, ranks ...deck.Rank) []int {
	hand := make([]deck.Card, len(ranks))
	ids := make([]int, len(ranks))
	for i, r := range ranks {
		hand[i] = deck.Card{ID: base + i, Rank: r}
		ids[i] = base + i
	}
	g.player(id).SetHand(hand)
	return ids
}
