package room

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
)

type sent struct {
	roomID   string
	playerID string
	event    game.Event
}

type recorder struct {
	mu     sync.Mutex
	events []sent
}

func (rec *recorder) factory(roomID string) game.Gateway {
	return roomGateway{rec: rec, roomID: roomID}
}

func (rec *recorder) ofType(t game.EventType) []sent {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []sent
	for _, s := range rec.events {
		if s.event.EventType() == t {
			out = append(out, s)
		}
	}
	return out
}

func (rec *recorder) private(playerID string) []game.Event {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []game.Event
	for _, s := range rec.events {
		if s.playerID == playerID {
			out = append(out, s.event)
		}
	}
	return out
}

type roomGateway struct {
	rec    *recorder
	roomID string
}

func (g roomGateway) Broadcast(e game.Event) {
	g.rec.mu.Lock()
	defer g.rec.mu.Unlock()
	g.rec.events = append(g.rec.events, sent{roomID: g.roomID, event: e})
}

func (g roomGateway) Send(playerID string, e game.Event) {
	g.rec.mu.Lock()
	defer g.rec.mu.Unlock()
	g.rec.events = append(g.rec.events, sent{roomID: g.roomID, playerID: playerID, event: e})
}

type testEnv struct {
	reg   *Registry
	rec   *recorder
	clock *quartz.Mock

	mu      sync.Mutex
	results []Result
}

func newTestEnv(t *testing.T, configure ...func(*Config)) *testEnv {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Game.TurnTimeout = 0
	for _, fn := range configure {
		fn(&cfg)
	}
	require.NoError(t, cfg.Validate())

	env := &testEnv{
		rec:   &recorder{},
		clock: quartz.NewMock(t),
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	env.reg = NewRegistry(cfg, env.rec.factory, env.clock, logger,
		WithSeed(42),
		WithResultHandler(func(r Result) {
			env.mu.Lock()
			env.results = append(env.results, r)
			env.mu.Unlock()
		}))
	t.Cleanup(env.reg.Shutdown)
	return env
}

func seatToken(playerID string) string {
	return "seat-" + playerID
}

// seatHumans creates a room and joins n humans h1..hn, each holding seatToken(id)
func (env *testEnv) seatHumans(t *testing.T, n int) *Room {
	t.Helper()
	room, err := env.reg.Create()
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("h%d", i)
		_, err := room.Join(PlayerInfo{ID: id, Name: fmt.Sprintf("Human%d", i), SeatToken: seatToken(id)})
		require.NoError(t, err)
	}
	return room
}

// runUntilOver advances the mock clock one timer at a time until the game ends
func (env *testEnv) runUntilOver(t *testing.T, room *Room) game.GameState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := 0; i < 10000; i++ {
		st, err := room.Snapshot()
		require.NoError(t, err)
		if st.GamePhase == game.PhaseGameOver {
			return st
		}
		_, ok := env.clock.Peek()
		require.True(t, ok, "game stalled in %s with no timers pending", st.GamePhase)
		_, w := env.clock.AdvanceNext()
		w.MustWait(ctx)
	}
	t.Fatal("game did not finish")
	return game.GameState{}
}
