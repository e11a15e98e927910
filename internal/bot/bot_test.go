package bot

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
	"github.com/xainyuplus/Liar-s-Bar/internal/randutil"
)

func hand(ranks ...deck.Rank) []deck.Card {
	cards := make([]deck.Card, len(ranks))
	for i, r := range ranks {
		cards[i] = deck.Card{ID: i, Rank: r}
	}
	return cards
}

func assertOwnsCards(t *testing.T, h []deck.Card, ids []int) {
	t.Helper()
	owned := make(map[int]bool)
	for _, c := range h {
		owned[c.ID] = true
	}
	seen := make(map[int]bool)
	for _, id := range ids {
		assert.True(t, owned[id], "card %d not in hand", id)
		assert.False(t, seen[id], "card %d chosen twice", id)
		seen[id] = true
	}
}

func TestRandBotOpeningAlwaysPlays(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	b := NewRandBot(randutil.New(1), logger)

	for i := 0; i < 200; i++ {
		h := hand(deck.Ace, deck.King)
		d := b.Decide(game.View{Hand: h, Target: deck.Queen})
		require.Equal(t, game.ActionPlay, d.Action)
		assert.GreaterOrEqual(t, len(d.CardIDs), 1)
		assert.LessOrEqual(t, len(d.CardIDs), 2, "count is capped at hand size")
		assertOwnsCards(t, h, d.CardIDs)
	}
}

func TestRandBotRespondsToClaims(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	b := NewRandBot(randutil.New(2), logger)

	counts := make(map[game.ActionKind]int)
	for i := 0; i < 1000; i++ {
		h := hand(deck.Ace, deck.King, deck.Queen, deck.Joker, deck.Ace)
		d := b.Decide(game.View{Hand: h, Target: deck.Ace, ClaimOpen: true, LastCount: 2})
		counts[d.Action]++
		if d.Action == game.ActionPlay {
			assert.LessOrEqual(t, len(d.CardIDs), 3)
			assertOwnsCards(t, h, d.CardIDs)
		}
	}

	assert.InDelta(t, 500, counts[game.ActionChallenge], 80)
	assert.Zero(t, counts[game.ActionTrust])
}

func TestRandBotChallengesWithShortHand(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	b := NewRandBot(randutil.New(3), logger)

	for i := 0; i < 100; i++ {
		d := b.Decide(game.View{ClaimOpen: true, LastCount: 1})
		assert.Equal(t, game.ActionChallenge, d.Action)
	}
}

func TestHonestBot(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	b := NewHonestBot(randutil.New(1), logger)

	tests := []struct {
		name   string
		view   game.View
		action game.ActionKind
		ids    []int
	}{
		{
			name:   "plays matching cards",
			view:   game.View{Hand: hand(deck.King, deck.Queen, deck.Joker), Target: deck.King},
			action: game.ActionPlay,
			ids:    []int{0, 2},
		},
		{
			name:   "caps at three cards",
			view:   game.View{Hand: hand(deck.Ace, deck.Ace, deck.Ace, deck.Ace), Target: deck.Ace},
			action: game.ActionPlay,
			ids:    []int{0, 1, 2},
		},
		{
			name:   "challenges when it would have to lie",
			view:   game.View{Hand: hand(deck.Queen), Target: deck.King, ClaimOpen: true, LastCount: 1},
			action: game.ActionChallenge,
		},
		{
			name:   "challenges impossible claims",
			view:   game.View{Hand: hand(deck.King, deck.King, deck.King, deck.King, deck.King, deck.Joker), Target: deck.King, ClaimOpen: true, LastCount: 3},
			action: game.ActionChallenge,
		},
		{
			name:   "spins when asked",
			view:   game.View{PendingSpin: true},
			action: game.ActionSpin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := b.Decide(tt.view)
			assert.Equal(t, tt.action, d.Action)
			if tt.ids != nil {
				assert.Equal(t, tt.ids, d.CardIDs)
			}
		})
	}
}

func TestHonestBotForcedBluff(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	b := NewHonestBot(randutil.New(1), logger)

	h := hand(deck.Queen, deck.Ace)
	d := b.Decide(game.View{Hand: h, Target: deck.King})
	require.Equal(t, game.ActionPlay, d.Action)
	assert.Len(t, d.CardIDs, 1)
	assertOwnsCards(t, h, d.CardIDs)
}

func TestCautiousBotNeverChallenges(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	b := NewCautiousBot(logger)

	d := b.Decide(game.View{Hand: hand(deck.Ace), ClaimOpen: true, LastCount: 3})
	assert.Equal(t, game.ActionTrust, d.Action)

	d = b.Decide(game.View{Hand: hand(deck.Queen, deck.Ace), Target: deck.Ace})
	assert.Equal(t, game.ActionPlay, d.Action)
	assert.Equal(t, []int{1}, d.CardIDs)
}

func TestNew(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})

	for _, name := range Names() {
		s, err := New(name, randutil.New(1), logger)
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}

	_, err := New("telepathic", randutil.New(1), logger)
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	assert.Equal(t, "Scubby", Name(0))
	assert.Equal(t, "Scubby 2", Name(len(botNames)))
}

type fakeClock struct{}

func (fakeClock) Now() time.Time { return time.Unix(0, 0) }

type nopGateway struct{ over int }

func (g *nopGateway) Broadcast(e game.Event) {
	if e.EventType() == game.EventTypeGameOver {
		g.over++
	}
}
func (g *nopGateway) Send(string, game.Event) {}

type queue struct{ timers []game.Timer }

func (q *queue) Schedule(_ time.Duration, t game.Timer) { q.timers = append(q.timers, t) }

// Full games between built-in strategies always finish
func TestStrategiesFinishGames(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	mixes := [][]string{
		{StrategyRandom, StrategyRandom, StrategyRandom, StrategyRandom},
		{StrategyHonest, StrategyRandom, StrategyHonest, StrategyRandom},
		{StrategyCautious, StrategyRandom, StrategyHonest},
	}

	for seed := int64(1); seed <= 10; seed++ {
		for _, mix := range mixes {
			cfg := game.DefaultConfig()
			cfg.TurnTimeout = 0
			roster := game.NewRoster()
			gw := &nopGateway{}
			q := &queue{}
			rng := randutil.New(seed)
			m := game.NewManager(cfg, roster, gw, q, fakeClock{}, rng, logger)

			for i, name := range mix {
				p := game.NewPlayer(fmt.Sprintf("b%d", i), Name(i), true, cfg.ChamberSize)
				require.NoError(t, roster.Add(p))
				s, err := New(name, randutil.New(seed+int64(i)), logger)
				require.NoError(t, err)
				m.SetStrategy(p.ID, s)
			}
			require.NoError(t, m.Start())

			for step := 0; step < 20000 && m.Phase() != game.PhaseGameOver; step++ {
				fired := false
				for i, timer := range q.timers {
					if timer.Seq == m.Seq() {
						q.timers = append(q.timers[:i], q.timers[i+1:]...)
						m.HandleTimer(timer)
						fired = true
						break
					}
				}
				require.True(t, fired, "seed %d %v: stalled in %s", seed, mix, m.Phase())
			}

			assert.Equal(t, game.PhaseGameOver, m.Phase(), "seed %d %v", seed, mix)
			assert.Equal(t, 1, gw.over)
			assert.Len(t, m.Eliminated(), len(mix)-1)
		}
	}
}
