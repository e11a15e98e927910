package client

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
	"github.com/xainyuplus/Liar-s-Bar/internal/protocol"
	"github.com/xainyuplus/Liar-s-Bar/internal/room"
)

// RemoteBot plays a seat over the network using a local Strategy
type RemoteBot struct {
	client   *Client
	strategy game.Strategy
	logger   *log.Logger
	think    time.Duration

	mu          sync.Mutex
	state       game.GameState
	hand        []deck.Card
	pendingSpin bool
	lastTurn    [2]int
	result      *game.GameOverEvent
	done        chan struct{}
	doneOnce    sync.Once
}

// BotOption configures a RemoteBot
type BotOption func(*RemoteBot)

// WithThinkTime delays every decision by d
func WithThinkTime(d time.Duration) BotOption {
	return func(b *RemoteBot) { b.think = d }
}

// NewRemoteBot attaches a strategy to a client. Call before joining a room
// so that no events are missed.
func NewRemoteBot(c *Client, strategy game.Strategy, logger *log.Logger, opts ...BotOption) *RemoteBot {
	b := &RemoteBot{
		client:   c,
		strategy: strategy,
		logger:   logger.WithPrefix("remote-bot"),
		lastTurn: [2]int{-1, -1},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	c.On(protocol.MessageType(game.EventTypeCardsDealt), b.onCardsDealt)
	c.On(protocol.MessageType(game.EventTypeSyncGameState), b.onSync)
	c.On(protocol.MessageType(game.EventTypeRouletteStart), b.onRouletteStart)
	c.On(protocol.MessageType(game.EventTypeRouletteResult), b.onRouletteResult)
	c.On(protocol.MessageType(game.EventTypeGameOver), b.onGameOver)
	c.On(protocol.MessageType(room.EventTypeRoomClosed), func(*protocol.Message) { b.finish() })
	return b
}

// Wait blocks until the game is over, the connection drops or ctx ends.
// It returns the final result when the game finished.
func (b *RemoteBot) Wait(ctx context.Context) (*game.GameOverEvent, error) {
	select {
	case <-b.done:
	case <-b.client.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.result == nil {
		return nil, ErrNotConnected
	}
	return b.result, nil
}

func (b *RemoteBot) finish() {
	b.doneOnce.Do(func() { close(b.done) })
}

func (b *RemoteBot) onCardsDealt(msg *protocol.Message) {
	var ev game.CardsDealtEvent
	if err := decode(msg, &ev); err != nil {
		b.logger.Warn("Bad cards_dealt", "error", err)
		return
	}
	b.mu.Lock()
	b.hand = ev.Cards
	b.mu.Unlock()
}

func (b *RemoteBot) onRouletteStart(msg *protocol.Message) {
	var ev game.RouletteStartEvent
	if err := decode(msg, &ev); err != nil {
		return
	}
	if ev.PlayerID == b.client.PlayerID() {
		b.mu.Lock()
		b.pendingSpin = true
		b.mu.Unlock()
	}
}

func (b *RemoteBot) onRouletteResult(msg *protocol.Message) {
	var ev game.RouletteResultEvent
	if err := decode(msg, &ev); err != nil {
		return
	}
	if ev.PlayerID == b.client.PlayerID() {
		b.mu.Lock()
		b.pendingSpin = false
		b.mu.Unlock()
	}
}

func (b *RemoteBot) onGameOver(msg *protocol.Message) {
	var ev game.GameOverEvent
	if err := decode(msg, &ev); err != nil {
		b.logger.Warn("Bad game_over", "error", err)
	}
	b.mu.Lock()
	b.result = &ev
	b.mu.Unlock()
	b.finish()
}

func (b *RemoteBot) onSync(msg *protocol.Message) {
	var st game.GameState
	if err := decode(msg, &st); err != nil {
		b.logger.Warn("Bad sync_game_state", "error", err)
		return
	}
	self := b.client.PlayerID()

	b.mu.Lock()
	b.state = st
	view, ok := b.viewLocked(self)
	b.mu.Unlock()
	if !ok {
		return
	}

	decision := b.strategy.Decide(view)
	b.logger.Debug("Decided", "action", decision.Action, "cards", decision.CardIDs, "reason", decision.Reasoning)
	go b.act(decision)
}

// viewLocked decides whether it is our move and builds the strategy view
func (b *RemoteBot) viewLocked(self string) (game.View, bool) {
	st := b.state
	key := [2]int{st.RoundNumber, st.TurnNumber}

	pendingSpin := b.pendingSpin && st.GamePhase == game.PhaseRoulette && st.RoulettePlayerID == self
	ourTurn := st.GamePhase.IsTurn() && st.CurrentPlayerID == self && key != b.lastTurn
	if !pendingSpin && !ourTurn {
		return game.View{}, false
	}
	if pendingSpin {
		b.pendingSpin = false
	} else {
		b.lastTurn = key
	}

	target, _ := deck.ParseRank(st.TargetCard)
	view := game.View{
		State:       st,
		Self:        self,
		Hand:        append([]deck.Card(nil), b.hand...),
		Target:      target,
		ClaimOpen:   st.ClaimOpen,
		PendingSpin: pendingSpin,
	}
	if st.ClaimOpen {
		view.LastCount = st.LastPlayedCount
	}
	return view, true
}

func (b *RemoteBot) act(d game.Decision) {
	if b.think > 0 {
		select {
		case <-time.After(b.think):
		case <-b.client.Done():
			return
		}
	}

	var err error
	switch d.Action {
	case game.ActionPlay:
		err = b.client.Play(d.CardIDs)
		if err == nil {
			b.removeFromHand(d.CardIDs)
		}
	case game.ActionChallenge:
		err = b.client.Challenge()
	case game.ActionTrust:
		err = b.client.Trust()
	case game.ActionSpin:
		err = b.client.Spin()
	}
	if err != nil {
		b.logger.Warn("Failed to send decision", "action", d.Action, "error", err)
	}
}

func (b *RemoteBot) removeFromHand(ids []int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hand = slices.DeleteFunc(b.hand, func(c deck.Card) bool { return slices.Contains(ids, c.ID) })
}
