package game

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
)

var (
	// ErrInvalidAction means the action does not match the current actor or phase
	ErrInvalidAction = errors.New("action not valid in current state")
	// ErrMalformedPayload means none of the referenced cards are in the actor's hand
	ErrMalformedPayload = errors.New("malformed action payload")
	// ErrNotEnoughPlayers is returned by Start with fewer than two live players
	ErrNotEnoughPlayers = errors.New("not enough players")
	// ErrUnknownPlayer is returned for ids that are not seated
	ErrUnknownPlayer = errors.New("unknown player")
)

// Gateway delivers events to the participants of one room
type Gateway interface {
	Broadcast(event Event)
	Send(playerID string, event Event)
}

// TimerKind identifies a delayed state transition
type TimerKind int

const (
	TimerReveal TimerKind = iota + 1
	TimerNextRound
	TimerBotTurn
	TimerTurnTimeout
)

func (k TimerKind) String() string {
	switch k {
	case TimerReveal:
		return "reveal"
	case TimerNextRound:
		return "next_round"
	case TimerBotTurn:
		return "bot_turn"
	case TimerTurnTimeout:
		return "turn_timeout"
	default:
		return "unknown"
	}
}

// Timer is a delayed transition. Seq is the state version it was scheduled
// for; HandleTimer drops timers whose version has moved on.
type Timer struct {
	Kind TimerKind
	Seq  uint64
}

// Scheduler delivers a Timer back to HandleTimer after d
type Scheduler interface {
	Schedule(d time.Duration, t Timer)
}

// Clock provides the current time for turn deadlines
type Clock interface {
	Now() time.Time
}

type claim struct {
	PlayerID string
	Cards    []deck.Card
}

// Manager is the state machine for one game
type Manager struct {
	cfg        Config
	roster     *Roster
	gateway    Gateway
	scheduler  Scheduler
	clock      Clock
	rng        *rand.Rand
	logger     *log.Logger
	strategies map[string]Strategy

	phase          Phase
	target         deck.Rank
	current        int
	last           claim
	claimOpen      bool
	roulettePlayer string
	awaitingSpin   bool
	round          int
	turn           int
	eliminated     []string
	startedWith    int
	seq            uint64
}

// NewManager creates a game in the WAITING phase
func NewManager(cfg Config, roster *Roster, gateway Gateway, scheduler Scheduler, clock Clock, rng *rand.Rand, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Manager{
		cfg:        cfg,
		roster:     roster,
		gateway:    gateway,
		scheduler:  scheduler,
		clock:      clock,
		rng:        rng,
		logger:     logger,
		strategies: make(map[string]Strategy),
		phase:      PhaseWaiting,
		current:    -1,
	}
}

// SetStrategy assigns the decision policy for a bot player
func (m *Manager) SetStrategy(playerID string, s Strategy) {
	m.strategies[playerID] = s
}

// Phase returns the current phase
func (m *Manager) Phase() Phase { return m.phase }

// Target returns the current round's target rank
func (m *Manager) Target() deck.Rank { return m.target }

// Round returns the number of rounds started so far
func (m *Manager) Round() int { return m.round }

// Seq returns the current state version
func (m *Manager) Seq() uint64 { return m.seq }

// Eliminated returns the eliminated player ids in elimination order
func (m *Manager) Eliminated() []string {
	return append([]string(nil), m.eliminated...)
}

// CurrentPlayerID returns the id of the player whose turn it is, if any
func (m *Manager) CurrentPlayerID() string {
	if !m.phase.IsTurn() {
		return ""
	}
	if p := m.currentPlayer(); p != nil {
		return p.ID
	}
	return ""
}

// CanStart reports whether Start would succeed, without changing anything
func (m *Manager) CanStart() error {
	if m.phase != PhaseWaiting {
		return ErrInvalidAction
	}
	live := m.roster.LiveCount()
	if live < 2 {
		return ErrNotEnoughPlayers
	}
	if live*m.cfg.HandSize > deck.Size {
		return fmt.Errorf("%d players with %d cards each: %w", live, m.cfg.HandSize, deck.ErrInsufficientCards)
	}
	return nil
}

// Start deals the first round
func (m *Manager) Start() error {
	if err := m.CanStart(); err != nil {
		return err
	}

	live := m.roster.LiveCount()
	m.startedWith = live
	for _, p := range m.roster.order {
		p.Revolver = NewRevolver(m.cfg.ChamberSize)
		if m.cfg.RouletteOdds == OddsRandom {
			p.Revolver.Load(m.rng)
		}
	}

	m.logger.Info("Game started", "players", live, "threshold", m.threshold())
	m.StartRound()
	return nil
}

func (m *Manager) threshold() int {
	if m.cfg.EliminationThreshold > 0 {
		return m.cfg.EliminationThreshold
	}
	return m.startedWith - 1
}

// IsOver reports whether the termination condition holds
func (m *Manager) IsOver() bool {
	return len(m.eliminated) >= m.threshold() || m.roster.LiveCount() < 2
}

// StartRound deals a new round, or ends the game if the elimination
// threshold has been reached.
func (m *Manager) StartRound() {
	m.bump()
	if m.IsOver() {
		m.finish()
		return
	}

	live := m.roster.Live()
	d := deck.NewDeck(m.rng)
	hands, err := d.DealHands(len(live), m.cfg.HandSize)
	if err != nil {
		m.logger.Error("Cannot deal round", "players", len(live), "handSize", m.cfg.HandSize, "error", err)
		m.finish()
		return
	}

	for _, p := range m.roster.order {
		p.Hand = nil
	}
	for i, p := range live {
		p.SetHand(hands[i])
	}

	m.round++
	m.target = deck.RandomTarget(m.rng)
	m.last = claim{}
	m.claimOpen = false
	m.roulettePlayer = ""
	m.awaitingSpin = false

	m.logger.Debug("Round started", "round", m.round, "target", m.target, "live", len(live))
	m.gateway.Broadcast(RoundStartedEvent{TargetCard: m.target, RoundNumber: m.round})
	for _, p := range live {
		m.gateway.Send(p.ID, CardsDealtEvent{Cards: p.HandCopy()})
	}

	idx, ok := NextLiveIndex(m.roster.order, -1)
	if !ok {
		m.finish()
		return
	}
	m.current = idx
	m.phase = PhaseAwaitingPlay
	m.beginTurn()
}

// HandlePlay places 1-3 cards from the actor's hand as a claim of the
// target rank. Ids the player does not hold are ignored.
func (m *Manager) HandlePlay(playerID string, cardIDs []int) error {
	actor, err := m.actor(playerID)
	if err != nil {
		return err
	}
	ids := distinctIDs(cardIDs)
	if len(ids) < 1 || len(ids) > 3 {
		return ErrInvalidAction
	}
	played := actor.RemoveCards(ids)
	if len(played) == 0 {
		return ErrMalformedPayload
	}

	actor.LastAction = m.clock.Now()
	m.last = claim{PlayerID: actor.ID, Cards: played}
	m.claimOpen = true

	m.logger.Debug("Cards played", "player", actor.Name, "cards", deck.FormatCards(played), "target", m.target)
	m.gateway.Broadcast(CardsPlayedEvent{PlayerID: actor.ID, CardsNum: len(played)})
	m.advance()
	return nil
}

// HandleChallenge reveals the open claim. The liar draws if it was a bluff,
// otherwise the challenger does.
func (m *Manager) HandleChallenge(challengerID string) error {
	challenger, err := m.actor(challengerID)
	if err != nil {
		return err
	}
	if !m.claimOpen {
		return ErrInvalidAction
	}

	bluff := IsBluff(m.last.Cards, m.target)
	loser := challenger.ID
	if bluff {
		loser = m.last.PlayerID
	}

	challenger.LastAction = m.clock.Now()
	m.claimOpen = false
	m.phase = PhaseChallengePending
	m.roulettePlayer = loser
	m.bump()

	m.logger.Debug("Challenge", "challenger", challenger.Name, "accused", m.last.PlayerID, "bluff", bluff)
	m.gateway.Broadcast(ChallengeResultEvent{
		ChallengerID:    challenger.ID,
		LastPlayerID:    m.last.PlayerID,
		LastPlayedCards: append([]deck.Card(nil), m.last.Cards...),
		Result:          bluff,
	})
	m.broadcastState()
	m.schedule(m.cfg.RevealDelay, TimerReveal)
	return nil
}

// HandleTrust accepts the open claim and passes the turn on
func (m *Manager) HandleTrust(playerID string) error {
	p, err := m.actor(playerID)
	if err != nil {
		return err
	}
	if !m.claimOpen {
		return ErrInvalidAction
	}

	p.LastAction = m.clock.Now()
	m.claimOpen = false
	m.gateway.Broadcast(TrustAcceptedEvent{PlayerID: p.ID, LastPlayerID: m.last.PlayerID})
	m.advance()
	return nil
}

// HandleSpin triggers a pending manual elimination draw
func (m *Manager) HandleSpin(playerID string) error {
	if m.phase != PhaseRoulette || !m.awaitingSpin || m.roulettePlayer != playerID {
		return ErrInvalidAction
	}
	return m.StartRoulette(playerID)
}

// StartRoulette performs the elimination draw for playerID and schedules the
// next round whatever the outcome.
func (m *Manager) StartRoulette(playerID string) error {
	p := m.roster.Get(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !p.IsLive() {
		return ErrInvalidAction
	}

	if !m.awaitingSpin {
		m.gateway.Broadcast(RouletteStartEvent{PlayerID: p.ID})
	}
	m.phase = PhaseRoulette
	m.awaitingSpin = false
	m.roulettePlayer = p.ID
	m.bump()

	fatal := p.Revolver.Pull()
	m.gateway.Broadcast(RouletteResultEvent{PlayerID: p.ID, Result: fatal, BulletCount: p.Revolver.Remaining()})
	if fatal {
		p.MarkEliminated()
		m.eliminated = append(m.eliminated, p.ID)
		m.gateway.Broadcast(PlayerEliminatedEvent{PlayerID: p.ID, Reason: ReasonRoulette})
		m.logger.Info("Player eliminated", "player", p.Name, "eliminated", len(m.eliminated))
	} else {
		m.logger.Debug("Roulette survived", "player", p.Name, "remaining", p.Revolver.Remaining())
	}

	m.broadcastState()
	m.schedule(m.cfg.NextRoundDelay, TimerNextRound)
	return nil
}

// HandleTimer applies a delayed transition. Timers scheduled for an earlier
// state version are ignored.
func (m *Manager) HandleTimer(t Timer) {
	if t.Seq != m.seq {
		m.logger.Debug("Dropping stale timer", "kind", t.Kind, "seq", t.Seq, "current", m.seq)
		return
	}

	switch t.Kind {
	case TimerReveal:
		if m.phase == PhaseChallengePending {
			m.reveal()
		}
	case TimerNextRound:
		if m.phase == PhaseRoundStarting || m.phase == PhaseRoulette {
			m.StartRound()
		}
	case TimerBotTurn:
		m.runBot()
	case TimerTurnTimeout:
		m.timeout()
	}
}

// RemovePlayer forfeits a player who left mid-game. They stay in the roster
// as eliminated so standings remain complete.
func (m *Manager) RemovePlayer(playerID string) {
	p := m.roster.Get(playerID)
	if p == nil || !p.IsLive() || m.phase == PhaseWaiting || m.phase == PhaseGameOver {
		return
	}

	wasActor := m.phase.IsTurn() && m.currentPlayer() == p
	pendingDraw := m.roulettePlayer == p.ID &&
		(m.phase == PhaseChallengePending || (m.phase == PhaseRoulette && m.awaitingSpin))
	wasClaimant := m.phase.IsTurn() && m.claimOpen && m.last.PlayerID == p.ID

	p.MarkEliminated()
	m.eliminated = append(m.eliminated, p.ID)
	m.logger.Info("Player forfeited", "player", p.Name)
	m.gateway.Broadcast(PlayerEliminatedEvent{PlayerID: p.ID, Reason: ReasonForfeit})

	switch {
	case pendingDraw:
		m.toRoundStarting()
	case m.roster.LiveCount() < 2 && (m.phase.IsTurn() || m.phase == PhaseChallengePending || m.awaitingSpin):
		m.toRoundStarting()
	case wasActor:
		m.advance()
	case wasClaimant:
		m.claimOpen = false
		m.phase = PhaseAwaitingPlay
		m.beginTurn()
	default:
		m.broadcastState()
	}
}

// Snapshot returns the public game state
func (m *Manager) Snapshot() GameState {
	st := GameState{
		GamePhase:         m.phase,
		CurrentPlayerID:   m.CurrentPlayerID(),
		RoulettePlayerID:  m.roulettePlayer,
		RoundNumber:       m.round,
		TurnNumber:        m.turn,
		EliminatedPlayers: append([]string{}, m.eliminated...),
		ClaimOpen:         m.claimOpen,
		Players:           m.roster.Summaries(),
	}
	if m.round > 0 {
		st.TargetCard = m.target.String()
	}
	if m.last.PlayerID != "" {
		st.LastPlayerID = m.last.PlayerID
		st.LastPlayedCount = len(m.last.Cards)
	}
	return st
}

// PrivateHand returns a copy of a player's hand
func (m *Manager) PrivateHand(playerID string) []deck.Card {
	p := m.roster.Get(playerID)
	if p == nil {
		return nil
	}
	return p.HandCopy()
}

// Resync sends the public snapshot and the player's own hand to one player
func (m *Manager) Resync(playerID string) {
	m.gateway.Send(playerID, SyncGameStateEvent{m.Snapshot()})
	if m.round > 0 && m.phase != PhaseGameOver {
		m.gateway.Send(playerID, CardsDealtEvent{Cards: m.PrivateHand(playerID)})
	}
}

// View returns what playerID may see when deciding
func (m *Manager) View(playerID string) View {
	v := View{
		State:     m.Snapshot(),
		Self:      playerID,
		Hand:      m.PrivateHand(playerID),
		Target:    m.target,
		ClaimOpen: m.claimOpen,
	}
	if m.claimOpen {
		v.LastCount = len(m.last.Cards)
	}
	v.PendingSpin = m.phase == PhaseRoulette && m.awaitingSpin && m.roulettePlayer == playerID
	return v
}

func (m *Manager) actor(playerID string) (*Player, error) {
	if !m.phase.IsTurn() {
		return nil, ErrInvalidAction
	}
	p := m.currentPlayer()
	if p == nil || p.ID != playerID {
		return nil, ErrInvalidAction
	}
	return p, nil
}

func (m *Manager) currentPlayer() *Player {
	return m.roster.At(m.current)
}

// pendingActor returns whoever the game is waiting on
func (m *Manager) pendingActor() *Player {
	switch {
	case m.phase.IsTurn():
		return m.currentPlayer()
	case m.phase == PhaseRoulette && m.awaitingSpin:
		return m.roster.Get(m.roulettePlayer)
	}
	return nil
}

func (m *Manager) advance() {
	if m.roster.LiveCount() < 2 {
		m.toRoundStarting()
		return
	}
	idx, ok := NextLiveIndex(m.roster.order, m.current)
	if !ok {
		m.finish()
		return
	}
	m.current = idx
	m.turn++
	if m.claimOpen {
		m.phase = PhaseChallengeWindow
	} else {
		m.phase = PhaseAwaitingPlay
	}
	m.beginTurn()
}

func (m *Manager) beginTurn() {
	actor := m.currentPlayer()
	if actor == nil {
		m.finish()
		return
	}

	if !m.claimOpen && !actor.HasCards() {
		if !m.anyLiveHasCards() {
			m.logger.Debug("Round exhausted", "round", m.round)
			m.toRoundStarting()
			return
		}
		m.gateway.Broadcast(PlayerPassedEvent{PlayerID: actor.ID})
		m.advance()
		return
	}

	m.bump()
	var deadline int64
	if m.cfg.TurnTimeout > 0 {
		deadline = m.clock.Now().Add(m.cfg.TurnTimeout).UnixMilli()
	}
	m.gateway.Broadcast(StartTimerEvent{PlayerID: actor.ID, Deadline: deadline})
	m.broadcastState()

	if actor.IsBot {
		m.schedule(m.cfg.BotDelay, TimerBotTurn)
	}
	if m.cfg.TurnTimeout > 0 {
		m.schedule(m.cfg.TurnTimeout, TimerTurnTimeout)
	}
}

func (m *Manager) anyLiveHasCards() bool {
	for _, p := range m.roster.order {
		if p.IsLive() && p.HasCards() {
			return true
		}
	}
	return false
}

func (m *Manager) reveal() {
	p := m.roster.Get(m.roulettePlayer)
	if p == nil || !p.IsLive() {
		m.toRoundStarting()
		return
	}

	if m.cfg.RouletteMode == RouletteManual {
		m.phase = PhaseRoulette
		m.awaitingSpin = true
		m.bump()
		m.gateway.Broadcast(RouletteStartEvent{PlayerID: p.ID})
		m.broadcastState()
		if p.IsBot {
			m.schedule(m.cfg.BotDelay, TimerBotTurn)
		}
		if m.cfg.TurnTimeout > 0 {
			m.schedule(m.cfg.TurnTimeout, TimerTurnTimeout)
		}
		return
	}

	if err := m.StartRoulette(p.ID); err != nil {
		m.logger.Error("Roulette failed", "player", p.ID, "error", err)
		m.toRoundStarting()
	}
}

func (m *Manager) toRoundStarting() {
	m.phase = PhaseRoundStarting
	m.claimOpen = false
	m.awaitingSpin = false
	m.bump()
	m.broadcastState()
	m.schedule(m.cfg.NextRoundDelay, TimerNextRound)
}

func (m *Manager) finish() {
	if m.phase == PhaseGameOver {
		return
	}
	m.phase = PhaseGameOver
	m.claimOpen = false
	m.awaitingSpin = false
	m.bump()

	live := m.roster.Live()
	alive := make([]PlayerSummary, len(live))
	for i, p := range live {
		alive[i] = p.Summary()
	}

	m.logger.Info("Game over", "rounds", m.round, "survivors", len(alive))
	m.gateway.Broadcast(GameOverEvent{
		AlivePlayers: alive,
		Eliminated:   append([]string{}, m.eliminated...),
		Rounds:       m.round,
	})
	m.broadcastState()
}

func (m *Manager) runBot() {
	p := m.pendingActor()
	if p == nil || !p.IsBot {
		return
	}

	strategy := m.strategies[p.ID]
	if strategy == nil {
		m.apply(p.ID, m.autoDecision(p))
		return
	}

	d := strategy.Decide(m.View(p.ID))
	if err := m.apply(p.ID, d); err != nil {
		m.logger.Warn("Bot decision rejected, using fallback", "player", p.Name, "action", d.Action, "error", err)
		if err := m.apply(p.ID, m.autoDecision(p)); err != nil {
			m.logger.Error("Fallback decision also failed", "player", p.Name, "error", err)
		}
	}
}

func (m *Manager) timeout() {
	p := m.pendingActor()
	if p == nil {
		return
	}
	d := m.autoDecision(p)
	m.logger.Info("Turn timed out", "player", p.Name, "action", d.Action)
	m.gateway.Broadcast(PlayerTimeoutEvent{PlayerID: p.ID, Action: d.Action.String()})
	if err := m.apply(p.ID, d); err != nil {
		m.logger.Error("Timeout action failed", "player", p.Name, "error", err)
	}
}

// autoDecision is the action taken for a player who did not act in time:
// spin a pending draw, trust an open claim, or play one random card.
func (m *Manager) autoDecision(p *Player) Decision {
	switch {
	case m.phase == PhaseRoulette && m.awaitingSpin:
		return Spin()
	case m.claimOpen:
		return Trust("timeout")
	case p.HasCards():
		c := p.Hand[m.rng.IntN(len(p.Hand))]
		return Play([]int{c.ID}, "timeout")
	}
	return Trust("timeout")
}

func (m *Manager) apply(playerID string, d Decision) error {
	switch d.Action {
	case ActionPlay:
		return m.HandlePlay(playerID, d.CardIDs)
	case ActionChallenge:
		return m.HandleChallenge(playerID)
	case ActionTrust:
		return m.HandleTrust(playerID)
	case ActionSpin:
		return m.HandleSpin(playerID)
	default:
		return ErrInvalidAction
	}
}

func (m *Manager) broadcastState() {
	m.gateway.Broadcast(SyncGameStateEvent{m.Snapshot()})
}

func (m *Manager) schedule(d time.Duration, kind TimerKind) {
	m.scheduler.Schedule(d, Timer{Kind: kind, Seq: m.seq})
}

func (m *Manager) bump() {
	m.seq++
}
