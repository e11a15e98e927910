package room

import (
	"context"
	"crypto/subtle"
	"errors"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/xainyuplus/Liar-s-Bar/internal/bot"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
	"github.com/xainyuplus/Liar-s-Bar/internal/randutil"
)

// Phase is the lifecycle state of a room
type Phase string

const (
	PhaseWaiting Phase = "WAITING"
	PhasePlaying Phase = "PLAYING"
	PhaseEnded   Phase = "ENDED"
)

// PlayerInfo describes a player asking to join
type PlayerInfo struct {
	ID     string
	Name   string
	Avatar string

	// SeatToken authorises a later Rejoin. Generated when empty.
	SeatToken string
}

// Info is a point-in-time summary of a room, safe to read from any goroutine
type Info struct {
	ID              string               `json:"roomId"`
	HostID          string               `json:"hostId"`
	Phase           Phase                `json:"phase"`
	PlayerCount     int                  `json:"playerCount"`
	MaxPlayers      int                  `json:"maxPlayers"`
	ConnectedHumans int                  `json:"connectedHumans"`
	Round           int                  `json:"round"`
	Players         []game.PlayerSummary `json:"players"`
	CreatedAt       time.Time            `json:"createdAt"`
	LastActivity    time.Time            `json:"lastActivity"`
	AbandonedSince  time.Time            `json:"-"`
	EndedAt         time.Time            `json:"-"`
	Closed          bool                 `json:"-"`
}

// Room runs one game session. Every mutation happens on a single worker
// goroutine fed by the inbox channel; exported methods only submit commands
// and wait for replies.
type Room struct {
	id       string
	cfg      Config
	gateway  game.Gateway
	clock    quartz.Clock
	logger   *log.Logger
	onResult func(Result)

	inbox     chan command
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	// owned by the worker
	rng          *rand.Rand
	roster       *game.Roster
	manager      *game.Manager
	strategies   map[string]game.Strategy
	hostID       string
	phase        Phase
	timers       map[uint64]*quartz.Timer
	nextTimer    uint64
	botCount     int
	elimRound    map[string]int
	createdAt    time.Time
	lastActivity time.Time
	endedAt      time.Time

	// zero while a human is connected
	abandonedSince time.Time

	mu   sync.RWMutex
	info Info
}

func newRoom(id string, cfg Config, gateway game.Gateway, clock quartz.Clock, rng *rand.Rand, logger *log.Logger, onResult func(Result)) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	now := clock.Now()
	r := &Room{
		id:           id,
		cfg:          cfg,
		gateway:      gateway,
		clock:        clock,
		logger:       logger.WithPrefix("room").With("room", id),
		onResult:     onResult,
		inbox:        make(chan command, cfg.InboxSize),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		rng:          rng,
		roster:       game.NewRoster(),
		strategies:   make(map[string]game.Strategy),
		phase:        PhaseWaiting,
		timers:       make(map[uint64]*quartz.Timer),
		elimRound:    make(map[string]int),
		createdAt:    now,
		lastActivity: now,
	}
	r.publish()
	go r.run()
	return r
}

// ID returns the room identifier
func (r *Room) ID() string {
	return r.id
}

// Info returns the latest published summary of the room
func (r *Room) Info() Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// Join seats a new human player. The first player to join becomes host.
func (r *Room) Join(info PlayerInfo) (game.PlayerSummary, error) {
	reply := make(chan joinResult, 1)
	if err := r.submit(joinCmd{info: info, reply: reply}); err != nil {
		return game.PlayerSummary{}, err
	}
	res, err := await(r, reply)
	if err != nil {
		return game.PlayerSummary{}, err
	}
	return res.player, res.err
}

// VerifySeat checks that token belongs to the seated human playerID
func (r *Room) VerifySeat(playerID, token string) error {
	return r.do(func(reply chan error) command {
		return verifySeatCmd{playerID: playerID, token: token, reply: reply}
	})
}

// Rejoin reconnects a seated player and resends their view of the game.
// token must be the seat token issued when the player joined.
func (r *Room) Rejoin(playerID, token string) (game.PlayerSummary, error) {
	reply := make(chan joinResult, 1)
	if err := r.submit(rejoinCmd{playerID: playerID, token: token, reply: reply}); err != nil {
		return game.PlayerSummary{}, err
	}
	res, err := await(r, reply)
	if err != nil {
		return game.PlayerSummary{}, err
	}
	return res.player, res.err
}

// Leave removes a player before the game starts, or forfeits them after
func (r *Room) Leave(playerID string) error {
	return r.do(func(reply chan error) command { return leaveCmd{playerID: playerID, reply: reply} })
}

// Disconnect records a lost connection
func (r *Room) Disconnect(playerID string) error {
	return r.do(func(reply chan error) command { return disconnectCmd{playerID: playerID, reply: reply} })
}

// AddBots seats count bots. Only the host may add bots.
func (r *Room) AddBots(requester string, count int) error {
	return r.do(func(reply chan error) command { return addBotsCmd{requester: requester, count: count, reply: reply} })
}

// StartGame begins the game. Only the host may start it.
func (r *Room) StartGame(requester string) error {
	return r.do(func(reply chan error) command { return startCmd{requester: requester, reply: reply} })
}

// Play submits a claim of the given cards
func (r *Room) Play(playerID string, cardIDs []int) error {
	return r.act(playerID, game.ActionPlay, cardIDs)
}

// Challenge calls the previous claim a lie
func (r *Room) Challenge(playerID string) error {
	return r.act(playerID, game.ActionChallenge, nil)
}

// Trust accepts the previous claim
func (r *Room) Trust(playerID string) error {
	return r.act(playerID, game.ActionTrust, nil)
}

// Spin pulls the trigger on a pending manual elimination draw
func (r *Room) Spin(playerID string) error {
	return r.act(playerID, game.ActionSpin, nil)
}

// Snapshot returns the public game state as seen by the worker
func (r *Room) Snapshot() (game.GameState, error) {
	reply := make(chan game.GameState, 1)
	if err := r.submit(snapshotCmd{reply: reply}); err != nil {
		return game.GameState{}, err
	}
	return await(r, reply)
}

// Close stops the worker and all pending timers. Further submissions fail
// with ErrRoomClosed.
func (r *Room) Close(reason string) {
	r.closeOnce.Do(func() {
		r.cancel()
		<-r.done

		r.mu.Lock()
		r.info.Closed = true
		r.mu.Unlock()

		r.logger.Info("Room closed", "reason", reason)
		r.gateway.Broadcast(RoomClosedEvent{Reason: reason})
	})
}

// Done is closed once the worker has exited
func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) act(playerID string, action game.ActionKind, cardIDs []int) error {
	return r.do(func(reply chan error) command {
		return actionCmd{playerID: playerID, action: action, cardIDs: cardIDs, reply: reply}
	})
}

func (r *Room) do(build func(reply chan error) command) error {
	reply := make(chan error, 1)
	if err := r.submit(build(reply)); err != nil {
		return err
	}
	err, waitErr := await(r, reply)
	if waitErr != nil {
		return waitErr
	}
	return err
}

func (r *Room) submit(cmd command) error {
	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	default:
	}
	select {
	case r.inbox <- cmd:
		return nil
	case <-r.ctx.Done():
		return ErrRoomClosed
	}
}

func await[T any](r *Room, reply chan T) (T, error) {
	select {
	case v := <-reply:
		return v, nil
	case <-r.done:
		select {
		case v := <-reply:
			return v, nil
		default:
		}
		var zero T
		return zero, ErrRoomClosed
	}
}

func (r *Room) run() {
	defer close(r.done)
	defer r.stopTimers()

	for {
		select {
		case <-r.ctx.Done():
			return
		case cmd := <-r.inbox:
			r.handle(cmd)
			r.publish()
		}
	}
}

func (r *Room) handle(cmd command) {
	switch c := cmd.(type) {
	case joinCmd:
		player, err := r.handleJoin(c.info)
		c.reply <- joinResult{player: player, err: err}
	case rejoinCmd:
		player, err := r.handleRejoin(c.playerID, c.token)
		c.reply <- joinResult{player: player, err: err}
	case verifySeatCmd:
		_, err := r.seat(c.playerID, c.token)
		c.reply <- err
	case leaveCmd:
		c.reply <- r.handleLeave(c.playerID)
	case disconnectCmd:
		c.reply <- r.handleDisconnect(c.playerID)
	case addBotsCmd:
		c.reply <- r.handleAddBots(c.requester, c.count)
	case startCmd:
		c.reply <- r.handleStart(c.requester)
	case actionCmd:
		c.reply <- r.handleAction(c)
	case snapshotCmd:
		c.reply <- r.snapshot()
	case timerFired:
		delete(r.timers, c.id)
		if r.manager != nil {
			r.manager.HandleTimer(c.timer)
			r.touch()
		}
	default:
		r.logger.Error("Unknown command", "type", cmd)
	}
}

func (r *Room) handleJoin(info PlayerInfo) (game.PlayerSummary, error) {
	if r.phase != PhaseWaiting {
		return game.PlayerSummary{}, ErrGameInProgress
	}
	if r.roster.Len() >= r.cfg.MaxPlayers {
		return game.PlayerSummary{}, ErrCapacity
	}

	id := info.ID
	if id == "" {
		id = uuid.NewString()
	}
	p := game.NewPlayer(id, info.Name, false, r.cfg.Game.ChamberSize)
	p.Avatar = info.Avatar
	p.SeatToken = info.SeatToken
	if p.SeatToken == "" {
		p.SeatToken = uuid.NewString()
	}
	if r.hostID == "" {
		p.IsHost = true
		r.hostID = p.ID
	}
	if err := r.roster.Add(p); err != nil {
		return game.PlayerSummary{}, err
	}

	r.touch()
	r.logger.Info("Player joined", "player", p.Name, "id", p.ID, "host", p.IsHost)
	r.gateway.Broadcast(PlayerJoinedEvent{Player: p.Summary(), Players: r.roster.Summaries()})
	return p.Summary(), nil
}

// seat returns the human holding playerID if token matches its seat token.
// A mismatch is indistinguishable from an unknown player.
func (r *Room) seat(playerID, token string) (*game.Player, error) {
	p := r.roster.Get(playerID)
	if p == nil || p.IsBot || p.SeatToken == "" ||
		subtle.ConstantTimeCompare([]byte(p.SeatToken), []byte(token)) != 1 {
		return nil, ErrUnknownPlayer
	}
	return p, nil
}

func (r *Room) handleRejoin(playerID, token string) (game.PlayerSummary, error) {
	p, err := r.seat(playerID, token)
	if err != nil {
		r.logger.Warn("Rejected rejoin", "id", playerID)
		return game.PlayerSummary{}, err
	}

	p.Reconnect()
	r.touch()
	r.logger.Info("Player rejoined", "player", p.Name)
	if r.manager != nil {
		r.manager.Resync(p.ID)
	} else {
		r.gateway.Send(p.ID, PlayerJoinedEvent{Player: p.Summary(), Players: r.roster.Summaries()})
	}
	return p.Summary(), nil
}

func (r *Room) handleLeave(playerID string) error {
	p := r.roster.Get(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	r.touch()

	switch r.phase {
	case PhaseWaiting:
		r.roster.Remove(playerID)
		delete(r.strategies, playerID)
	case PhasePlaying:
		p.Disconnect()
		r.manager.RemovePlayer(playerID)
	default:
		p.Disconnect()
	}

	r.logger.Info("Player left", "player", p.Name, "phase", r.phase)
	r.gateway.Broadcast(PlayerLeftEvent{PlayerID: playerID, Players: r.roster.Summaries()})
	if p.IsHost {
		r.migrateHost(p)
	}
	return nil
}

func (r *Room) handleDisconnect(playerID string) error {
	p := r.roster.Get(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if r.phase == PhaseWaiting {
		return r.handleLeave(playerID)
	}

	p.Disconnect()
	r.touch()
	r.logger.Info("Player disconnected", "player", p.Name)
	if r.manager != nil {
		r.gateway.Broadcast(game.SyncGameStateEvent{GameState: r.manager.Snapshot()})
	}
	return nil
}

func (r *Room) migrateHost(old *game.Player) {
	old.IsHost = false
	r.hostID = ""
	for _, p := range r.roster.Players() {
		if !p.IsBot && p.Connected && p.ID != old.ID {
			p.IsHost = true
			r.hostID = p.ID
			break
		}
	}
	if r.hostID != "" {
		r.logger.Info("Host changed", "host", r.hostID)
		r.gateway.Broadcast(HostChangedEvent{HostID: r.hostID})
	}
}

func (r *Room) handleAddBots(requester string, count int) error {
	if requester != r.hostID {
		return ErrUnauthorized
	}
	if r.phase != PhaseWaiting {
		return ErrGameInProgress
	}
	if count < 1 {
		count = 1
	}
	if r.roster.Len()+count > r.cfg.MaxPlayers {
		return ErrCapacity
	}

	for i := 0; i < count; i++ {
		strategy, err := bot.New(r.cfg.BotStrategy, randutil.Derive(r.rng), r.logger)
		if err != nil {
			return err
		}
		p := game.NewPlayer(uuid.NewString(), bot.Name(r.botCount), true, r.cfg.Game.ChamberSize)
		r.botCount++
		if err := r.roster.Add(p); err != nil {
			return err
		}
		r.strategies[p.ID] = strategy
		r.logger.Info("Bot added", "bot", p.Name, "strategy", r.cfg.BotStrategy)
		r.gateway.Broadcast(PlayerJoinedEvent{Player: p.Summary(), Players: r.roster.Summaries()})
	}
	r.touch()
	return nil
}

func (r *Room) handleStart(requester string) error {
	if requester != r.hostID {
		return ErrUnauthorized
	}
	if r.phase != PhaseWaiting {
		return ErrGameInProgress
	}
	if r.roster.Len() < r.cfg.MinPlayers {
		return ErrNotEnoughPlayers
	}

	r.manager = game.NewManager(r.cfg.Game, r.roster, observer{r}, scheduler{r}, managerClock{r.clock}, r.rng, r.logger)
	for id, s := range r.strategies {
		r.manager.SetStrategy(id, s)
	}

	if err := r.manager.CanStart(); err != nil {
		r.logger.Error("Refusing to start game", "error", err)
		r.manager = nil
		return err
	}

	r.phase = PhasePlaying
	r.touch()
	r.gateway.Broadcast(GameStartedEvent{Players: r.roster.Summaries()})
	if err := r.manager.Start(); err != nil {
		r.logger.Error("Failed to start game", "error", err)
		r.phase = PhaseWaiting
		r.manager = nil
		return err
	}
	return nil
}

func (r *Room) handleAction(c actionCmd) error {
	if r.manager == nil || r.phase != PhasePlaying {
		r.logger.Debug("Dropping action outside of a game", "player", c.playerID, "action", c.action)
		return nil
	}

	var err error
	switch c.action {
	case game.ActionPlay:
		err = r.manager.HandlePlay(c.playerID, c.cardIDs)
	case game.ActionChallenge:
		err = r.manager.HandleChallenge(c.playerID)
	case game.ActionTrust:
		err = r.manager.HandleTrust(c.playerID)
	case game.ActionSpin:
		err = r.manager.HandleSpin(c.playerID)
	default:
		err = ErrInvalidAction
	}

	if err != nil {
		if IsDropped(err) {
			r.logger.Debug("Dropping invalid action", "player", c.playerID, "action", c.action, "phase", r.manager.Phase(), "error", err)
			return nil
		}
		return err
	}

	if p := r.roster.Get(c.playerID); p != nil && !p.Connected {
		p.Reconnect()
	}
	r.touch()
	return nil
}

func (r *Room) snapshot() game.GameState {
	if r.manager != nil {
		return r.manager.Snapshot()
	}
	return game.GameState{
		GamePhase:         game.PhaseWaiting,
		EliminatedPlayers: []string{},
		Players:           r.roster.Summaries(),
	}
}

func (r *Room) touch() {
	r.lastActivity = r.clock.Now()
}

// publish copies worker state into the shared Info
func (r *Room) publish() {
	info := Info{
		ID:              r.id,
		HostID:          r.hostID,
		Phase:           r.phase,
		PlayerCount:     r.roster.Len(),
		MaxPlayers:      r.cfg.MaxPlayers,
		ConnectedHumans: r.roster.ConnectedHumans(),
		Players:         r.roster.Summaries(),
		CreatedAt:       r.createdAt,
		LastActivity:    r.lastActivity,
		EndedAt:         r.endedAt,
	}
	switch {
	case info.ConnectedHumans > 0:
		r.abandonedSince = time.Time{}
	case r.abandonedSince.IsZero():
		r.abandonedSince = r.clock.Now()
	}
	info.AbandonedSince = r.abandonedSince
	if r.manager != nil {
		info.Round = r.manager.Round()
	}

	r.mu.Lock()
	info.Closed = r.info.Closed
	r.info = info
	r.mu.Unlock()
}

func (r *Room) stopTimers() {
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
}

// scheduler posts game timers back into the room's inbox
type scheduler struct {
	r *Room
}

func (s scheduler) Schedule(d time.Duration, t game.Timer) {
	r := s.r
	id := r.nextTimer
	r.nextTimer++
	r.timers[id] = r.clock.AfterFunc(d, func() {
		if err := r.submit(timerFired{id: id, timer: t}); err != nil && !errors.Is(err, ErrRoomClosed) {
			r.logger.Error("Failed to deliver timer", "kind", t.Kind, "error", err)
		}
	}, "room", t.Kind.String())
}

// managerClock adapts the room's quartz clock to game.Clock
type managerClock struct {
	quartz.Clock
}

func (c managerClock) Now() time.Time {
	return c.Clock.Now("room", "deadline")
}

var _ game.Clock = managerClock{}

// observer forwards game events to the gateway and tracks game results
type observer struct {
	r *Room
}

func (o observer) Broadcast(e game.Event) {
	o.r.observe(e)
	o.r.gateway.Broadcast(e)
}

func (o observer) Send(playerID string, e game.Event) {
	o.r.gateway.Send(playerID, e)
}

func (r *Room) observe(e game.Event) {
	switch ev := e.(type) {
	case game.PlayerEliminatedEvent:
		r.elimRound[ev.PlayerID] = r.manager.Round()
	case game.GameOverEvent:
		r.phase = PhaseEnded
		r.endedAt = r.clock.Now()
		if r.onResult != nil {
			r.onResult(r.result(ev))
		}
	}
}
