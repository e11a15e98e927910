package room

import (
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
)

func TestJoinAssignsHostAndEnforcesCapacity(t *testing.T) {
	env := newTestEnv(t)
	room := env.seatHumans(t, 4)

	info := room.Info()
	assert.Equal(t, "h1", info.HostID)
	assert.Equal(t, 4, info.PlayerCount)
	assert.True(t, info.Players[0].IsHost)
	assert.False(t, info.Players[1].IsHost)

	_, err := room.Join(PlayerInfo{ID: "h5", Name: "Late"})
	assert.ErrorIs(t, err, ErrCapacity)

	joined := env.rec.ofType(EventTypePlayerJoined)
	require.Len(t, joined, 4)
	last := joined[3].event.(PlayerJoinedEvent)
	assert.Equal(t, "h4", last.Player.ID)
	assert.Len(t, last.Players, 4)
}

func TestStartGameRules(t *testing.T) {
	env := newTestEnv(t)
	room := env.seatHumans(t, 3)

	assert.ErrorIs(t, room.StartGame("h1"), ErrNotEnoughPlayers)
	_, err := room.Join(PlayerInfo{ID: "h4", Name: "Human4"})
	require.NoError(t, err)

	assert.ErrorIs(t, room.StartGame("h2"), ErrUnauthorized)
	require.NoError(t, room.StartGame("h1"))
	assert.ErrorIs(t, room.StartGame("h1"), ErrGameInProgress)

	_, err = room.Join(PlayerInfo{ID: "h5", Name: "Late"})
	assert.ErrorIs(t, err, ErrGameInProgress)

	st, err := room.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, game.PhaseAwaitingPlay, st.GamePhase)
	assert.Equal(t, "h1", st.CurrentPlayerID)
	assert.Equal(t, PhasePlaying, room.Info().Phase)

	require.Len(t, env.rec.ofType(EventTypeGameStarted), 1)
	for _, id := range []string{"h1", "h2", "h3", "h4"} {
		private := env.rec.private(id)
		require.Len(t, private, 1, "player %s", id)
		assert.Len(t, private[0].(game.CardsDealtEvent).Cards, 5)
	}
	for _, s := range env.rec.ofType(game.EventTypeCardsDealt) {
		assert.NotEmpty(t, s.playerID, "hands are never broadcast")
	}
}

func TestAddBots(t *testing.T) {
	env := newTestEnv(t)
	room := env.seatHumans(t, 2)

	assert.ErrorIs(t, room.AddBots("h2", 1), ErrUnauthorized)
	assert.ErrorIs(t, room.AddBots("h1", 3), ErrCapacity)
	require.NoError(t, room.AddBots("h1", 2))

	info := room.Info()
	assert.Equal(t, 4, info.PlayerCount)
	assert.True(t, info.Players[2].IsBot)
	assert.Equal(t, 2, info.ConnectedHumans)
}

func TestInvalidActionsAreDropped(t *testing.T) {
	env := newTestEnv(t)
	room := env.seatHumans(t, 4)
	require.NoError(t, room.StartGame("h1"))

	before, err := room.Snapshot()
	require.NoError(t, err)

	assert.NoError(t, room.Play("h2", []int{0}), "out of turn plays are dropped silently")
	assert.NoError(t, room.Challenge("h1"), "challenges without a claim are dropped silently")
	assert.NoError(t, room.Play("h1", []int{999}))
	assert.NoError(t, room.Spin("h3"))

	after, err := room.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, env.rec.ofType(game.EventTypeCardsPlayed))
}

func TestHumanPlayAndChallenge(t *testing.T) {
	env := newTestEnv(t)
	room := env.seatHumans(t, 4)
	require.NoError(t, room.StartGame("h1"))

	hand := env.rec.private("h1")[0].(game.CardsDealtEvent).Cards
	require.NoError(t, room.Play("h1", []int{hand[0].ID, hand[1].ID}))
	require.NoError(t, room.Challenge("h2"))

	results := env.rec.ofType(game.EventTypeChallengeResult)
	require.Len(t, results, 1)
	res := results[0].event.(game.ChallengeResultEvent)
	assert.Equal(t, []int{hand[0].ID, hand[1].ID}, []int{res.LastPlayedCards[0].ID, res.LastPlayedCards[1].ID})

	st, err := room.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, game.PhaseChallengePending, st.GamePhase)
	loser := st.RoulettePlayerID

	ctx := t.Context()
	env.clock.Advance(4 * time.Second).MustWait(ctx)
	st, err = room.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, game.PhaseRoulette, st.GamePhase)

	draws := env.rec.ofType(game.EventTypeRouletteResult)
	require.Len(t, draws, 1)
	assert.Equal(t, loser, draws[0].event.(game.RouletteResultEvent).PlayerID)

	env.clock.Advance(4 * time.Second).MustWait(ctx)
	st, err = room.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 2, st.RoundNumber)
}

func TestBotGameRunsToCompletion(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.Game.TurnTimeout = 5 * time.Second })
	room := env.seatHumans(t, 1)
	require.NoError(t, room.AddBots("h1", 3))
	require.NoError(t, room.StartGame("h1"))

	st := env.runUntilOver(t, room)
	assert.Len(t, st.EliminatedPlayers, 3)
	assert.Equal(t, PhaseEnded, room.Info().Phase)
	assert.NotEmpty(t, env.rec.ofType(game.EventTypePlayerTimeout), "idle human is auto-played")

	env.mu.Lock()
	defer env.mu.Unlock()
	require.Len(t, env.results, 1)
	res := env.results[0]
	assert.Equal(t, room.ID(), res.RoomID)
	require.Len(t, res.Standings, 4)
	assert.Equal(t, 1, res.Standings[0].Place)
	assert.Equal(t, 4, res.Standings[3].Place)
	assert.Positive(t, res.Standings[3].EliminatedRound)
}

func TestManualRouletteThroughRoom(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.Game.RouletteMode = game.RouletteManual })
	room := env.seatHumans(t, 4)
	require.NoError(t, room.StartGame("h1"))

	hand := env.rec.private("h1")[0].(game.CardsDealtEvent).Cards
	require.NoError(t, room.Play("h1", []int{hand[0].ID}))
	require.NoError(t, room.Challenge("h2"))
	env.clock.Advance(4 * time.Second).MustWait(t.Context())

	st, err := room.Snapshot()
	require.NoError(t, err)
	require.Equal(t, game.PhaseRoulette, st.GamePhase)
	assert.Empty(t, env.rec.ofType(game.EventTypeRouletteResult))

	require.NoError(t, room.Spin(st.RoulettePlayerID))
	assert.Len(t, env.rec.ofType(game.EventTypeRouletteResult), 1)
}

func TestCloseStopsTimersAndRejectsCommands(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.Game.TurnTimeout = 5 * time.Second })
	room := env.seatHumans(t, 1)
	require.NoError(t, room.AddBots("h1", 3))
	require.NoError(t, room.StartGame("h1"))

	_, pending := env.clock.Peek()
	require.True(t, pending)

	room.Close("test")
	<-room.Done()

	_, pending = env.clock.Peek()
	assert.False(t, pending, "closing a room stops its timers")
	assert.ErrorIs(t, room.Play("h1", []int{0}), ErrRoomClosed)
	_, err := room.Join(PlayerInfo{Name: "x"})
	assert.ErrorIs(t, err, ErrRoomClosed)
	_, err = room.Snapshot()
	assert.ErrorIs(t, err, ErrRoomClosed)

	closed := env.rec.ofType(EventTypeRoomClosed)
	require.Len(t, closed, 1)
	assert.Equal(t, "test", closed[0].event.(RoomClosedEvent).Reason)

	room.Close("again")
	assert.Len(t, env.rec.ofType(EventTypeRoomClosed), 1, "close is idempotent")
}

func TestLeaveBeforeStartMigratesHost(t *testing.T) {
	env := newTestEnv(t)
	room := env.seatHumans(t, 2)

	require.NoError(t, room.Leave("h1"))

	info := room.Info()
	assert.Equal(t, 1, info.PlayerCount)
	assert.Equal(t, "h2", info.HostID)
	assert.True(t, info.Players[0].IsHost)

	changed := env.rec.ofType(EventTypeHostChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, "h2", changed[0].event.(HostChangedEvent).HostID)

	assert.ErrorIs(t, room.Leave("h1"), ErrUnknownPlayer)
}

func TestDisconnectDuringGameKeepsSeat(t *testing.T) {
	env := newTestEnv(t)
	room := env.seatHumans(t, 4)
	require.NoError(t, room.StartGame("h1"))

	require.NoError(t, room.Disconnect("h3"))

	info := room.Info()
	assert.Equal(t, 4, info.PlayerCount)
	assert.Equal(t, 3, info.ConnectedHumans)
	assert.False(t, info.Players[2].Connected)

	for _, token := range []string{"", "h3", seatToken("h2")} {
		_, err := room.Rejoin("h3", token)
		assert.ErrorIs(t, err, ErrUnknownPlayer, "token %q", token)
	}
	assert.ErrorIs(t, room.VerifySeat("h3", seatToken("h2")), ErrUnknownPlayer)
	require.Len(t, env.rec.private("h3"), 1, "a rejected rejoin sends nothing")
	assert.Equal(t, 3, room.Info().ConnectedHumans)

	require.NoError(t, room.VerifySeat("h3", seatToken("h3")))
	_, err := room.Rejoin("h3", seatToken("h3"))
	require.NoError(t, err)
	assert.Equal(t, 4, room.Info().ConnectedHumans)

	private := env.rec.private("h3")
	require.Len(t, private, 3)
	assert.Equal(t, game.EventTypeSyncGameState, private[1].EventType())
	assert.Equal(t, private[0], private[2], "rejoin resends the same hand")
}

func TestDisconnectBeforeStartRemovesPlayer(t *testing.T) {
	env := newTestEnv(t)
	room := env.seatHumans(t, 3)

	require.NoError(t, room.Disconnect("h2"))
	assert.Equal(t, 2, room.Info().PlayerCount)
	require.Len(t, env.rec.ofType(EventTypePlayerLeft), 1)
}

func TestLeaveDuringGameForfeits(t *testing.T) {
	env := newTestEnv(t)
	room := env.seatHumans(t, 4)
	require.NoError(t, room.StartGame("h1"))

	require.NoError(t, room.Leave("h1"))

	st, err := room.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []string{"h1"}, st.EliminatedPlayers)
	assert.Equal(t, "h2", st.CurrentPlayerID)
	assert.Equal(t, "h2", room.Info().HostID)
}

func TestRejoinRefusesBots(t *testing.T) {
	env := newTestEnv(t)
	room := env.seatHumans(t, 1)
	require.NoError(t, room.AddBots("h1", 3))

	bot := room.Info().Players[1]
	require.True(t, bot.IsBot)
	_, err := room.Rejoin(bot.ID, "")
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestGeneratedSeatTokensStayPrivate(t *testing.T) {
	env := newTestEnv(t)
	room, err := env.reg.Create()
	require.NoError(t, err)
	p, err := room.Join(PlayerInfo{ID: "anon", Name: "Anon"})
	require.NoError(t, err)
	require.NoError(t, room.AddBots(p.ID, 3))
	require.NoError(t, room.StartGame(p.ID))

	require.NoError(t, room.Disconnect(p.ID))
	_, err = room.Rejoin(p.ID, "")
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	data, err := json.Marshal(room.Info())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "seat")
}

func TestFailedStartAnnouncesNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPlayers = 5
	require.Error(t, cfg.Validate(), "five hands of five do not fit the deck")

	rec := &recorder{}
	reg := NewRegistry(cfg, rec.factory, quartz.NewMock(t), log.NewWithOptions(io.Discard, log.Options{}), WithSeed(1))
	t.Cleanup(reg.Shutdown)
	room, err := reg.Create()
	require.NoError(t, err)
	for i := 1; i <= 5; i++ {
		_, err := room.Join(PlayerInfo{ID: fmt.Sprintf("h%d", i), Name: fmt.Sprintf("Human%d", i)})
		require.NoError(t, err)
	}

	assert.ErrorIs(t, room.StartGame("h1"), deck.ErrInsufficientCards)
	assert.Empty(t, rec.ofType(EventTypeGameStarted))
	assert.Empty(t, rec.ofType(game.EventTypeRoundStarted))
	assert.Equal(t, PhaseWaiting, room.Info().Phase)

	_, err = room.Join(PlayerInfo{ID: "h6", Name: "Late"})
	assert.ErrorIs(t, err, ErrCapacity, "the room is still open for joins, not in progress")
}

func TestManagerClockReadsRoomClock(t *testing.T) {
	mock := quartz.NewMock(t)
	mock.Set(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, mock.Now(), managerClock{mock}.Now())

	env := newTestEnv(t, func(c *Config) { c.Game.TurnTimeout = 30 * time.Second })
	room := env.seatHumans(t, 4)
	require.NoError(t, room.StartGame("h1"))

	timers := env.rec.ofType(game.EventTypeStartTimer)
	require.NotEmpty(t, timers)
	deadline := timers[0].event.(game.StartTimerEvent).Deadline
	assert.Equal(t, env.clock.Now().Add(30*time.Second).UnixMilli(), deadline)
}
