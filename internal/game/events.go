package game

import "github.com/xainyuplus/Liar-s-Bar/internal/deck"

// EventType names a game event. The values double as protocol message types.
type EventType string

const (
	EventTypeRoundStarted     EventType = "round_started"
	EventTypeCardsDealt       EventType = "cards_dealt"
	EventTypeStartTimer       EventType = "start_timer"
	EventTypeCardsPlayed      EventType = "cards_played"
	EventTypeTrustAccepted    EventType = "trust_accepted"
	EventTypeChallengeResult  EventType = "challenge_result"
	EventTypeRouletteStart    EventType = "roulette_start"
	EventTypeRouletteResult   EventType = "roulette_result"
	EventTypePlayerEliminated EventType = "player_eliminated"
	EventTypePlayerPassed     EventType = "player_passed"
	EventTypePlayerTimeout    EventType = "player_timeout"
	EventTypeSyncGameState    EventType = "sync_game_state"
	EventTypeGameOver         EventType = "game_over"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is anything the engine emits through its Gateway. Events are plain
// values that encode directly as message payloads.
type Event interface {
	EventType() EventType
}

// RoundStartedEvent announces a new round and its target rank
type RoundStartedEvent struct {
	TargetCard  deck.Rank `json:"targetCard"`
	RoundNumber int       `json:"roundNumber"`
}

func (e RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }

// CardsDealtEvent carries a player's private hand. It is only ever sent to
// the owning player.
type CardsDealtEvent struct {
	Cards []deck.Card `json:"cards"`
}

func (e CardsDealtEvent) EventType() EventType { return EventTypeCardsDealt }

// StartTimerEvent tells clients whose turn it is and when it expires
type StartTimerEvent struct {
	PlayerID string `json:"playerId"`
	// Deadline in unix milliseconds; zero when turns are not timed
	Deadline int64 `json:"deadline"`
}

func (e StartTimerEvent) EventType() EventType { return EventTypeStartTimer }

// CardsPlayedEvent announces a claim. The cards themselves stay hidden.
type CardsPlayedEvent struct {
	PlayerID string `json:"playerId"`
	CardsNum int    `json:"cardsNum"`
}

func (e CardsPlayedEvent) EventType() EventType { return EventTypeCardsPlayed }

// TrustAcceptedEvent is published when a player accepts the open claim
type TrustAcceptedEvent struct {
	PlayerID     string `json:"playerId"`
	LastPlayerID string `json:"lastPlayerId"`
}

func (e TrustAcceptedEvent) EventType() EventType { return EventTypeTrustAccepted }

// ChallengeResultEvent reveals the challenged cards. Result is true when the
// claim was a bluff.
type ChallengeResultEvent struct {
	ChallengerID    string      `json:"challengerId"`
	LastPlayerID    string      `json:"lastPlayerId"`
	LastPlayedCards []deck.Card `json:"lastPlayedCards"`
	Result          bool        `json:"result"`
}

func (e ChallengeResultEvent) EventType() EventType { return EventTypeChallengeResult }

// RouletteStartEvent announces whose elimination draw is due
type RouletteStartEvent struct {
	PlayerID string `json:"playerId"`
}

func (e RouletteStartEvent) EventType() EventType { return EventTypeRouletteStart }

// RouletteResultEvent reports a draw. Result is true when the shot was fatal.
type RouletteResultEvent struct {
	PlayerID    string `json:"playerId"`
	Result      bool   `json:"result"`
	BulletCount int    `json:"bulletCount"`
}

func (e RouletteResultEvent) EventType() EventType { return EventTypeRouletteResult }

// PlayerEliminatedEvent is published when a player leaves the game for good
type PlayerEliminatedEvent struct {
	PlayerID string `json:"playerId"`
	Reason   string `json:"reason"`
}

func (e PlayerEliminatedEvent) EventType() EventType { return EventTypePlayerEliminated }

// PlayerPassedEvent is published when an empty-handed player is skipped
type PlayerPassedEvent struct {
	PlayerID string `json:"playerId"`
}

func (e PlayerPassedEvent) EventType() EventType { return EventTypePlayerPassed }

// PlayerTimeoutEvent reports the action taken for a player who ran out of time
type PlayerTimeoutEvent struct {
	PlayerID string `json:"playerId"`
	Action   string `json:"action"`
}

func (e PlayerTimeoutEvent) EventType() EventType { return EventTypePlayerTimeout }

// SyncGameStateEvent carries the authoritative public snapshot
type SyncGameStateEvent struct {
	GameState
}

func (e SyncGameStateEvent) EventType() EventType { return EventTypeSyncGameState }

// GameOverEvent is published once when the game ends
type GameOverEvent struct {
	AlivePlayers []PlayerSummary `json:"alivePlayers"`
	Eliminated   []string        `json:"eliminated"`
	Rounds       int             `json:"rounds"`
}

func (e GameOverEvent) EventType() EventType { return EventTypeGameOver }

// Elimination reasons
const (
	ReasonRoulette = "roulette"
	ReasonForfeit  = "forfeit"
)

// GameState is the public snapshot of a game. It never contains hands.
type GameState struct {
	GamePhase         Phase           `json:"gamePhase"`
	TargetCard        string          `json:"targetCard"`
	CurrentPlayerID   string          `json:"currentPlayerId"`
	LastPlayerID      string          `json:"lastPlayerId"`
	RoulettePlayerID  string          `json:"roulettePlayerId"`
	RoundNumber       int             `json:"roundNumber"`
	TurnNumber        int             `json:"turnNumber"`
	EliminatedPlayers []string        `json:"eliminatedPlayers"`
	LastPlayedCount   int             `json:"lastPlayedCount"`
	ClaimOpen         bool            `json:"claimOpen"`
	Players           []PlayerSummary `json:"players"`
}
