package room

import "github.com/xainyuplus/Liar-s-Bar/internal/game"

// Room-level event types
const (
	EventTypePlayerJoined game.EventType = "player_joined"
	EventTypePlayerLeft   game.EventType = "player_left"
	EventTypeHostChanged  game.EventType = "host_changed"
	EventTypeGameStarted  game.EventType = "game_started"
	EventTypeRoomClosed   game.EventType = "room_closed"
)

// PlayerJoinedEvent is published when a player takes a seat
type PlayerJoinedEvent struct {
	Player  game.PlayerSummary   `json:"playerInfo"`
	Players []game.PlayerSummary `json:"playerList"`
}

func (e PlayerJoinedEvent) EventType() game.EventType { return EventTypePlayerJoined }

// PlayerLeftEvent is published when a player leaves the room
type PlayerLeftEvent struct {
	PlayerID string               `json:"playerId"`
	Players  []game.PlayerSummary `json:"playerList"`
}

func (e PlayerLeftEvent) EventType() game.EventType { return EventTypePlayerLeft }

// HostChangedEvent is published when the host leaves and another human takes over
type HostChangedEvent struct {
	HostID string `json:"hostId"`
}

func (e HostChangedEvent) EventType() game.EventType { return EventTypeHostChanged }

// GameStartedEvent is published once when the host starts the game
type GameStartedEvent struct {
	Players []game.PlayerSummary `json:"players"`
}

func (e GameStartedEvent) EventType() game.EventType { return EventTypeGameStarted }

// RoomClosedEvent is the last event a room ever sends
type RoomClosedEvent struct {
	Reason string `json:"reason"`
}

func (e RoomClosedEvent) EventType() game.EventType { return EventTypeRoomClosed }
