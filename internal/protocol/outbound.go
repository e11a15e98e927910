package protocol

import (
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
	"github.com/xainyuplus/Liar-s-Bar/internal/room"
)

// RoomJoined is sent only to the player who created or joined a room. It
// carries the player id and seat token the client needs to rejoin later.
type RoomJoined struct {
	RoomID    string               `json:"roomId"`
	PlayerID  string               `json:"playerId"`
	SeatToken string               `json:"seatToken,omitempty"`
	HostID    string               `json:"hostId"`
	Players   []game.PlayerSummary `json:"players"`
}

type RoomList struct {
	Rooms []room.Info `json:"rooms"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes for protocol level failures. Room errors carry the codes from
// room.Code.
const (
	CodeMalformed     = "MALFORMED_MESSAGE"
	CodeUnknownType   = "UNKNOWN_MESSAGE_TYPE"
	CodeNotInRoom     = "NOT_IN_ROOM"
	CodeAlreadyInRoom = "ALREADY_IN_ROOM"
)

// FromEvent wraps a game or room event in an envelope typed after the event
func FromEvent(e game.Event) (*Message, error) {
	return NewMessage(MessageType(e.EventType()), e)
}
