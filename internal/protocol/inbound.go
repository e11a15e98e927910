package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrMalformed   = errors.New("malformed message")
)

// MaxNameLength bounds player display names
const MaxNameLength = 32

// Inbound is a decoded client request
type Inbound interface {
	MessageType() MessageType
}

type CreateRoom struct {
	PlayerName string `json:"playerName"`
	Avatar     string `json:"avatar,omitempty"`
}

type JoinRoom struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	Avatar     string `json:"avatar,omitempty"`
}

// RejoinRoom reclaims a seat after a dropped connection. SeatToken is the
// secret handed out in room_joined; the player id alone is public.
type RejoinRoom struct {
	RoomID    string `json:"roomId"`
	PlayerID  string `json:"playerId"`
	SeatToken string `json:"seatToken"`
}

type LeaveRoom struct {
	RoomID string `json:"roomId"`
}

type StartGame struct {
	RoomID string `json:"roomId"`
}

type AddBot struct {
	RoomID string `json:"roomId"`
	Count  int    `json:"count,omitempty"`
}

// CardRef names a card by id. Any face value a client sends alongside is
// ignored; the server only trusts its own record of the hand.
type CardRef struct {
	ID int `json:"id"`
}

type PlayCards struct {
	RoomID string    `json:"roomId"`
	Cards  []CardRef `json:"cards"`
}

// CardIDs returns the ids of the referenced cards
func (p PlayCards) CardIDs() []int {
	ids := make([]int, len(p.Cards))
	for i, c := range p.Cards {
		ids[i] = c.ID
	}
	return ids
}

type Challenge struct {
	RoomID string `json:"roomId"`
}

type Trust struct {
	RoomID string `json:"roomId"`
}

type SpinRoulette struct {
	RoomID string `json:"roomId"`
}

type ListRooms struct{}

func (CreateRoom) MessageType() MessageType   { return TypeCreateRoom }
func (JoinRoom) MessageType() MessageType     { return TypeJoinRoom }
func (RejoinRoom) MessageType() MessageType   { return TypeRejoinRoom }
func (LeaveRoom) MessageType() MessageType    { return TypeLeaveRoom }
func (StartGame) MessageType() MessageType    { return TypeStartGame }
func (AddBot) MessageType() MessageType       { return TypeAddBot }
func (PlayCards) MessageType() MessageType    { return TypePlayCards }
func (Challenge) MessageType() MessageType    { return TypeChallenge }
func (Trust) MessageType() MessageType        { return TypeTrust }
func (SpinRoulette) MessageType() MessageType { return TypeSpinRoulette }
func (ListRooms) MessageType() MessageType    { return TypeListRooms }

// Decode turns an envelope into its typed request. Unknown types yield
// ErrUnknownType; payloads that do not parse or lack required fields yield
// ErrMalformed.
func Decode(msg *Message) (Inbound, error) {
	switch msg.Type {
	case TypeCreateRoom:
		var in CreateRoom
		if err := unmarshal(msg, &in); err != nil {
			return nil, err
		}
		name, err := playerName(in.PlayerName)
		if err != nil {
			return nil, err
		}
		in.PlayerName = name
		return in, nil

	case TypeJoinRoom:
		var in JoinRoom
		if err := unmarshal(msg, &in); err != nil {
			return nil, err
		}
		if err := required("roomId", in.RoomID); err != nil {
			return nil, err
		}
		name, err := playerName(in.PlayerName)
		if err != nil {
			return nil, err
		}
		in.PlayerName = name
		return in, nil

	case TypeRejoinRoom:
		var in RejoinRoom
		if err := unmarshal(msg, &in); err != nil {
			return nil, err
		}
		if err := required("roomId", in.RoomID); err != nil {
			return nil, err
		}
		if err := required("playerId", in.PlayerID); err != nil {
			return nil, err
		}
		if err := required("seatToken", in.SeatToken); err != nil {
			return nil, err
		}
		return in, nil

	case TypeLeaveRoom:
		var in LeaveRoom
		return decodeInto(msg, &in)
	case TypeStartGame:
		var in StartGame
		return decodeInto(msg, &in)
	case TypeAddBot:
		var in AddBot
		return decodeInto(msg, &in)
	case TypePlayCards:
		var in PlayCards
		return decodeInto(msg, &in)
	case TypeChallenge:
		var in Challenge
		return decodeInto(msg, &in)
	case TypeTrust:
		var in Trust
		return decodeInto(msg, &in)
	case TypeSpinRoulette:
		var in SpinRoulette
		return decodeInto(msg, &in)
	case TypeListRooms:
		return ListRooms{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
}

// decodeInto handles payloads whose fields are all optional
func decodeInto[T Inbound](msg *Message, in *T) (Inbound, error) {
	if err := unmarshal(msg, in); err != nil {
		return nil, err
	}
	return *in, nil
}

func unmarshal(msg *Message, v any) error {
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, msg.Type, err)
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrMalformed, field)
	}
	return nil
}

func playerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := required("playerName", name); err != nil {
		return "", err
	}
	if len([]rune(name)) > MaxNameLength {
		return "", fmt.Errorf("%w: playerName longer than %d characters", ErrMalformed, MaxNameLength)
	}
	return name, nil
}
