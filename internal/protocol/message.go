// Package protocol defines the JSON messages exchanged between clients and the
// game server over a WebSocket.
package protocol

import (
	"encoding/json"
	"time"
)

// MessageType identifies the payload carried by a Message
type MessageType string

// Client to server
const (
	TypeCreateRoom   MessageType = "create_room"
	TypeJoinRoom     MessageType = "join_room"
	TypeRejoinRoom   MessageType = "rejoin_room"
	TypeLeaveRoom    MessageType = "leave_room"
	TypeStartGame    MessageType = "start_game"
	TypeAddBot       MessageType = "add_bot"
	TypePlayCards    MessageType = "play_cards"
	TypeChallenge    MessageType = "challenge"
	TypeTrust        MessageType = "trust"
	TypeSpinRoulette MessageType = "spin_roulette"
	TypeListRooms    MessageType = "list_rooms"
)

// Server to client. Game and room events use their event type as the
// message type; these are the replies that have no event counterpart.
const (
	TypeRoomCreated MessageType = "room_created"
	TypeRoomJoined  MessageType = "room_joined"
	TypeRoomList    MessageType = "room_list"
	TypeError       MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope of every frame on the wire
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	msg := &Message{
		Type:      messageType,
		Timestamp: time.Now(),
	}
	if data == nil {
		return msg, nil
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	msg.Data = dataBytes
	return msg, nil
}
