package client

import (
	"context"
	"encoding/json"

	"github.com/xainyuplus/Liar-s-Bar/internal/protocol"
)

func decode(msg *protocol.Message, v any) error {
	return json.Unmarshal(msg.Data, v)
}

// CreateRoom opens a new room hosted by this client
func (c *Client) CreateRoom(ctx context.Context, name string) (protocol.RoomJoined, error) {
	return c.seat(ctx, protocol.TypeRoomCreated, protocol.TypeCreateRoom, protocol.CreateRoom{PlayerName: name})
}

// JoinRoom takes a seat in an existing room
func (c *Client) JoinRoom(ctx context.Context, roomID, name string) (protocol.RoomJoined, error) {
	return c.seat(ctx, protocol.TypeRoomJoined, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: roomID, PlayerName: name})
}

// Rejoin reclaims a seat after a lost connection. seatToken is the value
// SeatToken returned on the connection that first took the seat.
func (c *Client) Rejoin(ctx context.Context, roomID, playerID, seatToken string) (protocol.RoomJoined, error) {
	return c.seat(ctx, protocol.TypeRoomJoined, protocol.TypeRejoinRoom,
		protocol.RejoinRoom{RoomID: roomID, PlayerID: playerID, SeatToken: seatToken})
}

func (c *Client) seat(ctx context.Context, reply, t protocol.MessageType, data any) (protocol.RoomJoined, error) {
	var joined protocol.RoomJoined
	wait := c.Expect(reply)
	if err := c.Send(t, data); err != nil {
		return joined, err
	}
	msg, err := wait(ctx)
	if err != nil {
		return joined, err
	}
	return joined, decode(msg, &joined)
}

// LeaveRoom gives up the current seat
func (c *Client) LeaveRoom() error {
	return c.Send(protocol.TypeLeaveRoom, protocol.LeaveRoom{RoomID: c.Room()})
}

// StartGame asks the server to start the game. Only the host may.
func (c *Client) StartGame() error {
	return c.Send(protocol.TypeStartGame, protocol.StartGame{RoomID: c.Room()})
}

// AddBots asks the server to seat count bots
func (c *Client) AddBots(count int) error {
	return c.Send(protocol.TypeAddBot, protocol.AddBot{RoomID: c.Room(), Count: count})
}

// Play claims the given cards as the round's target
func (c *Client) Play(cardIDs []int) error {
	cards := make([]protocol.CardRef, len(cardIDs))
	for i, id := range cardIDs {
		cards[i] = protocol.CardRef{ID: id}
	}
	return c.Send(protocol.TypePlayCards, protocol.PlayCards{RoomID: c.Room(), Cards: cards})
}

// Challenge calls the last claim a lie
func (c *Client) Challenge() error {
	return c.Send(protocol.TypeChallenge, protocol.Challenge{RoomID: c.Room()})
}

// Trust accepts the last claim
func (c *Client) Trust() error {
	return c.Send(protocol.TypeTrust, protocol.Trust{RoomID: c.Room()})
}

// Spin pulls the trigger on a pending manual roulette
func (c *Client) Spin() error {
	return c.Send(protocol.TypeSpinRoulette, protocol.SpinRoulette{RoomID: c.Room()})
}

// ListRooms requests the room list
func (c *Client) ListRooms(ctx context.Context) (protocol.RoomList, error) {
	var list protocol.RoomList
	wait := c.Expect(protocol.TypeRoomList)
	if err := c.Send(protocol.TypeListRooms, nil); err != nil {
		return list, err
	}
	msg, err := wait(ctx)
	if err != nil {
		return list, err
	}
	return list, decode(msg, &list)
}
