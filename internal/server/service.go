package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/xainyuplus/Liar-s-Bar/internal/history"
	"github.com/xainyuplus/Liar-s-Bar/internal/protocol"
	"github.com/xainyuplus/Liar-s-Bar/internal/room"
)

const recordTimeout = 5 * time.Second

// Service turns client requests into room operations
type Service struct {
	registry *room.Registry
	hub      *Hub
	history  history.Recorder
	logger   *log.Logger

	recording sync.WaitGroup
}

// Dispatch decodes one client message and applies it. Errors the client
// should know about are sent back as error messages; actions that are
// invalid for the current game state are dropped by the room.
func (s *Service) Dispatch(c *Connection, msg *protocol.Message) {
	in, err := protocol.Decode(msg)
	if err != nil {
		s.logger.Debug("Rejected message", "type", msg.Type, "player", c.Player(), "error", err)
		switch {
		case errors.Is(err, protocol.ErrUnknownType):
			c.sendError(protocol.CodeUnknownType, err.Error())
		default:
			c.sendError(protocol.CodeMalformed, err.Error())
		}
		return
	}

	s.logger.Debug("Received message", "type", msg.Type, "player", c.Player())

	switch req := in.(type) {
	case protocol.CreateRoom:
		err = s.createRoom(c, req)
	case protocol.JoinRoom:
		err = s.joinRoom(c, req)
	case protocol.RejoinRoom:
		err = s.rejoinRoom(c, req)
	case protocol.LeaveRoom:
		err = s.leaveRoom(c)
	case protocol.ListRooms:
		c.sendData(protocol.TypeRoomList, protocol.RoomList{Rooms: s.registry.List()})
	case protocol.StartGame:
		err = s.withRoom(c, func(r *room.Room, playerID string) error { return r.StartGame(playerID) })
	case protocol.AddBot:
		err = s.withRoom(c, func(r *room.Room, playerID string) error { return r.AddBots(playerID, req.Count) })
	case protocol.PlayCards:
		err = s.withRoom(c, func(r *room.Room, playerID string) error { return r.Play(playerID, req.CardIDs()) })
	case protocol.Challenge:
		err = s.withRoom(c, func(r *room.Room, playerID string) error { return r.Challenge(playerID) })
	case protocol.Trust:
		err = s.withRoom(c, func(r *room.Room, playerID string) error { return r.Trust(playerID) })
	case protocol.SpinRoulette:
		err = s.withRoom(c, func(r *room.Room, playerID string) error { return r.Spin(playerID) })
	default:
		s.logger.Error("Unhandled request", "type", in.MessageType())
		return
	}

	if err != nil {
		s.reportError(c, msg.Type, err)
	}
}

func (s *Service) reportError(c *Connection, t protocol.MessageType, err error) {
	switch {
	case errors.Is(err, errNotInRoom):
		c.sendError(protocol.CodeNotInRoom, err.Error())
		return
	case errors.Is(err, errAlreadyInRoom):
		c.sendError(protocol.CodeAlreadyInRoom, err.Error())
		return
	}
	code := room.Code(err)
	if code == room.CodeInternal {
		s.logger.Error("Request failed", "type", t, "player", c.Player(), "error", err)
	} else {
		s.logger.Debug("Request refused", "type", t, "player", c.Player(), "code", code)
	}
	c.sendError(code, err.Error())
}

var (
	errNotInRoom     = errors.New("not in a room")
	errAlreadyInRoom = errors.New("already seated in this room")
)

func (s *Service) createRoom(c *Connection, req protocol.CreateRoom) error {
	s.leaveCurrent(c)

	r, err := s.registry.Create()
	if err != nil {
		return err
	}
	reply, err := s.seat(c, r, room.PlayerInfo{Name: req.PlayerName, Avatar: req.Avatar})
	if err != nil {
		s.registry.Remove(r.ID(), room.ReasonAbandoned)
		return err
	}
	s.logger.Info("Room created", "room", r.ID(), "host", req.PlayerName)
	c.sendData(protocol.TypeRoomCreated, reply)
	return nil
}

func (s *Service) joinRoom(c *Connection, req protocol.JoinRoom) error {
	r, err := s.registry.Get(req.RoomID)
	if err != nil {
		return err
	}
	if r.ID() == c.Room() {
		return errAlreadyInRoom
	}
	s.leaveCurrent(c)

	reply, err := s.seat(c, r, room.PlayerInfo{Name: req.PlayerName, Avatar: req.Avatar})
	if err != nil {
		return err
	}
	c.sendData(protocol.TypeRoomJoined, reply)
	return nil
}

// seat binds the connection before joining so that the joiner receives the
// player_joined broadcast like everyone else
func (s *Service) seat(c *Connection, r *room.Room, info room.PlayerInfo) (protocol.RoomJoined, error) {
	info.ID = uuid.NewString()
	info.SeatToken = uuid.NewString()
	s.hub.Bind(c, r.ID(), info.ID)

	player, err := r.Join(info)
	if err != nil {
		s.hub.Unbind(c)
		return protocol.RoomJoined{}, err
	}

	ri := r.Info()
	return protocol.RoomJoined{
		RoomID:    r.ID(),
		PlayerID:  player.ID,
		SeatToken: info.SeatToken,
		HostID:    ri.HostID,
		Players:   ri.Players,
	}, nil
}

func (s *Service) rejoinRoom(c *Connection, req protocol.RejoinRoom) error {
	r, err := s.registry.Get(req.RoomID)
	if err != nil {
		return err
	}
	// a wrong token must not unbind whoever holds the seat now
	if err := r.VerifySeat(req.PlayerID, req.SeatToken); err != nil {
		return err
	}
	if c.Room() != r.ID() || c.Player() != req.PlayerID {
		s.leaveCurrent(c)
	}

	s.hub.Bind(c, r.ID(), req.PlayerID)
	player, err := r.Rejoin(req.PlayerID, req.SeatToken)
	if err != nil {
		s.hub.Unbind(c)
		return err
	}

	ri := r.Info()
	c.sendData(protocol.TypeRoomJoined, protocol.RoomJoined{
		RoomID:    r.ID(),
		PlayerID:  player.ID,
		SeatToken: req.SeatToken,
		HostID:    ri.HostID,
		Players:   ri.Players,
	})
	return nil
}

func (s *Service) leaveRoom(c *Connection) error {
	roomID, playerID := c.binding()
	if roomID == "" {
		return errNotInRoom
	}
	s.hub.Unbind(c)

	r, err := s.registry.Get(roomID)
	if err != nil {
		return nil
	}
	if err := r.Leave(playerID); err != nil && !errors.Is(err, room.ErrRoomClosed) {
		return err
	}
	return nil
}

// leaveCurrent gives up the connection's current seat, if any
func (s *Service) leaveCurrent(c *Connection) {
	if c.Room() == "" {
		return
	}
	if err := s.leaveRoom(c); err != nil {
		s.logger.Debug("Leaving previous room failed", "error", err)
	}
}

func (s *Service) withRoom(c *Connection, fn func(r *room.Room, playerID string) error) error {
	roomID, playerID := c.binding()
	if roomID == "" {
		return errNotInRoom
	}
	r, err := s.registry.Get(roomID)
	if err != nil {
		s.hub.Unbind(c)
		return err
	}
	return fn(r, playerID)
}

// Disconnect tells the room a player's connection dropped. A seat that was
// already reclaimed by a newer connection is left alone.
func (s *Service) Disconnect(roomID, playerID string) {
	if roomID == "" || s.hub.IsBound(roomID, playerID) {
		return
	}
	r, err := s.registry.Get(roomID)
	if err != nil {
		return
	}
	if err := r.Disconnect(playerID); err != nil && !errors.Is(err, room.ErrRoomClosed) && !errors.Is(err, room.ErrUnknownPlayer) {
		s.logger.Warn("Disconnect failed", "room", roomID, "player", playerID, "error", err)
	}
}

// RecordResult stores a finished game. It is called on the room's worker, so
// the write happens in the background.
func (s *Service) RecordResult(res room.Result) {
	rec := history.FromResult(res)
	s.recording.Add(1)
	go func() {
		defer s.recording.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.history.Record(ctx, rec); err != nil {
			s.logger.Error("Failed to record game", "room", res.RoomID, "error", err)
			return
		}
		s.logger.Info("Game recorded", "room", res.RoomID, "rounds", res.Rounds)
	}()
}

// Wait blocks until background writes have finished
func (s *Service) Wait() {
	s.recording.Wait()
}
