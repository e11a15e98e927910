package room

import (
	"errors"

	"github.com/xainyuplus/Liar-s-Bar/internal/game"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrUnauthorized     = errors.New("only the host can do that")
	ErrCapacity         = errors.New("room is full")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrRoomClosed       = errors.New("room closed")
	ErrInvalidAction    = game.ErrInvalidAction
	ErrMalformedPayload = game.ErrMalformedPayload
	ErrNotEnoughPlayers = game.ErrNotEnoughPlayers
	ErrUnknownPlayer    = game.ErrUnknownPlayer
)

// Error codes sent to clients
const (
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeCapacity         = "ROOM_FULL"
	CodeGameInProgress   = "GAME_IN_PROGRESS"
	CodeNotEnoughPlayers = "NOT_ENOUGH_PLAYERS"
	CodeRoomClosed       = "ROOM_CLOSED"
	CodeUnknownPlayer    = "UNKNOWN_PLAYER"
	CodeInternal         = "INTERNAL_ERROR"
)

// Code returns the client-facing code for a surfaced error
func Code(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrCapacity):
		return CodeCapacity
	case errors.Is(err, ErrGameInProgress):
		return CodeGameInProgress
	case errors.Is(err, ErrNotEnoughPlayers):
		return CodeNotEnoughPlayers
	case errors.Is(err, ErrRoomClosed):
		return CodeRoomClosed
	case errors.Is(err, ErrUnknownPlayer):
		return CodeUnknownPlayer
	default:
		return CodeInternal
	}
}

// IsDropped reports whether err is one that is logged but never reported to
// the client that caused it.
func IsDropped(err error) bool {
	return errors.Is(err, ErrInvalidAction) || errors.Is(err, ErrMalformedPayload)
}
