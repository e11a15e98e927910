package room

import "github.com/xainyuplus/Liar-s-Bar/internal/game"

// command is anything the room worker can process
type command interface{}

type joinResult struct {
	player game.PlayerSummary
	err    error
}

type joinCmd struct {
	info  PlayerInfo
	reply chan joinResult
}

type rejoinCmd struct {
	playerID string
	token    string
	reply    chan joinResult
}

type verifySeatCmd struct {
	playerID string
	token    string
	reply    chan error
}

type leaveCmd struct {
	playerID string
	reply    chan error
}

type disconnectCmd struct {
	playerID string
	reply    chan error
}

type addBotsCmd struct {
	requester string
	count     int
	reply     chan error
}

type startCmd struct {
	requester string
	reply     chan error
}

type actionCmd struct {
	playerID string
	action   game.ActionKind
	cardIDs  []int
	reply    chan error
}

type snapshotCmd struct {
	reply chan game.GameState
}

type timerFired struct {
	id    uint64
	timer game.Timer
}
