package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
)

// RouletteMode selects how a pending elimination draw is triggered
type RouletteMode string

const (
	// RouletteAuto draws automatically once the reveal delay has passed
	RouletteAuto RouletteMode = "auto"
	// RouletteManual waits for the loser to send spin_roulette
	RouletteManual RouletteMode = "manual"
)

// Config holds the rule and pacing parameters of a game
type Config struct {
	HandSize             int
	ChamberSize          int
	EliminationThreshold int // 0 means players-1
	RevealDelay          time.Duration
	NextRoundDelay       time.Duration
	BotDelay             time.Duration
	TurnTimeout          time.Duration // 0 disables enforcement
	RouletteMode         RouletteMode
	RouletteOdds         RouletteOdds
}

// DefaultConfig returns the standard Liar's Bar rules
func DefaultConfig() Config {
	return Config{
		HandSize:       5,
		ChamberSize:    6,
		RevealDelay:    4 * time.Second,
		NextRoundDelay: 4 * time.Second,
		BotDelay:       3 * time.Second,
		TurnTimeout:    30 * time.Second,
		RouletteMode:   RouletteAuto,
		RouletteOdds:   OddsFixed,
	}
}

// MaxPlayers returns how many hands of HandSize the deck can deal
func (c Config) MaxPlayers() int {
	if c.HandSize <= 0 {
		return 0
	}
	return deck.Size / c.HandSize
}

// Validate checks the config for values the engine cannot run with
func (c Config) Validate() error {
	if c.HandSize < 1 {
		return errors.New("hand size must be at least 1")
	}
	if c.ChamberSize < 1 {
		return errors.New("chamber size must be at least 1")
	}
	if c.EliminationThreshold < 0 {
		return errors.New("elimination threshold cannot be negative")
	}
	if c.RevealDelay < 0 || c.NextRoundDelay < 0 || c.BotDelay < 0 || c.TurnTimeout < 0 {
		return errors.New("delays cannot be negative")
	}
	switch c.RouletteMode {
	case RouletteAuto, RouletteManual:
	default:
		return fmt.Errorf("unknown roulette mode %q", c.RouletteMode)
	}
	switch c.RouletteOdds {
	case OddsFixed, OddsRandom:
	default:
		return fmt.Errorf("unknown roulette odds %q", c.RouletteOdds)
	}
	return nil
}
