package room

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/xainyuplus/Liar-s-Bar/internal/bot"
	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
)

// Config holds per-room limits plus the rules every game is played with
type Config struct {
	MinPlayers     int
	MaxPlayers     int
	Game           game.Config
	BotStrategy    string
	IdleTimeout    time.Duration
	AbandonTimeout time.Duration
	EndedTTL       time.Duration
	SweepInterval  time.Duration
	InboxSize      int
}

// DefaultConfig returns the standard four-player room
func DefaultConfig() Config {
	return Config{
		MinPlayers:     4,
		MaxPlayers:     4,
		Game:           game.DefaultConfig(),
		BotStrategy:    bot.StrategyRandom,
		IdleTimeout:    30 * time.Minute,
		AbandonTimeout: 2 * time.Minute,
		EndedTTL:       2 * time.Minute,
		SweepInterval:  30 * time.Second,
		InboxSize:      64,
	}
}

// Validate checks limits against each other and the deck size
func (c Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}
	if c.MinPlayers < 2 {
		return errors.New("min players must be at least 2")
	}
	if c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("max players (%d) must be >= min players (%d)", c.MaxPlayers, c.MinPlayers)
	}
	if c.MaxPlayers*c.Game.HandSize > deck.Size {
		return fmt.Errorf("%d players with %d cards each exceeds the %d card deck", c.MaxPlayers, c.Game.HandSize, deck.Size)
	}
	if c.Game.EliminationThreshold >= c.MinPlayers {
		return fmt.Errorf("elimination threshold (%d) must leave a survivor with %d players", c.Game.EliminationThreshold, c.MinPlayers)
	}
	if !slices.Contains(bot.Names(), c.BotStrategy) {
		return fmt.Errorf("unknown bot strategy %q", c.BotStrategy)
	}
	if c.SweepInterval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	if c.InboxSize < 1 {
		return errors.New("inbox size must be at least 1")
	}
	return nil
}
