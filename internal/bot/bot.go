// Package bot provides the built-in decision policies for automated players.
package bot

import (
	"fmt"
	rand "math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
)

// Strategy names accepted by New
const (
	StrategyRandom   = "random"
	StrategyHonest   = "honest"
	StrategyCautious = "cautious"
)

var constructors = map[string]func(rng *rand.Rand, logger *log.Logger) game.Strategy{
	StrategyRandom:   func(rng *rand.Rand, logger *log.Logger) game.Strategy { return NewRandBot(rng, logger) },
	StrategyHonest:   func(rng *rand.Rand, logger *log.Logger) game.Strategy { return NewHonestBot(rng, logger) },
	StrategyCautious: func(_ *rand.Rand, logger *log.Logger) game.Strategy { return NewCautiousBot(logger) },
}

// Names returns the available strategy names, sorted
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named strategy
func New(name string, rng *rand.Rand, logger *log.Logger) (game.Strategy, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot strategy %q (available: %v)", name, Names())
	}
	return ctor(rng, logger.WithPrefix("bot").With("strategy", name)), nil
}

// Names for generated bot players
var botNames = []string{"Scubby", "Foxy", "Bristle", "Toar", "Clyde", "Mirage", "Rusty", "Dice"}

// Name returns a display name for the n-th bot in a room
func Name(n int) string {
	base := botNames[n%len(botNames)]
	if round := n / len(botNames); round > 0 {
		return fmt.Sprintf("%s %d", base, round+1)
	}
	return base
}
