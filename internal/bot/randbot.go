package bot

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
)

// RandBot plays random cards and challenges on a coin flip
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger}
}

func (r *RandBot) Decide(v game.View) game.Decision {
	if v.PendingSpin {
		return game.Spin()
	}

	if !v.ClaimOpen {
		n := r.rng.IntN(3) + 1
		if n > len(v.Hand) {
			n = len(v.Hand)
		}
		return game.Play(pickRandom(r.rng, v.Hand, n), "rand-bot opening play")
	}

	if r.rng.Float64() < 0.5 {
		return game.Challenge("rand-bot coin flip")
	}

	n := r.rng.IntN(3) + 1
	if len(v.Hand) < n {
		return game.Challenge("rand-bot short hand")
	}
	return game.Play(pickRandom(r.rng, v.Hand, n), "rand-bot random play")
}

// pickRandom chooses n distinct cards uniformly at random
func pickRandom(rng *rand.Rand, hand []deck.Card, n int) []int {
	ids := make([]int, 0, n)
	for _, i := range rng.Perm(len(hand))[:n] {
		ids = append(ids, hand[i].ID)
	}
	return ids
}
