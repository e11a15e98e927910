package game

import rand "math/rand/v2"

// RouletteOdds selects how a revolver decides whether a pull is fatal
type RouletteOdds string

const (
	// OddsFixed fires only once every chamber has been pulled empty
	OddsFixed RouletteOdds = "fixed"
	// OddsRandom loads one bullet in a random chamber at game start
	OddsRandom RouletteOdds = "random"
)

// Revolver tracks one player's roulette state across the whole game
type Revolver struct {
	Chambers int
	Fired    int
	// Bullet is the 1-based chamber holding the bullet; zero when unloaded
	Bullet int
}

// NewRevolver creates an unloaded revolver with the given chamber count
func NewRevolver(chambers int) Revolver {
	return Revolver{Chambers: chambers}
}

// Load places the bullet in a random chamber
func (r *Revolver) Load(rng *rand.Rand) {
	if r.Chambers <= 0 {
		return
	}
	r.Bullet = rng.IntN(r.Chambers) + 1
}

// Pull fires the next chamber. It returns true when the shot is fatal; a
// fatal pull leaves the counter untouched.
func (r *Revolver) Pull() bool {
	if r.Fired >= r.Chambers {
		return true
	}
	if r.Bullet > 0 && r.Fired+1 == r.Bullet {
		return true
	}
	r.Fired++
	return false
}

// Remaining returns the number of chambers left before the certain shot
func (r Revolver) Remaining() int {
	if n := r.Chambers - r.Fired; n > 0 {
		return n
	}
	return 0
}
