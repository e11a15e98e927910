package bot

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
)

// HonestBot only lies when it has to, and challenges claims it can prove or
// strongly suspect are false.
type HonestBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewHonestBot creates a new HonestBot instance
func NewHonestBot(rng *rand.Rand, logger *log.Logger) *HonestBot {
	return &HonestBot{rng: rng, logger: logger}
}

func (h *HonestBot) Decide(v game.View) game.Decision {
	if v.PendingSpin {
		return game.Spin()
	}

	var matching, other []deck.Card
	for _, c := range v.Hand {
		if deck.Matches(c, v.Target) {
			matching = append(matching, c)
		} else {
			other = append(other, c)
		}
	}

	if v.ClaimOpen {
		// Every matching card we hold cannot be in the claim
		if v.LastCount+len(matching) > deck.CopiesPerRank+deck.JokerCount {
			return game.Challenge("honest-bot claim is impossible")
		}
		if len(matching) == 0 {
			return game.Challenge("honest-bot nothing true to play")
		}
		if v.LastCount == 3 && len(matching) >= 4 {
			return game.Challenge("honest-bot too many matches in hand")
		}
	}

	if len(matching) > 0 {
		n := len(matching)
		if n > 3 {
			n = 3
		}
		h.logger.Debug("Playing true cards", "count", n, "target", v.Target)
		return game.Play(deck.IDs(matching[:n]), "honest-bot true claim")
	}

	if len(other) == 0 {
		return game.Trust("honest-bot empty hand")
	}

	// Forced bluff: shed one card
	return game.Play([]int{other[h.rng.IntN(len(other))].ID}, "honest-bot forced bluff")
}
