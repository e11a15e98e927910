package bot

import (
	"github.com/charmbracelet/log"
	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
)

// CautiousBot never challenges: it trusts every claim and plays a single
// card when it must.
type CautiousBot struct {
	logger *log.Logger
}

// NewCautiousBot creates a new CautiousBot instance
func NewCautiousBot(logger *log.Logger) *CautiousBot {
	return &CautiousBot{logger: logger}
}

func (c *CautiousBot) Decide(v game.View) game.Decision {
	if v.PendingSpin {
		return game.Spin()
	}
	if v.ClaimOpen {
		return game.Trust("cautious-bot trusting")
	}

	// Prefer a true card when there is one
	for _, card := range v.Hand {
		if deck.Matches(card, v.Target) {
			return game.Play([]int{card.ID}, "cautious-bot true card")
		}
	}
	if len(v.Hand) > 0 {
		return game.Play([]int{v.Hand[0].ID}, "cautious-bot fallback")
	}

	// This should never happen: empty hands are skipped when no claim is open
	return game.Trust("cautious-bot emergency")
}
