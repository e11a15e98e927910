package game

import "github.com/xainyuplus/Liar-s-Bar/internal/deck"

// ActionKind enumerates the decisions an actor can make
type ActionKind int

const (
	ActionPlay ActionKind = iota
	ActionChallenge
	ActionTrust
	ActionSpin
)

// String returns the string representation of the action
func (a ActionKind) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionChallenge:
		return "challenge"
	case ActionTrust:
		return "trust"
	case ActionSpin:
		return "spin"
	default:
		return "unknown"
	}
}

// Decision is what a Strategy wants to do on its turn
type Decision struct {
	Action    ActionKind
	CardIDs   []int
	Reasoning string
}

// View is everything an actor is allowed to know when deciding
type View struct {
	State       GameState
	Self        string
	Hand        []deck.Card
	Target      deck.Rank
	ClaimOpen   bool
	LastCount   int
	PendingSpin bool
}

// Strategy decides actions for an automated player. Decisions go through
// the same validation as human actions.
type Strategy interface {
	Decide(view View) Decision
}

// Play builds a play decision
func Play(ids []int, reasoning string) Decision {
	return Decision{Action: ActionPlay, CardIDs: ids, Reasoning: reasoning}
}

// Challenge builds a challenge decision
func Challenge(reasoning string) Decision {
	return Decision{Action: ActionChallenge, Reasoning: reasoning}
}

// Trust builds a trust decision
func Trust(reasoning string) Decision {
	return Decision{Action: ActionTrust, Reasoning: reasoning}
}

// Spin builds a roulette spin decision
func Spin() Decision {
	return Decision{Action: ActionSpin, Reasoning: "pull the trigger"}
}
