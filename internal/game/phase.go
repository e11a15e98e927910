package game

// Phase is the state of the game state machine
type Phase string

const (
	PhaseWaiting          Phase = "WAITING"
	PhaseRoundStarting    Phase = "ROUND_STARTING"
	PhaseAwaitingPlay     Phase = "AWAITING_PLAY"
	PhaseChallengeWindow  Phase = "AWAITING_CHALLENGE_WINDOW"
	PhaseChallengePending Phase = "CHALLENGE_PENDING"
	PhaseRoulette         Phase = "ROULETTE"
	PhaseGameOver         Phase = "GAME_OVER"
)

func (p Phase) String() string {
	return string(p)
}

// IsTurn returns true while the current actor is expected to act
func (p Phase) IsTurn() bool {
	return p == PhaseAwaitingPlay || p == PhaseChallengeWindow
}
