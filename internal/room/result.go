package room

import (
	"time"

	"github.com/xainyuplus/Liar-s-Bar/internal/game"
)

// Result is the outcome of a finished game
type Result struct {
	RoomID     string
	Rounds     int
	Standings  []Standing
	FinishedAt time.Time
}

// Standing is one player's final placing. Survivors share first place;
// eliminated players are ranked by how long they lasted.
type Standing struct {
	PlayerID        string
	Name            string
	IsBot           bool
	Place           int
	EliminatedRound int
}

func (r *Room) result(ev game.GameOverEvent) Result {
	res := Result{
		RoomID:     r.id,
		Rounds:     ev.Rounds,
		FinishedAt: r.endedAt,
	}

	for _, s := range ev.AlivePlayers {
		res.Standings = append(res.Standings, Standing{
			PlayerID: s.ID,
			Name:     s.Name,
			IsBot:    s.IsBot,
			Place:    1,
		})
	}

	for i := len(ev.Eliminated) - 1; i >= 0; i-- {
		id := ev.Eliminated[i]
		p := r.roster.Get(id)
		if p == nil {
			continue
		}
		res.Standings = append(res.Standings, Standing{
			PlayerID:        id,
			Name:            p.Name,
			IsBot:           p.IsBot,
			Place:           len(ev.AlivePlayers) + len(ev.Eliminated) - i,
			EliminatedRound: r.elimRound[id],
		})
	}
	return res
}
