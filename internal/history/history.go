// Package history keeps a record of finished games. Only results are stored;
// live room state is never persisted.
package history

import (
	"context"
	"time"

	"github.com/xainyuplus/Liar-s-Bar/internal/room"
)

// GameRecord is one finished game
type GameRecord struct {
	ID         int64          `json:"id"`
	RoomID     string         `json:"roomId"`
	Rounds     int            `json:"rounds"`
	FinishedAt time.Time      `json:"finishedAt"`
	Players    []PlayerRecord `json:"players"`
}

// PlayerRecord is one player's placing in a game
type PlayerRecord struct {
	PlayerID        string `json:"playerId"`
	Name            string `json:"name"`
	IsBot           bool   `json:"isBot"`
	Place           int    `json:"place"`
	EliminatedRound int    `json:"eliminatedRound,omitempty"`
}

// PlayerStats aggregates every recorded game played under a name
type PlayerStats struct {
	Name         string  `json:"name"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	AveragePlace float64 `json:"averagePlace"`
}

// Recorder stores and queries finished games
type Recorder interface {
	Record(ctx context.Context, rec GameRecord) error
	Recent(ctx context.Context, limit int) ([]GameRecord, error)
	PlayerStats(ctx context.Context, name string) (PlayerStats, error)
	Close() error
}

// FromResult converts a room result into a record
func FromResult(res room.Result) GameRecord {
	rec := GameRecord{
		RoomID:     res.RoomID,
		Rounds:     res.Rounds,
		FinishedAt: res.FinishedAt,
		Players:    make([]PlayerRecord, len(res.Standings)),
	}
	for i, s := range res.Standings {
		rec.Players[i] = PlayerRecord{
			PlayerID:        s.PlayerID,
			Name:            s.Name,
			IsBot:           s.IsBot,
			Place:           s.Place,
			EliminatedRound: s.EliminatedRound,
		}
	}
	return rec
}

// Nop discards everything. It is used when no database path is configured.
type Nop struct{}

func (Nop) Record(context.Context, GameRecord) error { return nil }

func (Nop) Recent(context.Context, int) ([]GameRecord, error) { return []GameRecord{}, nil }

func (Nop) PlayerStats(_ context.Context, name string) (PlayerStats, error) {
	return PlayerStats{Name: name}, nil
}

func (Nop) Close() error { return nil }
