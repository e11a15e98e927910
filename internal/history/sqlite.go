package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id     TEXT NOT NULL,
	rounds      INTEGER NOT NULL,
	finished_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS game_players (
	game_id          INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	player_id        TEXT NOT NULL,
	name             TEXT NOT NULL,
	is_bot           BOOLEAN NOT NULL,
	place            INTEGER NOT NULL,
	eliminated_round INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (game_id, player_id)
);
CREATE INDEX IF NOT EXISTS game_players_name ON game_players(name);
`

// Store is a Recorder backed by SQLite
type Store struct {
	db *sql.DB
}

var _ Recorder = (*Store)(nil)

// Open opens or creates the database at path and applies the schema
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finished game and its standings in one transaction
func (s *Store) Record(ctx context.Context, rec GameRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games (room_id, rounds, finished_at) VALUES (?, ?, ?)`,
		rec.RoomID, rec.Rounds, rec.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("game id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO game_players (game_id, player_id, name, is_bot, place, eliminated_round) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare players: %w", err)
	}
	defer stmt.Close()

	for _, p := range rec.Players {
		if _, err = stmt.ExecContext(ctx, gameID, p.PlayerID, p.Name, p.IsBot, p.Place, p.EliminatedRound); err != nil {
			return fmt.Errorf("insert player %s: %w", p.PlayerID, err)
		}
	}
	return tx.Commit()
}

// Recent returns the most recently finished games, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, rounds, finished_at FROM games ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}

	games := make([]GameRecord, 0, limit)
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(&g.ID, &g.RoomID, &g.Rounds, &g.FinishedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range games {
		players, err := s.players(ctx, games[i].ID)
		if err != nil {
			return nil, err
		}
		games[i].Players = players
	}
	return games, nil
}

func (s *Store) players(ctx context.Context, gameID int64) ([]PlayerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, name, is_bot, place, eliminated_round FROM game_players WHERE game_id = ? ORDER BY place, eliminated_round DESC, name`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []PlayerRecord
	for rows.Next() {
		var p PlayerRecord
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.IsBot, &p.Place, &p.EliminatedRound); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// PlayerStats aggregates the games played under name
func (s *Store) PlayerStats(ctx context.Context, name string) (PlayerStats, error) {
	stats := PlayerStats{Name: name}
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN place = 1 THEN 1 ELSE 0 END), 0), AVG(place) FROM game_players WHERE name = ?`, name).
		Scan(&stats.Games, &stats.Wins, &avg)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, fmt.Errorf("query stats: %w", err)
	}
	stats.AveragePlace = avg.Float64
	return stats, nil
}
