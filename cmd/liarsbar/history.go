package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xainyuplus/Liar-s-Bar/internal/history"
)

// HistoryCmd prints recent games or a player's record
type HistoryCmd struct {
	DB     string `default:"liarsbar.db" env:"LIARSBAR_HISTORY" help:"Path of the SQLite history database"`
	Limit  int    `short:"n" default:"10" help:"Number of recent games to show"`
	Player string `short:"p" help:"Show aggregate stats for this player name"`
}

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))

func (c *HistoryCmd) Run() error {
	store, err := history.Open(c.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if c.Player != "" {
		stats, err := store.PlayerStats(ctx, c.Player)
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(stats.Name))
		fmt.Printf("games %d  wins %d  average place %.2f\n", stats.Games, stats.Wins, stats.AveragePlace)
		return nil
	}

	games, err := store.Recent(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Println("no games recorded")
		return nil
	}
	for _, g := range games {
		fmt.Println(titleStyle.Render(fmt.Sprintf("room %s  %s  %d rounds", g.RoomID, g.FinishedAt.Format("2006-01-02 15:04"), g.Rounds)))
		names := make([]string, len(g.Players))
		for i, p := range g.Players {
			names[i] = fmt.Sprintf("%d. %s", p.Place, p.Name)
		}
		fmt.Println("  " + strings.Join(names, "  "))
	}
	return nil
}
