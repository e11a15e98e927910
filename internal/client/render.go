package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	targetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	eliminatedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Strikethrough(true)

	jokerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// Render formats a game state and, when given, the viewer's own hand
func Render(st game.GameState, self string, hand []deck.Card) string {
	var b strings.Builder

	header := fmt.Sprintf("Round %d", st.RoundNumber)
	if st.TargetCard != "" {
		header += "  target " + targetStyle.Render(st.TargetCard)
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	fmt.Fprintf(&b, "phase %s", st.GamePhase)
	if st.LastPlayerID != "" && st.ClaimOpen {
		fmt.Fprintf(&b, "  claim: %d card(s) by %s", st.LastPlayedCount, nameOf(st, st.LastPlayerID))
	}
	b.WriteString("\n\n")

	for _, p := range st.Players {
		line := fmt.Sprintf("%-12s cards %d  chambers %d", p.Name, p.HandCount, p.BulletCount)
		if p.IsBot {
			line += "  [bot]"
		}
		if !p.Connected && !p.IsBot {
			line += "  (away)"
		}
		switch {
		case p.IsEliminated:
			line = eliminatedStyle.Render(line)
		case p.ID == st.CurrentPlayerID:
			line = currentStyle.Render("> " + line)
		default:
			line = "  " + line
		}
		if p.ID == self {
			line += "  (you)"
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(hand) > 0 {
		cards := make([]string, len(hand))
		for i, c := range hand {
			label := fmt.Sprintf("%s\n#%d", c.Rank, c.ID)
			if c.Rank == deck.Joker {
				label = jokerStyle.Render(label)
			}
			cards[i] = cardStyle.Render(label)
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
		b.WriteString("\n")
	}
	return b.String()
}

func nameOf(st game.GameState, id string) string {
	for _, p := range st.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}
