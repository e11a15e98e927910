package deck

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rank represents a card face value
type Rank int

const (
	Ace Rank = iota + 1
	Queen
	King
	Joker
)

// PlayableRanks are the ranks a round target can be drawn from
var PlayableRanks = []Rank{Ace, Queen, King}

// String returns the wire representation of a rank
func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Joker:
		return "joker"
	default:
		return "?"
	}
}

// IsPlayable reports whether the rank can be a round target
func (r Rank) IsPlayable() bool {
	return r == Ace || r == Queen || r == King
}

// ParseRank parses a rank from its wire representation
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "ACE":
		return Ace, nil
	case "Q", "QUEEN":
		return Queen, nil
	case "K", "KING":
		return King, nil
	case "JOKER", "J":
		return Joker, nil
	default:
		return 0, fmt.Errorf("invalid rank: %q", s)
	}
}

// MarshalJSON encodes the rank as its wire string
func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a rank from its wire string
func (r *Rank) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRank(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Card is a single dealt card. ID is unique within one round's deal, so a
// specific card can be referenced even though face values repeat.
type Card struct {
	ID   int  `json:"id"`
	Rank Rank `json:"value"`
}

// String returns a short representation like "K#3"
func (c Card) String() string {
	return fmt.Sprintf("%s#%d", c.Rank, c.ID)
}

// Matches reports whether the card satisfies a claim of the target rank.
// Jokers are wild.
func Matches(c Card, target Rank) bool {
	return c.Rank == target || c.Rank == Joker
}

// IDs returns the identifiers of the given cards
func IDs(cards []Card) []int {
	ids := make([]int, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

// FormatCards formats a slice of cards as a space separated string
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
