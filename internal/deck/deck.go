package deck

import (
	"errors"
	rand "math/rand/v2"
)

// Composition of every round's deck
const (
	CopiesPerRank = 6
	JokerCount    = 2
	Size          = CopiesPerRank*3 + JokerCount
)

// ErrInsufficientCards is returned when more cards are requested than the
// deck holds. Room capacity is validated so that this never happens at runtime.
var ErrInsufficientCards = errors.New("deck: insufficient cards")

// Deck represents the face values of a round's deck
type Deck struct {
	ranks []Rank
	rng   *rand.Rand
}

// NewDeck builds the fixed 20-card composition and shuffles it
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		ranks: make([]Rank, 0, Size),
		rng:   rng,
	}

	for _, rank := range PlayableRanks {
		for i := 0; i < CopiesPerRank; i++ {
			d.ranks = append(d.ranks, rank)
		}
	}
	for i := 0; i < JokerCount; i++ {
		d.ranks = append(d.ranks, Joker)
	}

	d.Shuffle()
	return d
}

// Shuffle randomizes the order of cards in the deck (Fisher-Yates)
func (d *Deck) Shuffle() {
	for i := len(d.ranks) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.ranks[i], d.ranks[j] = d.ranks[j], d.ranks[i]
	}
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.ranks)
}

// Composition counts the remaining cards by rank
func (d *Deck) Composition() map[Rank]int {
	counts := make(map[Rank]int, 4)
	for _, r := range d.ranks {
		counts[r]++
	}
	return counts
}

// DealHands deals handSize cards to each of players hands. Cards are removed
// from the top of the deck and numbered sequentially, so identifiers are
// unique across all hands of the deal.
func (d *Deck) DealHands(players, handSize int) ([][]Card, error) {
	if players < 0 || handSize < 0 {
		return nil, ErrInsufficientCards
	}
	if players*handSize > len(d.ranks) {
		return nil, ErrInsufficientCards
	}

	hands := make([][]Card, players)
	nextID := 0
	for p := 0; p < players; p++ {
		hand := make([]Card, handSize)
		for i := 0; i < handSize; i++ {
			hand[i] = Card{ID: nextID, Rank: d.ranks[0]}
			d.ranks = d.ranks[1:]
			nextID++
		}
		hands[p] = hand
	}

	return hands, nil
}

// RandomTarget picks a round target uniformly from the playable ranks
func RandomTarget(rng *rand.Rand) Rank {
	return PlayableRanks[rng.IntN(len(PlayableRanks))]
}
