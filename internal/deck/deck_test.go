package deck

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xainyuplus/Liar-s-Bar/internal/randutil"
)

func TestNewDeckComposition(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		d := NewDeck(randutil.New(seed))
		require.Equal(t, Size, d.Len())

		counts := d.Composition()
		assert.Equal(t, CopiesPerRank, counts[Ace])
		assert.Equal(t, CopiesPerRank, counts[Queen])
		assert.Equal(t, CopiesPerRank, counts[King])
		assert.Equal(t, JokerCount, counts[Joker])
	}
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	a := NewDeck(randutil.New(42))
	b := NewDeck(randutil.New(42))
	c := NewDeck(randutil.New(43))

	assert.Equal(t, a.ranks, b.ranks)
	assert.NotEqual(t, a.ranks, c.ranks)
}

func TestDealHandsDisjoint(t *testing.T) {
	d := NewDeck(randutil.New(7))

	hands, err := d.DealHands(4, 5)
	require.NoError(t, err)
	require.Len(t, hands, 4)
	assert.Equal(t, 0, d.Len(), "deck should be consumed")

	seen := make(map[int]bool)
	counts := make(map[Rank]int)
	for _, hand := range hands {
		require.Len(t, hand, 5)
		for _, c := range hand {
			assert.False(t, seen[c.ID], "duplicate card id %d", c.ID)
			seen[c.ID] = true
			counts[c.Rank]++
		}
	}
	assert.Len(t, seen, Size)
	assert.Equal(t, JokerCount, counts[Joker])
}

func TestDealHandsPartial(t *testing.T) {
	d := NewDeck(randutil.New(1))

	hands, err := d.DealHands(3, 5)
	require.NoError(t, err)
	assert.Len(t, hands, 3)
	assert.Equal(t, Size-15, d.Len())
}

func TestDealHandsInsufficient(t *testing.T) {
	d := NewDeck(randutil.New(1))

	_, err := d.DealHands(5, 5)
	assert.True(t, errors.Is(err, ErrInsufficientCards))
	assert.Equal(t, Size, d.Len(), "failed deal must not consume cards")
}

func TestRandomTarget(t *testing.T) {
	rng := randutil.New(3)
	seen := make(map[Rank]int)
	for i := 0; i < 300; i++ {
		r := RandomTarget(rng)
		require.True(t, r.IsPlayable())
		seen[r]++
	}
	assert.Len(t, seen, 3, "all playable ranks should appear")
}
