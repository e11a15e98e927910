package game

import "github.com/xainyuplus/Liar-s-Bar/internal/deck"

// NextLiveIndex returns the position of the first live player after from,
// wrapping around the table. Passing from = -1 finds the first live player.
// The second result is false when nobody is live.
func NextLiveIndex(order []*Player, from int) (int, bool) {
	n := len(order)
	if n == 0 {
		return -1, false
	}
	for step := 1; step <= n; step++ {
		i := ((from+step)%n + n) % n
		if order[i].IsLive() {
			return i, true
		}
	}
	return -1, false
}

// IsBluff reports whether a claim of target is false: at least one played
// card is neither the target nor a Joker.
func IsBluff(cards []deck.Card, target deck.Rank) bool {
	for _, c := range cards {
		if !deck.Matches(c, target) {
			return true
		}
	}
	return false
}

// distinctIDs removes duplicate ids, keeping first occurrences in order
func distinctIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
