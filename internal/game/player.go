package game

import (
	"time"

	"github.com/xainyuplus/Liar-s-Bar/internal/deck"
)

// Player represents a participant in a room
type Player struct {
	ID         string
	Name       string
	Avatar     string
	Hand       []deck.Card
	Eliminated bool
	Connected  bool
	IsBot      bool
	IsHost     bool
	Revolver   Revolver
	LastAction time.Time

	// SeatToken is the secret a disconnected human presents to reclaim
	// the seat. It never leaves the server except to its owner.
	SeatToken string
}

// NewPlayer creates a connected player with an unloaded revolver
func NewPlayer(id, name string, isBot bool, chambers int) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		IsBot:     isBot,
		Connected: true,
		Revolver:  NewRevolver(chambers),
	}
}

// IsLive returns true if the player is still in the game
func (p *Player) IsLive() bool {
	return !p.Eliminated
}

// HasCards returns true if the player holds at least one card
func (p *Player) HasCards() bool {
	return len(p.Hand) > 0
}

// HandCount returns the number of cards in the player's hand
func (p *Player) HandCount() int {
	return len(p.Hand)
}

// Disconnect marks the player's connection as lost
func (p *Player) Disconnect() {
	p.Connected = false
}

// Reconnect marks the player as connected again
func (p *Player) Reconnect() {
	p.Connected = true
}

// SetHand replaces the player's hand with a copy of cards
func (p *Player) SetHand(cards []deck.Card) {
	p.Hand = append([]deck.Card(nil), cards...)
}

// HandCopy returns a copy of the player's hand
func (p *Player) HandCopy() []deck.Card {
	return append([]deck.Card(nil), p.Hand...)
}

// RemoveCards removes the cards with the given ids from the hand and returns
// them in request order. Ids the player does not hold are ignored.
func (p *Player) RemoveCards(ids []int) []deck.Card {
	byID := make(map[int]int, len(p.Hand))
	for i, c := range p.Hand {
		byID[c.ID] = i
	}

	taken := make(map[int]bool, len(ids))
	removed := make([]deck.Card, 0, len(ids))
	for _, id := range ids {
		idx, ok := byID[id]
		if !ok || taken[id] {
			continue
		}
		taken[id] = true
		removed = append(removed, p.Hand[idx])
	}
	if len(removed) == 0 {
		return nil
	}

	kept := p.Hand[:0:0]
	for _, c := range p.Hand {
		if !taken[c.ID] {
			kept = append(kept, c)
		}
	}
	p.Hand = kept
	return removed
}

// MarkEliminated marks the player as out of the game and discards their hand
func (p *Player) MarkEliminated() {
	p.Eliminated = true
	p.Hand = nil
}

// Summary returns the public view of the player
func (p *Player) Summary() PlayerSummary {
	return PlayerSummary{
		ID:           p.ID,
		Name:         p.Name,
		Avatar:       p.Avatar,
		HandCount:    len(p.Hand),
		BulletCount:  p.Revolver.Remaining(),
		IsEliminated: p.Eliminated,
		IsBot:        p.IsBot,
		IsHost:       p.IsHost,
		Connected:    p.Connected,
	}
}

// PlayerSummary is the public view of a player. It never includes cards.
type PlayerSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar,omitempty"`
	HandCount    int    `json:"handCount"`
	BulletCount  int    `json:"bulletCount"`
	IsEliminated bool   `json:"isEliminated"`
	IsBot        bool   `json:"isBot"`
	IsHost       bool   `json:"isHost"`
	Connected    bool   `json:"connected"`
}
