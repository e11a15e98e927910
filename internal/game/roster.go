package game

import "errors"

// ErrDuplicatePlayer is returned when a player id is already seated
var ErrDuplicatePlayer = errors.New("game: duplicate player")

// Roster is the ordered set of players in a room. Insertion order is the turn
// order.
type Roster struct {
	order []*Player
	byID  map[string]*Player
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{byID: make(map[string]*Player)}
}

// Add appends a player to the turn order
func (r *Roster) Add(p *Player) error {
	if _, exists := r.byID[p.ID]; exists {
		return ErrDuplicatePlayer
	}
	r.order = append(r.order, p)
	r.byID[p.ID] = p
	return nil
}

// Remove deletes a player from the roster
func (r *Roster) Remove(id string) (*Player, bool) {
	p, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	delete(r.byID, id)
	for i, q := range r.order {
		if q.ID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, true
}

// Get returns the player with the given id, or nil
func (r *Roster) Get(id string) *Player {
	return r.byID[id]
}

// Players returns the players in turn order. The slice is a copy; the players
// are not.
func (r *Roster) Players() []*Player {
	return append([]*Player(nil), r.order...)
}

// Len returns the number of seated players
func (r *Roster) Len() int {
	return len(r.order)
}

// Index returns the turn-order position of id, or -1
func (r *Roster) Index(id string) int {
	for i, p := range r.order {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// At returns the player at turn-order position i, or nil
func (r *Roster) At(i int) *Player {
	if i < 0 || i >= len(r.order) {
		return nil
	}
	return r.order[i]
}

// Live returns the players not yet eliminated, in turn order
func (r *Roster) Live() []*Player {
	live := make([]*Player, 0, len(r.order))
	for _, p := range r.order {
		if p.IsLive() {
			live = append(live, p)
		}
	}
	return live
}

// LiveCount returns the number of players not yet eliminated
func (r *Roster) LiveCount() int {
	n := 0
	for _, p := range r.order {
		if p.IsLive() {
			n++
		}
	}
	return n
}

// Humans returns the non-bot players in turn order
func (r *Roster) Humans() []*Player {
	var humans []*Player
	for _, p := range r.order {
		if !p.IsBot {
			humans = append(humans, p)
		}
	}
	return humans
}

// ConnectedHumans counts human players with a live connection
func (r *Roster) ConnectedHumans() int {
	n := 0
	for _, p := range r.order {
		if !p.IsBot && p.Connected {
			n++
		}
	}
	return n
}

// Summaries returns the public view of every player in turn order
func (r *Roster) Summaries() []PlayerSummary {
	out := make([]PlayerSummary, len(r.order))
	for i, p := range r.order {
		out[i] = p.Summary()
	}
	return out
}
