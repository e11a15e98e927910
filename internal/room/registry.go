package room

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
	"github.com/xainyuplus/Liar-s-Bar/internal/randutil"
	"github.com/xainyuplus/Liar-s-Bar/internal/roomid"
	"golang.org/x/sync/errgroup"
)

// Reasons a room is closed
const (
	ReasonEnded     = "game ended"
	ReasonIdle      = "idle timeout"
	ReasonAbandoned = "no players left"
	ReasonShutdown  = "server shutting down"
)

// GatewayFactory returns the outbound gateway for a new room
type GatewayFactory func(roomID string) game.Gateway

// Option configures a Registry
type Option func(*Registry)

// WithSeed makes room randomness reproducible
func WithSeed(seed int64) Option {
	return func(r *Registry) { r.seeds = randutil.New(seed) }
}

// WithIDGenerator overrides how room ids are generated
func WithIDGenerator(g *roomid.Generator) Option {
	return func(r *Registry) { r.ids = g }
}

// WithResultHandler registers a callback for finished games. It runs on the
// room's worker goroutine and must not block.
func WithResultHandler(fn func(Result)) Option {
	return func(r *Registry) { r.onResult = fn }
}

// Registry maps room ids to rooms
type Registry struct {
	cfg      Config
	gateways GatewayFactory
	clock    quartz.Clock
	logger   *log.Logger
	ids      *roomid.Generator
	onResult func(Result)

	seedMu sync.Mutex
	seeds  *rand.Rand

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry
func NewRegistry(cfg Config, gateways GatewayFactory, clock quartz.Clock, logger *log.Logger, opts ...Option) *Registry {
	r := &Registry{
		cfg:      cfg,
		gateways: gateways,
		clock:    clock,
		logger:   logger.WithPrefix("registry"),
		ids:      roomid.NewGenerator(nil),
		seeds:    randutil.New(time.Now().UnixNano()),
		rooms:    make(map[string]*Room),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create opens a new empty room
func (r *Registry) Create() (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id string
	for attempt := 0; ; attempt++ {
		if attempt == 10 {
			return nil, errors.New("could not allocate a unique room id")
		}
		id = r.ids.Generate()
		if _, taken := r.rooms[id]; !taken {
			break
		}
	}

	room := newRoom(id, r.cfg, r.gateways(id), r.clock, randutil.New(r.seed()), r.logger, r.onResult)
	r.rooms[id] = room
	r.logger.Info("Room created", "room", id, "rooms", len(r.rooms))
	return room, nil
}

func (r *Registry) seed() int64 {
	r.seedMu.Lock()
	defer r.seedMu.Unlock()
	return r.seeds.Int64()
}

// Get looks up a room by id
func (r *Registry) Get(id string) (*Room, error) {
	r.mu.RLock()
	room, ok := r.rooms[roomid.Normalize(id)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Remove closes and forgets a room
func (r *Registry) Remove(id, reason string) bool {
	r.mu.Lock()
	room, ok := r.rooms[id]
	delete(r.rooms, id)
	remaining := len(r.rooms)
	r.mu.Unlock()

	if !ok {
		return false
	}
	room.Close(reason)
	r.logger.Info("Room removed", "room", id, "reason", reason, "rooms", remaining)
	return true
}

// List returns a summary of every room, oldest first
func (r *Registry) List() []Info {
	r.mu.RLock()
	infos := make([]Info, 0, len(r.rooms))
	for _, room := range r.rooms {
		infos = append(infos, room.Info())
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Len returns the number of open rooms
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Run sweeps stale rooms until ctx is cancelled, then closes every room
func (r *Registry) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.cfg.SweepInterval, "registry", "sweep")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Shutdown()
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep removes rooms that have ended, gone idle, or lost all their humans.
// It returns the number of rooms removed.
func (r *Registry) Sweep() int {
	now := r.clock.Now()

	type stale struct{ id, reason string }
	var victims []stale
	for _, info := range r.List() {
		switch {
		case info.Phase == PhaseEnded && now.Sub(info.EndedAt) >= r.cfg.EndedTTL:
			victims = append(victims, stale{info.ID, ReasonEnded})
		case r.cfg.IdleTimeout > 0 && now.Sub(info.LastActivity) >= r.cfg.IdleTimeout:
			victims = append(victims, stale{info.ID, ReasonIdle})
		case info.ConnectedHumans == 0 && now.Sub(info.AbandonedSince) >= r.cfg.AbandonTimeout:
			victims = append(victims, stale{info.ID, ReasonAbandoned})
		}
	}

	removed := 0
	for _, v := range victims {
		if r.Remove(v.id, v.reason) {
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug("Swept rooms", "removed", removed)
	}
	return removed
}

// Shutdown closes every room
func (r *Registry) Shutdown() {
	r.mu.Lock()
	rooms := r.rooms
	r.rooms = make(map[string]*Room)
	r.mu.Unlock()

	var g errgroup.Group
	for _, room := range rooms {
		g.Go(func() error {
			room.Close(ReasonShutdown)
			return nil
		})
	}
	_ = g.Wait()
	r.logger.Info("All rooms closed", "count", len(rooms))
}
