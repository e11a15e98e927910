package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/xainyuplus/Liar-s-Bar/internal/history"
	"github.com/xainyuplus/Liar-s-Bar/internal/room"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Server represents the WebSocket game server
type Server struct {
	cfg      *Config
	upgrader websocket.Upgrader
	hub      *Hub
	service  *Service
	registry *room.Registry
	history  history.Recorder
	logger   *log.Logger
	mux      *http.ServeMux
}

// NewServer wires the registry, hub and dispatch service together
func NewServer(cfg *Config, clock quartz.Clock, recorder history.Recorder, logger *log.Logger, opts ...room.Option) (*Server, error) {
	roomCfg, err := cfg.RoomConfig()
	if err != nil {
		return nil, err
	}
	if err := roomCfg.Validate(); err != nil {
		return nil, fmt.Errorf("room config: %w", err)
	}
	if recorder == nil {
		recorder = history.Nop{}
	}

	s := &Server{
		cfg:     cfg,
		hub:     NewHub(logger),
		history: recorder,
		logger:  logger.WithPrefix("server"),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	s.service = &Service{
		hub:     s.hub,
		history: recorder,
		logger:  logger.WithPrefix("service"),
	}

	opts = append(opts, room.WithResultHandler(s.service.RecordResult))
	s.registry = room.NewRegistry(roomCfg, s.hub.Gateway, clock, logger, opts...)
	s.service.registry = s.registry

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/rooms", s.handleRooms)
	s.mux.HandleFunc("/stats", s.handleStats)
	return s, nil
}

// Handler returns the HTTP handler serving every endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Registry exposes the room registry
func (s *Server) Registry() *room.Registry {
	return s.registry
}

// Run listens on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and runs the room janitor until ctx is
// cancelled, then shuts everything down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.registry.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.hub.CloseAll()
		return err
	})

	err := g.Wait()
	s.service.Wait()
	return err
}

// Shutdown closes every room and connection without stopping the listener
func (s *Server) Shutdown() {
	s.registry.Shutdown()
	s.hub.CloseAll()
	s.service.Wait()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, r.Header.Get("Origin"))
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.service)
	s.hub.Register(client)
	client.Start()

	go func() {
		<-client.Done()
		roomID, playerID := s.hub.Unregister(client)
		s.service.Disconnect(roomID, playerID)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"rooms": s.registry.List()})
}

// Stats is the body of the /stats endpoint
type Stats struct {
	Rooms       int                  `json:"rooms"`
	Connections int                  `json:"connections"`
	RecentGames []history.GameRecord `json:"recentGames"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	games, err := s.history.Recent(r.Context(), 10)
	if err != nil {
		s.logger.Error("Failed to load recent games", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, Stats{
		Rooms:       s.registry.Len(),
		Connections: s.hub.Len(),
		RecentGames: games,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
