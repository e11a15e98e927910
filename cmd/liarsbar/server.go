package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/coder/quartz"
	"github.com/xainyuplus/Liar-s-Bar/internal/history"
	"github.com/xainyuplus/Liar-s-Bar/internal/room"
	"github.com/xainyuplus/Liar-s-Bar/internal/server"
)

// ServerCmd runs the WebSocket game server
type ServerCmd struct {
	Config   string `short:"c" default:"liarsbar.hcl" env:"LIARSBAR_CONFIG" help:"Path to HCL configuration file"`
	Addr     string `short:"a" env:"LIARSBAR_ADDR" help:"Listen address host:port (overrides config)"`
	LogLevel string `short:"l" env:"LIARSBAR_LOG_LEVEL" help:"Log level (overrides config)"`
	History  string `env:"LIARSBAR_HISTORY" help:"Path of the SQLite history database (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for decks and bots"`
	Debug    bool   `help:"Enable debug logging"`
	LogJSON  bool   `env:"LIARSBAR_LOG_JSON" help:"Output JSON logs instead of console format"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := c.applyOverrides(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Server.LogLevel, c.LogJSON)
	if err != nil {
		return err
	}

	var recorder history.Recorder = history.Nop{}
	if cfg.History != nil && cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		recorder = store
		logger.Info("Recording game history", "path", cfg.History.Path)
	}

	var opts []room.Option
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", *c.Seed)
		opts = append(opts, room.WithSeed(*c.Seed))
	}

	srv, err := server.NewServer(cfg, quartz.NewReal(), recorder, logger, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting Liar's Bar server", "addr", cfg.Address(), "version", version)
	return srv.Run(ctx)
}

func (c *ServerCmd) applyOverrides(cfg *server.Config) error {
	if c.Addr != "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid --addr: %w", err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid --addr port: %w", err)
		}
		if host != "" {
			cfg.Server.Address = host
		}
		cfg.Server.Port = p
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}
	if c.History != "" {
		if cfg.History == nil {
			cfg.History = &server.HistorySettings{}
		}
		cfg.History.Path = c.History
	}
	return nil
}
