package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
	"github.com/xainyuplus/Liar-s-Bar/internal/room"
)

// Config represents the complete server configuration
type Config struct {
	Server  ServerSettings   `hcl:"server,block"`
	Room    *RoomSettings    `hcl:"room,block"`
	History *HistorySettings `hcl:"history,block"`
}

// ServerSettings contains listener and logging configuration
type ServerSettings struct {
	Address        string   `hcl:"address,optional"`
	Port           int      `hcl:"port,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

// RoomSettings holds the rules and limits every room is created with.
// Durations are Go duration strings; an empty value keeps the default.
type RoomSettings struct {
	MinPlayers           int    `hcl:"min_players,optional"`
	MaxPlayers           int    `hcl:"max_players,optional"`
	HandSize             int    `hcl:"hand_size,optional"`
	ChamberSize          int    `hcl:"chamber_size,optional"`
	EliminationThreshold int    `hcl:"elimination_threshold,optional"`
	RevealDelay          string `hcl:"reveal_delay,optional"`
	NextRoundDelay       string `hcl:"next_round_delay,optional"`
	BotDelay             string `hcl:"bot_delay,optional"`
	TurnTimeout          string `hcl:"turn_timeout,optional"`
	RouletteMode         string `hcl:"roulette_mode,optional"`
	RouletteOdds         string `hcl:"roulette_odds,optional"`
	BotStrategy          string `hcl:"bot_strategy,optional"`
	IdleTimeout          string `hcl:"idle_timeout,optional"`
	AbandonTimeout       string `hcl:"abandon_timeout,optional"`
	EndedTTL             string `hcl:"ended_ttl,optional"`
	SweepInterval        string `hcl:"sweep_interval,optional"`
}

// HistorySettings configures the finished game store. An empty path
// disables it.
type HistorySettings struct {
	Path string `hcl:"path,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "0.0.0.0",
			Port:     3000,
			LogLevel: "info",
		},
		Room:    &RoomSettings{},
		History: &HistorySettings{},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 3000
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Room == nil {
		config.Room = &RoomSettings{}
	}
	if config.History == nil {
		config.History = &HistorySettings{}
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}

	cfg, err := c.RoomConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("room: %w", err)
	}
	return nil
}

// Address returns the listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RoomConfig overlays the room block on the default room configuration
func (c *Config) RoomConfig() (room.Config, error) {
	cfg := room.DefaultConfig()
	rs := c.Room
	if rs == nil {
		return cfg, nil
	}

	if rs.MinPlayers != 0 {
		cfg.MinPlayers = rs.MinPlayers
	}
	if rs.MaxPlayers != 0 {
		cfg.MaxPlayers = rs.MaxPlayers
	}
	if rs.HandSize != 0 {
		cfg.Game.HandSize = rs.HandSize
	}
	if rs.ChamberSize != 0 {
		cfg.Game.ChamberSize = rs.ChamberSize
	}
	cfg.Game.EliminationThreshold = rs.EliminationThreshold
	if rs.RouletteMode != "" {
		cfg.Game.RouletteMode = game.RouletteMode(rs.RouletteMode)
	}
	if rs.RouletteOdds != "" {
		cfg.Game.RouletteOdds = game.RouletteOdds(rs.RouletteOdds)
	}
	if rs.BotStrategy != "" {
		cfg.BotStrategy = rs.BotStrategy
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"reveal_delay", rs.RevealDelay, &cfg.Game.RevealDelay},
		{"next_round_delay", rs.NextRoundDelay, &cfg.Game.NextRoundDelay},
		{"bot_delay", rs.BotDelay, &cfg.Game.BotDelay},
		{"turn_timeout", rs.TurnTimeout, &cfg.Game.TurnTimeout},
		{"idle_timeout", rs.IdleTimeout, &cfg.IdleTimeout},
		{"abandon_timeout", rs.AbandonTimeout, &cfg.AbandonTimeout},
		{"ended_ttl", rs.EndedTTL, &cfg.EndedTTL},
		{"sweep_interval", rs.SweepInterval, &cfg.SweepInterval},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return cfg, fmt.Errorf("room: invalid %s %q: %w", d.name, d.value, err)
		}
		*d.dst = parsed
	}

	return cfg, nil
}
