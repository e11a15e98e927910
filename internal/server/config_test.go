package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xainyuplus/Liar-s-Bar/internal/game"
	"github.com/xainyuplus/Liar-s-Bar/internal/room"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liarsbar.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:3000", cfg.Address())
	rc, err := cfg.RoomConfig()
	require.NoError(t, err)
	assert.Equal(t, room.DefaultConfig(), rc)
	assert.Empty(t, cfg.History.Path)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
server {
  address   = "127.0.0.1"
  port      = 4000
  log_level = "debug"
}

room {
  min_players   = 3
  max_players   = 4
  chamber_size  = 3
  turn_timeout  = "0s"
  reveal_delay  = "1500ms"
  roulette_mode = "manual"
  roulette_odds = "random"
  bot_strategy  = "honest"
}

history {
  path = "games.db"
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:4000", cfg.Address())
	assert.Equal(t, "games.db", cfg.History.Path)

	rc, err := cfg.RoomConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, rc.MinPlayers)
	assert.Equal(t, 3, rc.Game.ChamberSize)
	assert.Equal(t, 5, rc.Game.HandSize)
	assert.Zero(t, rc.Game.TurnTimeout)
	assert.Equal(t, 1500*time.Millisecond, rc.Game.RevealDelay)
	assert.Equal(t, 4*time.Second, rc.Game.NextRoundDelay)
	assert.Equal(t, game.RouletteManual, rc.Game.RouletteMode)
	assert.Equal(t, game.OddsRandom, rc.Game.RouletteOdds)
	assert.Equal(t, "honest", rc.BotStrategy)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad port", `server { port = 70000 }`},
		{"bad level", `server { log_level = "chatty" }`},
		{"deck too small", "server {}\nroom {\n max_players = 5\n}"},
		{"bad duration", "server {}\nroom {\n bot_delay = \"soon\"\n}"},
		{"unknown strategy", "server {}\nroom {\n bot_strategy = \"psychic\"\n}"},
		{"no survivor", "server {}\nroom {\n elimination_threshold = 4\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigSyntaxError(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `server { port = }`))
	assert.Error(t, err)
}
