package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xainyuplus/Liar-s-Bar/internal/server"
)

func TestServerOverrides(t *testing.T) {
	cfg := server.DefaultConfig()
	cmd := ServerCmd{Addr: "127.0.0.1:4000", LogLevel: "warn", History: "games.db"}
	require.NoError(t, cmd.applyOverrides(cfg))

	assert.Equal(t, "127.0.0.1", cfg.Server.Address)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, "games.db", cfg.History.Path)

	cmd = ServerCmd{Addr: ":5000", Debug: true}
	require.NoError(t, cmd.applyOverrides(cfg))
	assert.Equal(t, "127.0.0.1", cfg.Server.Address, "empty host keeps the configured address")
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)

	assert.Error(t, (&ServerCmd{Addr: "nonsense"}).applyOverrides(cfg))
	assert.Error(t, (&ServerCmd{Addr: "host:port"}).applyOverrides(cfg))
}

func TestBotNames(t *testing.T) {
	assert.Equal(t, "Dice", (&BotCmd{Name: "Dice", Count: 1}).name(0))
	assert.Equal(t, "Dice 2", (&BotCmd{Name: "Dice", Count: 3}).name(1))

	generated := &BotCmd{Count: 2}
	assert.NotEqual(t, generated.name(0), generated.name(1))
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug", true)
	require.NoError(t, err)

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}
