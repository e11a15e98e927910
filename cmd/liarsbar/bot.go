package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xainyuplus/Liar-s-Bar/internal/bot"
	"github.com/xainyuplus/Liar-s-Bar/internal/client"
	"github.com/xainyuplus/Liar-s-Bar/internal/randutil"
	"golang.org/x/sync/errgroup"
)

// BotCmd seats one or more strategy bots in a room over the network
type BotCmd struct {
	Server   string        `default:"http://localhost:3000" env:"LIARSBAR_SERVER" help:"Server URL"`
	Room     string        `help:"Room to join; a new room is created when empty"`
	Name     string        `help:"Display name (defaults to generated bot names)"`
	Strategy string        `default:"honest" help:"Bot strategy (random, honest, cautious)"`
	Count    int           `short:"n" default:"1" help:"Number of bots to connect"`
	Start    bool          `help:"Start the game once every bot is seated (requires creating the room)"`
	Think    time.Duration `default:"500ms" help:"Delay before each decision"`
	LogLevel string        `default:"info" help:"Log level (debug|info|warn|error)"`
	LogJSON  bool          `help:"Output JSON logs instead of console format"`
}

func (c *BotCmd) Run() error {
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	logger, err := newLogger(c.LogLevel, c.LogJSON)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bots := make([]*client.RemoteBot, c.Count)
	clients := make([]*client.Client, c.Count)
	for i := range bots {
		strategy, err := bot.New(c.Strategy, randutil.New(time.Now().UnixNano()+int64(i)), logger)
		if err != nil {
			return err
		}
		cl := client.New(c.Server, logger.With("bot", i))
		if err := cl.Connect(ctx); err != nil {
			return err
		}
		defer cl.Close()
		clients[i] = cl
		bots[i] = client.NewRemoteBot(cl, strategy, logger, client.WithThinkTime(c.Think))
	}

	roomID := c.Room
	for i, cl := range clients {
		name := c.name(i)
		joinCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if roomID == "" {
			joined, err := cl.CreateRoom(joinCtx, name)
			cancel()
			if err != nil {
				return fmt.Errorf("create room: %w", err)
			}
			roomID = joined.RoomID
			logger.Info("Created room", "room", roomID)
			continue
		}
		_, err := cl.JoinRoom(joinCtx, roomID, name)
		cancel()
		if err != nil {
			return fmt.Errorf("join room %s: %w", roomID, err)
		}
		logger.Info("Joined room", "room", roomID, "name", name)
	}

	if c.Start {
		if c.Room != "" {
			return fmt.Errorf("--start only works when the bots create the room")
		}
		if err := clients[0].StartGame(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range bots {
		g.Go(func() error {
			result, err := b.Wait(gctx)
			if err != nil {
				return err
			}
			logResult(logger.With("bot", i), result.Rounds, len(result.Eliminated))
			return nil
		})
	}
	return g.Wait()
}

func (c *BotCmd) name(i int) string {
	if c.Name == "" {
		return bot.Name(i)
	}
	if c.Count == 1 {
		return c.Name
	}
	return fmt.Sprintf("%s %d", c.Name, i+1)
}

func logResult(logger *log.Logger, rounds, eliminated int) {
	logger.Info("Game over", "rounds", rounds, "eliminated", eliminated)
}
