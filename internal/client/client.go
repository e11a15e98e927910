// Package client is a WebSocket client for the game server, used by remote
// bots and integration tests.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/xainyuplus/Liar-s-Bar/internal/protocol"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 54 * time.Second
	bufferSize   = 256
)

var ErrNotConnected = errors.New("not connected")

// Handler handles one incoming message. Handlers run one at a time, in the
// order messages arrive, and must not block.
type Handler func(*protocol.Message)

// Client represents a WebSocket connection to the game server
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *protocol.Message
	receive   chan *protocol.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu       sync.RWMutex
	handlers map[protocol.MessageType][]Handler
	waiters  map[protocol.MessageType][]chan *protocol.Message
	roomID    string
	playerID  string
	seatToken string
}

// New creates a client for the server at serverURL
func New(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan *protocol.Message, bufferSize),
		receive:   make(chan *protocol.Message, bufferSize),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
		handlers:  make(map[protocol.MessageType][]Handler),
		waiters:   make(map[protocol.MessageType][]chan *protocol.Message),
	}
}

// WebSocketURL converts an http(s) or ws(s) base URL into the /ws endpoint
func WebSocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	}
	return u.String(), nil
}

// Connect establishes the WebSocket connection
func (c *Client) Connect(ctx context.Context) error {
	wsURL, err := WebSocketURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to server", "url", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn

	go c.readPump()
	go c.writePump()
	go c.eventProcessor()

	c.logger.Debug("Connected to server")
	return nil
}

// Close closes the connection
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			_ = c.conn.Close()
		}
	})
	return nil
}

// Done is closed once the connection is gone
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// On registers a handler for a message type
func (c *Client) On(t protocol.MessageType, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[t] = append(c.handlers[t], h)
}

// Send queues a request for the server
func (c *Client) Send(t protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		return err
	}

	select {
	case <-c.ctx.Done():
		return ErrNotConnected
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrNotConnected
	default:
		return errors.New("send buffer full")
	}
}

// Expect registers interest in the next message of type t and returns a
// function that waits for it. Registering before sending a request avoids
// missing a fast reply. A server error received while waiting is returned
// instead.
func (c *Client) Expect(t protocol.MessageType) func(ctx context.Context) (*protocol.Message, error) {
	ch := make(chan *protocol.Message, 1)
	errCh := make(chan *protocol.Message, 1)

	c.mu.Lock()
	c.waiters[t] = append(c.waiters[t], ch)
	c.waiters[protocol.TypeError] = append(c.waiters[protocol.TypeError], errCh)
	c.mu.Unlock()

	return func(ctx context.Context) (*protocol.Message, error) {
		defer c.removeWaiter(t, ch)
		defer c.removeWaiter(protocol.TypeError, errCh)

		select {
		case msg := <-ch:
			return msg, nil
		case msg := <-errCh:
			var e protocol.Error
			_ = decode(msg, &e)
			return nil, fmt.Errorf("server error %s: %s", e.Code, e.Message)
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.ctx.Done():
			return nil, ErrNotConnected
		}
	}
}

// WaitFor blocks until a message of type t arrives
func (c *Client) WaitFor(ctx context.Context, t protocol.MessageType) (*protocol.Message, error) {
	return c.Expect(t)(ctx)
}

func (c *Client) removeWaiter(t protocol.MessageType, ch chan *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.waiters[t]
	for i, w := range list {
		if w == ch {
			c.waiters[t] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Room returns the room this client is seated in
func (c *Client) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// PlayerID returns the seat id assigned by the server
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SeatToken returns the secret that reclaims the seat after a reconnect
func (c *Client) SeatToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seatToken
}

func (c *Client) readPump() {
	defer c.cancel()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)
		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) eventProcessor() {
	for {
		select {
		case msg := <-c.receive:
			c.handleMessage(msg)
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) handleMessage(msg *protocol.Message) {
	if msg.Type == protocol.TypeRoomCreated || msg.Type == protocol.TypeRoomJoined {
		var joined protocol.RoomJoined
		if err := decode(msg, &joined); err == nil {
			c.mu.Lock()
			c.roomID = joined.RoomID
			c.playerID = joined.PlayerID
			c.seatToken = joined.SeatToken
			c.mu.Unlock()
		}
	}

	c.mu.Lock()
	handlers := append([]Handler(nil), c.handlers[msg.Type]...)
	waiters := c.waiters[msg.Type]
	delete(c.waiters, msg.Type)
	c.mu.Unlock()

	for _, w := range waiters {
		w <- msg
	}
	for _, h := range handlers {
		h(msg)
	}
	if len(handlers) == 0 && len(waiters) == 0 && msg.Type == protocol.TypeError {
		var e protocol.Error
		_ = decode(msg, &e)
		c.logger.Warn("Server error", "code", e.Code, "message", e.Message)
	}
}
