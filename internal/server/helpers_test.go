package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/xainyuplus/Liar-s-Bar/internal/history"
	"github.com/xainyuplus/Liar-s-Bar/internal/protocol"
	"github.com/xainyuplus/Liar-s-Bar/internal/room"
)

const readTimeout = 2 * time.Second

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

type memoryRecorder struct {
	history.Nop
	mu    sync.Mutex
	games []history.GameRecord
}

func (m *memoryRecorder) Record(_ context.Context, rec history.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = append(m.games, rec)
	return nil
}

func (m *memoryRecorder) Recent(context.Context, int) ([]history.GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]history.GameRecord{}, m.games...), nil
}

type testServer struct {
	srv      *Server
	http     *httptest.Server
	clock    *quartz.Mock
	recorder *memoryRecorder
}

func newTestServer(t *testing.T, configure ...func(*Config)) *testServer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Room.TurnTimeout = "0s"
	for _, fn := range configure {
		fn(cfg)
	}
	require.NoError(t, cfg.Validate())

	ts := &testServer{
		clock:    quartz.NewMock(t),
		recorder: &memoryRecorder{},
	}
	srv, err := NewServer(cfg, ts.clock, ts.recorder, testLogger(), room.WithSeed(7))
	require.NoError(t, err)
	ts.srv = srv
	ts.http = httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.http.Close()
		srv.Shutdown()
	})
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
}

// wsClient reads frames on a background goroutine so the server never sees
// a slow consumer
type wsClient struct {
	t      *testing.T
	conn   *websocket.Conn
	frames chan protocol.Message
}

func (ts *testServer) dial(t *testing.T) *wsClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(ts.wsURL(), nil)
	require.NoError(t, err)

	c := &wsClient{t: t, conn: conn, frames: make(chan protocol.Message, 4096)}
	go func() {
		defer close(c.frames)
		for {
			var msg protocol.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			c.frames <- msg
		}
	}()
	t.Cleanup(func() { _ = conn.Close() })
	return c
}

func (c *wsClient) send(typ protocol.MessageType, data any) {
	c.t.Helper()
	msg, err := protocol.NewMessage(typ, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// expect skips frames until one of type typ arrives and decodes it into v
func (c *wsClient) expect(typ protocol.MessageType, v any) []protocol.Message {
	c.t.Helper()
	var skipped []protocol.Message
	deadline := time.After(readTimeout)
	for {
		select {
		case msg, ok := <-c.frames:
			require.True(c.t, ok, "connection closed while waiting for %s", typ)
			if msg.Type != typ {
				skipped = append(skipped, msg)
				continue
			}
			if v != nil {
				require.NoError(c.t, json.Unmarshal(msg.Data, v))
			}
			return skipped
		case <-deadline:
			c.t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

func (c *wsClient) expectError(code string) {
	c.t.Helper()
	var e protocol.Error
	c.expect(protocol.TypeError, &e)
	require.Equal(c.t, code, e.Code, e.Message)
}

func (c *wsClient) create(name string) protocol.RoomJoined {
	c.t.Helper()
	c.send(protocol.TypeCreateRoom, protocol.CreateRoom{PlayerName: name})
	var joined protocol.RoomJoined
	c.expect(protocol.TypeRoomCreated, &joined)
	return joined
}

func (c *wsClient) join(roomID, name string) protocol.RoomJoined {
	c.t.Helper()
	c.send(protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: roomID, PlayerName: name})
	var joined protocol.RoomJoined
	c.expect(protocol.TypeRoomJoined, &joined)
	return joined
}
