// internal/handlers/room_test.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongdong-game/dongdong/internal/game"
	"github.com/dongdong-game/dongdong/internal/room"
)

func newTestServer(t *testing.T) (*httptest.Server, *RoomServer) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := room.NewStore(room.Config{Clock: quartz.NewMock(t), Logger: logger, Seed: 5})
	rs := NewRoomServer(store, logger)
	srv := httptest.NewServer(rs.Routes())
	t.Cleanup(func() {
		srv.Close()
		store.CloseAll()
	})
	return srv, rs
}

func createRoom(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/room/new", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		RoomID string `json:"room_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.RoomID, 4)
	return body.RoomID
}

func dial(t *testing.T, ctx context.Context, srv *httptest.Server, code, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + code + "/" + name
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return c
}

// readUntil reads messages until one has the wanted type.
func readUntil(t *testing.T, ctx context.Context, c *websocket.Conn, msgType string) room.Message {
	t.Helper()
	for {
		var m room.Message
		require.NoError(t, wsjson.Read(ctx, c, &m))
		if m.Type == msgType {
			return m
		}
	}
}

func TestCreateRoomAndExists(t *testing.T) {
	srv, _ := newTestServer(t)
	code := createRoom(t, srv)

	resp, err := http.Get(srv.URL + "/room/exists/" + code)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/room/exists/zzzz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Room not found", body["detail"])
}

func TestCreateRoomRejectsGet(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/room/new")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRoomWSUnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dial(t, ctx, srv, "9999", "alice")
	_, _, err := c.Read(ctx)
	assert.Equal(t, RoomNotFoundError, websocket.CloseStatus(err))
}

func TestRoomWSNameTaken(t *testing.T) {
	srv, _ := newTestServer(t)
	code := createRoom(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := dial(t, ctx, srv, code, "alice")
	readUntil(t, ctx, first, room.MessageGameState)

	second := dial(t, ctx, srv, code, "alice")
	_, _, err := second.Read(ctx)
	assert.Equal(t, NameTakenError, websocket.CloseStatus(err))
}

func TestRoomWSJoinPingAndStart(t *testing.T) {
	srv, rs := newTestServer(t)
	code := createRoom(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dial(t, ctx, srv, code, "alice")
	m := readUntil(t, ctx, alice, room.MessageGameState)
	require.NotNil(t, m.Payload)
	assert.Equal(t, game.StateLobby, m.Payload.GameState)
	assert.Equal(t, game.HostName("alice"), m.Payload.IsHost)

	bob := dial(t, ctx, srv, code, "bob")
	readUntil(t, ctx, bob, room.MessageGameState)

	require.NoError(t, wsjson.Write(ctx, bob, ClientMessage{Action: "ping"}))
	readUntil(t, ctx, bob, room.MessagePong)

	require.NoError(t, bob.Write(ctx, websocket.MessageText, []byte("{not json")))
	errMsg := readUntil(t, ctx, bob, room.MessageError)
	assert.Equal(t, "Invalid JSON format.", errMsg.Message)

	require.NoError(t, wsjson.Write(ctx, alice, ClientMessage{Action: game.ActionStartGame}))
	for {
		m = readUntil(t, ctx, bob, room.MessageGameState)
		if m.Payload.GameState == game.StateAwaitingBets {
			break
		}
	}
	assert.Equal(t, 1, m.Payload.CurrentRound)
	assert.Len(t, m.Payload.Players, 2)

	rm, ok := rs.Rooms.Get(code)
	require.True(t, ok)
	assert.Equal(t, 2, rm.Len())
}

func TestRoomWSLastLeaveRemovesRoom(t *testing.T) {
	srv, rs := newTestServer(t)
	code := createRoom(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dial(t, ctx, srv, code, "alice")
	readUntil(t, ctx, c, room.MessageGameState)
	require.NoError(t, c.Close(websocket.StatusNormalClosure, ""))

	require.Eventually(t, func() bool {
		_, ok := rs.Rooms.Get(code)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOriginPatterns(t *testing.T) {
	assert.Equal(t, []string{"*"}, originPatterns(nil))
	assert.Equal(t,
		[]string{"localhost:3000", "game.example.com"},
		originPatterns([]string{"http://localhost:3000", "game.example.com"}))
}
