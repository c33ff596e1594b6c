package mux

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"holdem-server/pkg/room"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsResponse struct {
	Key     string          `json:"key"`
	Value   string          `json:"value"`
	Data    json.RawMessage `json:"data"`
	Context string          `json:"context"`
}

func dialGame(t *testing.T, ts *httptest.Server, gameID string, token string) *websocket.Conn {
	t.Helper()

	url := strings.Replace(ts.URL, "http", "ws", 1) + "/api/game/" + gameID + "/ws"
	header := http.Header{}
	header.Add("Cookie", (&http.Cookie{Name: cookieName, Value: token}).String())

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

// readUntil reads messages until one with the key arrives
func readUntil(t *testing.T, conn *websocket.Conn, key string) *wsResponse {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg wsResponse
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %q: %v", key, err)
		}

		if msg.Key == key {
			return &msg
		}
	}
}

func TestMux_getGameWS(t *testing.T) {
	_, ts := setupMux(t, Options{})
	aliceToken := join(t, ts, 1, "alice")
	join(t, ts, 1, "bob")

	conn := dialGame(t, ts, "1", aliceToken)
	a := assert.New(t)

	msg := readUntil(t, conn, "game")
	var state tableState
	a.NoError(json.Unmarshal(msg.Data, &state))
	a.Equal("alice", state.Game.Playing)
	a.Len(state.Self.Hand, 2)

	a.NoError(conn.WriteJSON(room.PayloadIn{Action: "check", Context: "c1"}))
	msg = readUntil(t, conn, "error")
	a.Equal("illegal move", msg.Value)
	a.Equal("c1", msg.Context)

	a.NoError(conn.WriteJSON(room.PayloadIn{Action: "call", Context: "c2"}))
	msg = readUntil(t, conn, "status")
	a.Equal("OK", msg.Value)
	a.Equal("c2", msg.Context)
}

func TestMux_getGameWS_unauthorized(t *testing.T) {
	_, ts := setupMux(t, Options{})

	url := strings.Replace(ts.URL, "http", "ws", 1) + "/api/game/1/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	assert.Error(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestMux_getGameWS_leave(t *testing.T) {
	_, ts := setupMux(t, Options{})
	aliceToken := join(t, ts, 1, "alice")
	join(t, ts, 1, "bob")

	conn := dialGame(t, ts, "1", aliceToken)
	a := assert.New(t)
	readUntil(t, conn, "game")

	a.NoError(conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg := readUntil(t, conn, "error")
	a.Equal("invalid message", msg.Value)

	a.NoError(conn.WriteJSON(room.PayloadIn{Action: "leave", Context: "l1"}))
	readUntil(t, conn, "left")

	var next wsResponse
	err := conn.ReadJSON(&next)
	var closeErr *websocket.CloseError
	if a.ErrorAs(err, &closeErr) {
		a.Equal(websocket.CloseNormalClosure, closeErr.Code)
		a.Equal("left the game", closeErr.Text)
	}
}
