package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() (*Handler, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewRegistry())
	r := gin.New()
	h.RegisterRoutes(r)
	return h, r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateGameHandler(t *testing.T) {
	t.Parallel()
	_, r := testServer()

	t.Run("creates a session", func(t *testing.T) {
		w := postJSON(t, r, "/games", gin.H{"playerName": "alice", "playerCount": 6})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			RoomCode string `json:"roomCode"`
			PlayerId string `json:"playerId"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), resp.RoomCode)
		assert.NotEmpty(t, resp.PlayerId)
	})

	invalid := []struct {
		desc string
		body gin.H
	}{
		{"odd player count", gin.H{"playerName": "alice", "playerCount": 7}},
		{"too small", gin.H{"playerName": "alice", "playerCount": 4}},
		{"too big", gin.H{"playerName": "alice", "playerCount": 16}},
		{"empty name", gin.H{"playerName": "", "playerCount": 6}},
		{"name too long", gin.H{"playerName": "abcdefghijklmnopqrstu", "playerCount": 6}},
	}
	for _, tc := range invalid {
		t.Run(tc.desc, func(t *testing.T) {
			w := postJSON(t, r, "/games", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGameStatusHandler(t *testing.T) {
	t.Parallel()
	h, r := testServer()
	s, _ := h.registry.CreateSession("alice", 8)

	t.Run("existing game, case-insensitive code", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/games/"+strings.ToLower(s.Code()), nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Exists      bool   `json:"exists"`
			PlayerCount int    `json:"playerCount"`
			MaxPlayers  int    `json:"maxPlayers"`
			Phase       string `json:"phase"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Exists)
		assert.Equal(t, 1, resp.PlayerCount)
		assert.Equal(t, 8, resp.MaxPlayers)
		assert.Equal(t, "lobby", resp.Phase)
	})

	t.Run("unknown game", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/games/ZZZZZZ", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"exists": false}`, w.Body.String())
	})
}

// --- websocket dispatch, through scripted sockets ---

type testEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

type wsClient struct {
	socket *fakeSocket
}

func dial(h *Handler) *wsClient {
	socket := newFakeSocket()
	conn := newPlayerConn(socket)
	go conn.WritePump()
	go h.serveConnection(conn)
	return &wsClient{socket: socket}
}

func (c *wsClient) send(t *testing.T, msgType string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	msg, err := json.Marshal(ClientMessage{Type: msgType, Data: raw})
	require.NoError(t, err)
	c.socket.in <- msg
}

// expect drains the outbound stream until an event of the wanted type
// arrives; interleaved state updates are part of normal traffic.
func (c *wsClient) expect(t *testing.T, msgType string) map[string]any {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case raw := <-c.socket.out:
			var evt testEvent
			require.NoError(t, json.Unmarshal(raw, &evt))
			if evt.Type == msgType {
				return evt.Data
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", msgType)
			return nil
		}
	}
}

func TestWebsocket_CreateAndJoin(t *testing.T) {
	t.Parallel()
	h, _ := testServer()

	host := dial(h)
	host.send(t, "create_game", gin.H{"playerName": "alice", "playerCount": 6})

	created := host.expect(t, "game_created")
	roomCode, _ := created["roomCode"].(string)
	require.Regexp(t, `^[A-Z0-9]{6}$`, roomCode)

	joiner := dial(h)
	joiner.send(t, "join_game", gin.H{"roomCode": roomCode, "playerName": "bob"})

	joined := joiner.expect(t, "game_joined")
	assert.NotEmpty(t, joined["playerId"])
	state := joined["gameState"].(map[string]any)
	assert.Equal(t, "lobby", state["phase"])

	fromHost := host.expect(t, "player_joined")
	player := fromHost["player"].(map[string]any)
	assert.Equal(t, "bob", player["name"])
}

func TestWebsocket_JoinErrors(t *testing.T) {
	t.Parallel()
	h, _ := testServer()

	t.Run("unknown room code", func(t *testing.T) {
		c := dial(h)
		c.send(t, "join_game", gin.H{"roomCode": "ABC123", "playerName": "bob"})
		data := c.expect(t, "error")
		assert.Equal(t, "GAME_NOT_FOUND", data["code"])
	})

	t.Run("malformed code is rejected before the registry", func(t *testing.T) {
		c := dial(h)
		c.send(t, "join_game", gin.H{"roomCode": "nope", "playerName": "bob"})
		data := c.expect(t, "error")
		assert.Equal(t, "INVALID_PAYLOAD", data["code"])
	})

	t.Run("first message must bind", func(t *testing.T) {
		c := dial(h)
		c.send(t, "player_ready", nil)
		data := c.expect(t, "error")
		assert.Equal(t, "INVALID_PAYLOAD", data["code"])
	})
}

func TestWebsocket_ReadyAndLeave(t *testing.T) {
	t.Parallel()
	h, _ := testServer()

	host := dial(h)
	host.send(t, "create_game", gin.H{"playerName": "alice", "playerCount": 6})
	created := host.expect(t, "game_created")
	roomCode := created["roomCode"].(string)

	joiner := dial(h)
	joiner.send(t, "join_game", gin.H{"roomCode": roomCode, "playerName": "bob"})
	joined := joiner.expect(t, "game_joined")
	bobId := joined["playerId"].(string)

	joiner.send(t, "player_ready", nil)
	ready := host.expect(t, "player_ready_changed")
	assert.Equal(t, bobId, ready["playerId"])
	assert.Equal(t, true, ready["ready"])

	joiner.send(t, "leave_game", nil)
	left := host.expect(t, "player_left")
	assert.Equal(t, bobId, left["playerId"])
}

func TestWebsocket_ReconnectMidGame(t *testing.T) {
	t.Parallel()
	h, _ := testServer()

	s, ids := newTestLobby(t, h.registry, 6)
	advanceToPlaying(t, s, ids)
	me := ids[3]
	myRoom := s.players[me].currentRoom
	myRole := *s.players[me].role

	c := dial(h)
	c.send(t, "reconnect", gin.H{"roomCode": s.Code(), "playerId": me})

	joined := c.expect(t, "game_joined")
	assert.Equal(t, me, joined["playerId"])
	state := joined["gameState"].(map[string]any)
	assert.Equal(t, "playing", state["phase"])

	for _, raw := range state["players"].([]any) {
		player := raw.(map[string]any)
		if player["id"] != me {
			assert.Nil(t, player["role"], "other players' roles stay hidden")
			continue
		}
		assert.Equal(t, float64(myRoom), player["currentRoom"])
		role := player["role"].(map[string]any)
		assert.Equal(t, string(myRole.Kind), role["type"])
	}
}

func TestWebsocket_MalformedActionPayload(t *testing.T) {
	t.Parallel()
	h, _ := testServer()

	s, ids := newTestLobby(t, h.registry, 6)
	advanceToPlaying(t, s, ids)
	me, target := ids[0], ids[1]

	c := dial(h)
	c.send(t, "reconnect", gin.H{"roomCode": s.Code(), "playerId": me})
	c.expect(t, "game_joined")

	c.send(t, "point_at_player", gin.H{"targetId": target})
	c.expect(t, "pointing_changed")

	// Garbage data must be rejected before it can clear the pointing.
	c.send(t, "point_at_player", []int{1, 2, 3})
	data := c.expect(t, "error")
	assert.Equal(t, "INVALID_PAYLOAD", data["code"])
	assert.Equal(t, target, s.players[me].pointingAt)
}

func TestWebsocket_StaleSocketDeathKeepsReconnectAlive(t *testing.T) {
	t.Parallel()
	h, _ := testServer()

	s, ids := newTestLobby(t, h.registry, 6)
	advanceToPlaying(t, s, ids)
	me := ids[0]

	first := dial(h)
	first.send(t, "reconnect", gin.H{"roomCode": s.Code(), "playerId": me})
	first.expect(t, "game_joined")

	second := dial(h)
	second.send(t, "reconnect", gin.H{"roomCode": s.Code(), "playerId": me})
	second.expect(t, "game_joined")

	// Rebinding releases the first socket; its dying read loop must not
	// knock the fresh connection offline.
	second.send(t, "request_state", nil)
	second.expect(t, "state_update")

	assert.Never(t, func() bool {
		return !s.players[me].connected
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestWebsocket_ReconnectInLobbyReplacesSocket(t *testing.T) {
	t.Parallel()
	h, _ := testServer()

	host := dial(h)
	host.send(t, "create_game", gin.H{"playerName": "alice", "playerCount": 6})
	created := host.expect(t, "game_created")
	roomCode := created["roomCode"].(string)
	hostId := created["playerId"].(string)

	replacement := dial(h)
	replacement.send(t, "reconnect", gin.H{"roomCode": roomCode, "playerId": hostId})
	replacement.expect(t, "game_joined")

	replacement.send(t, "request_state", nil)
	replacement.expect(t, "state_update")

	// The replaced socket's lobby-phase death must not evict the host.
	assert.Never(t, func() bool {
		_, ok := h.registry.LookupByPlayer(hostId)
		return !ok
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestWebsocket_FullGameFlow(t *testing.T) {
	t.Parallel()
	h, _ := testServer()

	host := dial(h)
	host.send(t, "create_game", gin.H{"playerName": "p0", "playerCount": 6})
	created := host.expect(t, "game_created")
	roomCode := created["roomCode"].(string)

	clients := []*wsClient{host}
	for i := 1; i < 6; i++ {
		c := dial(h)
		c.send(t, "join_game", gin.H{"roomCode": roomCode, "playerName": fmt.Sprintf("p%d", i)})
		c.expect(t, "game_joined")
		clients = append(clients, c)
	}

	for _, c := range clients {
		c.send(t, "player_ready", nil)
	}
	// The host must have seen every toggle before starting is legal.
	for range clients {
		host.expect(t, "player_ready_changed")
	}
	host.send(t, "start_game", nil)

	for _, c := range clients {
		data := c.expect(t, "role_assigned")
		role := data["role"].(map[string]any)
		assert.NotEmpty(t, role["type"])
		assert.NotEmpty(t, role["team"])

		assignment := c.expect(t, "room_assignment")
		assert.Contains(t, []any{float64(0), float64(1)}, assignment["room"])
	}

	for _, c := range clients {
		c.send(t, "player_role_ready", nil)
		c.send(t, "confirm_room", gin.H{"room": 0})
	}

	// The last acknowledgement moves everyone into playing with armed
	// cooldowns.
	for _, c := range clients {
		expectPhase(t, c, "playing")
	}
	state := host.expect(t, "state_update")["gameState"].(map[string]any)
	timers := state["timers"].([]any)
	require.Len(t, timers, 2)
	for _, timer := range timers {
		assert.Equal(t, float64(CooldownSeconds), timer.(map[string]any)["cooldown"])
	}
}

// expectPhase drains phase_changed events until the wanted phase shows up.
func expectPhase(t *testing.T, c *wsClient, phase string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.expect(t, "phase_changed")["phase"] == phase {
			return
		}
	}
	t.Fatalf("never reached phase %q", phase)
}
