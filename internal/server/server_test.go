package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/game"
	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/protocol"
)

type frame struct {
	T     string          `json:"t"`
	ReqID string          `json:"reqId"`
	P     json.RawMessage `json:"p"`
}

type testRoom struct {
	RoomCode           string            `json:"roomCode"`
	Phase              string            `json:"phase"`
	GameStarted        bool              `json:"gameStarted"`
	Players            []game.PlayerView `json:"players"`
	CurrentPlayerIndex int               `json:"currentPlayerIndex"`
	Dice               [5]int            `json:"dice"`
	Held               [5]bool           `json:"held"`
	RollsLeft          int               `json:"rollsLeft"`
}

func newTestServer(t *testing.T, policy game.Policy, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(policy, opts, zerolog.Nop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

// dial connects and consumes the hello frame, returning the session id.
func dial(t *testing.T, ts *httptest.Server) (*websocket.Conn, string) {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	hello := next(t, conn)
	require.Equal(t, protocol.TypeHello, hello.T)
	var p protocol.HelloPayload
	require.NoError(t, json.Unmarshal(hello.P, &p))
	require.NotEmpty(t, p.SessionID)
	return conn, p.SessionID
}

func write(t *testing.T, conn *websocket.Conn, typ, reqID string, payload any) {
	t.Helper()
	msg := map[string]any{"t": typ}
	if reqID != "" {
		msg["reqId"] = reqID
	}
	if payload != nil {
		msg["p"] = payload
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func next(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func expect(t *testing.T, conn *websocket.Conn, typ string) frame {
	t.Helper()
	f := next(t, conn)
	require.Equal(t, typ, f.T, "payload: %s", f.P)
	return f
}

func expectError(t *testing.T, conn *websocket.Conn, code string) frame {
	t.Helper()
	f := expect(t, conn, protocol.TypeError)
	var p protocol.ErrPayload
	require.NoError(t, json.Unmarshal(f.P, &p))
	assert.Equal(t, code, p.Code, p.Msg)
	return f
}

func decodeRoster(t *testing.T, f frame) game.Roster {
	t.Helper()
	var r game.Roster
	require.NoError(t, json.Unmarshal(f.P, &r))
	return r
}

func decodeStateRoom(t *testing.T, f frame) testRoom {
	t.Helper()
	var update struct {
		Room *testRoom `json:"room"`
	}
	require.NoError(t, json.Unmarshal(f.P, &update))
	require.NotNil(t, update.Room)
	return *update.Room
}

func TestHealth(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, game.DefaultPolicy(), DefaultOptions())

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestRoomCode(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, game.DefaultPolicy(), DefaultOptions())

	resp, err := http.Get(ts.URL + "/rooms/code")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out roomCodeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.RoomCode, game.DefaultCodeLength)
}

func TestWebsocket_TwoPlayerGame(t *testing.T) {
	t.Parallel()
	srv, ts := newTestServer(t, game.DefaultPolicy(), DefaultOptions())

	ada, adaID := dial(t, ts)
	bob, bobID := dial(t, ts)
	assert.Equal(t, 2, srv.Hub().Len())

	write(t, ada, protocol.TypeJoin, "", map[string]any{"roomCode": "x1", "playerName": "Ada"})
	roster := decodeRoster(t, expect(t, ada, "roster-updated"))
	assert.Equal(t, "X1", roster.RoomCode)
	require.Len(t, roster.Players, 1)

	write(t, bob, protocol.TypeJoin, "", map[string]any{"roomCode": "X1", "playerName": "Bob"})
	for _, c := range []*websocket.Conn{ada, bob} {
		roster = decodeRoster(t, expect(t, c, "roster-updated"))
		require.Len(t, roster.Players, 2)
		assert.Equal(t, adaID, roster.Players[0].ID)
		assert.Equal(t, bobID, roster.Players[1].ID)
	}

	write(t, ada, protocol.TypeStart, "", map[string]any{"roomCode": "X1"})
	for _, c := range []*websocket.Conn{ada, bob} {
		var snap testRoom
		require.NoError(t, json.Unmarshal(expect(t, c, "game-started").P, &snap))
		assert.True(t, snap.GameStarted)
		assert.Equal(t, 0, snap.CurrentPlayerIndex)
	}

	write(t, ada, protocol.TypeRoll, "", map[string]any{"roomCode": "X1", "dice": []int{2, 2, 2, 5, 6}, "rollsLeft": 2})
	for _, c := range []*websocket.Conn{ada, bob} {
		room := decodeStateRoom(t, expect(t, c, "state-updated"))
		assert.Equal(t, [5]int{2, 2, 2, 5, 6}, room.Dice)
		assert.Equal(t, 2, room.RollsLeft)
	}

	write(t, ada, protocol.TypeToggleHold, "", map[string]any{"roomCode": "X1", "held": []bool{true, true, true, false, false}})
	var held struct {
		Held [5]bool `json:"held"`
	}
	require.NoError(t, json.Unmarshal(expect(t, bob, "state-updated").P, &held))
	assert.Equal(t, [5]bool{true, true, true, false, false}, held.Held)

	write(t, ada, protocol.TypeCommit, "", map[string]any{"roomCode": "X1", "categoryId": "3k"})
	for _, c := range []*websocket.Conn{ada, bob} {
		room := decodeStateRoom(t, expect(t, c, "state-updated"))
		assert.Equal(t, 1, room.CurrentPlayerIndex)
		assert.Equal(t, [5]int{}, room.Dice)
		assert.Equal(t, [5]bool{}, room.Held)
		assert.Equal(t, game.RollsPerTurn, room.RollsLeft)
		assert.Equal(t, map[string]int{"3k": 17}, room.Players[0].Scores)
		assert.Equal(t, 17, room.Players[0].Total)
	}
}

func TestWebsocket_Errors(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, game.DefaultPolicy(), DefaultOptions())
	conn, _ := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	expectError(t, conn, protocol.CodeBadJSON)

	write(t, conn, "cheat", "r1", nil)
	f := expectError(t, conn, protocol.CodeUnknownType)
	assert.Equal(t, "r1", f.ReqID)

	write(t, conn, protocol.TypeRoll, "r2", map[string]any{"roomCode": "A", "dice": []int{1, 2, 3, 4, 9}, "rollsLeft": 1})
	f = expectError(t, conn, protocol.CodeBadPayload)
	assert.Equal(t, "r2", f.ReqID)

	write(t, conn, protocol.TypeCommit, "r3", map[string]any{"roomCode": "A", "categoryId": "yahtzee"})
	expectError(t, conn, protocol.CodeBadPayload)

	write(t, conn, protocol.TypeJoin, "", map[string]any{"roomCode": "A", "playerName": "Ada"})
	expect(t, conn, "roster-updated")
	write(t, conn, protocol.TypeRoll, "r4", map[string]any{"roomCode": "A", "dice": []int{1, 2, 3, 4, 5}, "rollsLeft": 2})
	f = expectError(t, conn, protocol.CodeNotStarted)
	assert.Equal(t, "r4", f.ReqID)

	write(t, conn, protocol.TypeStart, "", map[string]any{"roomCode": "A"})
	expect(t, conn, "game-started")
	write(t, conn, protocol.TypeJoin, "r5", map[string]any{"roomCode": "a", "playerName": "Again"})
	expectError(t, conn, protocol.CodeGameStarted)
}

func TestWebsocket_UnknownRoomIsSilent(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, game.DefaultPolicy(), DefaultOptions())
	conn, _ := dial(t, ts)

	write(t, conn, protocol.TypeStart, "s", map[string]any{"roomCode": "GHOST"})
	write(t, conn, protocol.TypeCommit, "c", map[string]any{"roomCode": "GHOST", "categoryId": "ch"})
	write(t, conn, protocol.TypePing, "p", nil)

	f := expect(t, conn, protocol.TypePong)
	assert.Equal(t, "p", f.ReqID)
}

func TestWebsocket_DisconnectLeavesRooms(t *testing.T) {
	t.Parallel()
	srv, ts := newTestServer(t, game.DefaultPolicy(), DefaultOptions())
	ada, _ := dial(t, ts)
	bob, _ := dial(t, ts)

	write(t, ada, protocol.TypeJoin, "", map[string]any{"roomCode": "D", "playerName": "Ada"})
	expect(t, ada, "roster-updated")
	write(t, bob, protocol.TypeJoin, "", map[string]any{"roomCode": "D", "playerName": "Bob"})
	expect(t, bob, "roster-updated")
	expect(t, ada, "roster-updated")

	require.NoError(t, bob.Close())
	roster := decodeRoster(t, expect(t, ada, "roster-updated"))
	require.Len(t, roster.Players, 1)
	assert.Equal(t, "Ada", roster.Players[0].Name)

	require.NoError(t, ada.Close())
	require.Eventually(t, func() bool {
		return srv.Registry().Len() == 0 && srv.Hub().Len() == 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWebsocket_ExplicitLeave(t *testing.T) {
	t.Parallel()
	srv, ts := newTestServer(t, game.DefaultPolicy(), DefaultOptions())
	conn, _ := dial(t, ts)

	write(t, conn, protocol.TypeJoin, "", map[string]any{"roomCode": "L", "playerName": "Ada"})
	expect(t, conn, "roster-updated")
	write(t, conn, protocol.TypeLeave, "", map[string]any{"roomCode": "l"})
	write(t, conn, protocol.TypePing, "after", nil)
	expect(t, conn, protocol.TypePong)
	assert.Zero(t, srv.Registry().Len())

	write(t, conn, protocol.TypeLeave, "again", map[string]any{"roomCode": "L"})
	write(t, conn, protocol.TypePing, "after", nil)
	expect(t, conn, protocol.TypePong)
}

func TestWebsocket_RateLimit(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, game.DefaultPolicy(), Options{MsgsPerSecond: 0.01, MsgBurst: 1})
	conn, _ := dial(t, ts)

	write(t, conn, protocol.TypePing, "1", nil)
	write(t, conn, protocol.TypePing, "2", nil)
	expect(t, conn, protocol.TypePong)
	expectError(t, conn, protocol.CodeRateLimited)
}

func TestWebsocket_ClosesAfterRepeatedGarbage(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, game.DefaultPolicy(), DefaultOptions())
	conn, _ := dial(t, ts)

	for i := 0; i < maxBadFrames; i++ {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("garbage")))
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var err error
	for err == nil {
		_, _, err = conn.ReadMessage()
	}
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}

func TestWebsocket_OriginCheck(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, game.DefaultPolicy(), Options{AllowedOrigins: []string{"https://dice.example"}})

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"https://DICE.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestHub_SendToUnknownSession(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	assert.NotPanics(t, func() {
		hub.Send("missing", game.Event{Kind: game.EventRosterUpdated, Payload: game.Roster{}})
		hub.Send("missing", game.Event{})
	})
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	t.Parallel()
	srv, err := New(game.DefaultPolicy(), DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0", time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNew_InvalidPolicy(t *testing.T) {
	t.Parallel()
	_, err := New(game.Policy{HoldBroadcast: "loud"}, DefaultOptions(), zerolog.Nop())
	assert.Error(t, err)
}
