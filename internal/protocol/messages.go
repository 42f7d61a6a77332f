// Package protocol defines the JSON messages exchanged over a room
// websocket and validates inbound ones before they reach the game core.
//
// Every frame is an envelope {"t": type, "reqId": id, "p": payload}. The
// server echoes reqId on direct replies (pong, error) and leaves it empty on
// broadcasts.
package protocol

import "encoding/json"

// Client to server message types.
const (
	TypeJoin       = "join"
	TypeStart      = "start"
	TypeRoll       = "roll"
	TypeToggleHold = "toggleHold"
	TypeCommit     = "commit"
	TypeLeave      = "leave"
	TypePing       = "ping"
)

// Server to client message types that are not game events.
const (
	TypeHello = "hello"
	TypePong  = "pong"
	TypeError = "error"
)

// InMsg is an inbound envelope.
type InMsg struct {
	T     string          `json:"t"`
	ReqID string          `json:"reqId,omitempty"`
	P     json.RawMessage `json:"p,omitempty"`
}

// OutMsg is an outbound envelope.
type OutMsg struct {
	T     string `json:"t"`
	ReqID string `json:"reqId,omitempty"`
	P     any    `json:"p,omitempty"`
}

type ErrPayload struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

type HelloPayload struct {
	SessionID string `json:"sessionId"`
}

/* =========================
   Inbound payloads
   ========================= */

type JoinPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// RoomPayload carries only the target room (start, leave).
type RoomPayload struct {
	RoomCode string `json:"roomCode"`
}

type RollPayload struct {
	RoomCode  string `json:"roomCode"`
	Dice      []int  `json:"dice"`
	RollsLeft *int   `json:"rollsLeft"`
}

type HoldPayload struct {
	RoomCode string `json:"roomCode"`
	Held     []bool `json:"held"`
}

type CommitPayload struct {
	RoomCode   string `json:"roomCode"`
	CategoryID string `json:"categoryId"`
}
