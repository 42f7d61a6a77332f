package game

import "github.com/ramonabrendel1204-sketch/Devilsdice/internal/scoring"

// EventKind names a server to client notification.
type EventKind int

const (
	EventUnspecified EventKind = iota
	EventRosterUpdated
	EventGameStarted
	EventStateUpdated
	EventGameFinished
)

func (k EventKind) String() string {
	switch k {
	case EventRosterUpdated:
		return "roster-updated"
	case EventGameStarted:
		return "game-started"
	case EventStateUpdated:
		return "state-updated"
	case EventGameFinished:
		return "game-finished"
	default:
		return "unspecified"
	}
}

// Event is one notification for one session. Payload is a Roster,
// Snapshot, StateUpdate or Result depending on Kind.
type Event struct {
	Kind    EventKind
	Payload any
}

// Sender delivers events to transport sessions. Send is called while the
// room is locked and must not block or call back into the Registry.
type Sender interface {
	Send(sessionID string, ev Event)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(sessionID string, ev Event)

func (f SenderFunc) Send(sessionID string, ev Event) { f(sessionID, ev) }

// Held marks dice excluded from the next roll.
type Held [scoring.DiceCount]bool

// PlayerView is the public state of one player.
type PlayerView struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Scores   map[string]int `json:"scores"`
	UpperSum int            `json:"upperSum"`
	Bonus    int            `json:"bonus"`
	Total    int            `json:"total"`
}

// Roster is the payload of EventRosterUpdated.
type Roster struct {
	RoomCode string       `json:"roomCode"`
	Players  []PlayerView `json:"players"`
}

// Snapshot is the full room state as seen by one session.
type Snapshot struct {
	RoomCode           string       `json:"roomCode"`
	Phase              string       `json:"phase"`
	GameStarted        bool         `json:"gameStarted"`
	Players            []PlayerView `json:"players"`
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
	Dice               scoring.Dice `json:"dice"`
	Held               Held         `json:"held"`
	RollsLeft          int          `json:"rollsLeft"`
}

// StateUpdate is the payload of EventStateUpdated: either the full room or
// only the held dice.
type StateUpdate struct {
	Room *Snapshot `json:"room,omitempty"`
	Held *Held     `json:"held,omitempty"`
}

// Standing is one line of the final results.
type Standing struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Bonus int    `json:"bonus"`
	Total int    `json:"total"`
}

// Result is the payload of EventGameFinished. Standings are ordered by
// total, highest first, ties kept in turn order.
type Result struct {
	RoomCode  string     `json:"roomCode"`
	Standings []Standing `json:"standings"`
	Winners   []string   `json:"winners"`
	Draw      bool       `json:"draw"`
}
