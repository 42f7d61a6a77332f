// Package game holds the authoritative state of every dice room.
//
// A Registry maps room codes to rooms. Each room is guarded by its own
// mutex and every operation, including the events it emits, runs under
// that lock, so actions on one room are applied and broadcast in a single
// total order while different rooms proceed independently.
//
// Clients only send intents (join, start, roll, hold, commit, leave). The
// Registry computes every score itself and pushes the resulting state to
// all players of the room through a Sender.
package game

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/scoring"
)

// Registry owns the rooms of one process.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	policy Policy
	sender Sender
	log    zerolog.Logger
}

// NewRegistry returns an empty registry. The policy is normalized; an
// invalid hold broadcast mode is an error.
func NewRegistry(sender Sender, policy Policy, log zerolog.Logger) (*Registry, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	policy, err := NormalizePolicy(policy)
	if err != nil {
		return nil, err
	}
	return &Registry{
		rooms:  make(map[string]*Room),
		policy: policy,
		sender: sender,
		log:    log,
	}, nil
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

func (g *Registry) lookup(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[code]
	return r, ok
}

func (g *Registry) getOrCreate(code string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.rooms[code]; ok {
		return r
	}
	r := newRoom(code, g.policy, g.sender, g.log)
	g.rooms[code] = r
	g.log.Info().Str("room_code", code).Msg("room created")
	return r
}

func (g *Registry) remove(code string, r *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rooms[code] == r {
		delete(g.rooms, code)
		g.log.Info().Str("room_code", code).Msg("room destroyed")
	}
}

// withRoom runs fn on the live room for code while holding its lock.
func (g *Registry) withRoom(code string, fn func(r *Room) error) error {
	code = NormalizeCode(code)
	r, ok := g.lookup(code)
	if !ok {
		return ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomNotFound
	}
	return fn(r)
}

// Join seats sessionID in the room, creating the room on first use.
// Joining twice with the same session is a no-op apart from the roster
// broadcast. Joining a started game returns ErrGameStarted.
func (g *Registry) Join(code, name, sessionID string) error {
	code = NormalizeCode(code)
	for {
		r := g.getOrCreate(code)

		r.mu.Lock()
		if r.closed {
			// lost a race with the last leave; the registry entry is
			// already gone or about to be
			r.mu.Unlock()
			g.remove(code, r)
			continue
		}
		err := r.join(name, sessionID)
		r.mu.Unlock()
		return err
	}
}

// Start moves the room from the lobby into play. Any session may start
// the game, including one that has not joined.
func (g *Registry) Start(code, sessionID string) error {
	return g.withRoom(code, func(r *Room) error {
		return r.start(sessionID)
	})
}

// Roll records the dice a client rolled. The dice are trusted; scores are
// only computed at commit time.
func (g *Registry) Roll(code, sessionID string, dice scoring.Dice, rollsLeft int) error {
	return g.withRoom(code, func(r *Room) error {
		return r.roll(sessionID, dice, rollsLeft)
	})
}

// ToggleHold records which dice are held.
func (g *Registry) ToggleHold(code, sessionID string, held Held) error {
	return g.withRoom(code, func(r *Room) error {
		return r.toggleHold(sessionID, held)
	})
}

// Commit scores the room's current dice in category c for the current
// player, then passes the turn. It returns the points awarded.
func (g *Registry) Commit(code, sessionID string, c scoring.Category) (int, error) {
	var score int
	err := g.withRoom(code, func(r *Room) error {
		var err error
		score, err = r.commit(sessionID, c)
		return err
	})
	return score, err
}

// Leave removes sessionID from the room and destroys the room once empty.
func (g *Registry) Leave(code, sessionID string) error {
	code = NormalizeCode(code)
	var (
		room  *Room
		empty bool
	)
	err := g.withRoom(code, func(r *Room) error {
		var err error
		room = r
		empty, err = r.leave(sessionID)
		return err
	})
	if err != nil {
		return err
	}
	if empty {
		g.remove(code, room)
	}
	return nil
}

// Snapshot returns the room as seen by sessionID.
func (g *Registry) Snapshot(code, sessionID string) (Snapshot, error) {
	var snap Snapshot
	err := g.withRoom(code, func(r *Room) error {
		snap = r.snapshotFor(sessionID)
		return nil
	})
	return snap, err
}

// NewCode returns a random room code that is not in use right now.
func (g *Registry) NewCode() (string, error) {
	for {
		code, err := GenerateCode(DefaultCodeLength)
		if err != nil {
			return "", err
		}
		if _, taken := g.lookup(code); !taken {
			return code, nil
		}
	}
}
