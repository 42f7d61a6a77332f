package game

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sentEvent struct {
	to string
	ev Event
}

// recorder is a Sender that keeps everything it was asked to deliver.
type recorder struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recorder) Send(sessionID string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{to: sessionID, ev: ev})
}

// take returns the recorded events and forgets them.
func (r *recorder) take() []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func (r *recorder) kindsFor(events []sentEvent, sessionID string) []EventKind {
	var kinds []EventKind
	for _, e := range events {
		if e.to == sessionID {
			kinds = append(kinds, e.ev.Kind)
		}
	}
	return kinds
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(sessionID string, ev Event) {
	m.Called(sessionID, ev)
}

func newTestRegistry(t *testing.T, policy Policy) (*Registry, *recorder) {
	t.Helper()
	rec := &recorder{}
	reg, err := NewRegistry(rec, policy, zerolog.Nop())
	require.NoError(t, err)
	return reg, rec
}

func mustSnapshot(t *testing.T, reg *Registry, code, sessionID string) Snapshot {
	t.Helper()
	snap, err := reg.Snapshot(code, sessionID)
	require.NoError(t, err)
	return snap
}

// seatPlayers joins every session to code, named after the session, and
// starts the game.
func seatPlayers(t *testing.T, reg *Registry, code string, sessions ...string) {
	t.Helper()
	for _, s := range sessions {
		require.NoError(t, reg.Join(code, s, s))
	}
	require.NoError(t, reg.Start(code, sessions[0]))
}
