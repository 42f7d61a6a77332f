package server

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/game"
	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/protocol"
)

// Hub tracks live websocket sessions and delivers game events to them. It
// is the game.Sender of the process.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
	log      zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		log:      log,
	}
}

// Send encodes ev and queues it for the session without blocking. Events
// for unknown sessions are dropped.
func (h *Hub) Send(sessionID string, ev game.Event) {
	b, err := protocol.EncodeEvent(ev)
	if err != nil {
		h.log.Error().Err(err).Str("event", ev.Kind.String()).Msg("encode event")
		return
	}

	h.mu.RLock()
	s := h.sessions[sessionID]
	h.mu.RUnlock()
	if s == nil {
		return
	}
	s.enqueue(b)
}

// Len returns the number of connected sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) add(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.id] = s
}

func (h *Hub) remove(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[s.id] == s {
		delete(h.sessions, s.id)
	}
}

// closeAll asks every session to close. Their read loops then run the
// usual disconnect cleanup.
func (h *Hub) closeAll() {
	h.mu.RLock()
	sessions := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.close(websocket.CloseGoingAway, "server shutting down")
	}
}
