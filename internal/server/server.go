// Package server exposes the game registry over HTTP and websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/game"
	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/protocol"
	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/telemetry"
)

// Options tunes the websocket transport.
type Options struct {
	// AllowedOrigins lists accepted Origin headers. Empty accepts any.
	AllowedOrigins []string
	MsgsPerSecond  float64
	MsgBurst       int
	SendBuffer     int
}

func DefaultOptions() Options {
	return Options{MsgsPerSecond: 20, MsgBurst: 40, SendBuffer: 64}
}

func normalizeOptions(in Options) Options {
	def := DefaultOptions()
	if in.MsgsPerSecond <= 0 {
		in.MsgsPerSecond = def.MsgsPerSecond
	}
	if in.MsgBurst < 1 {
		in.MsgBurst = def.MsgBurst
	}
	if in.SendBuffer < 1 {
		in.SendBuffer = def.SendBuffer
	}
	return in
}

// Server owns the registry, the session hub and the HTTP routes.
type Server struct {
	registry *game.Registry
	hub      *Hub
	upgrader websocket.Upgrader
	opts     Options
	tracer   trace.Tracer
	log      zerolog.Logger
}

// New builds a Server whose registry applies policy to every room.
func New(policy game.Policy, opts Options, log zerolog.Logger) (*Server, error) {
	hub := NewHub(log)
	registry, err := game.NewRegistry(hub, policy, log)
	if err != nil {
		return nil, fmt.Errorf("new registry: %w", err)
	}

	s := &Server{
		registry: registry,
		hub:      hub,
		opts:     normalizeOptions(opts),
		tracer:   telemetry.Tracer(),
		log:      log,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s, nil
}

func (s *Server) Registry() *game.Registry { return s.registry }

func (s *Server) Hub() *Hub { return s.hub }

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Get("/ws", s.wsHandler)
	r.Get("/rooms/code", s.roomCodeHandler)
	return r
}

// ListenAndServe runs the HTTP server on addr until ctx ends, then shuts
// down within shutdownTimeout and closes every websocket.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer.RegisterOnShutdown(s.hub.closeAll)

	serveErr := make(chan error, 1)
	s.log.Info().Str("addr", addr).Msg("listening")
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		s.log.Info().Msg("server stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

/* =========================
   HTTP handlers
   ========================= */

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type roomCodeResponse struct {
	RoomCode string `json:"roomCode"`
}

func (s *Server) roomCodeHandler(w http.ResponseWriter, r *http.Request) {
	code, err := s.registry.NewCode()
	if err != nil {
		s.log.Error().Err(err).Msg("generate room code")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(roomCodeResponse{RoomCode: code})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// non-browser clients send no origin
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade")
		return
	}
	sess := newSession(uuid.NewString(), ws, s.opts, s.log)
	s.hub.add(sess)
	sess.log.Info().Str("remote", r.RemoteAddr).Msg("session connected")

	go sess.writePump()
	sess.reply(protocol.OutMsg{T: protocol.TypeHello, P: protocol.HelloPayload{SessionID: sess.id}})
	s.readPump(sess)
}
