package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 120 * time.Second
	pingPeriod     = 30 * time.Second
	maxFrameBytes  = 16 * 1024
	maxBadFrames   = 3
	closeGraceWait = time.Second
)

// session is one websocket connection. Only the read loop touches rooms.
type session struct {
	id      string
	ws      *websocket.Conn
	send    chan []byte
	done    chan struct{}
	limiter *rate.Limiter
	log     zerolog.Logger

	// rooms this session joined, left on disconnect
	rooms map[string]struct{}

	closeOnce sync.Once
}

func newSession(id string, ws *websocket.Conn, opts Options, log zerolog.Logger) *session {
	return &session{
		id:      id,
		ws:      ws,
		send:    make(chan []byte, opts.SendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(opts.MsgsPerSecond), opts.MsgBurst),
		log:     log.With().Str("session_id", id).Logger(),
		rooms:   make(map[string]struct{}),
	}
}

// enqueue never blocks; a full buffer drops the frame.
func (s *session) enqueue(b []byte) {
	select {
	case s.send <- b:
	default:
		s.log.Warn().Int("buffer", cap(s.send)).Msg("send buffer full, frame dropped")
	}
}

func (s *session) reply(out protocol.OutMsg) {
	b, err := protocol.Encode(out)
	if err != nil {
		s.log.Error().Err(err).Msg("encode reply")
		return
	}
	s.enqueue(b)
}

func (s *session) replyErr(reqID string, err error) {
	s.reply(protocol.ErrorMsg(reqID, err))
}

// close sends a close frame and tears the socket down, which ends both
// pumps.
func (s *session) close(code int, reason string) {
	_ = s.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(closeGraceWait))
	_ = s.ws.Close()
}

func (s *session) stop() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}
