package server

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/game"
	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/protocol"
)

func (s *Server) readPump(sess *session) {
	defer func() {
		for code := range sess.rooms {
			if err := s.registry.Leave(code, sess.id); err != nil && !errors.Is(err, game.ErrRoomNotFound) {
				sess.log.Debug().Err(err).Str("room_code", code).Msg("leave on disconnect")
			}
		}
		s.hub.remove(sess)
		sess.stop()
		_ = sess.ws.Close()
		sess.log.Info().Msg("session disconnected")
	}()

	sess.ws.SetReadLimit(maxFrameBytes)
	_ = sess.ws.SetReadDeadline(time.Now().Add(pongWait))
	sess.ws.SetPongHandler(func(string) error {
		_ = sess.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	badFrames := 0
	for {
		_, data, err := sess.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.log.Debug().Err(err).Msg("websocket read")
			}
			return
		}

		if !sess.limiter.Allow() {
			sess.replyErr("", protocol.ErrRateLimited)
			continue
		}

		req, err := protocol.Decode(data)
		if err != nil {
			sess.replyErr(req.ReqID, err)
			if errors.Is(err, protocol.ErrBadJSON) {
				badFrames++
				if badFrames >= maxBadFrames {
					sess.log.Info().Int("bad_frames", badFrames).Msg("closing session after repeated invalid frames")
					sess.close(websocket.ClosePolicyViolation, "too many invalid frames")
					return
				}
			}
			continue
		}
		badFrames = 0

		s.handle(sess, req)
	}
}

// handle applies one validated request. Rejections go back to the sender
// only; requests for rooms that do not exist are dropped.
func (s *Server) handle(sess *session, req protocol.Request) {
	_, span := s.tracer.Start(context.Background(), "devilsdice."+req.Type,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("devilsdice.session_id", sess.id),
			attribute.String("devilsdice.room_code", req.RoomCode),
		),
	)
	defer span.End()

	err := s.dispatch(sess, req)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrRoomNotFound):
		sess.log.Debug().Str("type", req.Type).Str("room_code", req.RoomCode).Msg("request for unknown room ignored")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sess.log.Debug().Err(err).Str("type", req.Type).Str("room_code", req.RoomCode).Msg("request rejected")
		sess.replyErr(req.ReqID, err)
	}
}

func (s *Server) dispatch(sess *session, req protocol.Request) error {
	switch req.Type {
	case protocol.TypePing:
		sess.reply(protocol.OutMsg{T: protocol.TypePong, ReqID: req.ReqID})
		return nil

	case protocol.TypeJoin:
		if err := s.registry.Join(req.RoomCode, req.PlayerName, sess.id); err != nil {
			return err
		}
		sess.rooms[req.RoomCode] = struct{}{}
		return nil

	case protocol.TypeStart:
		return s.registry.Start(req.RoomCode, sess.id)

	case protocol.TypeRoll:
		return s.registry.Roll(req.RoomCode, sess.id, req.Dice, req.RollsLeft)

	case protocol.TypeToggleHold:
		return s.registry.ToggleHold(req.RoomCode, sess.id, req.Held)

	case protocol.TypeCommit:
		_, err := s.registry.Commit(req.RoomCode, sess.id, req.Category)
		return err

	case protocol.TypeLeave:
		delete(sess.rooms, req.RoomCode)
		return s.registry.Leave(req.RoomCode, sess.id)

	default:
		return protocol.ErrUnknownType
	}
}
