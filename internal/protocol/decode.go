package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/game"
	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/scoring"
)

// MaxPlayerName is the longest player name kept, in runes.
const MaxPlayerName = 32

// Request is a decoded and validated inbound message. Only the fields of
// its Type are set; RoomCode is already normalized.
type Request struct {
	Type  string
	ReqID string

	RoomCode   string
	PlayerName string
	Dice       scoring.Dice
	RollsLeft  int
	Held       game.Held
	Category   scoring.Category
}

// Decode parses one frame. On failure the returned Request still carries
// the envelope's ReqID when it could be read, so the error can be echoed.
func Decode(data []byte) (Request, error) {
	var in InMsg
	if err := json.Unmarshal(data, &in); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	req := Request{Type: in.T, ReqID: in.ReqID}

	var err error
	switch in.T {
	case TypePing:
	case TypeJoin:
		err = req.decodeJoin(in.P)
	case TypeStart, TypeLeave:
		var p RoomPayload
		if err = unmarshalPayload(in.P, &p); err == nil {
			req.RoomCode, err = roomCode(p.RoomCode)
		}
	case TypeRoll:
		err = req.decodeRoll(in.P)
	case TypeToggleHold:
		err = req.decodeHold(in.P)
	case TypeCommit:
		err = req.decodeCommit(in.P)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownType, in.T)
	}
	return req, err
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", ErrBadPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

func roomCode(code string) (string, error) {
	code = game.NormalizeCode(code)
	if code == "" {
		return "", fmt.Errorf("%w: roomCode required", ErrBadPayload)
	}
	return code, nil
}

func (r *Request) decodeJoin(raw json.RawMessage) error {
	var p JoinPayload
	if err := unmarshalPayload(raw, &p); err != nil {
		return err
	}
	code, err := roomCode(p.RoomCode)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(p.PlayerName)
	if utf8.RuneCountInString(name) > MaxPlayerName {
		name = string([]rune(name)[:MaxPlayerName])
	}
	r.RoomCode, r.PlayerName = code, name
	return nil
}

func (r *Request) decodeRoll(raw json.RawMessage) error {
	var p RollPayload
	if err := unmarshalPayload(raw, &p); err != nil {
		return err
	}
	code, err := roomCode(p.RoomCode)
	if err != nil {
		return err
	}
	if len(p.Dice) != scoring.DiceCount {
		return fmt.Errorf("%w: dice must have %d values, got %d", ErrBadPayload, scoring.DiceCount, len(p.Dice))
	}
	for i, v := range p.Dice {
		if v < 0 || v > 6 {
			return fmt.Errorf("%w: die %d out of range: %d", ErrBadPayload, i, v)
		}
		r.Dice[i] = v
	}
	if p.RollsLeft == nil || *p.RollsLeft < 0 || *p.RollsLeft > game.RollsPerTurn {
		return fmt.Errorf("%w: rollsLeft must be 0..%d", ErrBadPayload, game.RollsPerTurn)
	}
	r.RoomCode, r.RollsLeft = code, *p.RollsLeft
	return nil
}

func (r *Request) decodeHold(raw json.RawMessage) error {
	var p HoldPayload
	if err := unmarshalPayload(raw, &p); err != nil {
		return err
	}
	code, err := roomCode(p.RoomCode)
	if err != nil {
		return err
	}
	if len(p.Held) != scoring.DiceCount {
		return fmt.Errorf("%w: held must have %d values, got %d", ErrBadPayload, scoring.DiceCount, len(p.Held))
	}
	copy(r.Held[:], p.Held)
	r.RoomCode = code
	return nil
}

func (r *Request) decodeCommit(raw json.RawMessage) error {
	var p CommitPayload
	if err := unmarshalPayload(raw, &p); err != nil {
		return err
	}
	code, err := roomCode(p.RoomCode)
	if err != nil {
		return err
	}
	c, err := scoring.ParseCategory(p.CategoryID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	r.RoomCode, r.Category = code, c
	return nil
}
