package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/game"
)

// EncodeEvent renders a game event as a broadcast frame.
func EncodeEvent(ev game.Event) ([]byte, error) {
	if ev.Kind == game.EventUnspecified {
		return nil, fmt.Errorf("encode event: unspecified kind")
	}
	return Encode(OutMsg{T: ev.Kind.String(), P: ev.Payload})
}

func Encode(out OutMsg) ([]byte, error) {
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", out.T, err)
	}
	return b, nil
}

// ErrorMsg builds the error reply for err, echoing reqID.
func ErrorMsg(reqID string, err error) OutMsg {
	return OutMsg{T: TypeError, ReqID: reqID, P: ErrPayload{Code: Code(err), Msg: err.Error()}}
}
