package protocol

import (
	"errors"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/game"
	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/scoring"
)

var (
	ErrBadJSON     = errors.New("invalid json")
	ErrBadPayload  = errors.New("invalid payload")
	ErrUnknownType = errors.New("unknown message type")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Wire error codes.
const (
	CodeBadJSON        = "BAD_JSON"
	CodeBadPayload     = "BAD_PAYLOAD"
	CodeUnknownType    = "UNKNOWN_TYPE"
	CodeGameStarted    = "GAME_ALREADY_STARTED"
	CodeNotStarted     = "GAME_NOT_STARTED"
	CodeGameComplete   = "GAME_COMPLETE"
	CodeCategoryFilled = "CATEGORY_FILLED"
	CodeNotYourTurn    = "NOT_YOUR_TURN"
	CodeNotInRoom      = "NOT_IN_ROOM"
	CodeEmptyRoster    = "EMPTY_ROSTER"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrBadJSON, CodeBadJSON},
	{ErrBadPayload, CodeBadPayload},
	{scoring.ErrUnknownCategory, CodeBadPayload},
	{ErrUnknownType, CodeUnknownType},
	{game.ErrGameStarted, CodeGameStarted},
	{game.ErrNotStarted, CodeNotStarted},
	{game.ErrGameComplete, CodeGameComplete},
	{game.ErrCategoryFilled, CodeCategoryFilled},
	{game.ErrNotYourTurn, CodeNotYourTurn},
	{game.ErrNotInRoom, CodeNotInRoom},
	{game.ErrEmptyRoster, CodeEmptyRoster},
	{ErrRateLimited, CodeRateLimited},
}

// Code maps an error to its wire code. Unrecognized errors are INTERNAL.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}
