package game

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrGameStarted    = errors.New("game already started")
	ErrNotStarted     = errors.New("game not started")
	ErrGameComplete   = errors.New("game complete")
	ErrCategoryFilled = errors.New("category already filled")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotInRoom      = errors.New("session not in room")
	ErrEmptyRoster    = errors.New("room has no players")
)
