package gamemaster

import (
	"github.com/pkg/errors"

	"rainet/game"
	"rainet/protocol"
)

var (
	ErrNameRequired = errors.New("say HELLO first")
	ErrNotInRoom    = errors.New("not in a room")
	ErrInRoom       = errors.New("already in a room")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrTooManyRooms = errors.New("too many rooms")
	ErrNotSeated    = errors.New("not seated in this match")
	ErrNotYourTurn  = errors.New("not your turn")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrNameRequired, "NAME_REQUIRED"},
	{ErrNotInRoom, "NOT_IN_ROOM"},
	{ErrInRoom, "IN_ROOM"},
	{ErrRoomNotFound, "ROOM_NOT_FOUND"},
	{ErrRoomFull, "ROOM_FULL"},
	{ErrTooManyRooms, "TOO_MANY_ROOMS"},
	{ErrNotSeated, "NOT_SEATED"},
	{ErrNotYourTurn, "NOT_YOUR_TURN"},
	{protocol.ErrMalformed, "MALFORMED"},
}

// ErrorCode maps a rejection to its wire code.
func ErrorCode(err error) string {
	var ge game.GameError
	if errors.As(err, &ge) {
		return ge.Code()
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "INTERNAL"
}
