package game

import "errors"

// Code classifies a rejected request. The router echoes it to the client in
// the error message so the UI can react without parsing text.
type Code string

const (
	CodeValidation   Code = "validation"
	CodeUnauthorized Code = "unauthorized"
	CodeInvalidState Code = "invalid_state"
	CodeRateLimited  Code = "rate_limited"
	CodeNotFound     Code = "not_found"
	CodeMalformed    Code = "malformed"
	CodeInternal     Code = "internal"
)

// Error is returned by every room operation that refuses a request. The room
// state is left untouched when one is returned.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on code so callers can test against the sentinels below even
// when the message was customised.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

var (
	ErrNameRequired      = newError(CodeValidation, "player name cannot be empty")
	ErrNameTooLong       = newError(CodeValidation, "player name must be at most 20 characters")
	ErrNameTaken         = newError(CodeValidation, "that name is already taken in this room")
	ErrInvalidRoomID     = newError(CodeValidation, "room code must be 4 digits")
	ErrEmptyMessage      = newError(CodeValidation, "message cannot be empty")
	ErrMessageTooLong    = newError(CodeValidation, "message is too long")
	ErrRevealsWord       = newError(CodeValidation, "you can't reveal the word")
	ErrCannotKickSelf    = newError(CodeValidation, "you can't kick yourself")
	ErrNotLeader         = newError(CodeUnauthorized, "only the party leader can do that")
	ErrNotDrawer         = newError(CodeUnauthorized, "only the drawer can draw")
	ErrDrawerCannotGuess = newError(CodeUnauthorized, "the drawer can't guess")
	ErrRoomFull          = newError(CodeInvalidState, "room is full")
	ErrGameInProgress    = newError(CodeInvalidState, "a game is already in progress")
	ErrNotPlaying        = newError(CodeInvalidState, "no round is in progress")
	ErrGameNotEnded      = newError(CodeInvalidState, "the current game has not ended")
	ErrAwaitingNewGame   = newError(CodeInvalidState, "waiting for the leader to start a new game")
	ErrAlreadyJoined     = newError(CodeInvalidState, "connection already joined a room")
	ErrNotJoined         = newError(CodeInvalidState, "join a room first")
	ErrRoomClosed        = newError(CodeInvalidState, "room is closed")
	ErrRoomsExhausted    = newError(CodeInvalidState, "no free room codes left")
	ErrRateLimited       = newError(CodeRateLimited, "you're sending messages too fast")
	ErrRoomNotFound      = newError(CodeNotFound, "room not found")
	ErrPlayerNotFound    = newError(CodeNotFound, "player not found")
	ErrMalformedMessage  = newError(CodeMalformed, "malformed message")
	ErrInternal          = newError(CodeInternal, "something went wrong")
)

// CodeOf extracts the classification of err, or "" for errors that did not
// originate from a room.
func CodeOf(err error) Code {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return ""
}
