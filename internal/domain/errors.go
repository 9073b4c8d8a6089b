package domain

import "errors"

// Domain errors reported back to the participant that caused them
var (
	ErrRoundInProgress = errors.New("round in progress, wait for it to finish")
	ErrDuplicateName   = errors.New("that name is already taken")
	ErrAlreadyJoined   = errors.New("connection already joined")
	ErrInvalidName     = errors.New("invalid display name")
)

// Error codes sent to clients
const (
	CodeRoundInProgress = "ROUND_IN_PROGRESS"
	CodeDuplicateName   = "DUPLICATE_NAME"
	CodeAlreadyJoined   = "ALREADY_JOINED"
	CodeInvalidName     = "INVALID_NAME"
	CodeInternalError   = "INTERNAL_ERROR"
)

// ErrorCode maps a domain error to the code reported to the client
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoundInProgress):
		return CodeRoundInProgress
	case errors.Is(err, ErrDuplicateName):
		return CodeDuplicateName
	case errors.Is(err, ErrAlreadyJoined):
		return CodeAlreadyJoined
	case errors.Is(err, ErrInvalidName):
		return CodeInvalidName
	default:
		return CodeInternalError
	}
}
