package domain

import "errors"

var (
	// Client protocol errors: rejected before the store is touched.
	ErrInvalidCode    = errors.New("invalid session code")
	ErrMessageTooLong = errors.New("message too long")
	ErrMediaRejected  = errors.New("media rejected")

	// Capacity errors.
	ErrFull          = errors.New("session is full")
	ErrAlreadyMember = errors.New("already in session")

	ErrNotFound = errors.New("session not found")

	ErrCodeSpaceExhausted = errors.New("code space exhausted")
	ErrCodeTaken          = errors.New("code taken")

	ErrRateLimited = errors.New("too many attempts")
)

// Reason maps an engine error to the text sent to clients.
// Unknown and expired codes share one wording so a client cannot tell
// whether a code ever existed.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCode):
		return "Invalid session code"
	case errors.Is(err, ErrNotFound):
		return "Session not found or expired"
	case errors.Is(err, ErrFull):
		return "Session is full"
	case errors.Is(err, ErrAlreadyMember):
		return "Already in this session"
	case errors.Is(err, ErrCodeSpaceExhausted):
		return "Failed to create session, please try again"
	case errors.Is(err, ErrMessageTooLong):
		return "Message too long"
	case errors.Is(err, ErrMediaRejected):
		return err.Error()
	case errors.Is(err, ErrRateLimited):
		return "Too many attempts, please wait"
	default:
		return "Internal error"
	}
}
