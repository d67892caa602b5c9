package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeEmptyMessage    = "empty_message"
	ErrCodeSessionClosed   = "session_closed"
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeRateLimited     = "rate_limited"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrSessionClosed   = errors.New("session closed")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrTooManySessions = errors.New("too many open sessions")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// AsCoreError maps a domain error to its wire code.
func AsCoreError(err error) *CoreError {
	var ce *CoreError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, ErrEmptyMessage):
		return coreError(ErrCodeEmptyMessage, err.Error())
	case errors.Is(err, ErrSessionClosed):
		return coreError(ErrCodeSessionClosed, err.Error())
	case errors.Is(err, ErrSessionNotFound):
		return coreError(ErrCodeSessionNotFound, err.Error())
	case errors.Is(err, ErrTooManySessions):
		return coreError(ErrCodeRateLimited, err.Error())
	default:
		return coreError(ErrCodeBadRequest, err.Error())
	}
}
