package session

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionClosed is returned when acting on a session whose submission
	// redirected away.
	ErrSessionClosed = errors.New("session: closed")
	// ErrUnknownAction is returned for actions other than update, next,
	// back, and submit.
	ErrUnknownAction = errors.New("session: unknown action")
	// ErrNotFinalStep is returned when submit is requested before the last
	// step.
	ErrNotFinalStep = errors.New("session: submit is only available on the final step")
	// ErrStepIncomplete is returned when the final step does not validate.
	ErrStepIncomplete = errors.New("session: step is incomplete")
)
