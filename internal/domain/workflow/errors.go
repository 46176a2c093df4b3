package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when the current status is terminal or
	// has no routing entry for the requested action
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrUnauthorized is returned when the actor lacks the capability required
	// for the current step
	ErrUnauthorized = errors.New("actor not authorized for step")

	// ErrStaleTransition is returned when the step the caller intended to
	// resolve is no longer pending; the caller may re-read and retry
	ErrStaleTransition = errors.New("stale transition")

	// ErrAlreadyRunning is returned when an execution is already in flight for
	// the request
	ErrAlreadyRunning = errors.New("workflow execution already running")

	// ErrNotFound is returned when the request does not exist
	ErrNotFound = errors.New("request not found")

	// ErrPersistence is returned when the transition transaction fails to
	// commit; no partial state is left behind
	ErrPersistence = errors.New("persistence failure")
)

// Kind returns the stable machine-readable tag for a workflow error, or
// "Internal" for anything outside the taxonomy.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTransition):
		return "InvalidTransition"
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrStaleTransition):
		return "StaleTransition"
	case errors.Is(err, ErrAlreadyRunning):
		return "AlreadyRunning"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrPersistence):
		return "PersistenceFailure"
	default:
		return "Internal"
	}
}
