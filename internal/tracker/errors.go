package tracker

import "errors"

// Domain errors for the tracker package.
//
// Error text is shown to participants, so wrapped errors extend the
// sentinel with instructions rather than internal detail:
//
//	if errors.Is(err, tracker.ErrTaskNotActive) {
//	    // 403
//	}
var (
	// ErrNotRegistered is returned when a participant id was never issued or has been removed.
	ErrNotRegistered = errors.New("player not registered")

	// ErrTaskNotActive is returned when a task endpoint is called while another task is active.
	ErrTaskNotActive = errors.New("this task is not active right now")

	// ErrUnauthorized is returned when Basic Auth credentials are missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is returned when a payload field is missing, malformed, or wrong.
	ErrValidation = errors.New("invalid request")

	// ErrPrecondition is returned when a step is attempted out of order.
	ErrPrecondition = errors.New("precondition failed")

	// ErrNotFound is returned by admin operations on an unknown participant.
	ErrNotFound = errors.New("player not found")

	// ErrInvalidInput is returned for malformed admin or registration input.
	ErrInvalidInput = errors.New("invalid input")
)
