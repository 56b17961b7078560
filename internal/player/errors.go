package player

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPlan is fatal to the session; the caller has to leave the player
	ErrEmptyPlan = errors.New("workout plan has no exercises")
	// ErrInvalidTransition means the call does not apply to the current phase.
	// The session is left untouched.
	ErrInvalidTransition = errors.New("invalid player transition")
	ErrClosed            = errors.New("player closed")
)

// TransitionError describes a rejected control call
type TransitionError struct {
	Op    string
	Phase Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.Phase)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
