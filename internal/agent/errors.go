package agent

import (
	"errors"
	"fmt"
)

var (
	ErrNotIdentified     = errors.New("not identified")
	ErrInvalidUsername   = errors.New("username is required")
	ErrIncompleteProfile = errors.New("profile is incomplete")
	ErrEmptyRotation     = errors.New("fact rotation is empty")
	ErrMembershipDrift   = errors.New("membership drift")
)

// MembershipDriftError reports a join, leave or sync that left the recorded
// channel set and the live subscriptions out of step.
type MembershipDriftError struct {
	Op       string
	Username string
	Channel  string

	// Cause is the failure that interrupted the operation.
	Cause error
	// CompensationErr is set when undoing the set mutation failed too.
	CompensationErr error
}

func (e *MembershipDriftError) Error() string {
	msg := fmt.Sprintf("%s: %s %q for %q: %v", ErrMembershipDrift, e.Op, e.Channel, e.Username, e.Cause)
	if e.CompensationErr != nil {
		msg += fmt.Sprintf(" (compensation failed: %v)", e.CompensationErr)
	}
	return msg
}

// Is matches ErrMembershipDrift.
func (e *MembershipDriftError) Is(target error) bool {
	return target == ErrMembershipDrift
}

// Unwrap exposes both underlying failures to errors.Is and errors.As.
func (e *MembershipDriftError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.CompensationErr != nil {
		errs = append(errs, e.CompensationErr)
	}
	return errs
}
