package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidEmail is reported on the status channel when a submitted email fails validation.
var ErrInvalidEmail = errors.New("invalid email address")

// ErrUnderage is reported on the status channel when the stated age is below the minimum.
var ErrUnderage = errors.New("below the minimum age")

// ErrTermsDeclined is reported on the status channel when the user refuses the terms.
var ErrTermsDeclined = errors.New("terms not accepted")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrEngineClosed is returned by engine operations after Close or after the
// session was aborted by a contract violation.
var ErrEngineClosed = errors.New("engine closed")

// ContractViolation reports an operation called while its upstream data
// precondition does not hold. It is never a user-facing error: the engine
// aborts the session and panics with it.
type ContractViolation struct {
	Op     string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("contract violation in %s: %s", e.Op, e.Reason)
}

// IsContractViolation reports whether err (or a recovered panic value) is a ContractViolation.
func IsContractViolation(v any) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	var cv *ContractViolation
	return errors.As(err, &cv)
}
