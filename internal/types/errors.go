// README: Error taxonomy shared by the booking, dispatch and access modules.
package types

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleState means a conditional write lost against a concurrent writer.
	// The caller re-reads and decides; nothing retries automatically.
	ErrStaleState = errors.New("stale state")

	ErrNotAuthorized = errors.New("not authorized")
)

// ValidationError reports input the caller can correct locally.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

// GuardViolation names the precondition that rejected a state transition.
type GuardViolation struct {
	Guard  string
	Detail string
}

func (e GuardViolation) Error() string {
	if e.Detail == "" {
		return e.Guard
	}
	return fmt.Sprintf("%s: %s", e.Guard, e.Detail)
}

// Is matches any GuardViolation carrying the same guard name, so module
// sentinels can be compared with errors.Is regardless of Detail.
func (e GuardViolation) Is(target error) bool {
	t, ok := target.(GuardViolation)
	if !ok {
		return false
	}
	return t.Guard == e.Guard
}

type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return e.Resource + " not found"
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsGuardViolation(err error) bool {
	var target GuardViolation
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}
