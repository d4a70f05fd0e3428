package space

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction matches every *ConstructionError via errors.Is.
	ErrConstruction = errors.New("construction error")

	// ErrUnbounded is returned when sampling a space without bounds.
	ErrUnbounded = errors.New("cannot sample an unbounded space")
)

// ConstructionError reports a malformed space or state: mismatched
// dimensions, non-positive weights, invalid bounds or a non-unit quaternion.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConstructionError struct {
	Kind   Kind
	Reason string
	cause  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *ConstructionError) Unwrap() error { return e.cause }

// Is reports whether target is ErrConstruction.
func (e *ConstructionError) Is(target error) bool { return target == ErrConstruction }

func constructionErr(k Kind, format string, args ...any) error {
	return &ConstructionError{Kind: k, Reason: fmt.Sprintf(format, args...)}
}

func wrapConstructionErr(k Kind, cause error, format string, args ...any) error {
	return &ConstructionError{Kind: k, Reason: fmt.Sprintf(format, args...) + ": " + cause.Error(), cause: cause}
}
