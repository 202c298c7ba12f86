package extract

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupportedType marks a content kind with no extraction strategy.
var ErrUnsupportedType = errors.New("unsupported file type")

// Error reports a strategy that could not parse its input. The cause is
// preserved for logging; cancellation is not wrapped so callers can still
// match context errors.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func asExtractionError(kind Kind, err error) error {
	var ee *Error
	if errors.As(err, &ee) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{Kind: kind, Cause: err}
}
