package oplog

import (
	"errors"
	"fmt"
)

// ErrUnpairedOperation is returned when replaying an event for an operation
// which has no declared inverse.
var ErrUnpairedOperation = errors.New("operation has no declared inverse")

// ErrUnknownOperation is returned when applying an event for an operation
// which has not been registered with the log.
var ErrUnknownOperation = errors.New("operation not registered")

// ErrInvalidArguments is returned if an invoker or deriver receives arguments
// of the wrong number or type.
var ErrInvalidArguments = errors.New("invalid operation arguments")

// ErrNothingToUndo is returned by a Recorder asked to undo while it holds no events.
var ErrNothingToUndo = errors.New("nothing to undo")

// Arg returns argument i of an argument list, converted to type T.
// It is a helper for implementing invokers and derivers.
func Arg[T any](args []any, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, fmt.Errorf("%w: missing argument #%d of %d", ErrInvalidArguments, i, len(args))
	}
	if args[i] == nil {
		return zero, nil
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument #%d is %T, expected %T", ErrInvalidArguments, i, args[i], zero)
	}
	return v, nil
}
