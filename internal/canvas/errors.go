package canvas

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured reports use of a board chunk before its metadata
	// was supplied. This is a caller programming error, not bad data.
	ErrNotConfigured = errors.New("canvas: board metadata not set")

	// ErrOutOfBounds reports a request built for a grid coordinate the
	// service does not serve. Callers filter with InBounds instead of
	// relying on the decode pipeline to reject the coordinate.
	ErrOutOfBounds = errors.New("canvas: chunk outside canvas bounds")
)

// DecodeError reports a failed payload decode at a named pipeline stage.
// The failure is fatal for its chunk only; sibling chunks are unaffected.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("canvas: decode failed at %s", e.Stage)
	}
	return fmt.Sprintf("canvas: decode failed at %s: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErrf(stage, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Stage: stage, Err: fmt.Errorf(format, args...)}
}
