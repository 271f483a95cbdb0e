package roomstate

import "fmt"

// MalformedEventError reports a structurally invalid event: a missing
// required field, or routing to the wrong room instance. The event is
// rejected before any mutation, so state is untouched.
type MalformedEventError struct {
	Stream Stream
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed %s event: %s", e.Stream, e.Reason)
}

func malformed(stream Stream, format string, args ...interface{}) error {
	return &MalformedEventError{Stream: stream, Reason: fmt.Sprintf(format, args...)}
}
