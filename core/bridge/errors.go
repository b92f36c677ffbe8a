package bridge

import (
	"errors"
	"fmt"
)

// ErrNotConnected reports a dial failure or an operation attempted without a
// live connection.
var ErrNotConnected = errors.New("bridge: not connected")

// ProtocolError reports an inbound payload that could not be decoded as a
// ServerEvent. The event is dropped; the session continues.
type ProtocolError struct {
	err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed inbound event: %v", e.err)
}

func (e *ProtocolError) Unwrap() error { return e.err }
