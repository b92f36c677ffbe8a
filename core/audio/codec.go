package audio

import (
	"encoding/base64"
	"fmt"
)

// DecodeError reports a malformed base64 audio payload. Callers are expected
// to drop the offending unit and keep the session alive.
type DecodeError struct {
	err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed base64 frame: %v", e.err)
}

func (e *DecodeError) Unwrap() error { return e.err }

// EncodeFrame encodes one raw PCM frame into transport-safe text. The output
// carries no line breaks.
func EncodeFrame(frame []byte) string {
	return base64.StdEncoding.EncodeToString(frame)
}

// DecodeFrame decodes a transport text payload back into raw bytes.
//
// DecodeFrame(EncodeFrame(b)) round-trips for every byte sequence, including
// the empty one.
func DecodeFrame(text string) ([]byte, error) {
	frame, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, &DecodeError{err: err}
	}
	return frame, nil
}
