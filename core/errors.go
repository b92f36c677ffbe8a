package console

// PermissionError reports that the microphone could not be acquired. It is
// surfaced to the user and never crashes the session.
type PermissionError struct {
	err error
}

func (e *PermissionError) Error() string {
	return "microphone unavailable: " + e.err.Error()
}

func (e *PermissionError) Unwrap() error { return e.err }

// DeviceTeardownError reports a best-effort device release failure. Callers
// log it; it never blocks other teardown steps.
type DeviceTeardownError struct {
	err error
}

func (e *DeviceTeardownError) Error() string {
	return "audio device teardown incomplete: " + e.err.Error()
}

func (e *DeviceTeardownError) Unwrap() error { return e.err }
