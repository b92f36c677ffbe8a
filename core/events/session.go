package events

const (
	// KindTurnEnded identifies the close of the in-flight turn.
	KindTurnEnded Kind = "turn.ended"
	// KindComposingChanged identifies composing-indicator flips.
	KindComposingChanged Kind = "session.composing_changed"
	// KindConnectionStateChanged identifies transport state flips.
	KindConnectionStateChanged Kind = "session.connection_changed"
	// KindRecordingStateChanged identifies microphone capture flips.
	KindRecordingStateChanged Kind = "session.recording_changed"
)

// TurnEnded marks a turn boundary. Interrupted distinguishes a barge-in from
// normal completion.
type TurnEnded struct {
	Base
	Interrupted bool
}

// NewTurnEnded creates a turn ended event.
func NewTurnEnded(interrupted bool) TurnEnded {
	return TurnEnded{Base: NewBase(KindTurnEnded), Interrupted: interrupted}
}

// ComposingChanged flips the "agent is composing" affordance.
type ComposingChanged struct {
	Base
	Composing bool
}

// NewComposingChanged creates a composing changed event.
func NewComposingChanged(composing bool) ComposingChanged {
	return ComposingChanged{Base: NewBase(KindComposingChanged), Composing: composing}
}

// ConnectionStateChanged reports transport connectivity. SessionID is set
// when connected.
type ConnectionStateChanged struct {
	Base
	Connected bool
	SessionID string
}

// NewConnectionStateChanged creates a connection state changed event.
func NewConnectionStateChanged(connected bool, sessionID string) ConnectionStateChanged {
	return ConnectionStateChanged{Base: NewBase(KindConnectionStateChanged), Connected: connected, SessionID: sessionID}
}

// RecordingStateChanged reports microphone capture state.
type RecordingStateChanged struct {
	Base
	Recording bool
}

// NewRecordingStateChanged creates a recording state changed event.
func NewRecordingStateChanged(recording bool) RecordingStateChanged {
	return RecordingStateChanged{Base: NewBase(KindRecordingStateChanged), Recording: recording}
}
