package console

import (
	"github.com/novoforce/cautious-palm-tree/core/bridge"
	"github.com/novoforce/cautious-palm-tree/core/events"
)

type ConsoleOption func(*Console)

// WithAudioInputClient configures the microphone capture client. Without one
// the recording controls are inert.
func WithAudioInputClient(client AudioInput) ConsoleOption {
	return func(c *Console) {
		c.inputClient = client
	}
}

// WithAudioOutputClient configures the playback client for spoken agent
// replies. Without one, decoded agent speech is dropped.
func WithAudioOutputClient(client AudioOutput) ConsoleOption {
	return func(c *Console) {
		c.audioOutput.Set(client)
	}
}

// WithVoiceResponses sets the initial spoken-replies preference.
func WithVoiceResponses(enabled bool) ConsoleOption {
	return func(c *Console) {
		c.wantsAudioOutput = enabled
	}
}

// WithBridgeOptions passes options through to the session transport client.
func WithBridgeOptions(opts ...bridge.ClientOption) ConsoleOption {
	return func(c *Console) {
		c.bridgeOpts = append(c.bridgeOpts, opts...)
	}
}

type OpenOptions struct {
	onMessageStarted     func(message events.Message)
	onMessageAppended    func(id string, segment string, text string)
	onMessageAudioBadged func(id string)
	onTurnEnded          func(interrupted bool)
	onComposingChanged   func(composing bool)
	onConnectionChanged  func(connected bool, sessionID string)
	onRecordingChanged   func(recording bool)
	onError              func(err error)
}

type OpenOption func(*OpenOptions)

// WithMessageStartedCallback is called when a new transcript artifact
// appears: the start of an agent reply, a transcription, an image, an error
// line, or a locally echoed prompt.
func WithMessageStartedCallback(callback func(message events.Message)) OpenOption {
	return func(o *OpenOptions) {
		o.onMessageStarted = callback
	}
}

// WithMessageAppendedCallback is called once per appended fragment with the
// fragment and the accumulated text.
func WithMessageAppendedCallback(callback func(id string, segment string, text string)) OpenOption {
	return func(o *OpenOptions) {
		o.onMessageAppended = callback
	}
}

// WithMessageAudioBadgedCallback is called at most once per artifact, when it
// gains the spoken-reply marker.
func WithMessageAudioBadgedCallback(callback func(id string)) OpenOption {
	return func(o *OpenOptions) {
		o.onMessageAudioBadged = callback
	}
}

// WithTurnEndedCallback is called on every turn boundary.
func WithTurnEndedCallback(callback func(interrupted bool)) OpenOption {
	return func(o *OpenOptions) {
		o.onTurnEnded = callback
	}
}

// WithComposingChangedCallback is called when the agent-is-composing
// affordance should appear or disappear.
func WithComposingChangedCallback(callback func(composing bool)) OpenOption {
	return func(o *OpenOptions) {
		o.onComposingChanged = callback
	}
}

// WithConnectionChangedCallback is called on transport connectivity flips.
func WithConnectionChangedCallback(callback func(connected bool, sessionID string)) OpenOption {
	return func(o *OpenOptions) {
		o.onConnectionChanged = callback
	}
}

// WithRecordingChangedCallback is called when microphone capture starts or
// stops.
func WithRecordingChangedCallback(callback func(recording bool)) OpenOption {
	return func(o *OpenOptions) {
		o.onRecordingChanged = callback
	}
}

// WithErrorCallback receives contained per-event errors that were logged and
// dropped, for display purposes. The session continues past all of them.
func WithErrorCallback(callback func(err error)) OpenOption {
	return func(o *OpenOptions) {
		o.onError = callback
	}
}
