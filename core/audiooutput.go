package console

import (
	"reflect"

	"github.com/novoforce/cautious-palm-tree/core/audio"
)

// AudioOutput is the playback device contract. The device owns its own
// scheduling domain; SendAudio only hands a buffer over and must not block on
// playback.
type AudioOutput interface {
	EncodingInfo() audio.EncodingInfo
	SendAudio(audio []byte) error
	ClearBuffer()
}

// audioOutput wraps the configured playback client behind a nil-safe facade.
//
// Methods do best-effort forwarding and ignore client errors because playback
// is a non-fatal side effect of the session; a dropped frame degrades audio,
// it never breaks assembly.
type audioOutput struct {
	base AudioOutput
}

func newAudioOutput(client AudioOutput) *audioOutput {
	audioOutput := audioOutput{}
	audioOutput.Set(client)
	return &audioOutput
}

// Set replaces the configured playback client. Nil and typed-nil clients are
// treated as unconfigured.
func (a *audioOutput) Set(client AudioOutput) {
	if a == nil {
		return
	}

	if isNilAudioOutput(client) {
		a.base = nil
		return
	}
	a.base = client
}

func (a *audioOutput) isConfigured() bool {
	return a != nil && a.base != nil
}

// Snapshot returns a copy of the facade so a session keeps routing to the
// client it started with even if the facade is reconfigured mid-session.
func (a *audioOutput) Snapshot() *audioOutput {
	if a == nil {
		return a
	}

	return newAudioOutput(a.base)
}

// SendAudio forwards one decoded frame to the configured client. Without a
// client the frame is dropped.
func (a *audioOutput) SendAudio(frame []byte) {
	if a == nil || a.base == nil {
		return
	}

	if err := a.base.SendAudio(frame); err != nil {
		logger.Warn("Failed to forward audio frame to playback", "error", err)
	}
}

// Clear flushes buffered playback on the configured client.
func (a *audioOutput) Clear() {
	if a == nil || a.base == nil {
		return
	}

	a.base.ClearBuffer()
}

// EncodingInfo returns the active playback encoding metadata, falling back to
// the agent speech default when unconfigured.
func (a *audioOutput) EncodingInfo() audio.EncodingInfo {
	if a == nil || a.base == nil {
		return audio.OutputEncodingInfo()
	}

	return a.base.EncodingInfo()
}

// isNilAudioOutput detects nil and typed-nil interface values so Set does not
// store unusable interface wrappers as configured clients.
func isNilAudioOutput(client AudioOutput) bool {
	if client == nil {
		return true
	}

	v := reflect.ValueOf(client)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
