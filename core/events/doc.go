// Package events defines the typed contract emitted by the console core as
// inbound server events are assembled into UI artifacts.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - message.*
//   - turn.*
//   - session.*
//
// Semantics used across the package:
//
//   - Started: a brand-new artifact entered the transcript.
//   - Appended: an append-only text segment extended a live artifact, in
//     arrival order.
//   - Badged: a one-time marker was attached to an existing artifact.
//   - Changed: a point-in-time state flip (connection, composing, recording).
//
// message events
//
//   - MessageStarted (message.started): a new message artifact, carrying its
//     initial snapshot.
//   - MessageAppended (message.appended): a text fragment appended to the
//     live artifact with the given ID; Text is the accumulated content.
//   - MessageAudioBadged (message.audio_badged): the spoken-reply indicator
//     was attached to the artifact with the given ID. Emitted at most once
//     per artifact.
//
// turn events
//
//   - TurnEnded (turn.ended): the in-flight turn closed, either completed or
//     interrupted. Live assembly handles are gone after this.
//
// session events
//
//   - ComposingChanged (session.composing_changed): the "agent is composing"
//     affordance turned on or off.
//   - ConnectionStateChanged (session.connection_changed): the transport
//     connected or disconnected; carries the session token when connected.
//   - RecordingStateChanged (session.recording_changed): microphone capture
//     started or stopped.
package events
