package console

import (
	"sync"

	"github.com/novoforce/cautious-palm-tree/core/audio"
	"github.com/novoforce/cautious-palm-tree/core/bridge"
	"github.com/novoforce/cautious-palm-tree/core/events"
)

// assembler folds the inbound event stream into transcript artifacts. It
// tracks at most one live text handle and one live transcription handle at a
// time; a turn boundary clears both, unconditionally and atomically.
//
// Dispatch is fed by the transport read loop, one event at a time, in
// delivery order. The mutex only guards against control-side resets racing
// that loop; there is no concurrent dispatch.
type assembler struct {
	mu sync.Mutex

	transcript *transcript
	emit       eventEmitter
	output     *audioOutput

	// wantsAudioOutput mirrors the session mode flag. Without it, agent
	// audio is neither played nor badged.
	wantsAudioOutput bool

	liveTextID          string
	liveTranscriptionID string
	composing           bool
}

func newAssembler(transcript *transcript, output *audioOutput) *assembler {
	return &assembler{
		transcript: transcript,
		emit:       noopEventEmitter,
		output:     output,
	}
}

// Dispatch applies one inbound event to the assembling state. Rules are
// evaluated in a fixed order; the first terminal match wins, except that the
// composing indicator can coincide with audio and text handling.
func (a *assembler) Dispatch(event bridge.ServerEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if event.Role == bridge.RoleTranscription {
		a.dispatchTranscription(event)
		return
	}

	if event.IsTurnBoundary() {
		a.endTurn(event.Interrupted)
		return
	}

	if event.Role == bridge.RoleModel && (event.MimeType == bridge.MimeText || event.MimeType == bridge.MimeAudio) {
		a.setComposing(true)
	}

	switch {
	case event.Role == bridge.RoleModel && event.MimeType == bridge.MimeAudio:
		a.dispatchAudio(event)
	case event.Role == bridge.RoleModel && event.MimeType == bridge.MimeImage:
		a.dispatchImage(event)
	case event.Role == bridge.RoleModel && event.MimeType == bridge.MimeText:
		a.dispatchText(event)
	case event.Role == bridge.RoleSystem && event.IsError():
		a.dispatchError(event)
	}
}

// dispatchTranscription appends server-side speech transcription to the live
// transcription handle, starting one if none exists. Transcriptions display
// as if the user typed them.
func (a *assembler) dispatchTranscription(event bridge.ServerEvent) {
	a.setComposing(false)

	if a.liveTranscriptionID == "" {
		message := a.transcript.start(events.Message{
			Author:   events.AuthorUser,
			Artifact: events.ArtifactTranscription,
		})
		a.liveTranscriptionID = message.ID
		a.emit(events.NewMessageStarted(message))
	}

	if text, ok := a.transcript.appendText(a.liveTranscriptionID, event.Data); ok {
		a.emit(events.NewMessageAppended(a.liveTranscriptionID, event.Data, text))
	}
}

// endTurn invalidates both live handles. Even a handle that was never started
// is cleared, so the next fragment of either kind begins a new message.
func (a *assembler) endTurn(interrupted bool) {
	a.liveTextID = ""
	a.liveTranscriptionID = ""
	a.setComposing(false)
	a.emit(events.NewTurnEnded(interrupted))
}

// dispatchAudio decodes one agent speech frame and forwards it to playback.
// Playback happens regardless of text-handle state; the spoken-reply badge
// attaches to the live text handle at most once.
func (a *assembler) dispatchAudio(event bridge.ServerEvent) {
	if !a.wantsAudioOutput {
		return
	}

	frame, err := audio.DecodeFrame(event.Data)
	if err != nil {
		logger.Error("Dropping undecodable audio frame", "error", err)
		return
	}
	a.output.SendAudio(frame)

	if a.liveTextID != "" && a.transcript.badgeAudio(a.liveTextID) {
		a.emit(events.NewMessageAudioBadged(a.liveTextID))
	}
}

// dispatchImage always creates an independent artifact. Images never append
// to a live handle and never merge with each other.
func (a *assembler) dispatchImage(event bridge.ServerEvent) {
	a.setComposing(false)

	message := a.transcript.start(events.Message{
		Author:   events.AuthorAgent,
		Artifact: events.ArtifactImage,
		ImageURL: event.Data,
		Caption:  event.Caption,
	})
	a.emit(events.NewMessageStarted(message))
}

// dispatchText appends one text fragment to the live text handle, starting a
// new message if none is live. When spoken replies are enabled the new
// message carries the audio badge from the start.
func (a *assembler) dispatchText(event bridge.ServerEvent) {
	if a.liveTextID == "" {
		message := a.transcript.start(events.Message{
			Author:   events.AuthorAgent,
			Artifact: events.ArtifactText,
			HasAudio: a.wantsAudioOutput,
		})
		a.liveTextID = message.ID
		a.emit(events.NewMessageStarted(message))
	}

	if text, ok := a.transcript.appendText(a.liveTextID, event.Data); ok {
		a.emit(events.NewMessageAppended(a.liveTextID, event.Data, text))
	}
}

// dispatchError renders a backend-reported error inline. Handle state is
// untouched; an in-progress message keeps assembling afterwards.
func (a *assembler) dispatchError(event bridge.ServerEvent) {
	a.setComposing(false)

	message := a.transcript.start(events.Message{
		Author:   events.AuthorSystem,
		Artifact: events.ArtifactError,
		Text:     event.Error,
	})
	a.emit(events.NewMessageStarted(message))
}

func (a *assembler) setComposing(composing bool) {
	if a.composing == composing {
		return
	}
	a.composing = composing
	a.emit(events.NewComposingChanged(composing))
}

// reset drops the live handles without ending a turn. Used when the
// transport goes away; partial messages stay in the transcript but stop
// accumulating.
func (a *assembler) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.liveTextID = ""
	a.liveTranscriptionID = ""
	a.setComposing(false)
}

func (a *assembler) setEmitter(emit eventEmitter) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if emit == nil {
		emit = noopEventEmitter
	}
	a.emit = emit
}

// setOutput swaps in the playback route for the session being opened.
func (a *assembler) setOutput(output *audioOutput) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if output == nil {
		output = newAudioOutput(nil)
	}
	a.output = output
}

func (a *assembler) setWantsAudioOutput(wants bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wantsAudioOutput = wants
}

func (a *assembler) isComposing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.composing
}
