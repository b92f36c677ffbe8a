package console

import "github.com/novoforce/cautious-palm-tree/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts OpenOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.MessageStarted:
			if opts.onMessageStarted != nil {
				opts.onMessageStarted(typedEvent.Message)
			}
		case events.MessageAppended:
			if opts.onMessageAppended != nil {
				opts.onMessageAppended(typedEvent.ID, typedEvent.Segment, typedEvent.Text)
			}
		case events.MessageAudioBadged:
			if opts.onMessageAudioBadged != nil {
				opts.onMessageAudioBadged(typedEvent.ID)
			}
		case events.TurnEnded:
			if opts.onTurnEnded != nil {
				opts.onTurnEnded(typedEvent.Interrupted)
			}
		case events.ComposingChanged:
			if opts.onComposingChanged != nil {
				opts.onComposingChanged(typedEvent.Composing)
			}
		case events.ConnectionStateChanged:
			if opts.onConnectionChanged != nil {
				opts.onConnectionChanged(typedEvent.Connected, typedEvent.SessionID)
			}
		case events.RecordingStateChanged:
			if opts.onRecordingChanged != nil {
				opts.onRecordingChanged(typedEvent.Recording)
			}
		}
	}
}
