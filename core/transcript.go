package console

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/novoforce/cautious-palm-tree/core/events"
)

// transcript is the ordered list of assembled artifacts for the lifetime of
// the console. It outlives transport swaps; reconnects start new sessions but
// the conversation keeps accumulating here.
type transcript struct {
	mu       sync.Mutex
	messages []events.Message
}

func newTranscript() *transcript {
	return &transcript{}
}

// start appends a brand-new artifact and returns it with a fresh identity.
func (t *transcript) start(message events.Message) events.Message {
	message.ID = uuid.NewString()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, message)
	return message
}

// appendText extends the identified artifact's text with one fragment, in
// arrival order. Returns the accumulated text and whether the artifact was
// found.
func (t *transcript) appendText(id string, segment string) (text string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.messages {
		if t.messages[i].ID == id {
			t.messages[i].Text += segment
			return t.messages[i].Text, true
		}
	}
	return "", false
}

// badgeAudio sets the spoken-reply marker on the identified artifact. Returns
// true only the first time; a badge that is already attached stays attached.
func (t *transcript) badgeAudio(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.messages {
		if t.messages[i].ID == id {
			if t.messages[i].HasAudio {
				return false
			}
			t.messages[i].HasAudio = true
			return true
		}
	}
	return false
}

// Snapshot returns a deep copy of the assembled artifacts so callers can read
// without racing the dispatch path.
func (t *transcript) Snapshot() []events.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	var messages []events.Message
	if err := copier.CopyWithOption(&messages, t.messages, copier.Option{DeepCopy: true}); err != nil {
		logger.Error("Failed to snapshot transcript", "error", err)
		return nil
	}
	return messages
}

func (t *transcript) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}
