package console

import (
	"testing"

	"github.com/novoforce/cautious-palm-tree/core/events"
)

func TestTranscriptStartAssignsIdentity(t *testing.T) {
	transcript := newTranscript()

	first := transcript.start(events.Message{Author: events.AuthorAgent, Artifact: events.ArtifactText})
	second := transcript.start(events.Message{Author: events.AuthorAgent, Artifact: events.ArtifactText})

	if first.ID == "" || second.ID == "" {
		t.Fatalf("expected every artifact to get an identity")
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct identities, both got %q", first.ID)
	}
}

func TestTranscriptAppendToUnknownMessage(t *testing.T) {
	transcript := newTranscript()

	if _, ok := transcript.appendText("no-such-id", "fragment"); ok {
		t.Fatalf("expected append to an unknown artifact to report failure")
	}
}

func TestTranscriptAudioBadgeIsIdempotent(t *testing.T) {
	transcript := newTranscript()
	message := transcript.start(events.Message{Author: events.AuthorAgent, Artifact: events.ArtifactText})

	if !transcript.badgeAudio(message.ID) {
		t.Fatalf("expected the first badge to attach")
	}
	if transcript.badgeAudio(message.ID) {
		t.Fatalf("expected the second badge to be a no-op")
	}
}

func TestTranscriptSnapshotIsDetached(t *testing.T) {
	transcript := newTranscript()
	message := transcript.start(events.Message{Author: events.AuthorAgent, Artifact: events.ArtifactText, Text: "before"})

	snapshot := transcript.Snapshot()
	if _, ok := transcript.appendText(message.ID, " and after"); !ok {
		t.Fatalf("expected append to the live artifact to succeed")
	}

	if snapshot[0].Text != "before" {
		t.Fatalf("expected the snapshot to be unaffected by later appends, got %q", snapshot[0].Text)
	}
}
