package console

import (
	"testing"

	"github.com/novoforce/cautious-palm-tree/core/audio"
)

func TestAudioOutputUnconfiguredDropsFrames(t *testing.T) {
	output := newAudioOutput(nil)

	if output.isConfigured() {
		t.Fatalf("expected a nil client to leave the facade unconfigured")
	}
	output.SendAudio([]byte{0x01})
	output.Clear()
}

func TestAudioOutputTypedNilTreatedAsUnconfigured(t *testing.T) {
	var client *fakePlayback
	output := newAudioOutput(client)

	if output.isConfigured() {
		t.Fatalf("expected a typed-nil client to leave the facade unconfigured")
	}
}

func TestAudioOutputForwardsToConfiguredClient(t *testing.T) {
	playback := &fakePlayback{}
	output := newAudioOutput(playback)

	output.SendAudio([]byte{0x01, 0x02})
	output.Clear()

	if len(playback.frames) != 1 {
		t.Fatalf("expected 1 forwarded frame, got %d", len(playback.frames))
	}
	if playback.cleared != 1 {
		t.Fatalf("expected 1 clear call, got %d", playback.cleared)
	}
}

func TestAudioOutputSnapshotFreezesRouting(t *testing.T) {
	playback := &fakePlayback{}
	output := newAudioOutput(playback)

	snapshot := output.Snapshot()
	output.Set(nil)

	snapshot.SendAudio([]byte{0x01})
	if len(playback.frames) != 1 {
		t.Fatalf("expected the snapshot to keep the original client, got %d frames", len(playback.frames))
	}
}

func TestAudioOutputEncodingFallsBackToAgentSpeechDefault(t *testing.T) {
	output := newAudioOutput(nil)

	if got := output.EncodingInfo(); got.SampleRate != audio.OutputSampleRate {
		t.Fatalf("expected the agent speech default rate, got %d", got.SampleRate)
	}
}
