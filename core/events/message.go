package events

// Author identifies who a message artifact is displayed as coming from.
type Author string

const (
	AuthorUser   Author = "user"
	AuthorAgent  Author = "agent"
	AuthorSystem Author = "system"
)

// ArtifactKind distinguishes the assembled artifact shapes.
type ArtifactKind string

const (
	// ArtifactText is streamed agent prose.
	ArtifactText ArtifactKind = "text"
	// ArtifactTranscription is the user's own speech, transcribed server-side
	// and displayed as if typed.
	ArtifactTranscription ArtifactKind = "transcription"
	// ArtifactImage is a standalone generated image referenced by URL.
	ArtifactImage ArtifactKind = "image"
	// ArtifactError is a backend-reported error rendered inline.
	ArtifactError ArtifactKind = "error"
)

// Message is one assembled transcript artifact.
type Message struct {
	ID       string
	Author   Author
	Artifact ArtifactKind

	Text     string
	Caption  string
	ImageURL string

	// HasAudio marks text artifacts that also arrived as spoken audio.
	HasAudio bool
}

const (
	// KindMessageStarted identifies a brand-new transcript artifact.
	KindMessageStarted Kind = "message.started"
	// KindMessageAppended identifies an append-only extension of a live artifact.
	KindMessageAppended Kind = "message.appended"
	// KindMessageAudioBadged identifies the one-time spoken-reply marker.
	KindMessageAudioBadged Kind = "message.audio_badged"
)

// MessageStarted carries the initial snapshot of a new artifact.
type MessageStarted struct {
	Base
	Message Message
}

// NewMessageStarted creates a message started event.
func NewMessageStarted(message Message) MessageStarted {
	return MessageStarted{Base: NewBase(KindMessageStarted), Message: message}
}

// MessageAppended carries one appended fragment plus the accumulated text.
type MessageAppended struct {
	Base
	ID      string
	Segment string
	Text    string
}

// NewMessageAppended creates a message appended event.
func NewMessageAppended(id, segment, text string) MessageAppended {
	return MessageAppended{Base: NewBase(KindMessageAppended), ID: id, Segment: segment, Text: text}
}

// MessageAudioBadged marks the artifact that gained the spoken-reply indicator.
type MessageAudioBadged struct {
	Base
	ID string
}

// NewMessageAudioBadged creates a message audio badged event.
func NewMessageAudioBadged(id string) MessageAudioBadged {
	return MessageAudioBadged{Base: NewBase(KindMessageAudioBadged), ID: id}
}
