package bridge

// Mime types carried by wire events.
const (
	MimeText  = "text/plain"
	MimeAudio = "audio/pcm"
	MimeImage = "image/png"
)

// Roles carried by wire events.
const (
	RoleUser          = "user"
	RoleModel         = "model"
	RoleSystem        = "system"
	RoleTranscription = "user_transcription"
)

// ClientEvent is one outbound unit: a typed-text submission or a base64
// audio frame.
type ClientEvent struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
	Role     string `json:"role,omitempty"`
}

// NewTextEvent creates a typed-text submission.
func NewTextEvent(text string) ClientEvent {
	return ClientEvent{MimeType: MimeText, Data: text, Role: RoleUser}
}

// NewAudioEvent creates an outbound audio frame carrying base64 PCM.
func NewAudioEvent(encoded string) ClientEvent {
	return ClientEvent{MimeType: MimeAudio, Data: encoded}
}

// ServerEvent is one inbound unit decoded off the transport. Exactly one
// content kind applies per event; control fields may arrive on an otherwise
// empty event purely to signal turn boundaries.
//
// For MimeImage, Data is a URL rather than inline bytes.
type ServerEvent struct {
	Role         string `json:"role"`
	MimeType     string `json:"mime_type,omitempty"`
	Data         string `json:"data,omitempty"`
	Caption      string `json:"caption,omitempty"`
	TurnComplete bool   `json:"turn_complete,omitempty"`
	Interrupted  bool   `json:"interrupted,omitempty"`
	Error        string `json:"error,omitempty"`
}

// IsTurnBoundary reports whether the event closes the in-flight turn, either
// by completion or interruption.
func (e ServerEvent) IsTurnBoundary() bool {
	return e.TurnComplete || e.Interrupted
}

// IsError reports whether the event is a backend-reported error.
func (e ServerEvent) IsError() bool {
	return e.Role == RoleSystem && e.Error != ""
}
