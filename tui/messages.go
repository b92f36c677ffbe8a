package tui

import "github.com/novoforce/cautious-palm-tree/core/events"

// Console callbacks run outside the program loop; each one is forwarded in as
// a typed message so all state changes happen inside Update.

type messageStartedMsg struct {
	message events.Message
}

type messageAppendedMsg struct {
	id   string
	text string
}

type messageAudioBadgedMsg struct {
	id string
}

type turnEndedMsg struct {
	interrupted bool
}

type composingChangedMsg struct {
	composing bool
}

type connectionChangedMsg struct {
	connected bool
	sessionID string
}

type recordingChangedMsg struct {
	recording bool
}

type sessionErrorMsg struct {
	err error
}

type controlResultMsg struct {
	status string
	err    error
}

type artifactFetchedMsg struct {
	id   string
	path string
	err  error
}
