package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	console "github.com/novoforce/cautious-palm-tree/core"
	"github.com/novoforce/cautious-palm-tree/core/artifacts"
	"github.com/novoforce/cautious-palm-tree/core/events"
)

// Run opens the console and drives the terminal program until the user quits
// or ctx is cancelled. Console callbacks arrive on transport goroutines and
// are forwarded into the program loop with Send.
func Run(ctx context.Context, c *console.Console, fetcher *artifacts.Fetcher) error {
	program := tea.NewProgram(NewModel(c, fetcher), tea.WithAltScreen(), tea.WithContext(ctx))

	err := c.Open(ctx,
		console.WithMessageStartedCallback(func(message events.Message) {
			program.Send(messageStartedMsg{message: message})
		}),
		console.WithMessageAppendedCallback(func(id string, segment string, text string) {
			program.Send(messageAppendedMsg{id: id, text: text})
		}),
		console.WithMessageAudioBadgedCallback(func(id string) {
			program.Send(messageAudioBadgedMsg{id: id})
		}),
		console.WithTurnEndedCallback(func(interrupted bool) {
			program.Send(turnEndedMsg{interrupted: interrupted})
		}),
		console.WithComposingChangedCallback(func(composing bool) {
			program.Send(composingChangedMsg{composing: composing})
		}),
		console.WithConnectionChangedCallback(func(connected bool, sessionID string) {
			program.Send(connectionChangedMsg{connected: connected, sessionID: sessionID})
		}),
		console.WithRecordingChangedCallback(func(recording bool) {
			program.Send(recordingChangedMsg{recording: recording})
		}),
		console.WithErrorCallback(func(err error) {
			program.Send(sessionErrorMsg{err: err})
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to open console: %w", err)
	}
	defer c.Close()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal program failed: %w", err)
	}
	return nil
}
