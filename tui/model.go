// Package tui is the terminal presentation adapter: it renders the assembled
// transcript, the connection and recording indicators, and drives the console
// controls from key bindings.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	console "github.com/novoforce/cautious-palm-tree/core"
	"github.com/novoforce/cautious-palm-tree/core/artifacts"
	"github.com/novoforce/cautious-palm-tree/core/events"
)

type Model struct {
	console *console.Console
	fetcher *artifacts.Fetcher

	messages       []events.Message
	localArtifacts map[string]string

	connected bool
	sessionID string
	recording bool
	composing bool
	voice     bool
	status    string

	ready  bool
	width  int
	height int

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model
	theme    theme
}

func NewModel(c *console.Console, fetcher *artifacts.Fetcher) Model {
	input := textinput.New()
	input.Placeholder = "Ask about movies, theaters and showtimes..."
	input.Prompt = "> "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		console:        c,
		fetcher:        fetcher,
		localArtifacts: map[string]string{},
		voice:          c.VoiceResponses(),
		status:         "connecting...",
		input:          input,
		timeline:       viewport.New(0, 0),
		spinner:        sp,
		theme:          newTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case messageStartedMsg:
		m.resyncTranscript()
		if msg.message.Artifact == events.ArtifactImage && msg.message.ImageURL != "" {
			cmds = append(cmds, m.fetchArtifactCmd(msg.message.ID, msg.message.ImageURL))
		}

	case messageAppendedMsg, messageAudioBadgedMsg, turnEndedMsg:
		m.resyncTranscript()

	case composingChangedMsg:
		m.composing = msg.composing

	case connectionChangedMsg:
		m.connected = msg.connected
		if msg.connected {
			m.sessionID = msg.sessionID
			m.status = "connected"
		} else {
			m.status = "disconnected"
		}

	case recordingChangedMsg:
		m.recording = msg.recording
		if msg.recording {
			m.status = "recording"
		} else {
			m.status = "recording stopped"
		}

	case sessionErrorMsg:
		m.status = fmt.Sprintf("dropped event: %v", msg.err)

	case controlResultMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else if msg.status != "" {
			m.status = msg.status
		}

	case artifactFetchedMsg:
		if msg.err == nil {
			m.localArtifacts[msg.id] = msg.path
			m.renderTimeline()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderTimeline()
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.input.Reset()
				cmds = append(cmds, m.submitCmd(text))
			}
		case "ctrl+r":
			cmds = append(cmds, m.toggleRecordingCmd())
		case "ctrl+v":
			m.voice = !m.voice
			cmds = append(cmds, m.setVoiceCmd(m.voice))
		case "ctrl+n":
			cmds = append(cmds, m.newSessionCmd())
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.timeline, cmd = m.timeline.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.timeline.View())
	b.WriteString("\n")
	if m.composing {
		b.WriteString(m.theme.composing.Render(m.spinner.View() + " agent is composing..."))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m *Model) resyncTranscript() {
	m.messages = m.console.Snapshot()
	m.renderTimeline()
	m.timeline.GotoBottom()
}

func (m *Model) resize() {
	m.timeline.Width = m.width
	// Header, composing line, input and footer each take one row.
	height := m.height - 4
	if height < 1 {
		height = 1
	}
	m.timeline.Height = height
	m.input.Width = m.width - len(m.input.Prompt) - 1
}

func (m *Model) renderTimeline() {
	width := m.timeline.Width
	if width <= 0 {
		width = 80
	}

	var lines []string
	for _, message := range m.messages {
		lines = append(lines, m.renderMessage(message, width))
	}
	m.timeline.SetContent(strings.Join(lines, "\n\n"))
}

func (m *Model) renderMessage(message events.Message, width int) string {
	label := m.theme.agentLabel.Render("Agent")
	switch message.Author {
	case events.AuthorUser:
		label = m.theme.userLabel.Render("You")
	case events.AuthorSystem:
		label = m.theme.systemLabel.Render("System")
	}
	if message.HasAudio {
		label += " " + m.theme.badge.Render("[voice]")
	}

	switch message.Artifact {
	case events.ArtifactImage:
		line := message.ImageURL
		if local, ok := m.localArtifacts[message.ID]; ok {
			line = local
		}
		if message.Caption != "" {
			line = message.Caption + "\n" + line
		}
		return label + "\n" + m.theme.imageLine.Render(wordwrap.String(line, width))
	case events.ArtifactError:
		return label + "\n" + m.theme.errorBody.Render(wordwrap.String(message.Text, width))
	default:
		return label + "\n" + m.theme.messageBody.Render(wordwrap.String(message.Text, width))
	}
}

func (m Model) headerView() string {
	dot := m.theme.statusOff.Render("●")
	if m.connected {
		dot = m.theme.statusOnline.Render("●")
	}

	mic := "mic off"
	if m.recording {
		mic = "mic on"
	}
	voice := "text replies"
	if m.voice {
		voice = "voice replies"
	}

	session := ""
	if m.connected && len(m.sessionID) >= 8 {
		session = " (" + m.sessionID[:8] + ")"
	}

	return fmt.Sprintf("%s %s  %s%s | %s | %s",
		dot, m.theme.header.Render("serena"), m.status, session, mic, voice)
}

func (m Model) footerView() string {
	return m.theme.footer.Render("enter: send | ctrl+r: mic | ctrl+v: voice | ctrl+n: new session | ctrl+c: quit")
}

func (m Model) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := m.console.SendPrompt(text); err != nil {
			return controlResultMsg{err: err}
		}
		return controlResultMsg{}
	}
}

func (m Model) toggleRecordingCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.console.ToggleRecording(context.Background()); err != nil {
			return controlResultMsg{err: err}
		}
		return controlResultMsg{}
	}
}

func (m Model) setVoiceCmd(enabled bool) tea.Cmd {
	return func() tea.Msg {
		if err := m.console.SetVoiceResponses(enabled); err != nil {
			return controlResultMsg{err: err}
		}
		if enabled {
			return controlResultMsg{status: "voice replies on"}
		}
		return controlResultMsg{status: "voice replies off"}
	}
}

func (m Model) newSessionCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.console.NewSession(); err != nil {
			return controlResultMsg{err: err}
		}
		return controlResultMsg{status: "new session"}
	}
}

func (m Model) fetchArtifactCmd(id, rawURL string) tea.Cmd {
	return func() tea.Msg {
		path, err := m.fetcher.Fetch(context.Background(), rawURL)
		return artifactFetchedMsg{id: id, path: path, err: err}
	}
}
