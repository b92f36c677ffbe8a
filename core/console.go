// Package console is the client core of the conversational front-end: it
// owns the session transport, the turn assembler, and the duplex audio
// pipeline facades, and exposes the controls a presentation layer drives.
package console

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/novoforce/cautious-palm-tree/core/audio"
	"github.com/novoforce/cautious-palm-tree/core/bridge"
	"github.com/novoforce/cautious-palm-tree/core/events"
)

// Console brokers one live conversation. The transport delivers inbound
// events in order to the assembler; controls that change a mode flag tear the
// transport down and open a replacement carrying the updated flags.
type Console struct {
	transcript  *transcript
	assembler   *assembler
	audioOutput *audioOutput
	audioInput  *audioInput
	transport   *bridge.Client

	closeOnce sync.Once

	emit        eventEmitter
	openOptions OpenOptions
	baseContext context.Context

	// mu guards the mode flags. The transport client guards its own
	// connection state.
	mu               sync.Mutex
	inputIsAudio     bool
	wantsAudioOutput bool

	inputClient AudioInput
	bridgeOpts  []bridge.ClientOption
}

func New(backendURL string, opts ...ConsoleOption) *Console {
	c := &Console{
		transcript:  newTranscript(),
		audioOutput: newAudioOutput(nil),
		emit:        noopEventEmitter,
		baseContext: context.Background(),
	}
	c.assembler = newAssembler(c.transcript, c.audioOutput)

	for _, opt := range opts {
		opt(c)
	}

	c.audioInput = newAudioInput(c.inputClient, func(frame []byte) {
		if err := c.transport.Send(bridge.NewAudioEvent(audio.EncodeFrame(frame))); err != nil {
			logger.Warn("Failed to send capture frame", "error", err)
		}
	})

	c.transport = bridge.NewClient(backendURL, bridge.Callbacks{
		OnOpen:  c.handleTransportOpen,
		OnEvent: c.assembler.Dispatch,
		OnClose: c.handleTransportClose,
		OnError: c.handleTransportError,
	}, c.bridgeOpts...)

	return c
}

// Open connects the first session. ctx is the base context for the console's
// lifetime; cancelling it closes the console.
func (c *Console) Open(ctx context.Context, opts ...OpenOption) error {
	ctx, span := tracer.Start(ctx, "open console")
	defer span.End()

	c.openOptions = OpenOptions{}
	for _, opt := range opts {
		opt(&c.openOptions)
	}
	c.emit = newCallbackEventEmitter(c.openOptions)
	c.assembler.setEmitter(c.emit)

	c.mu.Lock()
	c.baseContext = context.WithoutCancel(ctx)
	wantsAudioOutput := c.wantsAudioOutput
	c.mu.Unlock()
	c.assembler.setWantsAudioOutput(wantsAudioOutput)

	logger.Info("Audio pipeline configured",
		"capture_sample_rate", c.audioInput.EncodingInfo().SampleRate,
		"playback_sample_rate", c.audioOutput.EncodingInfo().SampleRate)

	if err := c.connect(ctx); err != nil {
		recordedErr := fmt.Errorf("failed to open first session: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	go func() {
		<-ctx.Done()
		c.Close()
	}()

	return nil
}

// Close tears the console down: microphone released, playback flushed,
// transport deliberately closed so no reconnect follows.
func (c *Console) Close() {
	c.closeOnce.Do(func() {
		if err := c.audioInput.Close(); err != nil {
			recordedErr := fmt.Errorf("failed to close audio input: %w", err)
			span := trace.SpanFromContext(c.baseContext)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
			logger.Error("Audio input closed uncleanly", "error", recordedErr)
		}

		c.audioOutput.Clear()
		c.transport.Close()
	})
}

// SendPrompt submits one typed message. The prompt is echoed into the
// transcript immediately; delivery is best-effort like every outbound send.
func (c *Console) SendPrompt(text string) error {
	if text == "" {
		return nil
	}

	message := c.transcript.start(events.Message{
		Author:   events.AuthorUser,
		Artifact: events.ArtifactText,
		Text:     text,
	})
	c.emit(events.NewMessageStarted(message))

	if err := c.transport.Send(bridge.NewTextEvent(text)); err != nil {
		return fmt.Errorf("failed to send prompt: %w", err)
	}
	return nil
}

// StartRecording opens the microphone and swaps the session into spoken-input
// mode. The swap opens a new transport; the old one is closed with reconnect
// suppressed. Without a configured capture client this is a no-op: the
// session is not swapped into a mode it can never feed.
func (c *Console) StartRecording(ctx context.Context) error {
	if !c.audioInput.IsConfigured() {
		return nil
	}

	c.mu.Lock()
	if c.inputIsAudio {
		c.mu.Unlock()
		return nil
	}
	c.inputIsAudio = true
	c.mu.Unlock()

	if err := c.audioInput.Start(ctx); err != nil {
		c.mu.Lock()
		c.inputIsAudio = false
		c.mu.Unlock()
		return fmt.Errorf("failed to start recording: %w", err)
	}

	if err := c.connect(ctx); err != nil {
		return fmt.Errorf("failed to reopen session for spoken input: %w", err)
	}

	c.emit(events.NewRecordingStateChanged(true))
	return nil
}

// StopRecording releases the microphone and swaps the session back to typed
// input. Device teardown failures are logged, never fatal.
func (c *Console) StopRecording() error {
	c.mu.Lock()
	if !c.inputIsAudio {
		c.mu.Unlock()
		return nil
	}
	c.inputIsAudio = false
	ctx := c.baseContext
	c.mu.Unlock()

	if err := c.audioInput.Stop(); err != nil {
		logger.Error("Failed to stop recording cleanly", "error", err)
	}

	if err := c.connect(ctx); err != nil {
		return fmt.Errorf("failed to reopen session for typed input: %w", err)
	}

	c.emit(events.NewRecordingStateChanged(false))
	return nil
}

// ToggleRecording flips between spoken and typed input.
func (c *Console) ToggleRecording(ctx context.Context) error {
	if c.IsRecording() {
		return c.StopRecording()
	}
	return c.StartRecording(ctx)
}

// SetVoiceResponses flips the spoken-replies preference and reopens the
// session with the updated flag. A no-op when the preference is unchanged.
func (c *Console) SetVoiceResponses(enabled bool) error {
	c.mu.Lock()
	if c.wantsAudioOutput == enabled {
		c.mu.Unlock()
		return nil
	}
	c.wantsAudioOutput = enabled
	ctx := c.baseContext
	c.mu.Unlock()

	if enabled && !c.audioOutput.isConfigured() {
		logger.Warn("Spoken replies enabled without a playback device, agent speech will be dropped")
	}

	c.assembler.setWantsAudioOutput(enabled)
	if !enabled {
		c.audioOutput.Clear()
	}

	if err := c.connect(ctx); err != nil {
		return fmt.Errorf("failed to reopen session with updated voice preference: %w", err)
	}
	return nil
}

// NewSession abandons the current session and opens a fresh one with the same
// mode flags. The transcript is kept; only the in-flight turn is lost.
func (c *Console) NewSession() error {
	c.mu.Lock()
	ctx := c.baseContext
	c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return fmt.Errorf("failed to open new session: %w", err)
	}
	return nil
}

// Snapshot returns a deep copy of the assembled transcript.
func (c *Console) Snapshot() []events.Message {
	return c.transcript.Snapshot()
}

func (c *Console) Connected() bool   { return c.transport.Connected() }
func (c *Console) IsRecording() bool { return c.audioInput.IsRecording() }
func (c *Console) Composing() bool   { return c.assembler.isComposing() }

func (c *Console) VoiceResponses() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wantsAudioOutput
}

// connect opens a session carrying the current mode flags under a fresh
// opaque token. The transport closes any prior connection first, with its
// reconnect suppressed, so at most one live transport exists at a time.
// Each session assembles against a snapshot of the playback facade, so
// reconfiguring the facade only takes effect on the next session.
func (c *Console) connect(ctx context.Context) error {
	c.mu.Lock()
	params := bridge.NewParams(c.inputIsAudio, c.wantsAudioOutput)
	c.mu.Unlock()

	c.assembler.setOutput(c.audioOutput.Snapshot())
	return c.transport.Connect(ctx, params)
}

func (c *Console) handleTransportOpen(params bridge.Params) {
	c.emit(events.NewConnectionStateChanged(true, params.SessionID))
}

// handleTransportClose runs for every connection teardown, deliberate or
// not. Live assembly handles are dropped either way: fragments from the
// replacement session never extend a message begun on a dead transport.
func (c *Console) handleTransportClose(deliberate bool) {
	c.assembler.reset()
	c.emit(events.NewConnectionStateChanged(false, ""))
}

func (c *Console) handleTransportError(err error) {
	if c.openOptions.onError != nil {
		c.openOptions.onError(err)
	}
}
