package console

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/novoforce/cautious-palm-tree/core/audio"
	"github.com/novoforce/cautious-palm-tree/core/bridge"
)

type stubConn struct {
	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written []bridge.ClientEvent
}

func newStubConn() *stubConn {
	return &stubConn{
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (c *stubConn) ReadMessage() (int, []byte, error) {
	select {
	case payload := <-c.inbound:
		return 1, payload, nil
	case <-c.closed:
		return 0, nil, errors.New("connection closed")
	}
}

func (c *stubConn) WriteJSON(v any) error {
	event, ok := v.(bridge.ClientEvent)
	if !ok {
		return errors.New("unexpected outbound payload")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, event)
	return nil
}

func (c *stubConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *stubConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *stubConn) writtenEvents() []bridge.ClientEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bridge.ClientEvent{}, c.written...)
}

func (c *stubConn) queueEvent(t *testing.T, event bridge.ServerEvent) {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("expected the event to marshal, got %v", err)
	}
	c.inbound <- payload
}

type stubDialer struct {
	mu    sync.Mutex
	conns []*stubConn
	urls  []string
}

func (d *stubDialer) dial(ctx context.Context, rawURL string) (bridge.Conn, error) {
	conn := newStubConn()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns = append(d.conns, conn)
	d.urls = append(d.urls, rawURL)
	return conn, nil
}

func (d *stubDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *stubDialer) conn(i int) *stubConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func (d *stubDialer) url(i int) *url.URL {
	d.mu.Lock()
	defer d.mu.Unlock()
	parsed, _ := url.Parse(d.urls[i])
	return parsed
}

func pollUntil(t *testing.T, condition func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("%s", message)
}

func newTestConsole(t *testing.T, opts ...ConsoleOption) (*Console, *stubDialer) {
	t.Helper()
	dialer := &stubDialer{}
	opts = append(opts, WithBridgeOptions(bridge.WithDialer(dialer.dial)))
	console := New("http://backend", opts...)
	t.Cleanup(console.Close)
	return console, dialer
}

func TestConsoleOpenDialsOneSession(t *testing.T) {
	console, dialer := newTestConsole(t)

	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}

	if dialer.dialCount() != 1 {
		t.Fatalf("expected exactly 1 transport, got %d", dialer.dialCount())
	}
	if !console.Connected() {
		t.Fatalf("expected the console to report connected")
	}

	query := dialer.url(0).Query()
	if query.Get("is_audio") != "false" || query.Get("agent_wants_audio_output") != "false" {
		t.Fatalf("expected typed-input text-reply defaults, got %v", query)
	}
}

func TestConsoleSendPromptEchoesAndTransmits(t *testing.T) {
	console, dialer := newTestConsole(t)
	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}

	if err := console.SendPrompt("what movies are playing?"); err != nil {
		t.Fatalf("expected the prompt to send, got %v", err)
	}

	messages := console.Snapshot()
	if len(messages) != 1 || messages[0].Text != "what movies are playing?" {
		t.Fatalf("expected the prompt echoed into the transcript, got %+v", messages)
	}

	written := dialer.conn(0).writtenEvents()
	if len(written) != 1 {
		t.Fatalf("expected 1 outbound event, got %d", len(written))
	}
	if written[0].MimeType != bridge.MimeText || written[0].Role != bridge.RoleUser {
		t.Fatalf("expected a typed-text submission, got %+v", written[0])
	}
}

func TestConsoleInboundEventsAssembleIntoTranscript(t *testing.T) {
	console, dialer := newTestConsole(t)
	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}

	conn := dialer.conn(0)
	conn.queueEvent(t, bridge.ServerEvent{Role: bridge.RoleModel, MimeType: bridge.MimeText, Data: "Hello"})
	conn.queueEvent(t, bridge.ServerEvent{Role: bridge.RoleModel, MimeType: bridge.MimeText, Data: " there"})

	pollUntil(t, func() bool {
		messages := console.Snapshot()
		return len(messages) == 1 && messages[0].Text == "Hello there"
	}, "expected inbound fragments assembled in order")
}

func TestConsoleVoiceToggleOpensExactlyOneNewTransport(t *testing.T) {
	console, dialer := newTestConsole(t)
	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}

	if err := console.SetVoiceResponses(true); err != nil {
		t.Fatalf("expected the voice toggle to reconnect, got %v", err)
	}

	if dialer.dialCount() != 2 {
		t.Fatalf("expected exactly 1 replacement transport, got %d total", dialer.dialCount())
	}
	if !dialer.conn(0).isClosed() {
		t.Fatalf("expected the old transport closed before the new one opened")
	}

	oldQuery := dialer.url(0).Query()
	newQuery := dialer.url(1).Query()
	if oldQuery.Get("agent_wants_audio_output") != "false" || newQuery.Get("agent_wants_audio_output") != "true" {
		t.Fatalf("expected the replacement to carry the updated flag")
	}

	oldSession := strings.TrimPrefix(dialer.url(0).Path, "/ws/")
	newSession := strings.TrimPrefix(dialer.url(1).Path, "/ws/")
	if oldSession == newSession {
		t.Fatalf("expected a fresh session token on the swap")
	}

	// Toggling to the value already in effect must not churn the transport.
	if err := console.SetVoiceResponses(true); err != nil {
		t.Fatalf("expected the redundant toggle to be a no-op, got %v", err)
	}
	if dialer.dialCount() != 2 {
		t.Fatalf("expected no extra transport from a redundant toggle, got %d", dialer.dialCount())
	}
}

func TestConsoleStaleTransportDeliversNothingAfterSwap(t *testing.T) {
	console, dialer := newTestConsole(t)
	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}

	if err := console.SetVoiceResponses(true); err != nil {
		t.Fatalf("expected the voice toggle to reconnect, got %v", err)
	}

	dialer.conn(1).queueEvent(t, bridge.ServerEvent{Role: bridge.RoleModel, MimeType: bridge.MimeText, Data: "fresh"})
	pollUntil(t, func() bool {
		return len(console.Snapshot()) == 1
	}, "expected the replacement transport to deliver")

	if got := console.Snapshot()[0].Text; got != "fresh" {
		t.Fatalf("expected only replacement-transport content, got %q", got)
	}
}

func TestConsoleRecordingTogglesInputModeAndTransport(t *testing.T) {
	capture := &fakeCapture{}
	console, dialer := newTestConsole(t, WithAudioInputClient(capture))
	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}

	if err := console.StartRecording(context.Background()); err != nil {
		t.Fatalf("expected recording to start, got %v", err)
	}
	if !console.IsRecording() {
		t.Fatalf("expected the console to report recording")
	}
	if dialer.dialCount() != 2 {
		t.Fatalf("expected the mode change to open a replacement transport, got %d", dialer.dialCount())
	}
	if dialer.url(1).Query().Get("is_audio") != "true" {
		t.Fatalf("expected the replacement to carry spoken-input mode")
	}

	capture.onAudio([]byte{0x01, 0x02})
	pollUntil(t, func() bool {
		return len(dialer.conn(1).writtenEvents()) == 1
	}, "expected the capture frame sent on the live transport")
	written := dialer.conn(1).writtenEvents()
	if written[0].MimeType != bridge.MimeAudio {
		t.Fatalf("expected an audio frame event, got %+v", written[0])
	}

	if err := console.StopRecording(); err != nil {
		t.Fatalf("expected recording to stop, got %v", err)
	}
	if console.IsRecording() {
		t.Fatalf("expected the console to report not recording")
	}
	if dialer.dialCount() != 3 {
		t.Fatalf("expected the stop to open a typed-input transport, got %d", dialer.dialCount())
	}
	if dialer.url(2).Query().Get("is_audio") != "false" {
		t.Fatalf("expected the final transport back in typed-input mode")
	}
}

func TestConsoleRecordingPermissionFailureKeepsSession(t *testing.T) {
	capture := &fakeCapture{startErr: errors.New("permission denied")}
	console, dialer := newTestConsole(t, WithAudioInputClient(capture))
	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}

	err := console.StartRecording(context.Background())
	var permissionErr *PermissionError
	if !errors.As(err, &permissionErr) {
		t.Fatalf("expected a permission error, got %v", err)
	}

	if console.IsRecording() {
		t.Fatalf("expected no recording after the failure")
	}
	if dialer.dialCount() != 1 {
		t.Fatalf("expected the session left on its original transport, got %d", dialer.dialCount())
	}
	if !console.Connected() {
		t.Fatalf("expected the session to survive the failure")
	}
}

func TestConsoleNewSessionRegeneratesTokenAndKeepsTranscript(t *testing.T) {
	console, dialer := newTestConsole(t)
	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}
	if err := console.SendPrompt("remember me"); err != nil {
		t.Fatalf("expected the prompt to send, got %v", err)
	}

	if err := console.NewSession(); err != nil {
		t.Fatalf("expected a new session to open, got %v", err)
	}

	if dialer.dialCount() != 2 {
		t.Fatalf("expected exactly 1 replacement transport, got %d", dialer.dialCount())
	}
	if dialer.url(0).Path == dialer.url(1).Path {
		t.Fatalf("expected a fresh session token")
	}
	if len(console.Snapshot()) != 1 {
		t.Fatalf("expected the transcript kept across sessions")
	}
}

func TestConsoleStartRecordingWithoutCaptureDeviceIsNoOp(t *testing.T) {
	console, dialer := newTestConsole(t)
	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}

	if err := console.StartRecording(context.Background()); err != nil {
		t.Fatalf("expected the gesture to be a no-op, got %v", err)
	}

	if console.IsRecording() {
		t.Fatalf("expected no recording without a capture device")
	}
	if dialer.dialCount() != 1 {
		t.Fatalf("expected the session left on its original transport, got %d", dialer.dialCount())
	}
}

// routedPlayback records forwarded frames safely across the dispatch and test
// goroutines.
type routedPlayback struct {
	mu     sync.Mutex
	frames [][]byte
}

func (p *routedPlayback) EncodingInfo() audio.EncodingInfo { return audio.OutputEncodingInfo() }

func (p *routedPlayback) SendAudio(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, frame)
	return nil
}

func (p *routedPlayback) ClearBuffer() {}

func (p *routedPlayback) frameCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func TestConsolePlaybackRoutingIsStablePerSession(t *testing.T) {
	first := &routedPlayback{}
	second := &routedPlayback{}
	console, dialer := newTestConsole(t,
		WithAudioOutputClient(first),
		WithVoiceResponses(true),
	)
	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}

	// Reconfiguring the facade mid-session must not reroute the live session.
	console.audioOutput.Set(second)
	dialer.conn(0).queueEvent(t, bridge.ServerEvent{
		Role: bridge.RoleModel, MimeType: bridge.MimeAudio,
		Data: audio.EncodeFrame([]byte{0x01, 0x02}),
	})
	pollUntil(t, func() bool {
		return first.frameCount() == 1
	}, "expected the live session to keep its playback route")
	if second.frameCount() != 0 {
		t.Fatalf("expected no frames on the replacement route yet, got %d", second.frameCount())
	}

	if err := console.NewSession(); err != nil {
		t.Fatalf("expected a new session to open, got %v", err)
	}
	dialer.conn(1).queueEvent(t, bridge.ServerEvent{
		Role: bridge.RoleModel, MimeType: bridge.MimeAudio,
		Data: audio.EncodeFrame([]byte{0x03, 0x04}),
	})
	pollUntil(t, func() bool {
		return second.frameCount() == 1
	}, "expected the new session routed to the replacement client")
	if first.frameCount() != 1 {
		t.Fatalf("expected the retired route untouched, got %d frames", first.frameCount())
	}
}

func TestConsoleTransportSwapDropsLiveHandles(t *testing.T) {
	console, dialer := newTestConsole(t)
	if err := console.Open(context.Background()); err != nil {
		t.Fatalf("expected the console to open, got %v", err)
	}

	dialer.conn(0).queueEvent(t, bridge.ServerEvent{Role: bridge.RoleModel, MimeType: bridge.MimeText, Data: "half a mess"})
	pollUntil(t, func() bool {
		return len(console.Snapshot()) == 1
	}, "expected the first fragment assembled")

	if err := console.NewSession(); err != nil {
		t.Fatalf("expected a new session to open, got %v", err)
	}

	dialer.conn(1).queueEvent(t, bridge.ServerEvent{Role: bridge.RoleModel, MimeType: bridge.MimeText, Data: "age"})
	pollUntil(t, func() bool {
		return len(console.Snapshot()) == 2
	}, "expected the post-swap fragment to start a new message")

	messages := console.Snapshot()
	if messages[0].Text != "half a mess" || messages[1].Text != "age" {
		t.Fatalf("expected the partial message frozen and a new one started, got %+v", messages)
	}
}
