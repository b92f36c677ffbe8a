// Package bridge owns the full-duplex streaming connection to the agent
// backend: one websocket per session, outbound event encoding, inbound event
// decoding, and the reconnect-on-unexpected-close policy.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/codes"
)

// reconnectDelay is how long the client waits after an unexpected close
// before opening a replacement connection.
const reconnectDelay = 5 * time.Second

// Params describe one session connection. Both mode flags travel as query
// parameters, so changing either requires a fresh connection.
type Params struct {
	SessionID        string
	InputIsAudio     bool
	WantsAudioOutput bool
}

// NewParams creates connection parameters with a fresh opaque session token.
func NewParams(inputIsAudio, wantsAudioOutput bool) Params {
	return Params{
		SessionID:        uuid.NewString(),
		InputIsAudio:     inputIsAudio,
		WantsAudioOutput: wantsAudioOutput,
	}
}

// Callbacks are invoked from the client's read loop, in delivery order for a
// given connection. OnClose reports whether the close was deliberate; only
// unexpected closes trigger the timed reconnect.
type Callbacks struct {
	OnOpen  func(params Params)
	OnEvent func(event ServerEvent)
	OnClose func(deliberate bool)
	OnError func(err error)
}

// Conn is the subset of *websocket.Conn the client needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens one websocket connection to the given URL.
type Dialer func(ctx context.Context, rawURL string) (Conn, error)

func defaultDialer(ctx context.Context, rawURL string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type ClientOption func(*Client)

// WithDialer replaces the websocket dialer. Used to fake the backend in
// tests.
func WithDialer(dial Dialer) ClientOption {
	return func(c *Client) {
		if dial != nil {
			c.dial = dial
		}
	}
}

// Client maintains at most one live connection per session lifetime. A new
// Connect tears the previous connection down first, with its reconnect
// behavior suppressed, so stale transports can never deliver duplicate
// events.
type Client struct {
	baseURL   string
	callbacks Callbacks

	dial Dialer
	// afterFunc schedules the reconnect attempt; swapped for a manual
	// trigger in tests.
	afterFunc func(d time.Duration, f func()) (stop func() bool)

	writeMu sync.Mutex

	mu sync.Mutex
	// generation bumps on every connection swap. Read loops carry the
	// generation they were started with and go silent once it is stale.
	generation      int
	conn            Conn
	connected       bool
	params          Params
	baseContext     context.Context
	cancelReconnect func() bool
	closed          bool
}

func NewClient(baseURL string, callbacks Callbacks, opts ...ClientOption) *Client {
	client := &Client{
		baseURL:     baseURL,
		callbacks:   callbacks,
		dial:        defaultDialer,
		baseContext: context.Background(),
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Connect establishes the session connection described by params. Any prior
// connection is closed first as a deliberate close.
func (c *Client) Connect(ctx context.Context, params Params) error {
	ctx, span := tracer.Start(ctx, "connect session")
	defer span.End()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("connect failed: %w", ErrNotConnected)
	}
	c.baseContext = ctx
	c.params = params
	wasConnected := c.teardownLocked()
	generation := c.generation
	c.mu.Unlock()

	if wasConnected && c.callbacks.OnClose != nil {
		c.callbacks.OnClose(true)
	}

	conn, err := c.dial(ctx, c.sessionURL(params))
	if err != nil {
		recordedErr := fmt.Errorf("failed to open session socket: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	c.mu.Lock()
	if generation != c.generation || c.closed {
		// A newer Connect or Close raced us; this connection lost.
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if c.callbacks.OnOpen != nil {
		c.callbacks.OnOpen(params)
	}

	go c.readLoop(generation, conn)
	return nil
}

// Send serializes and transmits one outbound event. Sends are best-effort:
// without a live connection the event is silently dropped, never queued.
func (c *Client) Send(event ClientEvent) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()

	if !connected || conn == nil {
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(event); err != nil {
		c.mu.Lock()
		if conn == c.conn {
			c.connected = false
		}
		c.mu.Unlock()
		return fmt.Errorf("failed to send event: %w", err)
	}
	return nil
}

// Connected reports whether outbound sending is currently enabled.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Params returns the parameters of the most recent connection attempt.
func (c *Client) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// Close deliberately shuts the client down. No reconnect follows.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	wasConnected := c.teardownLocked()
	c.mu.Unlock()

	if wasConnected && c.callbacks.OnClose != nil {
		c.callbacks.OnClose(true)
	}
}

// teardownLocked closes the current connection (if any) with reconnect
// suppressed and invalidates its read loop. Reports whether a live
// connection was actually torn down.
func (c *Client) teardownLocked() (wasConnected bool) {
	if c.cancelReconnect != nil {
		c.cancelReconnect()
		c.cancelReconnect = nil
	}

	c.generation++
	wasConnected = c.connected
	c.connected = false
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	return wasConnected
}

func (c *Client) readLoop(generation int, conn Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(generation)
			return
		}

		var event ServerEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			protocolErr := &ProtocolError{err: err}
			logger.Error("Dropping malformed inbound event", "error", protocolErr)
			if c.callbacks.OnError != nil {
				c.callbacks.OnError(protocolErr)
			}
			continue
		}

		c.mu.Lock()
		stale := generation != c.generation
		c.mu.Unlock()
		if stale {
			return
		}

		if c.callbacks.OnEvent != nil {
			c.callbacks.OnEvent(event)
		}
	}
}

// handleClose runs when a connection's read loop ends. Deliberate closes
// bumped the generation first and were already reported, so only a close of
// the current generation counts as unexpected and schedules the reconnect.
func (c *Client) handleClose(generation int) {
	c.mu.Lock()
	if generation != c.generation || c.closed {
		c.mu.Unlock()
		return
	}

	c.generation++
	c.connected = false
	c.conn = nil
	c.cancelReconnect = c.afterFunc(reconnectDelay, c.reconnect)
	c.mu.Unlock()

	logger.Warn("Session socket closed unexpectedly, reconnecting",
		"delay", reconnectDelay.String())
	if c.callbacks.OnClose != nil {
		c.callbacks.OnClose(false)
	}
}

// reconnect opens the replacement connection after an unexpected close. Each
// reconnect is a logically new session: the token is regenerated, the mode
// flags carry over.
func (c *Client) reconnect() {
	c.mu.Lock()
	if c.closed || c.connected {
		c.mu.Unlock()
		return
	}
	ctx := c.baseContext
	params := c.params
	params.SessionID = uuid.NewString()
	c.mu.Unlock()

	if err := c.Connect(ctx, params); err != nil {
		// Dial failures stay final until something else reconnects; the
		// close handler is the only retry path.
		logger.Error("Failed to reconnect session", "error", err)
	}
}

func (c *Client) sessionURL(params Params) string {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}

	// The backend is configured by its http base URL; the websocket dialer
	// only accepts ws and wss.
	switch endpoint.Scheme {
	case "http":
		endpoint.Scheme = "ws"
	case "https":
		endpoint.Scheme = "wss"
	}

	endpoint = endpoint.JoinPath("ws", params.SessionID)

	queryParams := endpoint.Query()
	queryParams.Set("is_audio", strconv.FormatBool(params.InputIsAudio))
	queryParams.Set("agent_wants_audio_output", strconv.FormatBool(params.WantsAudioOutput))
	endpoint.RawQuery = queryParams.Encode()

	return endpoint.String()
}
