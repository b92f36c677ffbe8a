// Package miniaudio provides capture and playback clients backed by the
// miniaudio library via malgo. Capture and playback own separate device
// contexts: playback lives for the whole process while capture is created
// and torn down around each recording.
package miniaudio

import "fmt"

// Client bundles the capture and playback halves behind one lifetime handle.
// Sessions wire each half by its role.
type Client struct {
	capture  *CaptureClient
	playback *PlaybackClient
}

func NewClient() (*Client, error) {
	playback, err := NewPlaybackClient()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	return &Client{
		capture:  NewCaptureClient(),
		playback: playback,
	}, nil
}

// Capture returns the microphone half.
func (c *Client) Capture() *CaptureClient { return c.capture }

// Playback returns the agent speech half.
func (c *Client) Playback() *PlaybackClient { return c.playback }

func (c *Client) Close() {
	_ = c.capture.StopCapture()
	c.playback.Close()
}
