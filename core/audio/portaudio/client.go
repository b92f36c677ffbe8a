// Package portaudio provides an alternative device client backed by
// PortAudio, for hosts where miniaudio misbehaves. The process-wide PortAudio
// runtime is initialized once per Client and released on Close.
package portaudio

import (
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

// Client owns the PortAudio runtime and bundles the capture and playback
// halves. Sessions wire each half by its role.
type Client struct {
	capture  *CaptureClient
	playback *PlaybackClient
}

func NewClient(captureBufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	capture, err := newCaptureClient(captureBufferSize)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}

	playback, err := newPlaybackClient()
	if err != nil {
		_ = capture.close()
		_ = portaudio.Terminate()
		return nil, err
	}

	return &Client{
		capture:  capture,
		playback: playback,
	}, nil
}

// Capture returns the microphone half.
func (c *Client) Capture() *CaptureClient { return c.capture }

// Playback returns the agent speech half.
func (c *Client) Playback() *PlaybackClient { return c.playback }

func (c *Client) Close() {
	if err := c.capture.close(); err != nil {
		log.Printf("Failed to release capture stream: %v", err)
	}
	if err := c.playback.close(); err != nil {
		log.Printf("Failed to release playback stream: %v", err)
	}
	_ = portaudio.Terminate()
}
