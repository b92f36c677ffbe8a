package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/novoforce/cautious-palm-tree/core/audio"
)

// PlaybackClient renders agent speech through the default output device.
//
// The device callback runs on miniaudio's own audio thread and drains the
// pending buffer at playback rate; producers only ever append. Underruns play
// silence, so frames arriving slower than real time never corrupt the stream.
type PlaybackClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	mu      sync.Mutex
	pending []byte

	deviceMu sync.Mutex
}

// NewPlaybackClient initializes the playback device and starts rendering.
// Intended to be called once per process lifetime.
func NewPlaybackClient() (*PlaybackClient, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback context: %w", err)
	}

	client := &PlaybackClient{audioContext: audioCtx}

	encoding := audio.OutputEncodingInfo()
	sampleRate := uint32(encoding.SampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	client.config = malgo.DefaultDeviceConfig(malgo.Playback)
	client.config.SampleRate = sampleRate
	client.config.Playback.Format = format
	client.config.Playback.Channels = uint32(channels)
	client.config.Alsa.NoMMap = 1
	client.config.PeriodSizeInFrames = sampleRate / 10
	client.config.Periods = 4

	client.device, err = malgo.InitDevice(
		audioCtx.Context,
		client.config,
		malgo.DeviceCallbacks{Data: client.render(bytesPerFrame)},
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := client.device.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	return client, nil
}

// SendAudio queues one decoded PCM buffer for continuous playback.
func (c *PlaybackClient) SendAudio(frame []byte) error {
	c.deviceMu.Lock()
	device := c.device
	c.deviceMu.Unlock()
	if device == nil {
		return fmt.Errorf("playback device not initialized")
	}

	c.mu.Lock()
	c.pending = append(c.pending, frame...)
	c.mu.Unlock()
	return nil
}

// ClearBuffer drops any queued audio that has not reached the device yet.
func (c *PlaybackClient) ClearBuffer() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

func (c *PlaybackClient) EncodingInfo() audio.EncodingInfo {
	return audio.OutputEncodingInfo()
}

// Close tears the playback pipeline down. Each step is guarded independently
// so a failed device teardown still releases the context.
func (c *PlaybackClient) Close() {
	c.deviceMu.Lock()
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	c.deviceMu.Unlock()

	if c.audioContext != nil {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
		c.audioContext = nil
	}

	c.ClearBuffer()
}

func (c *PlaybackClient) render(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		c.mu.Lock()
		defer c.mu.Unlock()

		if len(c.pending) == 0 {
			// Underrun: the output buffer stays zeroed, which is silence
			// for signed 16-bit PCM.
			return
		}

		if len(c.pending) < need {
			copy(pOutput, c.pending)
			c.pending = nil
			return
		}

		copy(pOutput, c.pending[:need])
		c.pending = c.pending[need:]
	}
}
