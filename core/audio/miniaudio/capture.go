package miniaudio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/novoforce/cautious-palm-tree/core/audio"
)

// CaptureClient streams fixed-size microphone chunks to a callback.
//
// The device, and the context that owns it, exist only between StartCapture
// and StopCapture: capture must not begin before the user explicitly asks for
// it, and stopping has to release the microphone handle entirely.
type CaptureClient struct {
	mu           sync.Mutex
	audioContext *malgo.AllocatedContext
	device       *malgo.Device

	onAudio func(chunk []byte)
}

func NewCaptureClient() *CaptureClient {
	return &CaptureClient{}
}

// StartCapture acquires the default capture device and begins invoking
// onAudio once per fixed-size chunk of raw PCM bytes.
func (c *CaptureClient) StartCapture(_ context.Context, onAudio func(chunk []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		return nil
	}

	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return fmt.Errorf("failed to initialize capture context: %w", err)
	}

	encoding := audio.InputEncodingInfo()
	sampleRate := uint32(encoding.SampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.SampleRate = sampleRate
	config.Capture.Format = format
	config.Capture.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PerformanceProfile = malgo.LowLatency
	config.PeriodSizeInFrames = 480
	config.Periods = 3

	c.onAudio = onAudio
	device, err := malgo.InitDevice(audioCtx.Context, config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}

			c.mu.Lock()
			emit := c.onAudio
			c.mu.Unlock()
			if emit != nil {
				chunk := make([]byte, n)
				copy(chunk, pInput[:n])
				emit(chunk)
			}
		},
	})
	if err != nil {
		_ = audioCtx.Uninit()
		audioCtx.Free()
		c.onAudio = nil
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = audioCtx.Uninit()
		audioCtx.Free()
		c.onAudio = nil
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	c.audioContext = audioCtx
	c.device = device
	return nil
}

// StopCapture releases the microphone. The three teardown steps (stop the
// device, uninitialize it, close the owning context) are guarded
// independently so one failure never blocks the others.
func (c *CaptureClient) StopCapture() error {
	c.mu.Lock()
	device := c.device
	audioCtx := c.audioContext
	c.device = nil
	c.audioContext = nil
	c.onAudio = nil
	c.mu.Unlock()

	var errs error
	if device != nil {
		if err := device.Stop(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to stop capture device: %w", err))
		}
		device.Uninit()
	}

	if audioCtx != nil {
		if err := audioCtx.Uninit(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to close capture context: %w", err))
		}
		audioCtx.Free()
	}

	return errs
}

func (c *CaptureClient) EncodingInfo() audio.EncodingInfo {
	return audio.InputEncodingInfo()
}
