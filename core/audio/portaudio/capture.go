package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/novoforce/cautious-palm-tree/core/audio"
)

// CaptureClient reads fixed-size microphone chunks off a blocking PortAudio
// stream on a dedicated goroutine.
type CaptureClient struct {
	stream *portaudio.Stream
	in     []int16

	mu       sync.Mutex
	stopCh   chan struct{}
	captures sync.WaitGroup
}

func newCaptureClient(bufferSize int) (*CaptureClient, error) {
	in := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.InputSampleRate, bufferSize, in)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}

	return &CaptureClient{
		stream: stream,
		in:     in,
	}, nil
}

// StartCapture reads chunks off the capture stream until StopCapture or
// context cancellation.
func (c *CaptureClient) StartCapture(ctx context.Context, onAudio func(chunk []byte)) error {
	c.mu.Lock()
	if c.stopCh != nil {
		c.mu.Unlock()
		return nil
	}
	stopCh := make(chan struct{})
	c.stopCh = stopCh
	c.mu.Unlock()

	if err := c.stream.Start(); err != nil {
		c.mu.Lock()
		c.stopCh = nil
		c.mu.Unlock()
		return fmt.Errorf("failed to start capture stream: %w", err)
	}

	c.captures.Add(1)
	go func() {
		defer c.captures.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			default:
				if err := c.stream.Read(); err != nil {
					log.Printf("Failed to read from capture stream: %v", err)
					continue
				}

				chunk := bytes.Buffer{}
				_ = binary.Write(&chunk, binary.LittleEndian, c.in)
				onAudio(chunk.Bytes())
			}
		}
	}()

	return nil
}

func (c *CaptureClient) StopCapture() error {
	c.mu.Lock()
	stopCh := c.stopCh
	c.stopCh = nil
	c.mu.Unlock()

	if stopCh == nil {
		return nil
	}
	close(stopCh)
	c.captures.Wait()

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture stream: %w", err)
	}
	return nil
}

func (c *CaptureClient) EncodingInfo() audio.EncodingInfo {
	return audio.InputEncodingInfo()
}

func (c *CaptureClient) close() error {
	if err := c.StopCapture(); err != nil {
		return err
	}
	if err := c.stream.Close(); err != nil {
		return fmt.Errorf("failed to close capture stream: %w", err)
	}
	return nil
}
