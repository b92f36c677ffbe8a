package portaudio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/novoforce/cautious-palm-tree/core/audio"
)

// PlaybackClient plays agent speech through a blocking PortAudio stream.
// SendAudio only queues the frame; a dedicated goroutine drains whole output
// buffers to the device, so the caller never waits on rendering.
type PlaybackClient struct {
	stream *portaudio.Stream
	out    []int16

	queue *blockQueue

	startOnce sync.Once
	startErr  error
	drains    sync.WaitGroup

	done      chan struct{}
	closeOnce sync.Once
}

func newPlaybackClient() (*PlaybackClient, error) {
	// 100 ms of agent speech per output buffer.
	bufferSize := audio.OutputSampleRate / 10
	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(0, 1, audio.OutputSampleRate, bufferSize, out)
	if err != nil {
		return nil, fmt.Errorf("failed to open playback stream: %w", err)
	}

	return &PlaybackClient{
		stream: stream,
		out:    out,
		queue:  newBlockQueue(bufferSize * 2),
		done:   make(chan struct{}),
	}, nil
}

// SendAudio queues one frame for playback and returns immediately. The stream
// and its drain goroutine start on the first frame.
func (c *PlaybackClient) SendAudio(frame []byte) error {
	c.startOnce.Do(func() {
		if err := c.stream.Start(); err != nil {
			c.startErr = fmt.Errorf("failed to start playback stream: %w", err)
			return
		}
		c.drains.Add(1)
		go c.drain()
	})
	if c.startErr != nil {
		return c.startErr
	}

	c.queue.push(frame)
	return nil
}

func (c *PlaybackClient) drain() {
	defer c.drains.Done()
	for {
		block, ok := c.queue.next(c.done)
		if !ok {
			return
		}

		_ = binary.Read(bytes.NewReader(block), binary.LittleEndian, c.out)
		if err := c.stream.Write(); err != nil {
			log.Printf("Failed to write to playback stream: %v", err)
		}
	}
}

func (c *PlaybackClient) ClearBuffer() {
	c.queue.clear()
}

func (c *PlaybackClient) EncodingInfo() audio.EncodingInfo {
	return audio.OutputEncodingInfo()
}

func (c *PlaybackClient) close() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.drains.Wait()

	if err := c.stream.Close(); err != nil {
		return fmt.Errorf("failed to close playback stream: %w", err)
	}
	return nil
}
