package console

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/novoforce/cautious-palm-tree/core/audio"
)

// AudioInput is the microphone capture contract. StartCapture acquires the
// device and invokes onAudio once per fixed-size chunk from the capture
// scheduling domain; StopCapture releases the device with each teardown step
// independently guarded.
type AudioInput interface {
	EncodingInfo() audio.EncodingInfo
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

// inputFrameBacklog bounds the capture-to-control crossing. Capture chunks
// arrive at a steady rate; the backlog only absorbs short control-side
// stalls.
const inputFrameBacklog = 32

// audioInput wraps the configured capture client behind a facade that owns
// the recording gate and the crossing between the capture scheduling domain
// and the control side.
//
// Chunk callbacks run on the capture domain and never touch control-side
// state directly; frames cross through a bounded channel drained by a pump
// goroutine. The isRecording gate is checked on the capture side so chunks
// produced after a stop was requested, but before teardown completes, are
// discarded rather than sent into a stopped session.
type audioInput struct {
	base AudioInput

	isRecording atomic.Bool

	// onInputAudio receives frames on the pump goroutine, in capture order.
	onInputAudio func(audio []byte)

	frames    chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func newAudioInput(client AudioInput, onInputAudio func(audio []byte)) *audioInput {
	if onInputAudio == nil {
		onInputAudio = func(audio []byte) {}
	}

	audioInput := &audioInput{
		base:         client,
		onInputAudio: onInputAudio,
		frames:       make(chan []byte, inputFrameBacklog),
		done:         make(chan struct{}),
	}
	go audioInput.pump()
	return audioInput
}

func (a *audioInput) IsConfigured() bool { return a != nil && a.base != nil }
func (a *audioInput) IsRecording() bool  { return a != nil && a.isRecording.Load() }

// Start opens the microphone. It is gesture-driven: nothing captures until a
// user control calls this. A capture client that cannot acquire the device
// reports PermissionError and the session carries on without audio input.
func (a *audioInput) Start(ctx context.Context) error {
	if a == nil || a.base == nil {
		return nil
	}

	if !a.isRecording.CompareAndSwap(false, true) {
		return nil
	}

	if err := a.base.StartCapture(ctx, a.onAudio); err != nil {
		a.isRecording.Store(false)
		return &PermissionError{err: err}
	}
	return nil
}

// Stop closes the gate first, then releases the device. Safe to call at any
// time, including when capture never started.
func (a *audioInput) Stop() error {
	if a == nil || a.base == nil {
		return nil
	}

	if !a.isRecording.CompareAndSwap(true, false) {
		return nil
	}

	if err := a.base.StopCapture(); err != nil {
		return &DeviceTeardownError{err: err}
	}
	return nil
}

// Close stops capture and shuts the pump down. Further frames are discarded.
func (a *audioInput) Close() error {
	if a == nil {
		return nil
	}

	var errs error
	if err := a.Stop(); err != nil {
		errs = errors.Join(errs, err)
	}
	a.closeOnce.Do(func() { close(a.done) })
	return errs
}

func (a *audioInput) EncodingInfo() audio.EncodingInfo {
	if a == nil || a.base == nil {
		return audio.InputEncodingInfo()
	}

	return a.base.EncodingInfo()
}

// onAudio runs on the capture scheduling domain. It must never block: when
// the backlog is full the frame is dropped, not queued behind a stalled
// control side.
func (a *audioInput) onAudio(frame []byte) {
	if !a.isRecording.Load() {
		return
	}

	select {
	case a.frames <- frame:
	default:
		logger.Warn("Dropping capture frame, control side is not keeping up")
	}
}

func (a *audioInput) pump() {
	for {
		select {
		case frame := <-a.frames:
			if !a.isRecording.Load() {
				continue
			}
			a.onInputAudio(frame)
		case <-a.done:
			return
		}
	}
}
