package portaudio

import "sync"

// blockQueue accumulates arbitrarily sized frames and releases fixed-size
// blocks, keeping any remainder until more audio arrives. push never blocks;
// next blocks until a full block is available or done closes.
type blockQueue struct {
	blockSize int

	mu      sync.Mutex
	pending []byte

	wake chan struct{}
}

func newBlockQueue(blockSize int) *blockQueue {
	return &blockQueue{
		blockSize: blockSize,
		wake:      make(chan struct{}, 1),
	}
}

func (q *blockQueue) push(frame []byte) {
	q.mu.Lock()
	q.pending = append(q.pending, frame...)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *blockQueue) next(done <-chan struct{}) ([]byte, bool) {
	for {
		q.mu.Lock()
		if len(q.pending) >= q.blockSize {
			block := make([]byte, q.blockSize)
			copy(block, q.pending)
			q.pending = q.pending[q.blockSize:]
			q.mu.Unlock()
			return block, true
		}
		q.mu.Unlock()

		select {
		case <-done:
			return nil, false
		case <-q.wake:
		}
	}
}

func (q *blockQueue) clear() {
	q.mu.Lock()
	q.pending = nil
	q.mu.Unlock()
}
