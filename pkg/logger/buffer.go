package logger

import "sync"

// logBufferSize bounds the diagnostic log kept for PrintLogs.
const logBufferSize = 1 << 20

// ringBuffer keeps the last size bytes written to it. Older output is dropped.
type ringBuffer struct {
	mu   sync.Mutex
	data []byte
	size int
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{data: make([]byte, 0, size), size: size}
}

func (b *ringBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(p) >= b.size {
		// only the tail of an oversized write fits
		b.data = append(b.data[:0], p[len(p)-b.size:]...)
		return len(p), nil
	}
	if over := len(b.data) + len(p) - b.size; over > 0 {
		n := copy(b.data, b.data[over:])
		b.data = b.data[:n]
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

// String returns the retained output without consuming it.
func (b *ringBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}
