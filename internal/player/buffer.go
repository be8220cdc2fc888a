package player

import (
	"fmt"
	"io"
	"sync"
)

const fillChunkSize = 32 * 1024

// progressiveBuffer accumulates a remote stream in memory while exposing
// a blocking io.ReadSeekCloser over the eventual full content. Reads past
// the downloaded prefix block until the bytes arrive; seeks are pure
// offset math when the total size is known up front (Content-Length), so
// the decoder can probe the end of the stream without waiting for the
// download to complete.
type progressiveBuffer struct {
	mu   sync.Mutex
	cond *sync.Cond

	src    io.ReadCloser
	data   []byte
	size   int64 // total size, -1 until known
	pos    int64
	err    error
	done   bool
	closed bool
}

func newProgressiveBuffer(src io.ReadCloser, size int64) *progressiveBuffer {
	b := &progressiveBuffer{src: src, size: size}
	if size <= 0 {
		b.size = -1
	}
	b.cond = sync.NewCond(&b.mu)
	go b.fill()
	return b
}

func (b *progressiveBuffer) fill() {
	chunk := make([]byte, fillChunkSize)
	for {
		n, err := b.src.Read(chunk)

		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return
		}
		if n > 0 {
			b.data = append(b.data, chunk[:n]...)
		}
		if err != nil {
			b.done = true
			if err != io.EOF {
				b.err = err
			}
			if b.size < 0 || int64(len(b.data)) < b.size {
				// Short or unknown-length stream: the real size is
				// whatever we got.
				b.size = int64(len(b.data))
			}
			b.cond.Broadcast()
			b.mu.Unlock()
			return
		}
		b.cond.Broadcast()
		b.mu.Unlock()
	}
}

func (b *progressiveBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.pos >= int64(len(b.data)) && !b.done && !b.closed {
		b.cond.Wait()
	}

	if b.closed {
		return 0, fmt.Errorf("buffer closed")
	}
	if b.pos >= int64(len(b.data)) {
		if b.err != nil {
			return 0, b.err
		}
		return 0, io.EOF
	}

	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *progressiveBuffer) Seek(offset int64, whence int) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = b.pos + offset
	case io.SeekEnd:
		// Wait for the total size if the server did not report one.
		for b.size < 0 && !b.done && !b.closed {
			b.cond.Wait()
		}
		if b.closed {
			return 0, fmt.Errorf("buffer closed")
		}
		target = b.size + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}

	if target < 0 {
		return 0, fmt.Errorf("negative seek position %d", target)
	}
	b.pos = target
	return target, nil
}

// Close stops the background download and releases the source.
// Safe to call more than once.
func (b *progressiveBuffer) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()

	// Unblocks the fill goroutine if it is mid-read.
	return b.src.Close()
}

// Downloaded returns the number of bytes received so far.
func (b *progressiveBuffer) Downloaded() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.data))
}

// Size returns the total stream size, or -1 if not yet known.
func (b *progressiveBuffer) Size() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}
