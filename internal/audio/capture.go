package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrBufferClosed is returned when reading from a drained, closed buffer
// or writing to a closed one.
var ErrBufferClosed = errors.New("buffer is closed")

// CaptureBuffer hands decoded samples from a producer goroutine to the
// frame loop, in the shape a DMA capture would deliver them.
//
// Design:
// - Single producer writes int32 samples via Write()
// - Single consumer pulls fixed-size frames via ReadFrame()
// - Consumed samples are compacted away so long files stay bounded
// - An optional high-water mark makes Write wait for the consumer
// - Close() wakes a blocked consumer; the final partial frame is zero padded
type CaptureBuffer struct {
	mu   sync.Mutex
	cond *sync.Cond

	samples   []int32
	readPos   int
	highWater int
	written int64
	closed  bool
	err     error
}

// NewCaptureBuffer creates a capture buffer. initialCapacity is a hint.
func NewCaptureBuffer(initialCapacity int) *CaptureBuffer {
	if initialCapacity <= 0 {
		initialCapacity = 64 * 1024
	}

	b := &CaptureBuffer{
		samples: make([]int32, 0, initialCapacity),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// SetHighWater makes Write block while n or more samples are unread.
// n must be at least the consumer's frame size; 0 disables the limit.
func (b *CaptureBuffer) SetHighWater(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.highWater = max(n, 0)
	b.cond.Broadcast()
}

// Write appends samples and wakes the consumer.
func (b *CaptureBuffer) Write(samples []int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for !b.closed && b.highWater > 0 && len(b.samples)-b.readPos >= b.highWater {
		b.cond.Wait()
	}
	if b.closed {
		return ErrBufferClosed
	}

	// Reclaim the consumed prefix before growing
	if b.readPos > 0 && len(b.samples)+len(samples) > cap(b.samples) {
		n := copy(b.samples, b.samples[b.readPos:])
		b.samples = b.samples[:n]
		b.readPos = 0
	}

	b.samples = append(b.samples, samples...)
	b.written += int64(len(samples))
	b.cond.Broadcast()
	return nil
}

// ReadFrame fills dst with the next len(dst) samples, blocking until they
// are available. Once closed, a short remainder is returned zero padded and
// then ErrBufferClosed (or the error given to CloseWithError).
func (b *CaptureBuffer) ReadFrame(dst []int32) error {
	if len(dst) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		available := len(b.samples) - b.readPos
		if available >= len(dst) {
			copy(dst, b.samples[b.readPos:b.readPos+len(dst)])
			b.readPos += len(dst)
			b.cond.Broadcast()
			return nil
		}

		if b.closed {
			if available <= 0 {
				if b.err != nil {
					return b.err
				}
				return ErrBufferClosed
			}
			n := copy(dst, b.samples[b.readPos:])
			clear(dst[n:])
			b.readPos += n
			return nil
		}

		b.cond.Wait()
	}
}

// Available returns the number of unread samples.
func (b *CaptureBuffer) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples) - b.readPos
}

// TotalSamples returns the number of samples ever written.
func (b *CaptureBuffer) TotalSamples() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.written
}

// Close signals that no more samples will be written.
func (b *CaptureBuffer) Close() {
	b.CloseWithError(nil)
}

// CloseWithError closes the buffer and makes err the final ReadFrame error
// once the remaining samples are drained. The first close wins.
func (b *CaptureBuffer) CloseWithError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	b.err = err
	b.cond.Broadcast()
}

// IsClosed returns whether the buffer has been closed.
func (b *CaptureBuffer) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Capture pumps dec into buf in chunks of chunk samples, converting to
// full-scale int32. buf is always closed on return; a decode failure or
// cancellation is also surfaced through buf's final ReadFrame error.
func Capture(ctx context.Context, dec AudioDecoder, buf *CaptureBuffer, chunk int) (err error) {
	defer func() {
		buf.CloseWithError(err)
	}()

	if chunk <= 0 {
		chunk = 4096
	}

	var pcm []int32
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		samples, err := dec.ReadChunk(chunk)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		if len(samples) == 0 {
			continue
		}

		pcm = ToInt32(pcm, samples)
		if err := buf.Write(pcm); err != nil {
			return err
		}
	}
}
