package dl

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/net/context"
)

const (
	chunk_status_fail = chunkStatus(iota - 1)
	chunk_status_wait
	chunk_status_downloading
	chunk_status_success
	chunk_status_cancelled
)

type chunkStatus int32

func (s chunkStatus) String() string {
	switch s {
	case chunk_status_fail:
		return "fail"
	case chunk_status_wait:
		return "wait"
	case chunk_status_downloading:
		return "downloading"
	case chunk_status_success:
		return "success"
	case chunk_status_cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("chunkStatus(%d)", int32(s))
}

// chunk is one byte range [start, start+size) of the resource.
type chunk struct {
	index int
	start uint64
	size  uint64
}

func (c chunk) end() uint64 {
	return c.start + c.size - 1
}

func (c chunk) rangeHeader() string {
	return fmt.Sprintf("bytes=%d-%d", c.start, c.end())
}

// nextChunk returns the chunk beginning at offset, truncated to the
// remaining length. ok is false once offset reaches contentLength.
func nextChunk(index int, offset, chunkSize, contentLength uint64) (c chunk, ok bool) {
	if offset >= contentLength || chunkSize == 0 {
		return chunk{}, false
	}
	size := chunkSize
	if rest := contentLength - offset; rest < size {
		size = rest
	}
	return chunk{index: index, start: offset, size: size}, true
}

// ChunkCount is the number of chunks a resource of contentLength bytes
// splits into.
func ChunkCount(contentLength, chunkSize uint64) uint64 {
	if chunkSize == 0 {
		return 0
	}
	n := contentLength / chunkSize
	if contentLength%chunkSize != 0 {
		n++
	}
	return n
}

// fetch is the handle of one scheduled chunk. The worker owns buf until
// done is closed, after which it belongs to whoever joins the fetch.
type fetch struct {
	chunk  chunk
	status atomic.Int32
	cancel context.CancelFunc

	once sync.Once
	done chan struct{}
	buf  []byte
	err  error
}

func newFetch(c chunk, cancel context.CancelFunc) *fetch {
	f := &fetch{
		chunk:  c,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	f.status.Store(int32(chunk_status_wait))
	return f
}

func (f *fetch) setStatus(s chunkStatus) {
	f.status.Store(int32(s))
}

func (f *fetch) getStatus() chunkStatus {
	return chunkStatus(f.status.Load())
}

// finish publishes the outcome. Only the first call has any effect.
func (f *fetch) finish(buf []byte, status chunkStatus, err error) {
	f.once.Do(func() {
		f.buf, f.err = buf, err
		f.setStatus(status)
		close(f.done)
	})
}

func (f *fetch) poll() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// join blocks until the fetch has an outcome and releases its cancel signal.
func (f *fetch) join() ([]byte, chunkStatus, error) {
	<-f.done
	f.cancel()
	buf := f.buf
	f.buf = nil
	return buf, f.getStatus(), f.err
}
