package dl

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Read copies the next bytes of the resource into p. When the current chunk
// is used up it joins the oldest outstanding fetch, which may block behind a
// slow chunk even if later ones are already done.
//
// A failed chunk kills the remaining fetches and its error is returned by
// this and every later call, as is the error of a failed Start. After Kill,
// Read returns io.EOF.
func (d *DownLoader) Read(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if d.state.load() == StateNotStarted {
		return 0, ErrNotStarted
	}
	if d.ctx.Err() != nil {
		d.current, d.cursor = nil, 0
		d.releasePool()
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	if d.current == nil {
		if len(d.queue) == 0 {
			d.state.advance(StateComplete)
			d.cancel()
			d.releasePool()
			return 0, io.EOF
		}

		f := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]

		buf, status, err := f.join()
		d.log.WithFields(logrus.Fields{
			"index":  f.chunk.index,
			"status": status,
		}).Debug("chunk joined")

		switch status {
		case chunk_status_success:
		case chunk_status_cancelled:
			return 0, io.EOF
		default:
			if err == nil {
				err = newChunkError(f.chunk, 0, ErrJoinFailed, nil)
			}
			d.Kill()
			d.err = err
			return 0, err
		}

		d.current, d.cursor = buf, 0
		d.replenish()
	}

	n := copy(p, d.current[d.cursor:])
	d.cursor += n
	atomic.AddInt64(&d.delivered, int64(n))
	if d.cursor == len(d.current) {
		d.current, d.cursor = nil, 0
	}
	return n, nil
}
