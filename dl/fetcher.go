package dl

import (
	"io"
	"net/http"

	"github.com/imroc/req/v3"
	"github.com/pkg/errors"
	"golang.org/x/net/context"
)

// rangeFetcher downloads exactly one chunk per call. The client is shared by
// every fetch and is never mutated after construction.
type rangeFetcher struct {
	client   *req.Client
	url      string
	burst    int
	progress func(n int)
}

// fetch issues the ranged GET for c and reads the body burst by burst into a
// buffer of c.size bytes. The cancellation signal is checked before each
// burst; a cancelled fetch reports chunk_status_cancelled with a nil error.
func (f *rangeFetcher) fetch(ctx context.Context, c chunk) ([]byte, chunkStatus, error) {
	if ctx.Err() != nil {
		return nil, chunk_status_cancelled, nil
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Range", c.rangeHeader()).
		DisableAutoReadResponse().
		Get(f.url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, chunk_status_cancelled, nil
		}
		return nil, chunk_status_fail, newChunkError(c, 0, ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		return nil, chunk_status_fail, newChunkError(c, 0, ErrFetchFailed,
			errors.Errorf("unexpected status %s for %s", resp.Status, c.rangeHeader()))
	}

	buf := make([]byte, c.size)
	var bytesRead uint64
	for bytesRead < c.size {
		if ctx.Err() != nil {
			return nil, chunk_status_cancelled, nil
		}

		end := bytesRead + uint64(f.burst)
		if end > c.size {
			end = c.size
		}
		n, err := io.ReadFull(resp.Body, buf[bytesRead:end])
		bytesRead += uint64(n)
		if n > 0 && f.progress != nil {
			f.progress(n)
		}
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return nil, chunk_status_cancelled, nil
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, chunk_status_fail, newChunkError(c, bytesRead, ErrIncompleteChunk, err)
		}
		return nil, chunk_status_fail, newChunkError(c, bytesRead, ErrFetchFailed, err)
	}

	return buf, chunk_status_success, nil
}
