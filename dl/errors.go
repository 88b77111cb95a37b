package dl

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrURLInvalid      = errors.New("dl: invalid url")
	ErrInvalidConfig   = errors.New("dl: invalid config")
	ErrHeadFailed      = errors.New("dl: HEAD probe failed")
	ErrNoContentLength = errors.New("dl: no content length")
	ErrFetchFailed     = errors.New("dl: chunk fetch failed")
	ErrIncompleteChunk = errors.New("dl: incomplete chunk")
	ErrJoinFailed      = errors.New("dl: chunk worker aborted")
	ErrNotStarted      = errors.New("dl: download not started")
	ErrAlreadyStarted  = errors.New("dl: download already started")
)

// ChunkError reports the failure of a single chunk. It matches both Kind
// and the underlying cause with errors.Is.
type ChunkError struct {
	Index int
	Start uint64
	Size  uint64
	Read  uint64 // bytes received before the failure
	Kind  error
	Err   error
}

func newChunkError(c chunk, read uint64, kind, err error) *ChunkError {
	return &ChunkError{
		Index: c.index,
		Start: c.start,
		Size:  c.size,
		Read:  read,
		Kind:  kind,
		Err:   err,
	}
}

func (e *ChunkError) Error() string {
	msg := fmt.Sprintf("%v: chunk %d (bytes %d-%d, %d/%d read)",
		e.Kind, e.Index, e.Start, e.Start+e.Size-1, e.Read, e.Size)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ChunkError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
