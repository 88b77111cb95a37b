package dl

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// rangeServer serves data with HEAD and single-range GET support and
// records what it was asked for.
type rangeServer struct {
	*httptest.Server
	data []byte

	// noLength drops Content-Length from HEAD responses.
	noLength bool
	// headStatus replaces the HEAD status when set.
	headStatus int
	// intercept may take over a GET for the given range. It returns false to
	// let the normal handler serve it.
	intercept func(w http.ResponseWriter, r *http.Request, start, end int64) bool

	heads       atomic.Int32
	gets        atomic.Int32
	inflight    atomic.Int32
	maxInflight atomic.Int32

	mu     sync.Mutex
	starts []int64
}

func newRangeServer(t *testing.T, data []byte, opts ...func(*rangeServer)) *rangeServer {
	t.Helper()
	s := &rangeServer{data: data}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *rangeServer) serve(w http.ResponseWriter, r *http.Request) {
	size := int64(len(s.data))

	if r.Method == http.MethodHead {
		s.heads.Add(1)
		if s.headStatus != 0 {
			w.WriteHeader(s.headStatus)
			return
		}
		if !s.noLength {
			w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		}
		w.Header().Set("Accept-Ranges", "bytes")
		return
	}

	s.gets.Add(1)
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		m := s.maxInflight.Load()
		if n <= m || s.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}

	// Parse range header: bytes=start-end
	rangeHeader := strings.TrimPrefix(r.Header.Get("Range"), "bytes=")
	parts := strings.Split(rangeHeader, "-")
	if len(parts) != 2 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	start, _ := strconv.ParseInt(parts[0], 10, 64)
	end, _ := strconv.ParseInt(parts[1], 10, 64)

	s.mu.Lock()
	s.starts = append(s.starts, start)
	s.mu.Unlock()

	if s.intercept != nil && s.intercept(w, r, start, end) {
		return
	}

	if end >= size {
		end = size - 1
	}
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
	w.WriteHeader(http.StatusPartialContent)
	w.Write(s.data[start : end+1])
}

func (s *rangeServer) requested(start int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.starts {
		if st == start {
			return true
		}
	}
	return false
}

// testData generates a deterministic pattern that differs between chunks.
func testData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}
