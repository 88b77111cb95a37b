package decode

import (
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

type Compression uint8

const (
	NoCompression Compression = iota
	Gzip
	Zstd
)

var ErrUnknownCompression = errors.New("decode: unknown compression")

// ParseCompression accepts "", "none", "gzip"/"gz" and "zstd"/"zst".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoCompression, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zstd", "zst":
		return Zstd, nil
	}
	return NoCompression, errors.Wrapf(ErrUnknownCompression, "%q", s)
}

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	}
	return "none"
}

// NewReader wraps r so reads return the decompressed stream. Closing the
// result releases the decoder but never closes r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case NoCompression:
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		return zr, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "open zstd stream")
		}
		return zr.IOReadCloser(), nil
	}
	return nil, errors.Wrapf(ErrUnknownCompression, "%d", c)
}
