package dl

import (
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultChunkSize      uint64 = 20 * 1024 * 1024
	DefaultMaxConcurrency        = 6
	DefaultReadBurst             = 1024 * 1024

	// MaxChunkSize keeps a single range request under 4GiB.
	MaxChunkSize uint64 = 1<<32 - 1
)

type Config struct {
	URL            string
	ChunkSize      uint64 //每个分块的字节数
	MaxConcurrency int    //同时下载的分块上限
	ReadBurst      int    //每次从连接读取的字节数
	Proxy          string
	UserAgent      string
	Timeout        *time.Duration
	Logger         logrus.FieldLogger
}

func (c Config) withDefaults() Config {
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.ReadBurst == 0 {
		c.ReadBurst = DefaultReadBurst
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}

func (c Config) validate() error {
	u, err := url.ParseRequestURI(c.URL)
	if err != nil {
		return errors.Wrapf(ErrURLInvalid, "%q: %v", c.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Wrapf(ErrURLInvalid, "%q", c.URL)
	}
	if c.ChunkSize > MaxChunkSize {
		return errors.Wrapf(ErrInvalidConfig, "chunk size %d exceeds %d", c.ChunkSize, MaxChunkSize)
	}
	if c.MaxConcurrency < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max concurrency %d", c.MaxConcurrency)
	}
	if c.ReadBurst < 0 {
		return errors.Wrapf(ErrInvalidConfig, "read burst %d", c.ReadBurst)
	}
	return nil
}
