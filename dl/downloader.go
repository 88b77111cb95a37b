package dl

import (
	"sync"
	"sync/atomic"

	"github.com/imroc/req/v3"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// DownLoader splits one remote resource into ranged chunks, fetches up to
// MaxConcurrency of them at once and hands the bytes back in order through
// Read. Read must be called from a single goroutine; Kill may be called
// from anywhere.
type DownLoader struct {
	cfg     Config
	log     logrus.FieldLogger
	client  *req.Client //http客户端
	fetcher *rangeFetcher
	pool    *ants.Pool //协程池
	release sync.Once

	cancel context.CancelFunc
	ctx    context.Context

	state State

	contentLength uint64
	nextOffset    uint64 //下一个未调度的偏移
	nextIndex     int
	queue         []*fetch //按起始偏移排序

	current []byte
	cursor  int
	err     error

	downloadSize int64 //已经从网络读取的字节数
	delivered    int64 //已经交给调用方的字节数
}

func New(cfg Config) (*DownLoader, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := req.C().
		DisableCompression().
		DisableAutoDecode().
		SetRedirectPolicy(req.NoRedirectPolicy()).
		SetTimeout(0)
	if cfg.Proxy != "" {
		client = client.SetProxyURL(cfg.Proxy)
	}
	if cfg.Timeout != nil {
		client = client.SetTimeout(*cfg.Timeout).SetTLSHandshakeTimeout(*cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		client = client.SetUserAgent(cfg.UserAgent)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &DownLoader{
		cfg:    cfg,
		log:    cfg.Logger.WithField("url", cfg.URL),
		client: client,
		ctx:    ctx,
		cancel: cancel,
	}
	d.fetcher = &rangeFetcher{
		client:   client,
		url:      cfg.URL,
		burst:    cfg.ReadBurst,
		progress: func(n int) { atomic.AddInt64(&d.downloadSize, int64(n)) },
	}
	return d, nil
}

// Start probes the resource length with HEAD and schedules the first
// chunks. Nothing is fetched when the probe fails. Cancelling ctx has the
// same effect as Kill.
func (d *DownLoader) Start(ctx context.Context) (err error) {
	if !d.state.transition(StateNotStarted, StateProbing) {
		return ErrAlreadyStarted
	}
	defer func() {
		if err != nil {
			d.state.transition(StateProbing, StateFailed)
			d.err = err
			d.cancel()
		}
	}()

	if d.contentLength, err = d.probe(ctx); err != nil {
		return err
	}

	if d.pool, err = ants.NewPool(d.cfg.MaxConcurrency, ants.WithLogger(d.log)); err != nil {
		return errors.Wrap(err, "create worker pool")
	}

	d.log.WithFields(logrus.Fields{
		"content_length": d.contentLength,
		"chunks":         d.ChunkCount(),
	}).Debug("probe finished")

	d.state.transition(StateProbing, StateScheduling)

	go func() {
		select {
		case <-ctx.Done():
			d.Kill()
		case <-d.ctx.Done():
		}
	}()

	for len(d.queue) < d.cfg.MaxConcurrency && d.schedule() {
	}
	d.settle()
	return nil
}

func (d *DownLoader) probe(ctx context.Context) (uint64, error) {
	resp, err := d.client.R().SetContext(ctx).Head(d.cfg.URL)
	if err != nil {
		return 0, errors.Wrapf(ErrHeadFailed, "HEAD %s: %v", d.cfg.URL, err)
	}
	if !resp.IsSuccessState() {
		return 0, errors.Wrapf(ErrHeadFailed, "HEAD %s: %s", d.cfg.URL, resp.Status)
	}
	if resp.ContentLength < 0 {
		return 0, errors.Wrapf(ErrNoContentLength, "HEAD %s", d.cfg.URL)
	}
	return uint64(resp.ContentLength), nil
}

// schedule submits the next unscheduled chunk and appends its handle to
// the tail of the queue. It reports false once the resource is covered or
// the download was killed.
func (d *DownLoader) schedule() bool {
	if d.ctx.Err() != nil {
		return false
	}
	c, ok := nextChunk(d.nextIndex, d.nextOffset, d.cfg.ChunkSize, d.contentLength)
	if !ok {
		return false
	}

	fctx, cancel := context.WithCancel(d.ctx)
	f := newFetch(c, cancel)
	if err := d.pool.Submit(func() {
		d.execute(fctx, f)
	}); err != nil {
		f.finish(nil, chunk_status_fail, newChunkError(c, 0, ErrJoinFailed, err))
	}

	d.queue = append(d.queue, f)
	d.nextOffset += c.size
	d.nextIndex++

	d.log.WithFields(logrus.Fields{
		"index": c.index,
		"start": c.start,
		"size":  c.size,
	}).Debug("chunk scheduled")
	return true
}

func (d *DownLoader) execute(ctx context.Context, f *fetch) {
	defer func() {
		if r := recover(); r != nil {
			f.finish(nil, chunk_status_fail,
				newChunkError(f.chunk, 0, ErrJoinFailed, errors.Errorf("worker panic: %v", r)))
		}
	}()
	f.setStatus(chunk_status_downloading)
	buf, status, err := d.fetcher.fetch(ctx, f.chunk)
	f.finish(buf, status, err)
}

// replenish schedules one chunk in place of the one just joined.
func (d *DownLoader) replenish() {
	d.schedule()
	d.settle()
}

func (d *DownLoader) settle() {
	if d.nextOffset < d.contentLength {
		d.state.advance(StateSteady)
	} else {
		d.state.advance(StateDraining)
	}
}

// Kill cancels every outstanding fetch. Each fetch signal derives from one
// parent context; cancelling a fetch that already finished is a no-op.
func (d *DownLoader) Kill() {
	if d.state.kill() {
		d.log.Debug("download killed")
	}
	d.cancel()
}

// Close kills the download, releases the worker pool and closes the idle
// connections of its client.
func (d *DownLoader) Close() error {
	d.Kill()
	d.current, d.cursor = nil, 0
	d.releasePool()
	d.client.GetTransport().CloseIdleConnections()
	return nil
}

func (d *DownLoader) releasePool() {
	d.release.Do(func() {
		if d.pool != nil {
			d.pool.Release()
		}
	})
}

func (d *DownLoader) State() State {
	return d.state.load()
}

func (d *DownLoader) ContentLength() uint64 {
	return d.contentLength
}

func (d *DownLoader) ChunkCount() uint64 {
	return ChunkCount(d.contentLength, d.cfg.ChunkSize)
}

// Outstanding is the number of scheduled fetches not yet joined. Like
// Read, it belongs to the consuming goroutine.
func (d *DownLoader) Outstanding() int {
	return len(d.queue)
}

// DownloadSize 已经下载的大小
func (d *DownLoader) DownloadSize() int64 {
	return atomic.LoadInt64(&d.downloadSize)
}

// Delivered 已经交给调用方的大小
func (d *DownLoader) Delivered() int64 {
	return atomic.LoadInt64(&d.delivered)
}
