package progressbar

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/timerzz/pdl/pkg/utils"
)

type cfg struct {
	interval   time.Duration
	stepHook   func(*Bar)
	finishHook func()
	title      string
	out        io.Writer
}

// Bar renders byte progress on a single terminal line.
type Bar struct {
	mu       sync.Mutex
	total    int64
	cur      int64
	lastCur  int64
	lastTime time.Time

	cfg cfg

	finish chan struct{}
	done   chan struct{}
}

func New(opts ...Option) *Bar {
	c := cfg{
		interval: time.Second,
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &Bar{
		cfg:    c,
		finish: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (b *Bar) Run() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.interval)
	defer ticker.Stop()
	b.lastTime = time.Now()
	for {
		select {
		case <-ticker.C:
			if b.cfg.stepHook != nil {
				b.cfg.stepHook(b)
			}
			b.render()
		case <-b.finish:
			if b.cfg.stepHook != nil {
				b.cfg.stepHook(b)
			}
			b.render()
			if b.cfg.finishHook != nil {
				b.cfg.finishHook()
			}
			return
		}
	}
}

func (b *Bar) render() {
	b.mu.Lock()
	defer b.mu.Unlock()

	rate := utils.SizePercentFormat(b.lastTime, b.cur-b.lastCur)
	b.lastTime, b.lastCur = time.Now(), b.cur

	if b.total <= 0 {
		fmt.Fprintf(b.cfg.out, "\r %s %10s %20s", b.cfg.title, humanize.IBytes(uint64(b.cur)), rate)
		return
	}
	fmt.Fprintf(b.cfg.out, "\r %s %.2f%%  %10s/%s %20s", b.cfg.title,
		100*float64(b.cur)/float64(b.total),
		humanize.IBytes(uint64(b.cur)), humanize.IBytes(uint64(b.total)), rate)
}

func (b *Bar) SetTotal(t int64) {
	b.mu.Lock()
	b.total = t
	b.mu.Unlock()
}

func (b *Bar) SetCur(t int64) {
	b.mu.Lock()
	b.cur = t
	b.mu.Unlock()
}

// Finish renders the final state and waits for Run to return.
func (b *Bar) Finish() {
	b.finish <- struct{}{}
	<-b.done
}

type Option func(*cfg)

func WithInterval(duration time.Duration) func(*cfg) {
	return func(cfg *cfg) {
		cfg.interval = duration
	}
}

func WithTitle(title string) func(*cfg) {
	return func(cfg *cfg) {
		cfg.title = title
	}
}

func WithOutput(w io.Writer) func(*cfg) {
	return func(cfg *cfg) {
		cfg.out = w
	}
}

func WithStepHook(h func(self *Bar)) func(*cfg) {
	return func(cfg *cfg) {
		cfg.stepHook = h
	}
}

func WithFinishHook(h func()) func(*cfg) {
	return func(cfg *cfg) {
		cfg.finishHook = h
	}
}
