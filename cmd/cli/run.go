package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/timerzz/nio"
	"github.com/timerzz/pdl/dl"
	"github.com/timerzz/pdl/pkg/decode"
	"github.com/timerzz/pdl/pkg/progressbar"
	"github.com/timerzz/pdl/pkg/utils"
	"github.com/urfave/cli/v2"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitInvalidArgs     = 2
	ExitSourceNotAccess = 3
	ExitNoContentLength = 4
	ExitDownloadFailed  = 5
	ExitWriteError      = 6
	ExitInterrupted     = 130
)

const copyBufferSize = 1024 * 1024

func runDownload(ctx context.Context, o options, stdout io.Writer) error {
	cfg, compression, err := o.engineConfig()
	if err != nil {
		return cli.Exit(err.Error(), ExitInvalidArgs)
	}

	out := o.Out
	if out == "" {
		if out, err = utils.FileNameFromURL(o.URL); err != nil {
			return cli.Exit(err.Error(), ExitInvalidArgs)
		}
	}

	d, err := dl.New(cfg)
	if err != nil {
		return cli.Exit(err.Error(), ExitInvalidArgs)
	}
	defer d.Close()

	fmt.Fprintf(stdout, "Downloading %s to: %s\n", o.URL, out)

	if err := d.Start(ctx); err != nil {
		code := ExitGeneralError
		switch {
		case errors.Is(err, dl.ErrNoContentLength):
			code = ExitNoContentLength
		case errors.Is(err, dl.ErrHeadFailed):
			code = ExitSourceNotAccess
		}
		return cli.Exit(fmt.Sprintf("Failed to start download: %v", err), code)
	}

	f, err := os.Create(out)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to create output file: %v", err), ExitWriteError)
	}
	defer f.Close()

	var written int64
	w := nio.NWriter(f, func(n int) { atomic.AddInt64(&written, int64(n)) })

	finishBar := func() {}
	if o.Progress {
		bar := progressbar.New(
			progressbar.WithOutput(stdout),
			progressbar.WithInterval(500*time.Millisecond),
			progressbar.WithTitle("Downloading"),
			progressbar.WithStepHook(func(b *progressbar.Bar) {
				b.SetTotal(int64(d.ContentLength()))
				b.SetCur(d.Delivered())
			}),
			progressbar.WithFinishHook(func() {
				fmt.Fprintln(stdout)
			}),
		)
		go bar.Run()
		var once sync.Once
		finishBar = func() { once.Do(bar.Finish) }
	}
	defer finishBar()

	interrupted := func() error {
		return cli.Exit("Download interrupted", ExitInterrupted)
	}

	src, err := decode.NewReader(d, compression)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted()
		}
		return cli.Exit(fmt.Sprintf("Download Failed: %v", err), ExitDownloadFailed)
	}
	defer src.Close()

	buf := make([]byte, copyBufferSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				d.Kill()
				return cli.Exit(fmt.Sprintf("Failed to write output: %v", werr), ExitWriteError)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return interrupted()
			}
			d.Kill()
			return cli.Exit(fmt.Sprintf("Download Failed: %v", rerr), ExitDownloadFailed)
		}
	}

	finishBar()
	if ctx.Err() != nil || d.State() == dl.StateKilled {
		return interrupted()
	}

	logrus.WithFields(logrus.Fields{
		"bytes":  atomic.LoadInt64(&written),
		"chunks": d.ChunkCount(),
	}).Debug("download finished")
	fmt.Fprintln(stdout, "Download Complete")
	return nil
}

func (o options) engineConfig() (dl.Config, decode.Compression, error) {
	chunkSize, err := utils.ParseSize(o.ChunkSize)
	if err != nil {
		return dl.Config{}, 0, errors.Wrap(err, "parse chunk size")
	}
	burst, err := utils.ParseSize(o.ReadBurst)
	if err != nil {
		return dl.Config{}, 0, errors.Wrap(err, "parse read burst")
	}
	compression, err := decode.ParseCompression(o.Decompress)
	if err != nil {
		return dl.Config{}, 0, err
	}

	cfg := dl.Config{
		URL:            o.URL,
		ChunkSize:      chunkSize,
		MaxConcurrency: o.Threads,
		ReadBurst:      int(burst),
		Proxy:          o.Proxy,
		UserAgent:      o.UserAgent,
		Logger:         logrus.StandardLogger(),
	}
	if o.Timeout > 0 {
		timeout := o.Timeout
		cfg.Timeout = &timeout
	}
	return cfg, compression, nil
}
